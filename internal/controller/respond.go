package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/VictorLi621/5620-Marker/internal/apperr"
	"github.com/VictorLi621/5620-Marker/internal/dto"
)

// RespondError maps a tagged service error to its HTTP status and writes the
// JSON error body. Untagged errors stay opaque 500s.
func RespondError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.Validation:
		status = http.StatusBadRequest
	case apperr.NotFound:
		status = http.StatusNotFound
	case apperr.Authorization:
		status = http.StatusForbidden
	case apperr.InvalidState, apperr.Conflict:
		status = http.StatusConflict
	case apperr.Upstream:
		status = http.StatusBadGateway
	}

	message := "Internal server error"
	var ae *apperr.Error
	if status != http.StatusInternalServerError && errors.As(err, &ae) {
		message = ae.Message
	}

	ctx.JSON(status, dto.ErrorResponse{Message: message})
}

// ParseID parses a uint path parameter, writing a 400 on failure.
func ParseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(id), true
}
