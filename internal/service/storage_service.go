package service

import (
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/VictorLi621/5620-Marker/config"
)

// StorageService persists uploaded artifacts and hands back opaque object refs.
type StorageService interface {
	Save(prefix, filename string, r io.Reader) (string, error)
	Load(ref string) ([]byte, error)
}

type fileStorage struct {
	fs   afero.Fs
	root string
}

func NewStorageService(cfg *config.Config) (StorageService, error) {
	return NewStorageServiceWithFs(afero.NewOsFs(), cfg.Storage.Root)
}

// NewStorageServiceWithFs allows tests to run against an in-memory filesystem.
func NewStorageServiceWithFs(fs afero.Fs, root string) (StorageService, error) {
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}
	return &fileStorage{fs: fs, root: root}, nil
}

func (s *fileStorage) Save(prefix, filename string, r io.Reader) (string, error) {
	ref := path.Join(prefix, uuid.New().String()+strings.ToLower(filepath.Ext(filename)))
	full := filepath.Join(s.root, filepath.FromSlash(ref))

	if err := s.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage dir: %w", err)
	}

	f, err := s.fs.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create storage object: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return "", fmt.Errorf("failed to write storage object: %w", err)
	}

	log.Info().Str("ref", ref).Int64("bytes", n).Msg("Stored uploaded file")
	return ref, nil
}

func (s *fileStorage) Load(ref string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, filepath.Join(s.root, filepath.FromSlash(ref)))
	if err != nil {
		return nil, fmt.Errorf("failed to read storage object %s: %w", ref, err)
	}
	return data, nil
}
