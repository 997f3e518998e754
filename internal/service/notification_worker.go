package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// NotificationWorker periodically retries notifications whose previous
// delivery attempts failed.
type NotificationWorker struct {
	notifications NotificationService
	interval      time.Duration
	cancel        context.CancelFunc
	done          chan struct{}
}

func NewNotificationWorker(notifications NotificationService) *NotificationWorker {
	return &NotificationWorker{
		notifications: notifications,
		interval:      time.Minute,
	}
}

func (w *NotificationWorker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		log.Info().Dur("interval", w.interval).Msg("Notification retry worker started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Notification retry worker stopped")
				return
			case <-ticker.C:
				w.notifications.RetryDue(ctx)
			}
		}
	}()
}

func (w *NotificationWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
}
