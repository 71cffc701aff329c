package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// warmTimeout bounds a single scheduled rebuild
const warmTimeout = 5 * time.Minute

// Warmer rebuilds the gallery cache on a cron schedule so visitors rarely
// pay for a cold walk
type Warmer struct {
	cron    *cron.Cron
	service *Service
	rootID  string
	logger  *zap.Logger
}

// NewWarmer schedules refreshes of rootID. schedule accepts standard cron
// expressions and descriptors such as "@every 50m".
func NewWarmer(service *Service, rootID, schedule string, logger *zap.Logger) (*Warmer, error) {
	w := &Warmer{
		cron:    cron.New(),
		service: service,
		rootID:  rootID,
		logger:  logger,
	}
	if _, err := w.cron.AddFunc(schedule, w.Run); err != nil {
		return nil, fmt.Errorf("invalid warm schedule %q: %w", schedule, err)
	}
	return w, nil
}

// Start runs the schedule in the background
func (w *Warmer) Start() {
	w.logger.Info("gallery cache warmer started")
	w.cron.Start()
}

// Stop halts the schedule and waits for a running refresh
func (w *Warmer) Stop() {
	<-w.cron.Stop().Done()
}

// Run performs one refresh
func (w *Warmer) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()

	structure, err := w.service.Refresh(ctx, w.rootID)
	if err != nil {
		w.logger.Error("gallery warm-up failed", zap.Error(err))
		return
	}
	w.logger.Info("gallery cache warmed", zap.Int("media", structure.TotalMedia))
}
