// Package jobs runs scheduled maintenance.
package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// KeepFunc lists the file paths that must survive a sweep.
type KeepFunc func(ctx context.Context) (map[string]bool, error)

// TempCleaner removes stale screenshots from the temp directory.
type TempCleaner struct {
	dir      string
	maxAge   time.Duration
	schedule string
	keep     KeepFunc
	cron     *cron.Cron
	now      func() time.Time
}

// NewTempCleaner creates a cleaner. keep may be nil.
func NewTempCleaner(dir string, maxAge time.Duration, schedule string, keep KeepFunc) *TempCleaner {
	return &TempCleaner{
		dir:      dir,
		maxAge:   maxAge,
		schedule: schedule,
		keep:     keep,
		cron:     cron.New(),
		now:      time.Now,
	}
}

// Start schedules the sweep.
func (c *TempCleaner) Start() error {
	_, err := c.cron.AddFunc(c.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := c.Sweep(ctx); err != nil {
			log.Error().Err(err).Str("path", c.dir).Msg("Temp cleanup failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule temp cleanup: %w", err)
	}
	c.cron.Start()
	log.Info().Str("schedule", c.schedule).Dur("max_age", c.maxAge).Msg("Temp cleanup scheduled")
	return nil
}

// Stop halts the schedule and waits for a running sweep.
func (c *TempCleaner) Stop() {
	<-c.cron.Stop().Done()
}

// Sweep deletes regular files older than maxAge that are not kept.
// It returns how many files were removed.
func (c *TempCleaner) Sweep(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read temp dir: %w", err)
	}

	keep := map[string]bool{}
	if c.keep != nil {
		if keep, err = c.keep(ctx); err != nil {
			return 0, fmt.Errorf("failed to list kept files: %w", err)
		}
	}

	cutoff := c.now().Add(-c.maxAge)
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(c.dir, e.Name())
		if keep[path] {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to remove temp file")
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Temp files cleaned")
	}
	return removed, nil
}
