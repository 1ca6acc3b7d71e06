// Package jobs runs the scheduled reload of a watched cost sheet.
package jobs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"OrcaBI/internal/checksum"
	"OrcaBI/internal/config"
	"OrcaBI/internal/etl"
	"OrcaBI/internal/logger"
	"OrcaBI/internal/serviceiface"
	"OrcaBI/internal/starschema"

	"github.com/robfig/cron/v3"
)

// ReloadConfig controls the watched-file reload.
type ReloadConfig struct {
	WatchPath  string
	Schedule   string
	TimeZone   string
	RunOnStart bool
}

func NewReloadConfig(cfg map[string]interface{}) *ReloadConfig {
	rc := &ReloadConfig{
		WatchPath:  config.String(cfg["watch_path"]),
		Schedule:   config.String(cfg["schedule"]),
		TimeZone:   config.String(cfg["time_zone"]),
		RunOnStart: config.Bool(cfg["run_on_start"]),
	}
	if rc.Schedule == "" {
		rc.Schedule = config.DefaultReloadSchedule
	}
	if rc.TimeZone == "" {
		rc.TimeZone = config.DefaultTimeZone
	}
	return rc
}

type ReloadService struct {
	cfg   *ReloadConfig
	store *starschema.Store
	cron  *cron.Cron
	mu    sync.Mutex
}

func NewReloadService(cfg map[string]interface{}, store *starschema.Store) serviceiface.Service {
	return &ReloadService{cfg: NewReloadConfig(cfg), store: store}
}

func (s *ReloadService) Name() string {
	return "scheduler"
}

func (s *ReloadService) Start() error {
	if s.cfg.WatchPath == "" {
		log.Println("Scheduler: no watch_path configured, reload disabled")
		return nil
	}

	loc, err := time.LoadLocation(s.cfg.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(s.cfg.Schedule, func() {
		if _, err := s.ReloadOnce(); err != nil {
			audit(fmt.Sprintf("Scheduled reload of %s failed: %v", s.cfg.WatchPath, err))
		}
	})
	if err != nil {
		return fmt.Errorf("unable to schedule reload: %v", err)
	}

	if s.cfg.RunOnStart {
		if _, err := s.ReloadOnce(); err != nil {
			audit(fmt.Sprintf("Initial load of %s failed: %v", s.cfg.WatchPath, err))
		}
	}

	c.Start()
	s.cron = c
	audit(fmt.Sprintf("Reload scheduler started for %s (%s)", s.cfg.WatchPath, s.cfg.Schedule))
	return nil
}

// ReloadOnce re-ingests the watched file when its content differs from the
// loaded snapshot. It reports whether the dataset was replaced.
func (s *ReloadService) ReloadOnce() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.cfg.WatchPath)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", s.cfg.WatchPath, err)
	}
	if same, err := checksum.NewMatcher(s.store.Current().Meta.Checksum).Match(data); err == nil && same {
		return false, nil
	}

	snap, stats, err := etl.Ingest(filepath.Base(s.cfg.WatchPath), data)
	if err != nil {
		return false, err
	}
	s.store.Swap(snap)
	audit(fmt.Sprintf("Reloaded %s: %d orcamento, %d realizado (batch %s)",
		s.cfg.WatchPath, stats.Budget, stats.Realized, snap.Meta.BatchID))
	return true, nil
}

func (s *ReloadService) Stop() error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	log.Println("Scheduler stopped.")
	return nil
}

func audit(msg string) {
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(msg)
	} else {
		log.Println(msg)
	}
}
