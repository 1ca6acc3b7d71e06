// Package resource reports process memory against the size of the loaded
// dataset on a heartbeat.
package resource

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"OrcaBI/internal/logger"
	"OrcaBI/internal/serviceiface"
	"OrcaBI/internal/starschema"
)

// Usage is one heartbeat sample.
type Usage struct {
	HeapAllocMB float64
	SysMB       float64
	Goroutines  int
	BatchID     string
	Facts       int
	Dimensions  int
}

func (u Usage) String() string {
	batch := u.BatchID
	if batch == "" {
		batch = "none"
	}
	return fmt.Sprintf("heap=%.1fMB sys=%.1fMB goroutines=%d batch=%s facts=%d dims=%d",
		u.HeapAllocMB, u.SysMB, u.Goroutines, batch, u.Facts, u.Dimensions)
}

type ResourceManager struct {
	store             *starschema.Store
	stopChan          chan struct{}
	stopOnce          sync.Once
	heartbeatInterval time.Duration
}

func NewResourceManagerService(cfg map[string]interface{}, store *starschema.Store) serviceiface.Service {
	interval := time.Minute
	switch v := cfg["heartbeat_interval"].(type) {
	case string:
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		}
	case int:
		interval = time.Duration(v) * time.Second
	case int64:
		interval = time.Duration(v) * time.Second
	case float64:
		interval = time.Duration(v) * time.Second
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &ResourceManager{
		store:             store,
		stopChan:          make(chan struct{}),
		heartbeatInterval: interval,
	}
}

func (rm *ResourceManager) Name() string { return "resourcemanager" }

func (rm *ResourceManager) Start() error {
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("ResourceManager started")
	}
	go rm.heartbeatLoop()
	return nil
}

func (rm *ResourceManager) Stop() error {
	rm.stopOnce.Do(func() { close(rm.stopChan) })
	return nil
}

// Sample reads current memory statistics and dataset sizes.
func (rm *ResourceManager) Sample() Usage {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	u := Usage{
		HeapAllocMB: float64(ms.HeapAlloc) / (1 << 20),
		SysMB:       float64(ms.Sys) / (1 << 20),
		Goroutines:  runtime.NumGoroutine(),
	}
	snap := rm.store.Current()
	u.BatchID = snap.Meta.BatchID
	u.Facts = len(snap.Budget) + len(snap.Realized)
	u.Dimensions = len(snap.Calendar) + len(snap.Structure) + len(snap.Accounts) + len(snap.Suppliers)
	return u
}

func (rm *ResourceManager) heartbeatLoop() {
	ticker := time.NewTicker(rm.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rm.stopChan:
			return
		case <-ticker.C:
			msg := "heartbeat " + rm.Sample().String()
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit(msg)
			} else {
				log.Println(msg)
			}
		}
	}
}
