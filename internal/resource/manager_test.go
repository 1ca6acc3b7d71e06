package resource

import (
	"strings"
	"testing"
	"time"

	"OrcaBI/internal/starschema"
)

func TestSample_ReportsDatasetSize(t *testing.T) {
	store := starschema.NewStore()
	rm := NewResourceManagerService(nil, store).(*ResourceManager)

	if u := rm.Sample(); u.Facts != 0 || !strings.Contains(u.String(), "batch=none") {
		t.Errorf("empty store sample = %s", u)
	}

	store.Swap(&starschema.Snapshot{
		Budget:   make([]starschema.BudgetFact, 3),
		Realized: make([]starschema.RealizedFact, 2),
		Dimensions: starschema.Dimensions{
			Calendar: make([]starschema.CalendarDim, 1),
		},
		Meta: starschema.Meta{BatchID: "b-9"},
	})
	u := rm.Sample()
	if u.Facts != 5 || u.Dimensions != 1 || u.BatchID != "b-9" {
		t.Errorf("sample = %+v", u)
	}
	if u.HeapAllocMB <= 0 || u.Goroutines <= 0 {
		t.Errorf("runtime stats missing: %+v", u)
	}
}

func TestHeartbeatInterval(t *testing.T) {
	tests := []struct {
		cfg  map[string]interface{}
		want time.Duration
	}{
		{nil, time.Minute},
		{map[string]interface{}{"heartbeat_interval": "5s"}, 5 * time.Second},
		{map[string]interface{}{"heartbeat_interval": 10}, 10 * time.Second},
		{map[string]interface{}{"heartbeat_interval": "lento"}, time.Minute},
	}
	for _, tt := range tests {
		rm := NewResourceManagerService(tt.cfg, starschema.NewStore()).(*ResourceManager)
		if rm.heartbeatInterval != tt.want {
			t.Errorf("cfg %v: interval %v, want %v", tt.cfg, rm.heartbeatInterval, tt.want)
		}
	}
}

func TestStartStop(t *testing.T) {
	rm := NewResourceManagerService(map[string]interface{}{"heartbeat_interval": "10ms"}, starschema.NewStore())
	if err := rm.Start(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)
	rm.Stop()
	rm.Stop()
}
