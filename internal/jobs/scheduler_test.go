package jobs

import (
	"os"
	"path/filepath"
	"testing"

	"OrcaBI/internal/starschema"
)

const sheet = "Orçado x Realizado;;;;;;\n" +
	";Ano;Mês;Código Micro Mercado ou UC;Código da Conta Contábil;Vlr Orçado;Valor DRE\n" +
	";2024;1;MM01;4101;100;90\n"

func TestReloadOnce_SkipsUnchangedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custos.csv")
	if err := os.WriteFile(path, []byte(sheet), 0644); err != nil {
		t.Fatal(err)
	}
	store := starschema.NewStore()
	svc := NewReloadService(map[string]interface{}{"watch_path": path}, store).(*ReloadService)

	swapped, err := svc.ReloadOnce()
	if err != nil || !swapped {
		t.Fatalf("first reload: swapped=%v err=%v", swapped, err)
	}
	first := store.Current()
	if len(first.Budget) != 1 || first.Meta.Source != "custos.csv" {
		t.Fatalf("unexpected snapshot %+v", first)
	}

	swapped, err = svc.ReloadOnce()
	if err != nil || swapped {
		t.Errorf("unchanged file: swapped=%v err=%v", swapped, err)
	}
	if store.Current() != first {
		t.Error("unchanged file replaced the snapshot")
	}

	if err := os.WriteFile(path, []byte(sheet+";2024;2;MM01;4101;50;0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	swapped, err = svc.ReloadOnce()
	if err != nil || !swapped {
		t.Fatalf("changed file: swapped=%v err=%v", swapped, err)
	}
	if len(store.Current().Budget) != 2 {
		t.Errorf("expected 2 budget facts after reload, got %d", len(store.Current().Budget))
	}
}

func TestReloadOnce_MissingFileKeepsSnapshot(t *testing.T) {
	store := starschema.NewStore()
	svc := NewReloadService(map[string]interface{}{"watch_path": filepath.Join(t.TempDir(), "nada.xlsx")}, store).(*ReloadService)
	if _, err := svc.ReloadOnce(); err == nil {
		t.Fatal("expected error for missing file")
	}
	if store.Current().Loaded() {
		t.Error("store should remain empty")
	}
}

func TestReloadService_StartStop(t *testing.T) {
	store := starschema.NewStore()
	path := filepath.Join(t.TempDir(), "custos.csv")
	os.WriteFile(path, []byte(sheet), 0644)

	svc := NewReloadService(map[string]interface{}{
		"watch_path":   path,
		"schedule":     "@every 1h",
		"run_on_start": true,
	}, store)
	if err := svc.Start(); err != nil {
		t.Fatal(err)
	}
	if !store.Current().Loaded() {
		t.Error("run_on_start should load the file")
	}
	if err := svc.Stop(); err != nil {
		t.Fatal(err)
	}

	bad := NewReloadService(map[string]interface{}{"watch_path": path, "schedule": "not a cron"}, store)
	if err := bad.Start(); err == nil {
		t.Error("expected invalid schedule error")
	}

	idle := NewReloadService(nil, store)
	if err := idle.Start(); err != nil {
		t.Errorf("disabled scheduler: %v", err)
	}
	idle.Stop()
}
