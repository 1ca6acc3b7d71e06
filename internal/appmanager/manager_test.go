package appmanager

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadServiceSequence_YAML(t *testing.T) {
	path := writeFile(t, "services.yaml", `
services:
  - name: bi
    start_order: 2
    config:
      port: 8000
  - name: logger
    start_order: 1
    config:
      folder_path: ./logs
`)
	seq, err := LoadServiceSequence(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(seq) != 2 || seq[0].Name != "logger" || seq[1].Name != "bi" {
		t.Fatalf("unexpected order: %+v", seq)
	}
	if seq[1].Config["port"] != 8000 {
		t.Errorf("port = %#v", seq[1].Config["port"])
	}
}

func TestLoadServiceSequence_TOML(t *testing.T) {
	path := writeFile(t, "services.toml", `
[[services]]
name = "scheduler"
start_order = 3
[services.config]
schedule = "@every 1h"

[[services]]
name = "bi"
start_order = 2
[services.config]
api_tokens = ["a", "b"]
`)
	seq, err := LoadServiceSequence(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(seq) != 2 || seq[0].Name != "bi" || seq[1].Name != "scheduler" {
		t.Fatalf("unexpected order: %+v", seq)
	}
	if seq[1].Config["schedule"] != "@every 1h" {
		t.Errorf("schedule = %#v", seq[1].Config["schedule"])
	}
}

func TestLoadServiceSequence_UnsupportedExtension(t *testing.T) {
	if _, err := LoadServiceSequence(writeFile(t, "services.ini", "x=1")); err == nil {
		t.Error("expected error for .ini")
	}
}

type fakeService struct {
	name     string
	startErr error
	log      *[]string
}

func (f *fakeService) Name() string { return f.name }
func (f *fakeService) Start() error {
	*f.log = append(*f.log, "start "+f.name)
	return f.startErr
}
func (f *fakeService) Stop() error {
	*f.log = append(*f.log, "stop "+f.name)
	return nil
}

func TestAppManager_StartFailureStopsStarted(t *testing.T) {
	var calls []string
	am := NewAppManager()
	am.RegisterService(&fakeService{name: "a", log: &calls})
	am.RegisterService(&fakeService{name: "b", log: &calls})
	am.RegisterService(&fakeService{name: "c", startErr: errors.New("porta ocupada"), log: &calls})

	if err := am.StartAll(); err == nil {
		t.Fatal("expected start error")
	}
	want := []string{"start a", "start b", "start c", "stop b", "stop a"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestAutoRegisterServices(t *testing.T) {
	am := NewAppManager()
	am.AutoRegisterServices([]ServiceConfig{
		{Name: "scheduler"},
		{Name: "desconhecido"},
		{Name: "bi", Config: map[string]interface{}{"port": 0}},
	})
	if am.GetServiceByName("scheduler") == nil || am.GetServiceByName("bi") == nil {
		t.Error("expected scheduler and bi services")
	}
	if am.GetServiceByName("desconhecido") != nil {
		t.Error("unknown service registered")
	}
}
