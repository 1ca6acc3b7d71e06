package appmanager

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"OrcaBI/api/bi"
	"OrcaBI/internal/jobs"
	"OrcaBI/internal/logger"
	"OrcaBI/internal/resource"
	"OrcaBI/internal/serviceiface"
	"OrcaBI/internal/starschema"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

var store = starschema.NewStore()

// SetStore replaces the dataset store shared by the services. It must be
// called before AutoRegisterServices.
func SetStore(s *starschema.Store) {
	store = s
}

// GetStore returns the dataset store
func GetStore() *starschema.Store {
	return store
}

var serviceConstructors = map[string]func(map[string]interface{}) serviceiface.Service{
	"logger": func(cfg map[string]interface{}) serviceiface.Service {
		return logger.NewLoggerService(cfg)
	},
	"resourcemanager": func(cfg map[string]interface{}) serviceiface.Service {
		return resource.NewResourceManagerService(cfg, store)
	},
	"bi": func(cfg map[string]interface{}) serviceiface.Service {
		return bi.NewBIService(cfg, store)
	},
	"scheduler": func(cfg map[string]interface{}) serviceiface.Service {
		return jobs.NewReloadService(cfg, store)
	},
}

// ------------------- MANAGER -------------------

type AppManager struct {
	services []serviceiface.Service
	mu       sync.Mutex
}

func NewAppManager() *AppManager {
	return &AppManager{
		services: make([]serviceiface.Service, 0),
	}
}

func (am *AppManager) RegisterService(s serviceiface.Service) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.services = append(am.services, s)
}

// StartAll starts services in registration order. On failure the services
// already started are stopped again.
func (am *AppManager) StartAll() error {
	am.mu.Lock()
	defer am.mu.Unlock()

	for i, service := range am.services {
		log.Println("Starting service:", service.Name())
		if err := service.Start(); err != nil {
			for j := i - 1; j >= 0; j-- {
				am.services[j].Stop()
			}
			return fmt.Errorf("failed to start service %s: %w", service.Name(), err)
		}
	}
	return nil
}

func (am *AppManager) StopAll() error {
	am.mu.Lock()
	defer am.mu.Unlock()
	for i := len(am.services) - 1; i >= 0; i-- {
		svc := am.services[i]
		if err := svc.Stop(); err != nil {
			return fmt.Errorf("failed to stop service %s: %w", svc.Name(), err)
		}
	}
	return nil
}

// ------------------- SERVICE CONFIG -------------------

type ServiceSequencer struct {
	Services []ServiceConfig `yaml:"services" toml:"services"`
}

type ServiceConfig struct {
	Name       string                 `yaml:"name" toml:"name"`
	StartOrder int                    `yaml:"start_order" toml:"start_order"`
	Config     map[string]interface{} `yaml:"config" toml:"config"`
}

// LoadServiceSequence reads a YAML or TOML service list, chosen by file
// extension, sorted by start_order.
func LoadServiceSequence(path string) ([]ServiceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seq ServiceSequencer
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &seq); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &seq); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	sort.SliceStable(seq.Services, func(i, j int) bool {
		return seq.Services[i].StartOrder < seq.Services[j].StartOrder
	})
	return seq.Services, nil
}

func (am *AppManager) AutoRegisterServices(configs []ServiceConfig) {
	for _, svc := range configs {
		constructor, ok := serviceConstructors[svc.Name]
		if !ok {
			log.Printf("[WARN] unknown service %q in config, skipping", svc.Name)
			continue
		}
		am.RegisterService(constructor(svc.Config))
	}

	for _, svc := range am.services {
		if l, ok := svc.(*logger.LoggerService); ok {
			logger.SetGlobalLogger(l)
			break
		}
	}
}

func (am *AppManager) GetServiceByName(name string) serviceiface.Service {
	for _, svc := range am.services {
		if svc.Name() == name {
			return svc
		}
	}
	return nil
}
