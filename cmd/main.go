package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"OrcaBI/internal/appmanager"
	"OrcaBI/internal/config"
)

func main() {
	// Load .env for local dev, from the repo root or the working directory
	_ = godotenv.Load("../.env")
	_ = godotenv.Load()

	path := os.Getenv(config.EnvConfigPath)
	if path == "" {
		path = "../services.yaml"
	}

	manager := appmanager.NewAppManager()

	servicesCfg, err := appmanager.LoadServiceSequence(path)
	if err != nil {
		log.Fatal("failed to load service sequence:", err)
	}

	manager.AutoRegisterServices(servicesCfg)

	if err := manager.StartAll(); err != nil {
		log.Fatal("failed to start:", err)
	}

	// Graceful shutdown handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	if err := manager.StopAll(); err != nil {
		log.Fatal("failed to stop:", err)
	}
}
