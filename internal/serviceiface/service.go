package serviceiface

// Service is a long-running component started by the app manager in
// start_order and stopped in reverse.
type Service interface {
	// Name matches the service entry in services.yaml.
	Name() string
	// Start must return once the service is running; background work runs
	// in its own goroutines.
	Start() error
	Stop() error
}
