// Package wire provides dependency injection for the warden application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"os"
	"sync"

	"github.com/example/warden/internal/adapters/advisor"
	"github.com/example/warden/internal/adapters/planfile"
	"github.com/example/warden/internal/adapters/sqlite"
	"github.com/example/warden/internal/app"
	"github.com/example/warden/internal/config"
	"github.com/example/warden/internal/db"
	"github.com/example/warden/internal/ports/primary"
	"github.com/example/warden/internal/ports/secondary"
)

var (
	dispatchService primary.DispatchService
	gateService     primary.GateService
	gearService     primary.GearService
	once            sync.Once
)

// DispatchService returns the singleton DispatchService instance.
func DispatchService() primary.DispatchService {
	once.Do(initServices)
	return dispatchService
}

// GateService returns the singleton GateService instance.
func GateService() primary.GateService {
	once.Do(initServices)
	return gateService
}

// GearService returns the singleton GearService instance.
func GearService() primary.GearService {
	once.Do(initServices)
	return gearService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	projectDir, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to resolve working directory: %v", err)
	}

	cfg, err := config.LoadConfig(projectDir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.Open(projectDir)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Repository adapters (secondary ports) with injected DB.
	store := sqlite.NewStateStore(database)
	actionLog := sqlite.NewActionLogRepository(database)
	plans := planfile.NewProvider(projectDir)

	// The rules advisor is optional; when no rules file exists the gate
	// runs with the no-op advisor.
	var adv secondary.Advisor = advisor.NewNoop()
	if rules, err := advisor.LoadRulesAdvisor(projectDir); err != nil {
		log.Printf("warning: rules advisor disabled: %v", err)
	} else if rules != nil {
		adv = rules
	}

	// Services (primary ports implementation).
	dispatchService = app.NewDispatchService(store, plans, actionLog, cfg.MaxIterations, cfg.MaxRetries)
	gateService = app.NewGateService(store, plans, adv, actionLog)
	gearService = app.NewGearService(store)
}
