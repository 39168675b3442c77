package app

import (
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"

	"emoheal/internal/config"
	"emoheal/internal/database"
	"emoheal/internal/logger"
	"emoheal/internal/services"

	"github.com/robfig/cron/v3"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Port = "0"
	cfg.Server.Mode = "test"
	cfg.Database.Driver = config.DriverMemory
	cfg.Simulation.AuthLatency = 0
	cfg.Simulation.DetectionLatency = 0
	return cfg
}

func TestApplicationLifecycle(t *testing.T) {
	app, err := New(testConfig(t), logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if app.bot != nil {
		t.Fatal("bot must stay disabled without a token")
	}
	if err := app.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !app.services.Ready() {
		t.Fatal("services must be ready after Start")
	}
	if err := app.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestStartFailsWhenPortIsTaken(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	_, port, _ := net.SplitHostPort(ln.Addr().String())

	cfg := testConfig(t)
	cfg.Server.Port = port
	app, err := New(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer app.Stop()

	err = app.Start()
	if err == nil || !strings.Contains(err.Error(), "start http server") {
		t.Fatalf("expected bind error, got %v", err)
	}
	if app.services.Ready() {
		t.Fatal("stores must not load when the server cannot bind")
	}
}

func TestOpenStoreSQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.Path = filepath.Join(t.TempDir(), "emoheal.db")

	store, err := openStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*database.Repository); !ok {
		t.Fatalf("expected sqlite repository, got %T", store)
	}
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "etcd"
	if _, err := openStore(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestSetupCronJobs(t *testing.T) {
	cfg := testConfig(t)
	sm := services.NewServiceManager(database.NewMemoryStore(), logger.Nop(), services.Options{})
	app := &Application{config: cfg, log: logger.Nop(), services: sm, cron: cron.New()}

	if err := app.setupCronJobs(); err != nil {
		t.Fatalf("setupCronJobs: %v", err)
	}
	if got := len(app.cron.Entries()); got != 3 {
		t.Fatalf("expected 3 jobs, got %d", got)
	}

	cfg.Schedule.Quote = "every morning"
	app.cron = cron.New()
	err := app.setupCronJobs()
	if err == nil || !strings.Contains(err.Error(), "daily quote") {
		t.Fatalf("expected daily quote schedule error, got %v", err)
	}
}
