package bootstrap

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	patientservice "helix/contexts/clinical-data/patient-service"
	patientpostgres "helix/contexts/clinical-data/patient-service/adapters/postgres"
	patientapp "helix/contexts/clinical-data/patient-service/application"
	authservice "helix/contexts/identity-access/auth-service"
	authpostgres "helix/contexts/identity-access/auth-service/adapters/postgres"
	analysisrouterservice "helix/contexts/modeling/analysis-router-service"
	analysispostgres "helix/contexts/modeling/analysis-router-service/adapters/postgres"
	analysisapp "helix/contexts/modeling/analysis-router-service/application"
	ensembleservice "helix/contexts/modeling/ensemble-service"
	ensemblepostgres "helix/contexts/modeling/ensemble-service/adapters/postgres"
	explainabilityservice "helix/contexts/modeling/explainability-service"
	explainpostgres "helix/contexts/modeling/explainability-service/adapters/postgres"
	grnservice "helix/contexts/modeling/grn-service"
	grnmemory "helix/contexts/modeling/grn-service/adapters/memory"
	grnpostgres "helix/contexts/modeling/grn-service/adapters/postgres"
	workflowservice "helix/contexts/orchestration/workflow-service"
	"helix/contexts/orchestration/workflow-service/adapters/executors"
	workflowpostgres "helix/contexts/orchestration/workflow-service/adapters/postgres"
	workflowworkers "helix/contexts/orchestration/workflow-service/application/workers"
	streamingservice "helix/contexts/realtime/streaming-service"
	streamingpostgres "helix/contexts/realtime/streaming-service/adapters/postgres"
	"helix/internal/platform/config"
	"helix/internal/platform/db"
	"helix/internal/platform/httpserver"
	"helix/internal/platform/messaging"
	"helix/internal/platform/objectstore"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server       *httpserver.Server
	vitals       streamingservice.Module
	bridgeEnable bool
	postgres     *db.Postgres
	logger       *slog.Logger
}

type WorkerApp struct {
	postgres      *db.Postgres
	workflows     workflowservice.Module
	analysisRelay relayRunner
	ensembleRelay relayRunner
	vitalsRelay   relayRunner
	workflowRelay relayRunner
	relaysEnable  bool
	reaperEnable  bool
	planConsumer  bool
	pollInterval  time.Duration
	logger        *slog.Logger
}

// relayRunner abstracts the per-module outbox relays so the worker loop can
// drive them uniformly.
type relayRunner interface {
	RunOnce(ctx context.Context) error
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	pg, bus, err := connectInfra(cfg, logger)
	if err != nil {
		return nil, err
	}

	modules, err := buildModules(cfg, pg, bus, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	server := httpserver.New(modules, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:       server,
		vitals:       modules.Vitals,
		bridgeEnable: cfg.EnableVitalsBridge,
		postgres:     pg,
		logger:       logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	pg, bus, err := connectInfra(cfg, logger)
	if err != nil {
		return nil, err
	}

	modules, err := buildModules(cfg, pg, bus, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	return &WorkerApp{
		postgres:      pg,
		workflows:     modules.Workflows,
		analysisRelay: modules.Analysis.Relay,
		ensembleRelay: modules.Ensemble.Relay,
		vitalsRelay:   modules.Vitals.Relay,
		workflowRelay: modules.Workflows.Relay,
		relaysEnable:  cfg.EnableOutboxRelays,
		reaperEnable:  cfg.EnableWorkflowReaper,
		planConsumer:  cfg.EnablePlanAutoWorkflow,
		pollInterval:  cfg.SchedulerPollInterval,
		logger:        logger,
	}, nil
}

func connectInfra(cfg config.Config, logger *slog.Logger) (*db.Postgres, *messaging.Bus, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, nil, errors.New("POSTGRES_DSN is required")
	}
	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	bus, err := messaging.NewBus(cfg.Brokers, logger)
	if err != nil {
		_ = pg.Close()
		return nil, nil, err
	}
	return pg, bus, nil
}

func buildModules(cfg config.Config, pg *db.Postgres, bus *messaging.Bus, logger *slog.Logger) (httpserver.Modules, error) {
	authModule := authservice.NewModule(authservice.Dependencies{
		Users:     authpostgres.NewRepository(pg.DB, logger),
		Clock:     authpostgres.SystemClock{},
		IDGen:     authpostgres.UUIDGenerator{},
		JWTSecret: []byte(cfg.JWTSecret),
		TokenTTL:  cfg.TokenTTL,
		Logger:    logger,
	})

	mrnKey, err := hex.DecodeString(cfg.MRNKeyHex)
	if err != nil {
		return httpserver.Modules{}, fmt.Errorf("decode MRN_KEY_HEX: %w", err)
	}
	cipher, err := patientapp.NewMRNCipher(mrnKey)
	if err != nil {
		return httpserver.Modules{}, err
	}

	blobs := objectstore.NewLocal(cfg.ArtifactRoot, logger)
	patientRepo := patientpostgres.NewRepository(pg.DB, logger)
	patientModule := patientservice.NewModule(patientservice.Dependencies{
		Patients:  patientRepo,
		Artifacts: patientRepo,
		Blobs:     blobs,
		Cipher:    cipher,
		Clock:     patientpostgres.SystemClock{},
		IDGen:     patientpostgres.UUIDGenerator{},
		Logger:    logger,
	})

	grnModule := grnservice.NewModule(grnservice.Dependencies{
		Models:  grnpostgres.NewRepository(pg.DB, logger),
		Checker: grnmemory.StubChecker{},
		Clock:   grnpostgres.SystemClock{},
		IDGen:   grnpostgres.UUIDGenerator{},
		Logger:  logger,
	})

	analysisRepo := analysispostgres.NewRepository(pg.DB, logger)
	analysisModule := analysisrouterservice.NewModule(analysisrouterservice.Dependencies{
		Plans:     analysisRepo,
		Outbox:    analysisRepo,
		OutboxLog: analysisRepo,
		Publisher: bus,
		Clock:     analysispostgres.SystemClock{},
		IDGen:     analysispostgres.UUIDGenerator{},
		Logger:    logger,
	})

	ensembleRepo := ensemblepostgres.NewRepository(pg.DB, logger)
	ensembleModule := ensembleservice.NewModule(ensembleservice.Dependencies{
		Predictions: ensembleRepo,
		Routes:      planRouteDirectory{plans: analysisModule.Handler.Plans},
		Outbox:      ensembleRepo,
		OutboxLog:   ensembleRepo,
		Publisher:   bus,
		Clock:       ensemblepostgres.SystemClock{},
		IDGen:       ensemblepostgres.UUIDGenerator{},
		Logger:      logger,
	})

	explainModule := explainabilityservice.NewModule(explainabilityservice.Dependencies{
		Explanations: explainpostgres.NewRepository(pg.DB, logger),
		Attributors:  explainabilityservice.DefaultAttributors(),
		Blobs:        blobs,
		Clock:        explainpostgres.SystemClock{},
		IDGen:        explainpostgres.UUIDGenerator{},
		Logger:       logger,
	})

	streamingRepo := streamingpostgres.NewRepository(pg.DB, logger)
	streamingModule := streamingservice.NewModule(streamingservice.Dependencies{
		Events:         streamingRepo,
		Alerts:         streamingRepo,
		Outbox:         streamingRepo,
		OutboxLog:      streamingRepo,
		Publisher:      bus,
		Bus:            bus,
		Clock:          streamingpostgres.SystemClock{},
		IDGen:          streamingpostgres.UUIDGenerator{},
		WindowSize:     cfg.VitalsWindowSize,
		TrendDeviation: cfg.VitalsTrendDeviation,
		Logger:         logger,
	})

	workflowRepo := workflowpostgres.NewRepository(pg.DB, logger)
	workflowModule := workflowservice.NewModule(workflowservice.Dependencies{
		Workflows:   workflowRepo,
		Idempotency: workflowRepo,
		Outbox:      workflowRepo,
		OutboxLog:   workflowRepo,
		Publisher:   bus,
		Registry:    executors.DefaultRegistry(),
		Bus:         bus,
		Clock:       workflowpostgres.SystemClock{},
		IDGen:       workflowpostgres.UUIDGenerator{},
		Owner:       leaseOwner(),
		LeaseTTL:    cfg.WorkflowLeaseTTL,
		MaxAttempts: cfg.WorkflowMaxAttempts,
		Retry: workflowworkers.RetryPolicy{
			InitialInterval: 5 * time.Second,
			MaxInterval:     2 * time.Minute,
			Multiplier:      2,
		},
		Logger: logger,
	})

	return httpserver.Modules{
		Auth:      authModule,
		Patients:  patientModule,
		GRN:       grnModule,
		Analysis:  analysisModule,
		Ensemble:  ensembleModule,
		Explain:   explainModule,
		Vitals:    streamingModule,
		Workflows: workflowModule,
	}, nil
}

// planRouteDirectory resolves ensemble method weights from the dispatched
// analysis plan instead of a static table.
type planRouteDirectory struct {
	plans analysisapp.Service
}

func (d planRouteDirectory) RoutesForPlan(ctx context.Context, planID string) (map[string]float64, error) {
	plan, err := d.plans.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	weights := make(map[string]float64, len(plan.Routes))
	for _, route := range plan.Routes {
		weights[string(route.Method)] = route.Weight
	}
	return weights, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.bridgeEnable {
		if err := a.vitals.Bridge.Start(ctx); err != nil {
			return err
		}
	}
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.planConsumer {
		if err := w.workflows.PlanConsumer.Start(ctx); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.runTick(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) runTick(ctx context.Context) error {
	if w.reaperEnable {
		if err := w.workflows.Reaper.RunOnce(ctx); err != nil {
			return err
		}
	}
	// Drain every due workflow before sleeping again.
	for {
		claimed, err := w.workflows.Scheduler.RunOnce(ctx)
		if err != nil {
			return err
		}
		if !claimed {
			break
		}
	}
	if w.relaysEnable {
		for _, relay := range []relayRunner{w.analysisRelay, w.ensembleRelay, w.vitalsRelay, w.workflowRelay} {
			if err := relay.RunOnce(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func leaseOwner() string {
	host, err := os.Hostname()
	if err != nil || strings.TrimSpace(host) == "" {
		return "helix-worker"
	}
	return "helix-worker-" + host
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
