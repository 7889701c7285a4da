package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/gatehouse-io/gatehouse/internal/config"
	dbpkg "github.com/gatehouse-io/gatehouse/internal/db"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/notify"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/photoref"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/service"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store/memory"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store/sqlite"
	"github.com/gatehouse-io/gatehouse/internal/httpapi"
)

func main() {
	// Best-effort: a missing .env just means plain process env.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "gatehouse-server ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		approvalStore store.ApprovalStore
		grantStore    store.PreApprovalStore
		activeStore   store.ActiveVisitStore
		historyStore  store.VisitHistoryStore
	)

	if cfg.Store == "sqlite" {
		conn, err := dbpkg.Open(ctx, dbpkg.Config{Path: cfg.DBPath, Env: cfg.Env})
		if err != nil {
			logger.Fatalf("open db: %v", err)
		}
		defer conn.Close()

		writer := dbpkg.NewWorker(conn)
		defer writer.Close()

		approvalStore = sqlite.NewApprovalStore(conn, writer)
		grantStore = sqlite.NewPreApprovalStore(conn, writer)
		activeStore = sqlite.NewActiveVisitStore(conn, writer)
		historyStore = sqlite.NewVisitHistoryStore(conn, writer)
	} else {
		approvalStore = memory.NewApprovalStore()
		grantStore = memory.NewPreApprovalStore()
		activeStore = memory.NewActiveVisitStore()
		historyStore = memory.NewVisitHistoryStore()
	}

	// Services
	ledger := service.NewApprovalLedger(approvalStore, cfg.ApprovalTTL, nil)
	grants := service.NewPreApprovalRegistry(grantStore, nil)
	visits := service.NewVisitTracker(activeStore, historyStore, nil)

	// Outbound delivery is a deployment concern; without a provider wired
	// in, every message lands in the log.
	notifier := notify.NewLogNotifier(logger)
	photos := &photoref.Resolver{BaseURL: cfg.PhotoBaseURL}

	coordinator := service.NewCoordinator(
		ledger, grants, visits, notifier, photos,
		service.CoordinatorConfig{HostPrefix: cfg.HostPrefix},
		logger, nil,
	)

	pruner := service.NewRetentionPruner(approvalStore, historyStore, service.PrunerConfig{
		RetentionDays: cfg.RetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
	}, logger)
	pruner.Start(ctx)
	defer pruner.Stop()

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:      logger,
		Addr:        cfg.HTTPAddr,
		Coordinator: coordinator,
	})

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
