package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"RoboAdvisor/internal/assumptions"
	"RoboAdvisor/internal/catalog"
	"RoboAdvisor/internal/config"
	"RoboAdvisor/internal/goals"
	"RoboAdvisor/internal/httpapi"
	"RoboAdvisor/internal/notifier"
	"RoboAdvisor/internal/projection"
	"RoboAdvisor/internal/scheduler"
	"RoboAdvisor/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] RoboAdvisor starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	tables, err := assumptions.Load(cfg.Assumptions.Path)
	if err != nil {
		log.Fatalf("[FATAL] load assumptions: %v", err)
	}
	log.Printf("[INFO] assumption tables baseline: %s", tables.BaselineAsOf())

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init catalog
	var src catalog.Source
	if cfg.Catalog.URL != "" {
		src = catalog.NewHTTPSource(cfg.Catalog.URL, cfg.Proxy)
	} else {
		src = &catalog.FileSource{Path: cfg.Catalog.Path}
	}
	log.Printf("[INFO] catalog source: %s", src.Name())
	cm, err := catalog.NewManager(ctx, src, cfg.Catalog.SnapshotFile)
	if err != nil {
		log.Fatalf("[FATAL] init catalog: %v", err)
	}

	// Init goal store
	var st store.Store
	if cfg.Database.SQLitePath != "" {
		ss, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite store failed, goals kept in memory: %v", err)
			st = store.NewMemoryStore()
		} else {
			st = ss
		}
	} else {
		st = store.NewMemoryStore()
	}
	defer st.Close()

	// Init mailer
	var mailer goals.Mailer
	if cfg.MailEnabled() {
		mailer = notifier.NewSMTPNotifier(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		log.Printf("[INFO] email delivery via %s:%d", cfg.SMTP.Host, cfg.SMTP.Port)
	} else {
		log.Println("[INFO] smtp not configured, goal emails disabled")
	}

	svc := goals.NewService(st, projection.NewEngine(tables), cm, mailer)
	svc.MailRetries = cfg.SMTP.MaxRetries

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, cm)
	if err := sched.RegisterAll(cfg.Catalog.RefreshCron, cfg.Catalog.AuditCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, auditing catalog now")
		go sched.AuditNow()
	}

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           httpapi.New(tables, cm, svc, st).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Printf("[INFO] RoboAdvisor listening on %s", cfg.Server.ListenAddr)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[ERROR] http server: %v", err)
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	cancel()
	log.Println("[INFO] RoboAdvisor stopped")
}
