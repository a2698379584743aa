package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"trena/internal/cfg"
	"trena/internal/connector"
	"trena/internal/store"
	"trena/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to config")
	flag.Parse()

	actualConfigPath := *configPath
	if actualConfigPath == "" {
		actualConfigPath = "./trena.json"
	}

	c := cfg.Load(actualConfigPath)

	db, err := store.Open(c.DBPath)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close()
	if err := store.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	if err := db.EnsureInitialUser(c.AuthUser, c.AuthPass); err != nil {
		log.Fatalf("auth bootstrap: %v", err)
	}

	conn := connector.New(connector.Config{
		SourceDir:                  c.SourceDir,
		ScanSubDirectories:         c.ScanSubDirs,
		ExtractArchiveFiles:        c.ExtractArchives,
		DeleteArchivesAfterExtract: c.DeleteArchivesAfterExtract,
		DetectSportTypeWhenUnknown: c.DetectSportTypeWhenUnknown,
		Athlete:                    c.History(),
	}, db)

	// Context that cancels on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start background polling only if enabled
	if c.PollMs > 0 {
		go conn.Run(ctx, time.Duration(c.PollMs)*time.Millisecond)
	}

	// Start HTTP server
	srv := web.New(c, db, conn)
	go func() {
		log.Printf("http: listening on %s", c.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err.Error() != "http: Server closed" {
			log.Printf("http: %v", err)
		}
	}()

	// Wait for Ctrl-C
	<-ctx.Done()
	log.Printf("shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	log.Printf("bye")
}
