package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskdeck.org/internal/audit"
	"taskdeck.org/internal/auth"
	"taskdeck.org/internal/directory"
	"taskdeck.org/internal/httpapi"
	"taskdeck.org/internal/obs"
	"taskdeck.org/internal/store/pg"
	"taskdeck.org/internal/task"
)

var version = "0.3.1"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("TASKDECK_COMMIT"))

	dsn := os.Getenv("TASKDECK_PG_DSN")
	if dsn == "" {
		log.Fatal("TASKDECK_PG_DSN is required")
	}
	store, err := pg.Open(dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	recorder, err := audit.NewRecorder(store)
	if err != nil {
		log.Fatalf("audit recorder: %v", err)
	}

	dir, err := directory.New(store)
	if err != nil {
		log.Fatalf("directory: %v", err)
	}
	tasks, err := task.NewService(store, dir, recorder)
	if err != nil {
		log.Fatalf("task service: %v", err)
	}
	login, err := auth.NewService(store, recorder)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: store.DB()}, version, tasks, login)

	addr := os.Getenv("TASKDECK_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting taskdeck-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	_ = store.Close()
	log.Println("Stopped")
}
