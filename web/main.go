package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/df07/go-parallel-pathtracer/pkg/config"
	"github.com/df07/go-parallel-pathtracer/pkg/logger"
	"github.com/df07/go-parallel-pathtracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	scenesDir := flag.String("scenes", "scenes", "Directory of YAML scene files")
	staticDir := flag.String("static", "static", "Directory of static web assets")
	envPath := flag.String("env", ".env", "Environment file with RAYTRACER_* overrides")
	flag.Parse()

	log := logger.NewLogger("info")
	if err := config.LoadEnvFile(*envPath); err != nil {
		log.Fatalf("%v", err)
	}
	if level, ok := os.LookupEnv("RAYTRACER_LOG_LEVEL"); ok {
		log.SetLevel(level)
	}

	webServer := server.NewServer(*port, *scenesDir, *staticDir, log)

	log.Infof("Parallel Path Tracer Web Server")
	log.Infof("Visit http://localhost:%d to start rendering", *port)

	go func() {
		if err := webServer.Start(); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Shutdown failed: %v", err)
	}
	log.Infof("Server stopped")
}
