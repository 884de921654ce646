package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/northstar-io/northstar/internal/coach"
	"github.com/northstar-io/northstar/internal/config"
	"github.com/northstar-io/northstar/internal/server"
	"github.com/northstar-io/northstar/internal/store"
	"github.com/northstar-io/northstar/internal/watch"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = ""
)

const (
	configWatchDebounce = 500 * time.Millisecond
	browserPollInterval = 100 * time.Millisecond
	browserPollAttempts = 60
	shutdownTimeout     = 5 * time.Second
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			runServe(os.Args[2:])
			return
		case "version", "--version", "-v":
			fmt.Printf("northstar %s (commit %s, built %s)\n",
				version, commit, buildDate)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	runServe(os.Args[1:])
}

func printUsage() {
	fmt.Printf(`northstar %s - personal productivity dashboard

Tracks timed work sessions against your pillars, habit streaks, an
idea freezer, and a task list, served as a local web UI with an
optional AI coach.

Usage:
  northstar [flags]          Start the server (default command)
  northstar serve [flags]    Start the server (explicit)
  northstar version          Show version information
  northstar help             Show this help

Server flags:
  -host string        Host to bind to (default "127.0.0.1")
  -port int           Port to listen on (default 8844)
  -no-browser         Don't open browser on startup

Environment variables:
  NORTHSTAR_DATA_DIR   Data directory (database, config)
  GEMINI_API_KEY       Enables the AI coach

Data is stored in ~/.northstar/ by default.
`, version)
}

func runServe(args []string) {
	cfg := mustLoadConfig(args)
	st := mustOpenStore(cfg)
	defer st.Close()

	c := coach.New(cfg.GeminiAPIKey)
	if !c.Enabled() {
		log.Println("GEMINI_API_KEY not set, AI coach disabled")
	}

	port := server.FindAvailablePort(cfg.Host, cfg.Port)
	if port != cfg.Port {
		fmt.Printf("Port %d in use, using %d\n", cfg.Port, port)
	}
	cfg.Port = port

	srv := server.New(cfg, st, c,
		server.WithVersion(server.VersionInfo{
			Version:   version,
			Commit:    commit,
			BuildDate: buildDate,
		}),
	)

	stopWatcher := startConfigWatcher(&cfg, srv)
	defer stopWatcher()

	url := fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
	fmt.Printf("northstar %s listening at %s\n", version, url)

	if !cfg.NoBrowser {
		go openBrowser(url)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigCh:
		log.Printf("Received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(
			context.Background(), shutdownTimeout,
		)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}
}

func mustLoadConfig(args []string) config.Config {
	fs := flag.NewFlagSet("northstar", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			"Usage: northstar [serve] [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	config.RegisterServeFlags(fs)
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("creating data dir: %v", err)
	}
	return cfg
}

func mustOpenStore(cfg config.Config) *store.Store {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	return st
}

// startConfigWatcher reloads pillar targets when the config file
// changes, so edited targets show up without a restart.
func startConfigWatcher(
	cfg *config.Config, srv *server.Server,
) func() {
	onChange := func() {
		if err := cfg.ReloadTargets(); err != nil {
			log.Printf("warning: reloading config: %v", err)
			return
		}
		srv.SetPillarTargets(cfg.Pillars, cfg.QuarterTargets)
		log.Println("Config reloaded")
	}

	watcher, err := watch.New(
		cfg.ConfigPath(), configWatchDebounce, onChange,
	)
	if err != nil {
		log.Printf("warning: config watcher unavailable: %v", err)
		return func() {}
	}
	watcher.Start()
	return watcher.Stop
}

func openBrowser(url string) {
	for range browserPollAttempts {
		time.Sleep(browserPollInterval)
		resp, err := http.Get(url + "/api/v1/version")
		if err == nil {
			resp.Body.Close()
			break
		}
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32",
			"url.dll,FileProtocolHandler", url)
	default:
		return
	}
	_ = cmd.Run()
}
