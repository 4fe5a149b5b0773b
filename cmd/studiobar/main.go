// Package main is the entry point for the studiobar menu-bar app.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/watchfire-io/studiobar/internal/app"
	"github.com/watchfire-io/studiobar/internal/buildinfo"
	"github.com/watchfire-io/studiobar/internal/config"
	"github.com/watchfire-io/studiobar/internal/models"
	"github.com/watchfire-io/studiobar/internal/tray"
)

func main() {
	foreground := flag.Bool("foreground", false, "Run without the menu-bar icon (for development)")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *version {
		fmt.Println(buildinfo.String())
		return
	}

	log.SetPrefix("[studiobar] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := config.EnsureGlobalDir(); err != nil {
		log.Fatalf("Failed to create global directory: %v", err)
	}
	logFile, err := config.SetupLogFile()
	if err != nil {
		log.Printf("Logging to stderr only: %v", err)
	} else {
		defer logFile.Close()
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	info := models.NewInstanceInfo(os.Getpid(), buildinfo.Version, settings.Metrics.ListenAddr)
	instance, err := config.AcquireInstance(info)
	if errors.Is(err, config.ErrAlreadyRunning) {
		if running, loadErr := config.LoadInstanceInfo(); loadErr == nil && running != nil {
			log.Fatalf("Already running (PID %d)", running.PID)
		}
		log.Fatal("Already running")
	}
	if err != nil {
		log.Fatalf("Failed to acquire instance lock: %v", err)
	}
	defer func() {
		if err := instance.Release(); err != nil {
			log.Printf("Failed to release instance lock: %v", err)
		}
	}()

	a := app.New(settings)

	if *foreground {
		log.Println("Running in foreground mode (no menu-bar icon)")
		runForeground(a)
	} else {
		runWithTray(a)
	}
	fmt.Println("studiobar stopped")
}

// runForeground runs the monitor without a tray, blocking on signals.
func runForeground(a *app.App) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Start(ctx)

	snapshots, unsubscribe := a.Monitor().Subscribe()
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			log.Println("Shutting down...")
			a.Stop()
			return
		case snap := <-snapshots:
			if snap.HasTarget() {
				log.Printf("%s: %s (%s)", snap.DisplayName, snap.Status, snap.Machine)
			}
		}
	}
}

// runWithTray runs the menu-bar icon on the main goroutine.
// systray.Run must occupy the main goroutine on macOS (Cocoa requirement).
func runWithTray(a *app.App) {
	ctx, cancel := context.WithCancel(context.Background())

	onStart := func() {
		a.Start(ctx)

		// Quit the tray on SIGINT/SIGTERM, including RequestShutdown.
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-sigCh:
				log.Printf("Received signal %v, shutting down...", sig)
				tray.Quit()
			case <-ctx.Done():
			}
		}()
	}

	onExit := func() {
		cancel()
		a.Stop()
	}

	// This blocks the main goroutine until the tray exits.
	tray.Run(a.Monitor(), a, onStart, onExit)
}
