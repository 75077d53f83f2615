package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/hasta/internal/app"
	"github.com/ayusman/hasta/internal/server"
	"github.com/ayusman/hasta/internal/store"
	"github.com/ayusman/hasta/internal/tray"
)

func main() {
	fmt.Println("Hasta - Hand Tracking and Calibration")

	// Initialize the store
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".hasta")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "hasta.db")
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Initialize the tracking application
	a := app.New(app.Config{
		Store:     st,
		PluginDir: filepath.Join(dataDir, "plugins"),
		CameraID:  0,
	})

	if err := a.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	if err := a.LoadActiveProfile(); err != nil {
		log.Printf("Failed to load active profile: %v", err)
	}

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	// Configure and start the server
	cfg := server.Config{
		StaticDir:   webDir,
		Store:       st,
		Camera:      a.Camera(),
		Detector:    a.Detector(),
		Calibration: a,
	}

	srv := server.New(cfg)

	addr := ":8080"
	go func() {
		fmt.Printf("Starting server on %s\n", addr)
		if err := srv.ListenAndServe(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Start the tracking pipeline
	if err := a.Start(); err != nil {
		log.Printf("Failed to start tracking pipeline: %v", err)
	}
	a.SetEnabled(true)

	// Run the system tray on the main thread
	t := tray.New()
	t.OnToggle(func(enabled bool) {
		a.SetEnabled(enabled)
	})
	t.OnCalibrate(func() {
		progress := a.StartCalibration()
		log.Println(progress.Message)
	})
	t.OnAdvance(func() {
		progress, result := a.AdvanceCalibration()
		if result != nil {
			log.Println(result.Message)
			return
		}
		log.Println(progress.Message)
	})
	t.OnReset(func() {
		a.ResetCalibration()
		log.Println("Calibration reset")
	})
	a.OnCalibrated(func(p *store.Profile) {
		if p != nil {
			t.SetProfile(p.Name)
		}
	})
	t.OnQuit(func() {
		a.Stop()
	})

	// Refresh the stability readout once a second
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for range ticker.C {
			t.SetStability(a.StabilityScore())
		}
	}()

	t.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.hasta/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".hasta", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
