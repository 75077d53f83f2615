// Package tray provides a macOS system tray interface for the Hasta hand tracking system.
package tray

import (
	"strconv"
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the macOS system tray application.
type Tray struct {
	onToggle    func(enabled bool)
	onCalibrate func()
	onAdvance   func()
	onReset     func()
	onSettings  func()
	onQuit      func()
	enabled     bool
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuToggle    *systray.MenuItem
	menuStability *systray.MenuItem
	menuProfile   *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnCalibrate sets the callback function to be called when the calibrate menu item is clicked.
func (t *Tray) OnCalibrate(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onCalibrate = fn
}

// OnAdvance sets the callback function to be called when the capture step menu item is clicked.
func (t *Tray) OnAdvance(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onAdvance = fn
}

// OnReset sets the callback function to be called when the reset calibration menu item is clicked.
func (t *Tray) OnReset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	// Set the tray title and tooltip
	systray.SetTitle("Hasta")
	systray.SetTooltip("Hasta Hand Tracking")

	// Create menu items
	t.menuToggle = systray.AddMenuItem("● Tracking", "Toggle hand tracking")
	systray.AddSeparator()

	t.menuStability = systray.AddMenuItem("Stability: --", "Current hand stability score")
	t.menuStability.Disable()
	t.menuProfile = systray.AddMenuItem("Profile: none", "Active calibration profile")
	t.menuProfile.Disable()
	systray.AddSeparator()

	menuCalibrate := systray.AddMenuItem("Calibrate...", "Start guided calibration")
	menuAdvance := systray.AddMenuItem("Capture Step", "Capture the current calibration step")
	menuReset := systray.AddMenuItem("Reset Calibration", "Abort the calibration run")
	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Hasta")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuCalibrate.ClickedCh:
				t.handleCalibrate()
			case <-menuAdvance.ClickedCh:
				t.handleAdvance()
			case <-menuReset.ClickedCh:
				t.handleReset()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
// It performs cleanup tasks.
func (t *Tray) onExit() {
	// Cleanup resources if needed
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	// Update menu item text based on new state
	if enabled {
		t.menuToggle.SetTitle("● Tracking")
	} else {
		t.menuToggle.SetTitle("○ Paused")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleCalibrate handles the calibrate menu item click.
func (t *Tray) handleCalibrate() {
	t.mu.RLock()
	callback := t.onCalibrate
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleAdvance handles the capture step menu item click.
func (t *Tray) handleAdvance() {
	t.mu.RLock()
	callback := t.onAdvance
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleReset handles the reset calibration menu item click.
func (t *Tray) handleReset() {
	t.mu.RLock()
	callback := t.onReset
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetStability updates the stability score display in the menu.
func (t *Tray) SetStability(score int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuStability != nil {
		t.menuStability.SetTitle("Stability: " + strconv.Itoa(score))
	}
}

// SetProfile updates the active profile display in the menu.
func (t *Tray) SetProfile(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuProfile != nil {
		if name == "" {
			t.menuProfile.SetTitle("Profile: none")
		} else {
			t.menuProfile.SetTitle("Profile: " + name)
		}
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
