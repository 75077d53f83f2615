// Package plugin provides plugin management and execution capabilities for the Hasta hand tracking system.
package plugin

import "encoding/json"

// Event names delivered to plugins.
const (
	// EventCalibrationComplete fires when a calibration run derives thresholds.
	EventCalibrationComplete = "calibration.complete"
	// EventHandStable fires when a tracked hand transitions to stable.
	EventHandStable = "hand.stable"
)

// Manifest describes a plugin's metadata and the events it subscribes to.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Events       []string        `json:"events"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request represents an event notification sent to a plugin for execution.
type Request struct {
	Event   string          `json:"event"`
	Config  json.RawMessage `json:"config"`
	Payload json.RawMessage `json:"payload"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Subscribes reports whether the plugin's manifest lists the given event.
func (p *Plugin) Subscribes(event string) bool {
	for _, e := range p.Manifest.Events {
		if e == event {
			return true
		}
	}
	return false
}
