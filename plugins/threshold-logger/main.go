// Package main provides a sample plugin that appends calibration results
// to a log file. It demonstrates the stdin/stdout plugin protocol.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Request represents the input from the plugin executor.
type Request struct {
	Event   string          `json:"event"`
	Config  json.RawMessage `json:"config"`
	Payload json.RawMessage `json:"payload"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config defines the plugin configuration.
type Config struct {
	LogPath string `json:"log_path"`
}

func main() {
	// Read request from stdin
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	switch req.Event {
	case "calibration.complete":
		if err := logThresholds(req.Config, req.Payload); err != nil {
			writeErrorResponse(fmt.Sprintf("event %s failed: %v", req.Event, err))
			return
		}
	default:
		writeErrorResponse(fmt.Sprintf("unknown event: %s", req.Event))
		return
	}

	// Write success response
	writeSuccessResponse()
}

// logThresholds appends the calibration payload to the configured log file.
func logThresholds(config, payload json.RawMessage) error {
	path, err := logPath(config)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s\n", time.Now().Format(time.RFC3339), string(payload))
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to write log entry: %w", err)
	}

	return nil
}

// logPath resolves the log file path from the plugin config, defaulting
// to ~/.hasta/thresholds.log.
func logPath(config json.RawMessage) (string, error) {
	var c Config
	if len(config) > 0 {
		if err := json.Unmarshal(config, &c); err != nil {
			return "", fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if c.LogPath != "" {
		return c.LogPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".hasta", "thresholds.log"), nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	resp := Response{
		Success: true,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
