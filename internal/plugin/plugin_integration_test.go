package plugin

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// TestPlugin_EventFlow exercises the full discover -> subscribe -> execute
// path with a scripted plugin.
func TestPlugin_EventFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	tmpDir, err := os.MkdirTemp("", "hasta-plugin-flow-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	pluginDir := filepath.Join(tmpDir, "logger")
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}

	// A plugin that appends its payload to a file and reports success
	outPath := filepath.Join(tmpDir, "out.log")
	scriptContent := `#!/bin/sh
cat >> ` + outPath + `
echo '{"success":true}'
`
	scriptPath := filepath.Join(pluginDir, "logger.sh")
	if err := os.WriteFile(scriptPath, []byte(scriptContent), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	manifest := Manifest{
		Name:       "logger",
		Version:    "1.0.0",
		Executable: "logger.sh",
		Events:     []string{EventCalibrationComplete},
	}
	manifestBytes, _ := json.Marshal(manifest)
	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), manifestBytes, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	mgr := NewManager(tmpDir)
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	subs := mgr.Subscribers(EventCalibrationComplete)
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscriber, got %d", len(subs))
	}

	executor := NewExecutor(5000)
	req := &Request{
		Event:   EventCalibrationComplete,
		Payload: json.RawMessage(`{"base_hand_size":187.5}`),
	}

	resp, err := executor.Execute(subs[0], req)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !resp.Success {
		t.Errorf("expected success, got error %q", resp.Error)
	}

	// Verify the payload reached the plugin
	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read plugin output: %v", err)
	}
	if !strings.Contains(string(out), "base_hand_size") {
		t.Errorf("plugin output missing payload: %s", out)
	}
}

// TestPlugin_ThresholdLogger_Manifest verifies the bundled sample plugin
// manifest is discoverable.
func TestPlugin_ThresholdLogger_Manifest(t *testing.T) {
	pluginDir := findPluginDir("threshold-logger")
	if pluginDir == "" {
		t.Skip("threshold-logger plugin not present")
	}

	mgr := NewManager(filepath.Dir(pluginDir))
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	plug, err := mgr.Get("threshold-logger")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if !plug.Subscribes(EventCalibrationComplete) {
		t.Error("threshold-logger should subscribe to calibration.complete")
	}
}

func findPluginDir(name string) string {
	candidates := []string{
		filepath.Join("../../plugins", name),
		filepath.Join("../../../plugins", name),
	}

	for _, dir := range candidates {
		manifest := filepath.Join(dir, "plugin.json")
		if _, err := os.Stat(manifest); err == nil {
			return dir
		}
	}
	return ""
}
