package plugins

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindPlugin_NotFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := FindPlugin("nonexistent-plugin-xyz")
	if err != ErrPluginNotFound {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestFindPlugin_InPluginsDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	pluginsDir, err := Dir()
	if err != nil {
		t.Fatalf("cannot get plugins directory: %v", err)
	}
	if err := os.MkdirAll(pluginsDir, 0755); err != nil {
		t.Fatalf("failed to create plugins dir: %v", err)
	}

	// Create a fake plugin
	pluginPath := filepath.Join(pluginsDir, "crashlog-testplugin")
	if err := os.WriteFile(pluginPath, []byte("#!/bin/sh\necho test"), 0755); err != nil {
		t.Fatalf("failed to create test plugin: %v", err)
	}

	found, err := FindPlugin("testplugin")
	if err != nil {
		t.Errorf("expected to find plugin, got error: %v", err)
	}
	if found != pluginPath {
		t.Errorf("expected %s, got %s", pluginPath, found)
	}
}

func TestFindPlugin_InPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	binDir := t.TempDir()
	pluginPath := filepath.Join(binDir, "crashlog-pathplugin")
	if err := os.WriteFile(pluginPath, []byte("#!/bin/sh\nexit 0"), 0755); err != nil {
		t.Fatalf("failed to create test plugin: %v", err)
	}
	t.Setenv("PATH", binDir)

	found, err := FindPlugin("pathplugin")
	if err != nil {
		t.Fatalf("expected to find plugin, got error: %v", err)
	}
	if found != pluginPath {
		t.Errorf("expected %s, got %s", pluginPath, found)
	}
}

func TestExecute_ExitCode(t *testing.T) {
	dir := t.TempDir()
	pluginPath := filepath.Join(dir, "crashlog-exit")
	if err := os.WriteFile(pluginPath, []byte("#!/bin/sh\nexit 3\n"), 0755); err != nil {
		t.Fatalf("failed to create test plugin: %v", err)
	}

	if code := Execute(pluginPath, nil); code != 3 {
		t.Errorf("Execute() = %d, want 3", code)
	}
}

func TestFormatNotFoundError(t *testing.T) {
	err := FormatNotFoundError("store")

	if !strings.Contains(err, `unknown command "store"`) {
		t.Error("expected error to contain the command")
	}
	if !strings.Contains(err, "crashlog-store") {
		t.Error("expected error to mention crashlog-store")
	}
	if !strings.Contains(err, "~/.crashlog/plugins/") {
		t.Error("expected error to mention the plugins directory")
	}
}

func TestIsExecutable(t *testing.T) {
	tmpDir := t.TempDir()

	// Non-executable file
	nonExec := filepath.Join(tmpDir, "nonexec")
	if err := os.WriteFile(nonExec, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	if isExecutable(nonExec) {
		t.Error("non-executable file should not be detected as executable")
	}

	// Executable file
	exec := filepath.Join(tmpDir, "exec")
	if err := os.WriteFile(exec, []byte("test"), 0755); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	if !isExecutable(exec) {
		t.Error("executable file should be detected as executable")
	}

	// Directories are never plugins
	if isExecutable(tmpDir) {
		t.Error("directory should not be detected as executable")
	}

	// Non-existent file
	if isExecutable(filepath.Join(tmpDir, "nonexistent")) {
		t.Error("non-existent file should not be detected as executable")
	}
}
