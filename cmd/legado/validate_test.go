package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// executeCmd runs the root command with args and returns captured output.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "legado.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestRunValidate_ValidConfig(t *testing.T) {
	storage := filepath.Join(t.TempDir(), "nested", "state.json")
	path := writeConfig(t, `
port: 8181
title: Legado Outlet
storage_path: `+storage+`
probe:
  url: https://example.com/ping
  interval: 15s
`)

	output, err := executeCmd(t, "validate", "-c", path)
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}

	expectedPhrases := []string{
		"Config is valid!",
		"Port:     8181",
		"Title:    Legado Outlet",
		"Storage:  " + storage,
		"Probe:    https://example.com/ping every 15s",
		"products in",
	}
	for _, phrase := range expectedPhrases {
		if !strings.Contains(output, phrase) {
			t.Errorf("output missing %q\nGot: %s", phrase, output)
		}
	}

	if _, err := os.Stat(filepath.Dir(storage)); !os.IsNotExist(err) {
		t.Errorf("validate created the storage directory, stat error = %v", err)
	}
}

func TestRunValidate_Defaults(t *testing.T) {
	output, err := executeCmd(t, "validate", "-c", writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}
	for _, phrase := range []string{"Port:     8080", "Storage:  memory", "Probe:    disabled"} {
		if !strings.Contains(output, phrase) {
			t.Errorf("output missing %q\nGot: %s", phrase, output)
		}
	}
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	path := writeConfig(t, `
port: 8080
whatsapp_number: "+54 260"
`)

	_, err := executeCmd(t, "validate", "-c", path)
	if err == nil {
		t.Fatal("validate command expected error for invalid config, got nil")
	}
	if !strings.Contains(err.Error(), "digits only") {
		t.Errorf("error should mention 'digits only', got: %v", err)
	}
}

func TestRunValidate_BadCatalog(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(catalogPath, []byte("products: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := writeConfig(t, "catalog_file: "+catalogPath+"\n")

	if _, err := executeCmd(t, "validate", "-c", path); err == nil {
		t.Fatal("validate command expected error for broken catalog, got nil")
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	_, err := executeCmd(t, "validate", "-c", "/nonexistent/path/legado.yaml")
	if err == nil {
		t.Fatal("validate command expected error for missing file, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read") {
		t.Errorf("error should mention 'failed to read', got: %v", err)
	}
}

func TestVersion(t *testing.T) {
	output, err := executeCmd(t, "version")
	if err != nil {
		t.Fatalf("version command error = %v", err)
	}
	if !strings.HasPrefix(output, "legado dev") {
		t.Errorf("output = %q, want legado dev prefix", output)
	}
}
