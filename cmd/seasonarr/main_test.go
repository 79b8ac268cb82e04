package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"config", "init", "--path", target})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[sonarr]") {
		t.Fatalf("sample config missing sonarr section:\n%s", data)
	}

	// A second init without --overwrite must refuse.
	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("second init overwrote existing config")
	}
}

func TestParseShowID(t *testing.T) {
	if _, err := parseShowID("abc"); err == nil {
		t.Error("non-numeric id accepted")
	}
	if _, err := parseShowID("-3"); err == nil {
		t.Error("negative id accepted")
	}
	id, err := parseShowID(" 42 ")
	if err != nil || id != 42 {
		t.Errorf("parseShowID(42) = %d, %v", id, err)
	}
}

func TestConfigShowRedactsAPIKey(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.toml")
	conf := "[paths]\ndata_dir = \"" + dir + "\"\nlog_dir = \"" + dir + "\"\nimage_cache_dir = \"" + dir + "\"\n" +
		"[sonarr]\nurl = \"http://localhost:8989\"\napi_key = \"super-secret\"\n"
	if err := os.WriteFile(target, []byte(conf), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", target, "config", "show"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config show: %v", err)
	}

	rendered := out.String()
	if strings.Contains(rendered, "super-secret") {
		t.Fatalf("api key leaked:\n%s", rendered)
	}
	if !strings.Contains(rendered, "<redacted>") {
		t.Fatalf("api key not redacted:\n%s", rendered)
	}

	cmd = newRootCommand()
	out.Reset()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", target, "config", "validate"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out.String(), "is valid") {
		t.Fatalf("validate output = %q", out.String())
	}
}
