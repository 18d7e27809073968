package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"VIGIL_CONFIG_FILE", "VIGIL_ENV_FILE", "VIGIL_URL", "VIGIL_TOKEN", "VIGIL_PROBE_ID",
		"VIGIL_NODE_ID", "VIGIL_REPLICA_ID", "VIGIL_INTERVAL", "VIGIL_LOG_LEVEL",
		"VIGIL_LOG_FORMAT", "VIGIL_LISTEN_ADDR",
	} {
		t.Setenv(key, "")
	}
}

// unsetEnv removes keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func TestLoadMergesFileEnvAndFlags(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	cfgFile := filepath.Join(tmpDir, "config.yaml")
	err := os.WriteFile(cfgFile, []byte(`
url: http://status.example.com/
token: file-token
probeId: relay
nodeId: socket-client
intervalSeconds: 10
logLevel: debug
`), 0o644)
	if err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("VIGIL_CONFIG_FILE", cfgFile)
	t.Setenv("VIGIL_TOKEN", "env-token")
	t.Setenv("VIGIL_INTERVAL", "15")

	cfg, err := LoadArgs([]string{"--replica-id", "192.168.1.10", "--log-format", "text"})
	if err != nil {
		t.Fatalf("LoadArgs() error = %v", err)
	}

	if cfg.URL != "http://status.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.URL)
	}
	if cfg.Token != "env-token" {
		t.Fatalf("expected env token, got %s", cfg.Token)
	}
	if cfg.ProbeID != "relay" || cfg.NodeID != "socket-client" {
		t.Fatalf("expected file identifiers, got %s/%s", cfg.ProbeID, cfg.NodeID)
	}
	if cfg.ReplicaID != "192.168.1.10" {
		t.Fatalf("expected flag replica, got %s", cfg.ReplicaID)
	}
	if cfg.IntervalSeconds != 15 {
		t.Fatalf("expected interval 15, got %d", cfg.IntervalSeconds)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "text" {
		t.Fatalf("unexpected logging config %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("VIGIL_URL", "http://env.example.com")
	t.Setenv("VIGIL_TOKEN", "t")
	t.Setenv("VIGIL_PROBE_ID", "env-probe")
	t.Setenv("VIGIL_NODE_ID", "n")

	cfg, err := LoadArgs([]string{"-probe-id", "flag-probe", "-interval", "60"})
	if err != nil {
		t.Fatalf("LoadArgs() error = %v", err)
	}
	if cfg.ProbeID != "flag-probe" {
		t.Fatalf("expected flag probe, got %s", cfg.ProbeID)
	}
	if cfg.Interval().Seconds() != 60 {
		t.Fatalf("expected 60s interval, got %s", cfg.Interval())
	}
	if cfg.ReplicaID == "" {
		t.Fatalf("expected replica id default")
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	err := os.WriteFile(envFile, []byte("VIGIL_URL=http://dotenv.example.com\nVIGIL_TOKEN=dotenv-token\nVIGIL_PROBE_ID=p\nVIGIL_NODE_ID=n\n"), 0o600)
	if err != nil {
		t.Fatalf("write env file: %v", err)
	}
	// godotenv skips variables that exist, even empty ones
	unsetEnv(t, "VIGIL_URL", "VIGIL_TOKEN", "VIGIL_PROBE_ID", "VIGIL_NODE_ID")

	cfg, err := LoadArgs([]string{"-env-file", envFile})
	if err != nil {
		t.Fatalf("LoadArgs() error = %v", err)
	}
	if cfg.URL != "http://dotenv.example.com" || cfg.Token != "dotenv-token" {
		t.Fatalf("expected env file values, got %+v", cfg)
	}
}

func TestLoadRejectsIncompleteConfig(t *testing.T) {
	clearEnv(t)
	_, err := LoadArgs([]string{"-interval", "0"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"url", "token", "probe id", "node id", "interval"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in error %q", want, err.Error())
		}
	}
}

func TestDefaultInterval(t *testing.T) {
	if got := (Config{}).Interval(); got.Seconds() != 30 {
		t.Fatalf("expected 30s default, got %s", got)
	}
}
