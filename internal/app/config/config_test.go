package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}

	if cfg.Serial.Port != "/dev/serial0" || cfg.Serial.BaudRate != 115200 {
		t.Fatalf("unexpected serial defaults %+v", cfg.Serial)
	}
	if cfg.Serial.ReadTimeout != time.Second {
		t.Fatalf("expected 1s read timeout, got %s", cfg.Serial.ReadTimeout)
	}
	db := cfg.Database
	if db.Driver != "mysql" || db.Host != "localhost" || db.Port != 3306 {
		t.Fatalf("unexpected database endpoint %+v", db)
	}
	if db.User != "sensoruser" || db.Password != "sensorpass" || db.Name != "sensordb" {
		t.Fatalf("unexpected database credentials %+v", db)
	}
	if db.Charset != "utf8mb4" || db.Table != "water_log" {
		t.Fatalf("unexpected charset/table %s/%s", db.Charset, db.Table)
	}
	if cfg.Policy().ReconnectDelay != 5*time.Second {
		t.Fatalf("expected 5s reconnect delay, got %s", cfg.Policy().ReconnectDelay)
	}
	if cfg.Viewer.Limit != 50 || cfg.Viewer.RefreshInterval != 5*time.Second {
		t.Fatalf("unexpected viewer defaults %+v", cfg.Viewer)
	}
	if cfg.Metrics.Addr != ":9100" {
		t.Fatalf("expected default metrics addr :9100, got %s", cfg.Metrics.Addr)
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := writeConfig(t, `
serial:
  port: /dev/ttyUSB0
database:
  driver: postgres
  name: barrier
viewer:
  limit: 20
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Serial.Port != "/dev/ttyUSB0" || cfg.Serial.BaudRate != 115200 {
		t.Fatalf("unexpected serial config %+v", cfg.Serial)
	}
	if cfg.Database.Port != 5432 {
		t.Fatalf("expected postgres default port, got %d", cfg.Database.Port)
	}
	if cfg.Database.User != "sensoruser" || cfg.Database.Name != "barrier" {
		t.Fatalf("unexpected database config %+v", cfg.Database)
	}
	if cfg.Viewer.Limit != 20 || cfg.Viewer.RefreshInterval != 5*time.Second {
		t.Fatalf("unexpected viewer config %+v", cfg.Viewer)
	}
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("FLOODBARRIER_DB_PASSWORD", "s3cret")
	path := writeConfig(t, `
database:
  password: ${FLOODBARRIER_DB_PASSWORD}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Database.Password != "s3cret" {
		t.Fatalf("expected expanded password, got %q", cfg.Database.Password)
	}
}

func TestLoadKeepsLiteralDollarSigns(t *testing.T) {
	t.Setenv("FLOODBARRIER_DB_USER", "barrier")
	path := writeConfig(t, `
database:
  user: ${FLOODBARRIER_DB_USER}
  password: "pa$$word$HOME"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Database.Password != "pa$$word$HOME" {
		t.Fatalf("expected password to be kept verbatim, got %q", cfg.Database.Password)
	}
	if cfg.Database.User != "barrier" {
		t.Fatalf("expected expanded user, got %q", cfg.Database.User)
	}
}

func TestLoadDerivesPortFromDriver(t *testing.T) {
	cases := []struct {
		yaml string
		want int
	}{
		{"database:\n  driver: postgres\n", 5432},
		{"database:\n  driver: mysql\n", 3306},
		{"database:\n  driver: postgres\n  port: 6543\n", 6543},
		{"serial:\n  port: /dev/ttyAMA0\n", 3306},
	}

	for _, tc := range cases {
		cfg, err := Load(writeConfig(t, tc.yaml))
		if err != nil {
			t.Fatalf("load %q: %v", tc.yaml, err)
		}
		if cfg.Database.Port != tc.want {
			t.Fatalf("load %q: expected port %d, got %d", tc.yaml, tc.want, cfg.Database.Port)
		}
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown driver", "database:\n  driver: oracle\n", "database.driver"},
		{"bad table", "database:\n  table: \"water log; drop\"\n", "table"},
		{"viewer limit", "viewer:\n  limit: 20000\n", "viewer.limit"},
		{"bad log format", "log:\n  format: xml\n", "log.format"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
