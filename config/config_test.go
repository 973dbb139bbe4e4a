package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != "0.0.0.0:80" || cfg.Navigation != NavigationContinuous || cfg.DBDriver != "sqlite3" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Url() != "http://localhost:80" {
		t.Errorf("Url() = %s", cfg.Url())
	}
	if cfg.DSN() != "file:survey.sqlite?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate" {
		t.Errorf("DSN() = %s", cfg.DSN())
	}
}

func TestParseFlagsFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.yaml")
	err := os.WriteFile(path, []byte(`
port: 8080
db_driver: postgres
db_url: postgres://survey@localhost/survey?sslmode=disable
navigation: per-set
cors_origins: [http://localhost:3000]
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := ParseFlags([]string{"-config", path, "-port", "9090", "-cors-origins", "http://a, http://b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9090 || cfg.Addr != "0.0.0.0:9090" {
		t.Errorf("flag must override the file, got port %d", cfg.Port)
	}
	if cfg.Navigation != NavigationPerSet || cfg.DBDriver != "postgres" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.DSN() != "postgres://survey@localhost/survey?sslmode=disable" {
		t.Errorf("DSN() = %s", cfg.DSN())
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"http://a", "http://b"}) {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestParseFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown driver", []string{"-db-driver", "oracle"}},
		{"unknown navigation", []string{"-navigation", "random"}},
		{"empty db url", []string{"-db-url", ""}},
		{"missing config file", []string{"-config", "does-not-exist.yaml"}},
		{"unknown flag", []string{"-nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
