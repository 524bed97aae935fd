package config

import (
	"testing"
	"time"
)

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSOrigins: " http://localhost:3000, ,https://dashboard.example.com "}
	if got := cfg.AllowedOrigins(); got != "http://localhost:3000,https://dashboard.example.com" {
		t.Fatalf("AllowedOrigins = %q", got)
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{AppTimezone: "Nowhere/Invalid"}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", cfg.Location())
	}
}

func TestBuildDSN(t *testing.T) {
	cfg := &Config{DBDriver: "mysql", DBUser: "root", DBPassword: "pw", DBHost: "db", DBPort: "3307", DBName: "ventas"}
	if got := cfg.buildDSN(); got != "root:pw@tcp(db:3307)/ventas?parseTime=true&charset=utf8mb4" {
		t.Fatalf("mysql dsn = %q", got)
	}

	cfg.DBDriver = "postgres"
	if got := cfg.buildDSN(); got != "postgres://root:pw@db:3307/ventas?sslmode=disable" {
		t.Fatalf("postgres dsn = %q", got)
	}
}

func TestBuildDSNDefaultPortPerDriver(t *testing.T) {
	cfg := &Config{DBDriver: "mysql", DBUser: "root", DBPassword: "pw", DBHost: "db", DBName: "ventas"}
	if got := cfg.buildDSN(); got != "root:pw@tcp(db:3306)/ventas?parseTime=true&charset=utf8mb4" {
		t.Fatalf("mysql dsn = %q", got)
	}

	cfg.DBDriver = "postgres"
	if got := cfg.buildDSN(); got != "postgres://root:pw@db:5432/ventas?sslmode=disable" {
		t.Fatalf("postgres dsn = %q", got)
	}
}

func TestIsProduction(t *testing.T) {
	if !(&Config{AppEnv: "Production"}).IsProduction() {
		t.Fatal("expected production")
	}
	if (&Config{AppEnv: "development"}).IsProduction() {
		t.Fatal("development reported as production")
	}
}
