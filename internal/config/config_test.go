package config

import "testing"

func TestDefaultIsUsable(t *testing.T) {
	cfg := Default()
	if cfg.DB.Port != 3306 {
		t.Fatalf("expected default mysql port 3306, got %d", cfg.DB.Port)
	}
	if cfg.WebRoot == "" || cfg.Listen == "" {
		t.Fatalf("expected non-empty web root and listen address defaults")
	}
}

func TestDSNFormat(t *testing.T) {
	db := DBConfig{Host: "127.0.0.1", Username: "root", Password: "secret", Name: "gobang", Port: 3306}
	want := "root:secret@tcp(127.0.0.1:3306)/gobang?charset=utf8mb4&parseTime=true"
	if got := db.DSN(); got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
}

func TestLoadWithEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("Load(\"\") should return the same values as Default()")
	}
}
