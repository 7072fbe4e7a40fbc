package transport

import "testing"

func TestValidFillsDefaults(t *testing.T) {
	cfg := Config{Port: "/dev/ttyUSB0"}
	if err := cfg.Valid(); err != nil {
		t.Fatalf("Valid: %v", err)
	}
	if cfg.Baud != Baud9600 {
		t.Fatalf("Baud = %d, want %d", cfg.Baud, Baud9600)
	}
	if cfg.WriteTimeout != DefaultWriteTimeout || cfg.ReadTimeout != DefaultReadTimeout {
		t.Fatalf("timeouts not defaulted: %+v", cfg)
	}
}

func TestValidRejectsEmptyPort(t *testing.T) {
	cfg := Config{}
	if err := cfg.Valid(); err == nil {
		t.Fatal("expected error for empty port")
	}
}

func TestValidRejectsUnsupportedBaud(t *testing.T) {
	cfg := Config{Port: "/dev/ttyUSB0", Baud: 4800}
	if err := cfg.Valid(); err == nil {
		t.Fatal("expected error for unsupported baud")
	}
}
