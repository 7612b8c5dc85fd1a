package main

import (
	"testing"
)

func TestCLIOverridesOnlySetFlags(t *testing.T) {
	app, flags := newCLI()
	if _, err := app.Parse([]string{"--port", "9000", "--store", "sqlite", "--no-store"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	overrides := flags.overrides()
	if overrides.Port == nil || *overrides.Port != "9000" {
		t.Fatalf("expected port override, got %v", overrides.Port)
	}
	if overrides.StoreBackend == nil || *overrides.StoreBackend != "sqlite" {
		t.Fatalf("expected store override, got %v", overrides.StoreBackend)
	}
	if !overrides.DisableStore {
		t.Fatalf("expected store to be disabled")
	}
	if overrides.LogLevel != nil || overrides.StoreURI != nil {
		t.Fatalf("expected unset flags to stay nil")
	}
	if overrides.RateLimitRPS != nil || overrides.RateLimitBurst != nil {
		t.Fatalf("expected rate limit sentinels to be ignored")
	}
}

func TestCLIRateLimitZeroIsKept(t *testing.T) {
	app, flags := newCLI()
	if _, err := app.Parse([]string{"--rate-limit-rps", "0", "--rate-limit-burst", "5", "--config", "service.yaml"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	overrides := flags.overrides()
	if overrides.RateLimitRPS == nil || *overrides.RateLimitRPS != 0 {
		t.Fatalf("expected explicit zero rate to be kept")
	}
	if overrides.RateLimitBurst == nil || *overrides.RateLimitBurst != 5 {
		t.Fatalf("expected burst override")
	}
	if overrides.ConfigFile != "service.yaml" {
		t.Fatalf("expected config file, got %q", overrides.ConfigFile)
	}
}

func TestCLIRejectsUnknownFlag(t *testing.T) {
	app, _ := newCLI()
	if _, err := app.Parse([]string{"--unknown", "1"}); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}
