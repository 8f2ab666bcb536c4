package config

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestFromCommandDefaults(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	BindFlags(cmd)
	if err := cmd.Flags().Set("data-server-url", "https://data.example.com"); err != nil {
		t.Fatal(err)
	}

	cfg, err := FromCommand(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BindAddr != "0.0.0.0:8080" {
		t.Errorf("bind addr = %q", cfg.BindAddr)
	}
	if cfg.RedisChannel != "cache" {
		t.Errorf("redis channel = %q", cfg.RedisChannel)
	}
}

func TestFromCommandRequiresDataServerURL(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	BindFlags(cmd)

	if _, err := FromCommand(cmd); err == nil {
		t.Error("expected an error when data-server-url is unset")
	}
}

func TestEnvOrBool(t *testing.T) {
	t.Setenv("LINKPROXY_TEST_FLAG", "true")
	if !envOrBool("LINKPROXY_TEST_FLAG", false) {
		t.Error("expected true from env override")
	}
	if !envOrBool("LINKPROXY_TEST_FLAG_UNSET", true) {
		t.Error("expected fallback when unset")
	}
}
