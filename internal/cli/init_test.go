package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "component=cli") {
		t.Fatalf("warn record missing or without component: %s", out)
	}
}

func TestSetupLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(&buf, "loud")
	logger.Info("visible")

	out := buf.String()
	if !strings.Contains(out, "Falling back to info level") || !strings.Contains(out, "visible") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("PORT", "9090")
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		t.Fatalf("LoadAndValidateConfig: %v", err)
	}
	if cfg.Port != "9090" || cfg.DataBackend != "memory" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	t.Setenv("DATA_BACKEND", "sheets")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSignalContext_StopCancels(t *testing.T) {
	var buf bytes.Buffer
	ctx, stop := SignalContext(context.Background(), SetupLogger(&buf, "info"))
	stop()
	<-ctx.Done()
}
