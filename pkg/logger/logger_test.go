package logger

import (
	"context"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	// Re-initialization replaces the handler without error.
	if err := Init(); err != nil {
		t.Fatalf("failed to reinitialize logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after reinitialization")
	}
}

func TestLoggerBasic(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	Get().Info(ctx, "prediction served",
		String("customer_id", "CUST_0001"),
		Float64("confidence", 0.85),
		Int("payments", 12),
		Time("predicted", time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)),
		Duration("elapsed", 3*time.Millisecond),
	)
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	named := Named("engine")
	if named == nil {
		t.Fatal("named logger is nil")
	}
	named.Info(context.Background(), "model loaded")
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	for _, level := range []string{"debug", "info", "warn", "warning", "error", ""} {
		if err := SetLevelString(level); err != nil {
			t.Errorf("SetLevelString(%q) returned error: %v", level, err)
		}
	}
	if err := SetLevelString("shout"); err == nil {
		t.Error("expected error for unknown level")
	}
}
