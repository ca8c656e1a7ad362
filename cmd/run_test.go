package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/spf13/cobra"
)

func newTestRunCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "run"}
	addRunFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return cmd
}

func TestApplyRunFlags_KeepsConfigWhenUnset(t *testing.T) {
	cfg := config.Defaults()
	cfg.Web.Port = 9999
	cfg.Ledger.Dir = "/var/log/attendance"

	if err := applyRunFlags(newTestRunCmd(t), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Web.Port != 9999 {
		t.Errorf("expected port from config 9999, got %d", cfg.Web.Port)
	}
	if cfg.Ledger.Dir != "/var/log/attendance" {
		t.Errorf("expected log dir from config, got '%s'", cfg.Ledger.Dir)
	}
}

func TestApplyRunFlags_Overrides(t *testing.T) {
	cfg := config.Defaults()

	cmd := newTestRunCmd(t,
		"--gallery", "staff",
		"--logs", "out",
		"--camera", "2",
		"--port", "9090",
		"--host", "0.0.0.0",
		"--tolerance", "0.4",
		"--late-after", "09:00",
	)
	if err := applyRunFlags(cmd, cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Gallery.Dir != "staff" {
		t.Errorf("expected gallery 'staff', got '%s'", cfg.Gallery.Dir)
	}
	if cfg.Ledger.Dir != "out" {
		t.Errorf("expected logs 'out', got '%s'", cfg.Ledger.Dir)
	}
	if cfg.Camera.Device != 2 {
		t.Errorf("expected camera 2, got %d", cfg.Camera.Device)
	}
	if cfg.Web.Port != 9090 || cfg.Web.Host != "0.0.0.0" {
		t.Errorf("expected 0.0.0.0:9090, got %s:%d", cfg.Web.Host, cfg.Web.Port)
	}
	if cfg.Recognition.Tolerance != 0.4 {
		t.Errorf("expected tolerance 0.4, got %f", cfg.Recognition.Tolerance)
	}
	if cfg.Ledger.LateAfter != "09:00" {
		t.Errorf("expected late cutoff '09:00', got '%s'", cfg.Ledger.LateAfter)
	}
}

func TestApplyRunFlags_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero tolerance", []string{"--tolerance", "0"}},
		{"negative tolerance", []string{"--tolerance=-1"}},
		{"bad cutoff", []string{"--late-after", "8am"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := applyRunFlags(newTestRunCmd(t, tt.args...), config.Defaults()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestOverrideTolerance_Unset(t *testing.T) {
	tolerance := 0.45
	if err := overrideTolerance(newTestRunCmd(t), "tolerance", &tolerance); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tolerance != 0.45 {
		t.Errorf("expected tolerance to stay 0.45, got %f", tolerance)
	}
}

func TestWaitWithoutCamera_BlocksUntilCancelled(t *testing.T) {
	for _, dashboard := range []bool{true, false} {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			waitWithoutCamera(ctx, dashboard)
			close(done)
		}()

		select {
		case <-done:
			t.Fatalf("dashboard=%v: returned before cancellation", dashboard)
		case <-time.After(20 * time.Millisecond):
		}

		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatalf("dashboard=%v: did not return after cancel", dashboard)
		}
	}
}
