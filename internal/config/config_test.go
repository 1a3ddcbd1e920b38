package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/hperssn/coachbook/internal/domain"
)

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(lookupMap(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Open != 10*time.Hour || cfg.Close != 20*time.Hour || cfg.Step != 30*time.Minute {
		t.Errorf("hours = %v-%v/%v", cfg.Open, cfg.Close, cfg.Step)
	}
	if !slices.Equal(cfg.Durations, []int{60, 90, 120}) {
		t.Errorf("durations = %v", cfg.Durations)
	}
	if cfg.Tick != time.Minute {
		t.Errorf("tick = %v want 1m", cfg.Tick)
	}
	if cfg.ConfirmDelivery {
		t.Errorf("confirm delivery should default to false")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(lookupMap(map[string]string{
		"COACHBOOK_STORE":            "sqlite",
		"COACHBOOK_DSN":              "/tmp/coach.sqlite",
		"COACHBOOK_OPEN":             "08:30",
		"COACHBOOK_CLOSE":            "21:00",
		"COACHBOOK_STEP":             "15m",
		"COACHBOOK_DURATIONS":        "45, 60",
		"COACHBOOK_CONFIRM_DELIVERY": "true",
		"COACHBOOK_LOG_FORMAT":       "json",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hours := cfg.Hours()
	if hours.Open != 8*time.Hour+30*time.Minute {
		t.Errorf("open = %v", hours.Open)
	}
	if hours.Close != 21*time.Hour {
		t.Errorf("close = %v", hours.Close)
	}
	if hours.Step != 15*time.Minute {
		t.Errorf("step = %v", hours.Step)
	}
	if !slices.Equal(cfg.Durations, []int{45, 60}) {
		t.Errorf("durations = %v", cfg.Durations)
	}
	if !cfg.ConfirmDelivery {
		t.Errorf("confirm delivery not applied")
	}
	if cfg.Store != "sqlite" || cfg.DSN != "/tmp/coach.sqlite" {
		t.Errorf("store = %s %s", cfg.Store, cfg.DSN)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad clock", map[string]string{"COACHBOOK_OPEN": "ten"}},
		{"open after close", map[string]string{"COACHBOOK_OPEN": "21:00"}},
		{"bad duration list", map[string]string{"COACHBOOK_DURATIONS": "60,x"}},
		{"negative duration", map[string]string{"COACHBOOK_DURATIONS": "-30"}},
		{"unknown store", map[string]string{"COACHBOOK_STORE": "mongo"}},
		{"bad bool", map[string]string{"COACHBOOK_CONFIRM_DELIVERY": "maybe"}},
		{"bad level", map[string]string{"COACHBOOK_LOG_LEVEL": "loud"}},
		{"bad format", map[string]string{"COACHBOOK_LOG_FORMAT": "xml"}},
		{"zero tick", map[string]string{"COACHBOOK_TICK": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(lookupMap(tt.env))
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("err = %v want ErrInvalidInput", err)
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := Default()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("addr", cfg.Addr, "")
	fs.String("store", cfg.Store, "")
	fs.String("dsn", cfg.DSN, "")
	fs.Duration("tick", cfg.Tick, "")
	fs.Bool("confirm-delivery", false, "")

	if err := fs.Parse([]string{"--store=memory", "--tick=30s", "--confirm-delivery"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.ApplyFlags(fs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Store != "memory" {
		t.Errorf("store = %s want memory", cfg.Store)
	}
	if cfg.Tick != 30*time.Second {
		t.Errorf("tick = %v want 30s", cfg.Tick)
	}
	if !cfg.ConfirmDelivery {
		t.Errorf("confirm delivery flag not applied")
	}
	if cfg.Addr != ":8080" {
		t.Errorf("unset flag overrode addr: %s", cfg.Addr)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("COACHBOOK_ADDR=:9191\n"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Setenv("COACHBOOK_ADDR", "")
	os.Unsetenv("COACHBOOK_ADDR")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9191" {
		t.Errorf("addr = %s want :9191", cfg.Addr)
	}

	again, _ := Load()
	if again != cfg {
		t.Errorf("Load should return the cached configuration")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing env file should not fail: %v", err)
	}
}
