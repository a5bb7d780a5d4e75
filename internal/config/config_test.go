package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SWEEP_BATCH_SIZE", "")
	t.Setenv("SWEEP_CONCURRENCY", "")
	t.Setenv("RESULT_FORMAT", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Sweep.BatchSize != 5 {
		t.Errorf("expected batch size 5, got %d", cfg.Sweep.BatchSize)
	}
	if cfg.Sweep.Concurrency != 5 {
		t.Errorf("expected concurrency to default to batch size, got %d", cfg.Sweep.Concurrency)
	}
	if cfg.Result.Format != "webp" {
		t.Errorf("expected webp result format, got %q", cfg.Result.Format)
	}
	if cfg.Upload.MaxBytes != 10*1024*1024 {
		t.Errorf("unexpected upload max bytes %d", cfg.Upload.MaxBytes)
	}
	if cfg.Kafka.Brokers != nil {
		t.Errorf("expected no kafka brokers, got %v", cfg.Kafka.Brokers)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SWEEP_BATCH_SIZE", "8")
	t.Setenv("SWEEP_STALE_AFTER_MINUTES", "0")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Sweep.BatchSize != 8 {
		t.Errorf("expected batch size 8, got %d", cfg.Sweep.BatchSize)
	}
	if cfg.Sweep.StaleAfter() != 0 {
		t.Errorf("expected stale recovery disabled, got %v", cfg.Sweep.StaleAfter())
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "b:9092" {
		t.Errorf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
}

func TestLoad_RejectsNonPositiveBatch(t *testing.T) {
	t.Setenv("SWEEP_BATCH_SIZE", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero batch size")
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{Result: ResultConfig{Format: "gif"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}

	cfg = &Config{
		Auth:    AuthConfig{CronSecret: "s"},
		Storage: StorageConfig{SupabaseURL: "https://x.supabase.co", SupabaseServiceKey: "k"},
		Gemini:  GeminiConfig{APIKey: "g"},
		Result:  ResultConfig{Format: "png"},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDurations(t *testing.T) {
	s := SweepConfig{StaleAfterMinutes: 15, LockTTLSeconds: 300, IntervalSeconds: 0}
	if s.StaleAfter() != 15*time.Minute {
		t.Errorf("unexpected stale after %v", s.StaleAfter())
	}
	if s.LockTTL() != 5*time.Minute {
		t.Errorf("unexpected lock ttl %v", s.LockTTL())
	}
	if s.Interval() != 0 {
		t.Errorf("expected disabled interval, got %v", s.Interval())
	}
}
