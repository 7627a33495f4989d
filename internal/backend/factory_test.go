package backend

import (
	"context"
	"path/filepath"
	"testing"

	"incomebook/internal/config"
	"incomebook/internal/log"
)

func TestCreateBucket(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		config Config
	}{
		{"memory", Config{Type: MemoryBackend}},
		{"file", Config{Type: FileBackend, DataDir: filepath.Join(dir, "data")}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "income.db")}},
	}

	f := NewFactory(log.Discard())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			res, err := f.CreateBucket(ctx, tt.config)
			if err != nil {
				t.Fatalf("CreateBucket() error = %v", err)
			}
			defer res.Cleanup()

			if err := res.Bucket.Put(ctx, "k", []byte(`[]`)); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			got, ok, err := res.Bucket.Get(ctx, "k")
			if err != nil || !ok || string(got) != "[]" {
				t.Errorf("Get() = %q, %v, %v", got, ok, err)
			}
		})
	}
}

func TestCreateBucketInvalid(t *testing.T) {
	f := NewFactory(nil)
	for _, cfg := range []Config{
		{Type: "sheets"},
		{Type: FileBackend},
		{Type: SQLiteBackend},
	} {
		if _, err := f.CreateBucket(context.Background(), cfg); err == nil {
			t.Errorf("CreateBucket(%+v) should fail", cfg)
		}
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", DataDir: "d"})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" || cfg.DataDir != "d" {
		t.Errorf("FromAppConfig() = %+v", cfg)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("nil config should fail")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "redis"}); err == nil {
		t.Error("unknown backend should fail")
	}
}
