package runlog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	rec := RunRecord{StartedAt: time.Now(), Error: strings.Repeat("x", 64*1024)}
	for i := 0; i < 20; i++ {
		if err := store.Append(context.Background(), rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	files, err := store.files()
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) < 2 {
		t.Fatalf("expected rotated files, got %v", files)
	}
	out, err := store.Query(context.Background(), RunQuery{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("expected records from rotated files")
	}
}

func TestRotatingJSONLStore_Query(t *testing.T) {
	dir := t.TempDir()
	store, err := NewRotatingJSONLStore(filepath.Join(dir, "runs.jsonl"), 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	now := time.Now()
	_ = store.Append(context.Background(), RunRecord{ID: "old", Status: "OPTIMAL", StartedAt: now.Add(-48 * time.Hour)})
	_ = store.Append(context.Background(), RunRecord{ID: "new", Status: "OPTIMAL", StartedAt: now})
	_ = store.Append(context.Background(), RunRecord{ID: "bad", Status: "INFEASIBLE", StartedAt: now})
	out, err := store.Query(context.Background(), RunQuery{Since: now.Add(-time.Hour), Status: "OPTIMAL"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 || out[0].ID != "new" {
		t.Fatalf("unexpected records %+v", out)
	}
}

func TestOpenBackends(t *testing.T) {
	cfg := Config{Backend: BackendNone}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := s.(NopStore); !ok {
		t.Fatalf("expected NopStore got %T", s)
	}

	cfg = Config{Backend: BackendJSONL, Path: filepath.Join(t.TempDir(), "h", "runs.jsonl")}
	cfg.SetDefaults()
	s, err = Open(cfg)
	if err != nil {
		t.Fatalf("open jsonl: %v", err)
	}
	_ = s.Close()

	if err := (Config{Backend: "redis"}).Validate(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestRotatingJSONLStore_QueryReportsUnreadableHistory(t *testing.T) {
	cases := map[string]string{
		"corrupt line":  "{\"id\":\"ok\"}\n{not json}\n",
		"oversize line": "{\"id\":\"" + strings.Repeat("x", 17*1024*1024) + "\"}\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "runs.jsonl")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			store, err := NewRotatingJSONLStore(path, 1, 2, 1)
			if err != nil {
				t.Fatalf("new store: %v", err)
			}
			defer func() { _ = store.Close() }()
			_, err = store.Query(context.Background(), RunQuery{})
			if err == nil {
				t.Fatalf("expected an error for %s", name)
			}
			if !strings.Contains(err.Error(), path) {
				t.Fatalf("error %q does not name the file", err)
			}
		})
	}
}

func TestRotatingJSONLStore_QueryBeforeFirstAppend(t *testing.T) {
	store, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"), 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	out, err := store.Query(context.Background(), RunQuery{})
	if err != nil || len(out) != 0 {
		t.Fatalf("expected empty history, got %v %v", out, err)
	}
}
