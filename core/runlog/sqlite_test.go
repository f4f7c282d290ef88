package runlog

import (
	"context"
	"testing"
	"time"
)

func TestSQLiteStore_PersistQuery(t *testing.T) {
	store, err := NewSQLiteStore("file:runs_test.db?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	now := time.Now()
	recs := []RunRecord{
		{ID: "r2", Instance: "A_01", Status: "OPTIMAL", StartedAt: now, Starts: map[string]int{"I1": 2}},
		{ID: "r1", Instance: "A_01", Status: "INFEASIBLE", StartedAt: now.Add(-time.Hour)},
		{ID: "r3", Instance: "A_02", Status: "OPTIMAL", StartedAt: now.Add(time.Minute)},
	}
	for _, r := range recs {
		if err := store.Append(context.Background(), r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	out, err := store.Query(context.Background(), RunQuery{Instance: "A_01"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 2 || out[0].ID != "r1" || out[1].Starts["I1"] != 2 {
		t.Fatalf("unexpected records %+v", out)
	}
	out, err = store.Query(context.Background(), RunQuery{Status: "OPTIMAL", Limit: 1})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 || out[0].ID != "r3" {
		t.Fatalf("unexpected records %+v", out)
	}
}
