package sqlite_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/example/warden/internal/adapters/sqlite"
	"github.com/example/warden/internal/ports/secondary"
)

func TestActionLogRepository_AppendAndRecent(t *testing.T) {
	repo := sqlite.NewActionLogRepository(setupTestDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := &secondary.ActionLogRecord{
			SessionID: "sess-1",
			Tool:      fmt.Sprintf("tool-%d", i),
			Result:    "ok",
		}
		if err := repo.Append(ctx, rec); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if rec.ID == 0 {
			t.Error("Append did not assign an ID")
		}
		if rec.CreatedAt == "" {
			t.Error("Append did not stamp CreatedAt")
		}
	}

	recent, err := repo.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Recent returned %d records, want 3", len(recent))
	}
	// Newest first.
	if recent[0].Tool != "tool-4" {
		t.Errorf("newest record = %q, want tool-4", recent[0].Tool)
	}
	if recent[2].Tool != "tool-2" {
		t.Errorf("third record = %q, want tool-2", recent[2].Tool)
	}
}

func TestActionLogRepository_RecentEmpty(t *testing.T) {
	repo := sqlite.NewActionLogRepository(setupTestDB(t))

	recent, err := repo.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("Recent on empty log returned %d records", len(recent))
	}
}
