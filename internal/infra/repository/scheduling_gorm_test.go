package repository

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/slotworks/salon-scheduler/internal/models"
)

func newClientRepo(t *testing.T) (*gorm.DB, *SchedulingGormRepository) {
	t.Helper()

	// A plain ":memory:" database is private to each pooled connection, so
	// the competing insert issued on a second connection would see an empty
	// schema. A named shared-cache DSN keeps every connection on one DB.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Client{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db, NewSchedulingGormRepository(db)
}

func TestGetOrCreateClient_PhoneIsUniquePerBranch(t *testing.T) {
	db, repo := newClientRepo(t)
	ctx := context.Background()

	first, err := repo.GetOrCreateClient(ctx, 1, "Ana", "+52-555-0101", "ana@test.mx")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	again, err := repo.GetOrCreateClient(ctx, 1, "Ana Maria", "+52-555-0101", "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("same branch+phone must reuse the row: got %d, want %d", again.ID, first.ID)
	}

	// The same phone at another branch is a distinct contact.
	other, err := repo.GetOrCreateClient(ctx, 2, "Ana", "+52-555-0101", "")
	if err != nil {
		t.Fatalf("other branch: %v", err)
	}
	if other.ID == first.ID {
		t.Fatal("branches must not share client rows")
	}

	// The schema itself forbids duplicates, so a racing insert cannot
	// slip past the read-then-create window.
	dup := models.Client{BranchID: 1, Name: "Impostor", Phone: "+52-555-0101"}
	if err := db.Create(&dup).Error; err == nil {
		t.Fatal("duplicate (branch_id, phone) insert must violate the unique index")
	}
}

func TestGetOrCreateClient_LostInsertRaceReturnsExistingRow(t *testing.T) {
	db, repo := newClientRepo(t)
	ctx := context.Background()

	// Slip a competing insert into the window between the empty lookup and
	// the create, which is exactly where a concurrent intake lands.
	var (
		raced      bool
		competitor models.Client
	)
	err := db.Callback().Create().Before("gorm:create").Register("race_with_intake", func(tx *gorm.DB) {
		if raced {
			return
		}
		if _, ok := tx.Statement.Dest.(*models.Client); !ok {
			return
		}
		raced = true
		competitor = models.Client{BranchID: 1, Name: "Ana", Phone: "+52-555-0101"}
		if err := db.Session(&gorm.Session{NewDB: true}).Create(&competitor).Error; err != nil {
			t.Errorf("competing insert: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	got, err := repo.GetOrCreateClient(ctx, 1, "Ana", "+52-555-0101", "")
	if err != nil {
		t.Fatalf("get-or-create after losing the race: %v", err)
	}
	if !raced {
		t.Fatal("create path never ran")
	}
	if got.ID != competitor.ID {
		t.Fatalf("must converge on the winner's row: got %d, want %d", got.ID, competitor.ID)
	}

	var count int64
	db.Model(&models.Client{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 client row, got %d", count)
	}
}
