package runs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreSaveUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	run := Run{
		ID:          "run-1",
		Scope:       "scope-1",
		DocumentID:  "doc-1",
		Fingerprint: "fp-1",
		State:       StateExtracting,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectExec("INSERT INTO runs").
		WithArgs(
			run.ID,
			run.Fingerprint,
			run.Scope,
			run.DocumentID,
			string(StateExtracting),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			run.CreatedAt,
			run.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPGStore(db)
	if err := store.Save(context.Background(), run); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreLoadRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	run := Run{
		ID:          "run-1",
		Scope:       "scope-1",
		DocumentID:  "doc-1",
		Fingerprint: "fp-1",
		State:       StateAwaitingReview,
		FailureCode: "",
	}
	snapshot, err := json.Marshal(run)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	mock.ExpectQuery("SELECT snapshot FROM runs").
		WithArgs("scope-1", "run-1").
		WillReturnRows(sqlmock.NewRows([]string{"snapshot"}).AddRow(snapshot))

	store := NewPGStore(db)
	loaded, err := store.Load(context.Background(), "scope-1", "run-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.State != StateAwaitingReview || loaded.DocumentID != "doc-1" {
		t.Fatalf("snapshot round trip mismatch: %+v", loaded)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreLoadNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT snapshot FROM runs").
		WithArgs("scope-1", "run-missing").
		WillReturnRows(sqlmock.NewRows([]string{"snapshot"}))

	store := NewPGStore(db)
	if _, err := store.Load(context.Background(), "scope-1", "run-missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestPGStoreFindActiveByFingerprint(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	active := Run{ID: "run-1", Scope: "scope-1", Fingerprint: "fp-1", State: StateMatching}
	snapshot, _ := json.Marshal(active)

	mock.ExpectQuery("SELECT snapshot FROM runs").
		WithArgs("fp-1").
		WillReturnRows(sqlmock.NewRows([]string{"snapshot"}).AddRow(snapshot))
	mock.ExpectQuery("SELECT snapshot FROM runs").
		WithArgs("fp-2").
		WillReturnRows(sqlmock.NewRows([]string{"snapshot"}))

	store := NewPGStore(db)

	run, found, err := store.FindActiveByFingerprint(context.Background(), "fp-1")
	if err != nil || !found {
		t.Fatalf("expected active run, found=%v err=%v", found, err)
	}
	if run.ID != "run-1" {
		t.Fatalf("run id = %q", run.ID)
	}

	_, found, err = store.FindActiveByFingerprint(context.Background(), "fp-2")
	if err != nil || found {
		t.Fatalf("expected no active run, found=%v err=%v", found, err)
	}
}

func TestPGStoreListByScope(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	first, _ := json.Marshal(Run{ID: "run-2", Scope: "scope-1", State: StateCommitted})
	second, _ := json.Marshal(Run{ID: "run-1", Scope: "scope-1", State: StateFailed})

	mock.ExpectQuery("SELECT snapshot FROM runs").
		WithArgs("scope-1", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"snapshot"}).AddRow(first).AddRow(second))

	store := NewPGStore(db)
	listed, err := store.ListByScope(context.Background(), "scope-1", 0, 0)
	if err != nil {
		t.Fatalf("ListByScope: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "run-2" || listed[1].ID != "run-1" {
		t.Fatalf("unexpected listing: %+v", listed)
	}
}
