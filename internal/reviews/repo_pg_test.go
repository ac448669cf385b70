package reviews

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reviews")).
		WithArgs("r1", "alice", "helpful").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	repo := &PGRepo{DB: db}
	got, err := repo.Create(context.Background(), Review{ID: "r1", Author: "alice", Content: "helpful"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("expected created_at from db, got %s", got.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	t1 := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "author", "content", "created_at"}).
		AddRow("r2", "bob", "newer", t1).
		AddRow("r1", "alice", "older", t2)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs(6).
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	got, err := repo.Recent(context.Background(), 6)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 || got[0].ID != "r2" || got[1].Author != "alice" {
		t.Fatalf("unexpected reviews: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
