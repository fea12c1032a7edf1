package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/folio/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func scanName(s repository.Scanner) (string, error) {
	var name string
	err := s.Scan(&name)
	return name, err
}

func TestQueryMany(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT name FROM runs").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("a.pdf").AddRow("b.pdf"))

	names, err := repository.QueryMany(context.Background(), db, "SELECT name FROM runs", nil, scanName)
	if err != nil {
		t.Fatalf("QueryMany() error = %v", err)
	}
	if len(names) != 2 || names[0] != "a.pdf" {
		t.Errorf("names = %v", names)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestQueryManyEmpty(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"name"}))

	names, err := repository.QueryMany(context.Background(), db, "SELECT name FROM runs", nil, scanName)
	if err != nil {
		t.Fatalf("QueryMany() error = %v", err)
	}
	if names == nil || len(names) != 0 {
		t.Errorf("names = %#v, want empty slice", names)
	}
}

func TestQueryCount(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := repository.QueryCount(context.Background(), db, "SELECT COUNT(*) FROM runs WHERE success = $1", []any{true})
	if err != nil {
		t.Fatalf("QueryCount() error = %v", err)
	}
	if n != 12 {
		t.Errorf("count = %d, want 12", n)
	}
}

func TestExecExpectOne(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectExec("DELETE FROM runs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO runs").WillReturnResult(sqlmock.NewResult(1, 1))

	ctx := context.Background()
	if err := repository.ExecExpectOne(ctx, db, "DELETE FROM runs WHERE id = $1", 1); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("delete error = %v, want sql.ErrNoRows", err)
	}
	if err := repository.ExecExpectOne(ctx, db, "INSERT INTO runs(id) VALUES ($1)", 1); err != nil {
		t.Errorf("insert error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"other", sql.ErrConnDone, sql.ErrConnDone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound, errDuplicate)
			if !errors.Is(got, tt.want) && got != tt.want {
				t.Errorf("MapError() = %v, want %v", got, tt.want)
			}
		})
	}
}
