package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/meridian/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

func scanName(s repository.Scanner) (string, error) {
	var name string
	err := s.Scan(&name)
	return name, err
}

func TestMapError(t *testing.T) {
	other := errors.New("connection reset")
	fk := &pgconn.PgError{Code: "23503"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"foreign key passes through", fk, fk},
		{"other passes through", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repository.MapError(tt.err, errNotFound, errDuplicate); got != tt.want {
				t.Errorf("MapError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	if !repository.IsForeignKeyViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"})) {
		t.Error("wrapped 23503 not detected")
	}
	if repository.IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("23505 reported as foreign key violation")
	}
	if repository.IsForeignKeyViolation(errors.New("plain")) {
		t.Error("plain error reported as foreign key violation")
	}
}

func TestWithTx(t *testing.T) {
	t.Run("commits", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE reports").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		n, err := repository.WithTx(context.Background(), db, func(tx *sql.Tx) (int64, error) {
			return repository.ExecCount(context.Background(), tx, "UPDATE reports SET status = 'failed'")
		})
		if err != nil || n != 1 {
			t.Fatalf("WithTx() = %d, %v", n, err)
		}
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := repository.WithTx(context.Background(), db, func(tx *sql.Tx) (struct{}, error) {
			return struct{}{}, errNotFound
		})
		if err != errNotFound {
			t.Errorf("error = %v, want unwrapped errNotFound", err)
		}
	})

	t.Run("begin failure", func(t *testing.T) {
		db, mock := newMock(t)
		boom := errors.New("pool exhausted")
		mock.ExpectBegin().WillReturnError(boom)

		_, err := repository.WithTx(context.Background(), db, func(tx *sql.Tx) (struct{}, error) {
			t.Fatal("fn called without a transaction")
			return struct{}{}, nil
		})
		if !errors.Is(err, boom) {
			t.Errorf("error = %v, want %v", err, boom)
		}
	})
}

func TestQueryOne(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT name FROM dimensions").
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Strategy"))
	mock.ExpectQuery("SELECT name FROM dimensions").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	ctx := context.Background()
	q := "SELECT name FROM dimensions WHERE id = $1"

	name, err := repository.QueryOne(ctx, db, q, []any{"d1"}, scanName)
	if err != nil || name != "Strategy" {
		t.Errorf("QueryOne() = %q, %v", name, err)
	}

	_, err = repository.QueryOne(ctx, db, q, []any{"missing"}, scanName)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("missing row error = %v, want sql.ErrNoRows", err)
	}
}

func TestQueryMany(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT name FROM dimensions").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Strategy").AddRow("Culture"))
	mock.ExpectQuery("SELECT name FROM dimensions").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	ctx := context.Background()
	names, err := repository.QueryMany(ctx, db, "SELECT name FROM dimensions", nil, scanName)
	if err != nil || len(names) != 2 || names[1] != "Culture" {
		t.Errorf("QueryMany() = %v, %v", names, err)
	}

	empty, err := repository.QueryMany(ctx, db, "SELECT name FROM dimensions", nil, scanName)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("empty QueryMany() = %#v, %v", empty, err)
	}
}

func TestExecExpectOne(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("DELETE FROM reports").WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM reports").WithArgs("r2").WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	if err := repository.ExecExpectOne(ctx, db, "DELETE FROM reports WHERE id = $1", "r1"); err != nil {
		t.Errorf("one row: %v", err)
	}
	if err := repository.ExecExpectOne(ctx, db, "DELETE FROM reports WHERE id = $1", "r2"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("zero rows error = %v, want sql.ErrNoRows", err)
	}
}

func TestQueryManyRowError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT name FROM dimensions").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow("Strategy").
			AddRow("Culture").
			RowError(1, errors.New("connection reset")))

	_, err := repository.QueryMany(context.Background(), db, "SELECT name FROM dimensions", nil, scanName)
	if err == nil || err.Error() != "connection reset" {
		t.Errorf("QueryMany() error = %v, want connection reset", err)
	}
}

func TestEachStopsEarly(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT name FROM dimensions").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Strategy").AddRow("Culture").AddRow("Data"))

	rows, err := db.Query("SELECT name FROM dimensions")
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	var seen []string
	for name, err := range repository.Each(rows, scanName) {
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		seen = append(seen, name)
		if len(seen) == 2 {
			break
		}
	}

	if len(seen) != 2 || seen[1] != "Culture" {
		t.Errorf("seen = %v", seen)
	}
}

func TestWithTxOptions(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT name FROM dimensions").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Strategy"))
	mock.ExpectCommit()

	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	names, err := repository.WithTxOptions(context.Background(), db, opts, func(tx *sql.Tx) ([]string, error) {
		return repository.QueryMany(context.Background(), tx, "SELECT name FROM dimensions", nil, scanName)
	})
	if err != nil || len(names) != 1 {
		t.Errorf("WithTxOptions() = %v, %v", names, err)
	}
}
