package reports_test

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/meridian/internal/assessments"
	"github.com/JaimeStill/meridian/internal/reports"
	"github.com/JaimeStill/meridian/pkg/pagination"
)

var (
	storeAssessmentID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	storeOrgID        = uuid.MustParse("55555555-5555-5555-5555-555555555555")
	storeStamp        = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

var reportColumns = []string{
	"id", "assessment_id", "type", "format", "status", "file_path", "failure_reason",
	"requested_by", "generated_at", "created_at", "updated_at", "organization_id",
}

func newStore(t *testing.T) (reports.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return reports.NewStore(db, discard(), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}), mock
}

func expectMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("ExpectationsWereMet: %v", err)
	}
}

func reportRow(status string, filePath any) *sqlmock.Rows {
	return sqlmock.NewRows(reportColumns).AddRow(
		reportID.String(), storeAssessmentID.String(), "summary", "pdf", status, filePath, nil,
		"user-1", nil, storeStamp, storeStamp, storeOrgID.String(),
	)
}

func TestStoreCreate(t *testing.T) {
	t.Run("pending record", func(t *testing.T) {
		store, mock := newStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO reports").
			WithArgs(sqlmock.AnyArg(), storeAssessmentID, "summary", "pdf", "pending", "user-1").
			WillReturnRows(reportRow("pending", nil))
		mock.ExpectCommit()

		rpt, err := store.Create(t.Context(), reports.CreateCommand{
			AssessmentID: storeAssessmentID,
			Type:         reports.TypeSummary,
			Format:       reports.FormatPDF,
			RequestedBy:  "user-1",
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if rpt.Status != reports.StatusPending || rpt.FilePath != nil {
			t.Errorf("unexpected report: %+v", rpt)
		}
		if rpt.OrganizationID != storeOrgID {
			t.Errorf("organization_id = %s, want %s", rpt.OrganizationID, storeOrgID)
		}
		expectMet(t, mock)
	})

	t.Run("unknown assessment", func(t *testing.T) {
		store, mock := newStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO reports").WillReturnError(&pgconn.PgError{Code: "23503"})
		mock.ExpectRollback()

		_, err := store.Create(t.Context(), reports.CreateCommand{
			AssessmentID: storeAssessmentID,
			Type:         reports.TypeSummary,
			Format:       reports.FormatPDF,
		})
		if !errors.Is(err, assessments.ErrNotFound) {
			t.Errorf("Create() error = %v, want assessments.ErrNotFound", err)
		}
		expectMet(t, mock)
	})
}

func TestStoreFind(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		store, mock := newStore(t)
		mock.ExpectQuery("SELECT .+ FROM public.reports r JOIN public.assessments a ON a.id = r.assessment_id WHERE r.id = \\$1").
			WithArgs(reportID).
			WillReturnRows(reportRow("completed", "reports/x/report.pdf"))

		rpt, err := store.Find(t.Context(), reportID)
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if rpt.FilePath == nil || *rpt.FilePath != "reports/x/report.pdf" {
			t.Errorf("file_path = %v", rpt.FilePath)
		}
		expectMet(t, mock)
	})

	t.Run("not found", func(t *testing.T) {
		store, mock := newStore(t)
		mock.ExpectQuery("FROM public.reports r").
			WithArgs(reportID).
			WillReturnError(sql.ErrNoRows)

		if _, err := store.Find(t.Context(), reportID); !errors.Is(err, reports.ErrNotFound) {
			t.Errorf("Find() error = %v, want ErrNotFound", err)
		}
		expectMet(t, mock)
	})
}

func TestStoreMarkGenerating(t *testing.T) {
	t.Run("pending report", func(t *testing.T) {
		store, mock := newStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE reports SET status = \\$2").
			WithArgs(reportID, "generating", "pending").
			WillReturnRows(reportRow("generating", nil))
		mock.ExpectCommit()

		rpt, err := store.MarkGenerating(t.Context(), reportID)
		if err != nil {
			t.Fatalf("MarkGenerating() error = %v", err)
		}
		if rpt.Status != reports.StatusGenerating {
			t.Errorf("status = %s, want generating", rpt.Status)
		}
		expectMet(t, mock)
	})

	t.Run("wrong state", func(t *testing.T) {
		store, mock := newStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE reports").WillReturnRows(sqlmock.NewRows(reportColumns))
		mock.ExpectRollback()
		mock.ExpectQuery("FROM public.reports r").
			WithArgs(reportID).
			WillReturnRows(reportRow("completed", "reports/x/report.pdf"))

		_, err := store.MarkGenerating(t.Context(), reportID)
		if !errors.Is(err, reports.ErrInvalidStatus) {
			t.Errorf("MarkGenerating() error = %v, want ErrInvalidStatus", err)
		}
		expectMet(t, mock)
	})

	t.Run("missing report", func(t *testing.T) {
		store, mock := newStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE reports").WillReturnRows(sqlmock.NewRows(reportColumns))
		mock.ExpectRollback()
		mock.ExpectQuery("FROM public.reports r").WillReturnError(sql.ErrNoRows)

		_, err := store.MarkGenerating(t.Context(), reportID)
		if !errors.Is(err, reports.ErrNotFound) {
			t.Errorf("MarkGenerating() error = %v, want ErrNotFound", err)
		}
		expectMet(t, mock)
	})
}

func TestStoreMarkCompleted(t *testing.T) {
	store, mock := newStore(t)
	key := reports.StorageKey(reportID, reports.FormatPDF)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE reports\\s+SET status = \\$2, file_path = \\$3").
		WithArgs(reportID, "completed", key, "generating").
		WillReturnRows(reportRow("completed", key))
	mock.ExpectCommit()

	rpt, err := store.MarkCompleted(t.Context(), reportID, key)
	if err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}
	if rpt.FilePath == nil || *rpt.FilePath != key {
		t.Errorf("file_path = %v, want %s", rpt.FilePath, key)
	}
	expectMet(t, mock)
}

func TestStoreMarkFailed(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE reports SET status = \\$2, failure_reason = \\$3").
		WithArgs(reportID, "failed", "storage offline", "pending", "generating").
		WillReturnRows(reportRow("failed", nil))
	mock.ExpectCommit()

	rpt, err := store.MarkFailed(t.Context(), reportID, "storage offline")
	if err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}
	if rpt.Status != reports.StatusFailed || rpt.FilePath != nil {
		t.Errorf("unexpected report: %+v", rpt)
	}
	expectMet(t, mock)
}

func TestStoreFailStale(t *testing.T) {
	store, mock := newStore(t)
	cutoff := storeStamp.Add(-30 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE reports SET status = \\$1").
		WithArgs("failed", "generation timed out", "pending", "generating", cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	n, err := store.FailStale(t.Context(), cutoff, "generation timed out")
	if err != nil {
		t.Fatalf("FailStale() error = %v", err)
	}
	if n != 3 {
		t.Errorf("FailStale() = %d, want 3", n)
	}
	expectMet(t, mock)
}

func TestStoreDelete(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery("FROM public.reports r").
		WithArgs(reportID).
		WillReturnRows(reportRow("completed", "reports/x/report.pdf"))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM reports WHERE id = \\$1").
		WithArgs(reportID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rpt, err := store.Delete(t.Context(), reportID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if rpt.ID != reportID {
		t.Errorf("id = %s, want %s", rpt.ID, reportID)
	}
	expectMet(t, mock)
}
