package consolidated_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/meridian/internal/assessments"
	"github.com/JaimeStill/meridian/internal/consolidated"
)

type mockSystem struct {
	allFn    func(ctx context.Context) (*consolidated.Report, error)
	forOrgFn func(ctx context.Context, orgID uuid.UUID) (*consolidated.Report, error)
}

func (m *mockSystem) Handler() *consolidated.Handler {
	return consolidated.NewHandler(m, discard())
}

func (m *mockSystem) Consolidate(context.Context, []assessments.Assessment) (*consolidated.Report, error) {
	return nil, errors.New("not used")
}

func (m *mockSystem) All(ctx context.Context) (*consolidated.Report, error) {
	return m.allFn(ctx)
}

func (m *mockSystem) ForOrganization(ctx context.Context, orgID uuid.UUID) (*consolidated.Report, error) {
	return m.forOrgFn(ctx, orgID)
}

func setupMux(sys *mockSystem) *http.ServeMux {
	group := sys.Handler().Routes()
	mux := http.NewServeMux()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

func TestHandlerAll(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ok", nil, http.StatusOK},
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				allFn: func(context.Context) (*consolidated.Report, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &consolidated.Report{
						SubmissionCount:        2,
						Dimensions:             []consolidated.DimensionSummary{{Name: "Security", AverageGapScore: 2}},
						OverallAverageGapScore: 2,
					}, nil
				},
			}

			rec := httptest.NewRecorder()
			setupMux(sys).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/consolidated", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var got consolidated.Report
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.SubmissionCount != 2 || len(got.Dimensions) != 1 {
				t.Errorf("report = %+v", got)
			}
		})
	}
}

func TestHandlerForOrganization(t *testing.T) {
	orgID := uuid.MustParse("55555555-5555-5555-5555-555555555555")

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"ok", "/consolidated/organizations/" + orgID.String(), http.StatusOK},
		{"invalid id", "/consolidated/organizations/acme", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got uuid.UUID
			sys := &mockSystem{
				forOrgFn: func(_ context.Context, id uuid.UUID) (*consolidated.Report, error) {
					got = id
					return &consolidated.Report{OrganizationID: &id, Dimensions: []consolidated.DimensionSummary{}}, nil
				},
			}

			rec := httptest.NewRecorder()
			setupMux(sys).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && got != orgID {
				t.Errorf("organization = %s, want %s", got, orgID)
			}
		})
	}
}
