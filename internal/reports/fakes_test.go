package reports_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/meridian/internal/assessments"
	"github.com/JaimeStill/meridian/internal/reports"
	"github.com/JaimeStill/meridian/pkg/dispatch"
	"github.com/JaimeStill/meridian/pkg/lifecycle"
	"github.com/JaimeStill/meridian/pkg/pagination"
	"github.com/JaimeStill/meridian/pkg/storage"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory reports.Store with the same transition rules as
// the SQL store.
type memStore struct {
	mu      sync.Mutex
	reports map[uuid.UUID]reports.Report
	order   []uuid.UUID

	completeErr error
	staleBefore time.Time
}

func newMemStore() *memStore {
	return &memStore{reports: make(map[uuid.UUID]reports.Report)}
}

func (s *memStore) put(r reports.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[r.ID]; !ok {
		s.order = append(s.order, r.ID)
	}
	s.reports[r.ID] = r
}

func (s *memStore) get(id uuid.UUID) reports.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reports[id]
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

func (s *memStore) Create(_ context.Context, cmd reports.CreateCommand) (*reports.Report, error) {
	now := time.Now().UTC()
	r := reports.Report{
		ID:           uuid.New(),
		AssessmentID: cmd.AssessmentID,
		Type:         cmd.Type,
		Format:       cmd.Format,
		Status:       reports.StatusPending,
		RequestedBy:  cmd.RequestedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.put(r)
	return &r, nil
}

func (s *memStore) Find(_ context.Context, id uuid.UUID) (*reports.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, reports.ErrNotFound
	}
	return &r, nil
}

func (s *memStore) List(_ context.Context, page pagination.PageRequest, _ reports.Filters) (*pagination.PageResult[reports.Report], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]reports.Report, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.reports[id])
	}
	result := pagination.NewPageResult(items, len(items), page.Page, page.PageSize)
	return &result, nil
}

func (s *memStore) transition(id uuid.UUID, to reports.Status, from []reports.Status, apply func(*reports.Report)) (*reports.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, reports.ErrNotFound
	}
	if !slices.Contains(from, r.Status) {
		return nil, fmt.Errorf("%w: %s to %s", reports.ErrInvalidStatus, r.Status, to)
	}
	r.Status = to
	r.UpdatedAt = time.Now().UTC()
	if apply != nil {
		apply(&r)
	}
	s.reports[id] = r
	return &r, nil
}

func (s *memStore) MarkGenerating(_ context.Context, id uuid.UUID) (*reports.Report, error) {
	return s.transition(id, reports.StatusGenerating, []reports.Status{reports.StatusPending}, nil)
}

func (s *memStore) MarkCompleted(_ context.Context, id uuid.UUID, filePath string) (*reports.Report, error) {
	if s.completeErr != nil {
		return nil, s.completeErr
	}
	return s.transition(id, reports.StatusCompleted, []reports.Status{reports.StatusGenerating}, func(r *reports.Report) {
		now := time.Now().UTC()
		r.FilePath = &filePath
		r.GeneratedAt = &now
		r.FailureReason = nil
	})
}

func (s *memStore) MarkFailed(_ context.Context, id uuid.UUID, reason string) (*reports.Report, error) {
	return s.transition(id, reports.StatusFailed, []reports.Status{reports.StatusPending, reports.StatusGenerating}, func(r *reports.Report) {
		r.FailureReason = &reason
	})
}

func (s *memStore) FailStale(_ context.Context, before time.Time, reason string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staleBefore = before
	var n int64
	for id, r := range s.reports {
		if (r.Status == reports.StatusPending || r.Status == reports.StatusGenerating) && r.UpdatedAt.Before(before) {
			r.Status = reports.StatusFailed
			r.FailureReason = &reason
			s.reports[id] = r
			n++
		}
	}
	return n, nil
}

func (s *memStore) Delete(_ context.Context, id uuid.UUID) (*reports.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, reports.ErrNotFound
	}
	delete(s.reports, id)
	s.order = slices.DeleteFunc(s.order, func(v uuid.UUID) bool { return v == id })
	return &r, nil
}

// memBlobs is an in-memory storage.System.
type memBlobs struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	uploadErr error
	deleted   []string
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (b *memBlobs) Start(*lifecycle.Coordinator) error { return nil }

func (b *memBlobs) Ready() bool { return true }

func (b *memBlobs) Upload(_ context.Context, key string, r io.Reader, contentType string) (string, error) {
	if b.uploadErr != nil {
		return "", &storage.Error{Op: "upload", Key: key, Err: b.uploadErr}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	b.types[key] = contentType
	return key, nil
}

func (b *memBlobs) Download(_ context.Context, key string) (*storage.Blob, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Blob{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentType:   b.types[key],
		ContentLength: int64(len(data)),
	}, nil
}

func (b *memBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[key]; !ok {
		return storage.ErrNotFound
	}
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

func (b *memBlobs) Exists(_ context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok, nil
}

func (b *memBlobs) object(key string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	return data, ok
}

// graph is an in-memory assessment graph implementing reports.AssessmentSource.
type graph struct {
	mu              sync.Mutex
	assessments     map[uuid.UUID]assessments.Assessment
	results         map[uuid.UUID][]assessments.DimensionAssessment
	dimensions      map[uuid.UUID]assessments.Dimension
	gaps            map[uuid.UUID]assessments.Gap
	recommendations map[uuid.UUID]assessments.Recommendation
	states          map[uuid.UUID]assessments.State
	items           map[uuid.UUID][]assessments.ActionItem
	finds           int
}

func newGraph() *graph {
	return &graph{
		assessments:     make(map[uuid.UUID]assessments.Assessment),
		results:         make(map[uuid.UUID][]assessments.DimensionAssessment),
		dimensions:      make(map[uuid.UUID]assessments.Dimension),
		gaps:            make(map[uuid.UUID]assessments.Gap),
		recommendations: make(map[uuid.UUID]assessments.Recommendation),
		states:          make(map[uuid.UUID]assessments.State),
		items:           make(map[uuid.UUID][]assessments.ActionItem),
	}
}

func (g *graph) addAssessment(title string, status assessments.Status) uuid.UUID {
	id := uuid.New()
	g.assessments[id] = assessments.Assessment{ID: id, OrganizationID: uuid.New(), Title: title, Status: status}
	return id
}

func (g *graph) addDimension(name string) uuid.UUID {
	id := uuid.New()
	g.dimensions[id] = assessments.Dimension{ID: id, Name: name}
	return id
}

func (g *graph) addState(dimensionID uuid.UUID, level int) *uuid.UUID {
	id := uuid.New()
	g.states[id] = assessments.State{ID: id, DimensionID: dimensionID, Level: level}
	return &id
}

// addResult records a dimension result with a gap of the matching severity
// and one action item per recommendation description. An empty description
// produces an action item whose recommendation does not exist.
func (g *graph) addResult(assessmentID, dimensionID uuid.UUID, score int, current, desired *uuid.UUID, recs ...string) uuid.UUID {
	severity, err := assessments.SeverityFromGapScore(score)
	if err != nil {
		panic(err)
	}

	gap := assessments.Gap{ID: uuid.New(), DimensionID: dimensionID, Severity: severity, Description: string(severity) + " gap"}
	g.gaps[gap.ID] = gap

	da := assessments.DimensionAssessment{
		ID:             uuid.New(),
		AssessmentID:   assessmentID,
		DimensionID:    dimensionID,
		GapID:          gap.ID,
		GapScore:       score,
		CurrentStateID: current,
		DesiredStateID: desired,
	}
	g.results[assessmentID] = append(g.results[assessmentID], da)

	for _, desc := range recs {
		recID := uuid.New()
		if desc != "" {
			g.recommendations[recID] = assessments.Recommendation{ID: recID, DimensionID: dimensionID, Priority: severity.Priority(), Description: desc}
		}
		g.items[da.ID] = append(g.items[da.ID], assessments.ActionItem{
			ID:                    uuid.New(),
			RecommendationID:      recID,
			DimensionAssessmentID: da.ID,
			Status:                "pending",
			Priority:              severity.Priority(),
		})
	}
	return da.ID
}

func (g *graph) Find(_ context.Context, id uuid.UUID) (*assessments.Assessment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.finds++
	a, ok := g.assessments[id]
	if !ok {
		return nil, assessments.ErrNotFound
	}
	return &a, nil
}

func (g *graph) findCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.finds
}

func (g *graph) Complete(_ context.Context, id uuid.UUID) (*assessments.Assessment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.assessments[id]
	if !ok {
		return nil, assessments.ErrNotFound
	}
	now := time.Now().UTC()
	a.Status = assessments.StatusCompleted
	if a.CompletedAt == nil {
		a.CompletedAt = &now
	}
	g.assessments[id] = a
	return &a, nil
}

func (g *graph) Completed(_ context.Context, orgID *uuid.UUID) ([]assessments.Assessment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []assessments.Assessment
	for _, a := range g.assessments {
		if a.Status == assessments.StatusCompleted && (orgID == nil || a.OrganizationID == *orgID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (g *graph) DimensionAssessments(_ context.Context, assessmentID uuid.UUID) ([]assessments.DimensionAssessment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.results[assessmentID]), nil
}

func (g *graph) Dimension(_ context.Context, id uuid.UUID) (*assessments.Dimension, error) {
	d, ok := g.dimensions[id]
	if !ok {
		return nil, assessments.ErrDimensionNotFound
	}
	return &d, nil
}

func (g *graph) Gap(_ context.Context, id uuid.UUID) (*assessments.Gap, error) {
	v, ok := g.gaps[id]
	if !ok {
		return nil, assessments.ErrGapNotFound
	}
	return &v, nil
}

func (g *graph) Recommendation(_ context.Context, id uuid.UUID) (*assessments.Recommendation, error) {
	v, ok := g.recommendations[id]
	if !ok {
		return nil, assessments.ErrRecommendationNotFound
	}
	return &v, nil
}

func (g *graph) State(_ context.Context, id uuid.UUID) (*assessments.State, error) {
	v, ok := g.states[id]
	if !ok {
		return nil, assessments.ErrStateNotFound
	}
	return &v, nil
}

func (g *graph) ActionItems(_ context.Context, dimensionAssessmentID uuid.UUID) ([]assessments.ActionItem, error) {
	return slices.Clone(g.items[dimensionAssessmentID]), nil
}

func (g *graph) RecommendationsByPriority(_ context.Context, dimensionID uuid.UUID, priority assessments.Priority) ([]assessments.Recommendation, error) {
	var out []assessments.Recommendation
	for _, r := range g.recommendations {
		if r.DimensionID == dimensionID && r.Priority == priority {
			out = append(out, r)
		}
	}
	return out, nil
}

// queue records scheduled tasks so tests control when they run.
type queue struct {
	mu    sync.Mutex
	names []string
	tasks []dispatch.Task
}

func (q *queue) Go(name string, fn dispatch.Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.names = append(q.names, name)
	q.tasks = append(q.tasks, fn)
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// drain runs and clears every queued task, returning their errors.
func (q *queue) drain(ctx context.Context) []error {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	errs := make([]error, len(tasks))
	for i, fn := range tasks {
		errs[i] = fn(ctx)
	}
	return errs
}

// stallConverter blocks until its context ends.
type stallConverter struct{}

func (stallConverter) Convert(ctx context.Context, _ []byte) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// garbageConverter returns bytes that are not a PDF.
type garbageConverter struct{}

func (garbageConverter) Convert(context.Context, []byte) ([]byte, error) {
	return []byte("not a pdf"), nil
}
