package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/meridian/internal/assessments"
)

// DataSource produces the renderable view of an assessment.
type DataSource interface {
	Aggregate(ctx context.Context, assessmentID uuid.UUID) (*ReportData, error)
}

// Aggregator folds the assessment graph into ReportData.
type Aggregator struct {
	reader assessments.Reader
	logger *slog.Logger
	now    func() time.Time
}

// NewAggregator creates an Aggregator reading through reader.
func NewAggregator(reader assessments.Reader, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		reader: reader,
		logger: logger.With("system", "reports", "component", "aggregator"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Aggregate builds one row per dimension-assessment, in creation order.
// A dangling gap fails the aggregation. Missing recommendations are skipped
// and missing states read as level 0. Chart is nil when there are no rows.
func (a *Aggregator) Aggregate(ctx context.Context, assessmentID uuid.UUID) (*ReportData, error) {
	assessment, err := a.reader.Find(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	results, err := a.reader.DimensionAssessments(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	data := &ReportData{
		AssessmentID: assessment.ID,
		Title:        assessment.Title,
		Rows:         make([]ReportRow, 0, len(results)),
		GeneratedAt:  a.now(),
	}

	names := make(map[uuid.UUID]string)

	for _, da := range results {
		row, err := a.row(ctx, da, names)
		if err != nil {
			return nil, err
		}
		data.Rows = append(data.Rows, row)
	}

	if len(data.Rows) > 0 {
		chart := &Chart{
			Labels:        make([]string, len(data.Rows)),
			CurrentLevels: make([]int, len(data.Rows)),
			DesiredLevels: make([]int, len(data.Rows)),
		}
		for i, row := range data.Rows {
			chart.Labels[i] = row.Category
			chart.CurrentLevels[i] = row.CurrentLevel
			chart.DesiredLevels[i] = row.DesiredLevel
		}
		data.Chart = chart
	}

	return data, nil
}

func (a *Aggregator) row(ctx context.Context, da assessments.DimensionAssessment, names map[uuid.UUID]string) (ReportRow, error) {
	name, ok := names[da.DimensionID]
	if !ok {
		dim, err := a.reader.Dimension(ctx, da.DimensionID)
		if err != nil {
			return ReportRow{}, fmt.Errorf("dimension of %s: %w", da.ID, err)
		}
		name = dim.Name
		names[da.DimensionID] = name
	}

	gap, err := a.reader.Gap(ctx, da.GapID)
	if err != nil {
		return ReportRow{}, fmt.Errorf("gap of %s: %w", da.ID, err)
	}

	recs, err := a.recommendations(ctx, da.ID)
	if err != nil {
		return ReportRow{}, err
	}

	current, err := a.level(ctx, da.CurrentStateID)
	if err != nil {
		return ReportRow{}, err
	}

	desired, err := a.level(ctx, da.DesiredStateID)
	if err != nil {
		return ReportRow{}, err
	}

	return ReportRow{
		Category:        name,
		GapScore:        da.GapScore,
		SeverityLabel:   gap.Severity.Label(),
		SeverityClass:   gap.Severity.Class(),
		ResultText:      gap.Description,
		Recommendations: recs,
		CurrentLevel:    current,
		DesiredLevel:    desired,
	}, nil
}

func (a *Aggregator) recommendations(ctx context.Context, dimensionAssessmentID uuid.UUID) ([]string, error) {
	items, err := a.reader.ActionItems(ctx, dimensionAssessmentID)
	if err != nil {
		return nil, err
	}

	recs := make([]string, 0, len(items))
	for _, item := range items {
		rec, err := a.reader.Recommendation(ctx, item.RecommendationID)
		if errors.Is(err, assessments.ErrRecommendationNotFound) {
			a.logger.Debug(
				"skipping missing recommendation",
				"action_item_id", item.ID,
				"recommendation_id", item.RecommendationID,
			)
			continue
		}
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec.Description)
	}
	return recs, nil
}

func (a *Aggregator) level(ctx context.Context, stateID *uuid.UUID) (int, error) {
	if stateID == nil {
		return 0, nil
	}

	state, err := a.reader.State(ctx, *stateID)
	if errors.Is(err, assessments.ErrStateNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return state.Level, nil
}
