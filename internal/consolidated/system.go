package consolidated

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/meridian/internal/assessments"
	"github.com/JaimeStill/meridian/internal/weighting"
)

// loadLimit bounds concurrent dimension-assessment loads.
const loadLimit = 8

// System builds consolidated reports.
type System interface {
	Handler() *Handler

	// Consolidate folds the given submissions into one report.
	Consolidate(ctx context.Context, submissions []assessments.Assessment) (*Report, error)
	// All consolidates every completed assessment.
	All(ctx context.Context) (*Report, error)
	// ForOrganization consolidates the completed assessments of one organization.
	ForOrganization(ctx context.Context, orgID uuid.UUID) (*Report, error)
}

type aggregator struct {
	reader assessments.Reader
	logger *slog.Logger
	now    func() time.Time
}

// New creates a consolidated report System over the assessment read model.
func New(reader assessments.Reader, logger *slog.Logger) System {
	return &aggregator{
		reader: reader,
		logger: logger.With("system", "consolidated"),
		now:    time.Now,
	}
}

func (a *aggregator) Handler() *Handler {
	return NewHandler(a, a.logger)
}

func (a *aggregator) All(ctx context.Context) (*Report, error) {
	submissions, err := a.reader.Completed(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load completed assessments: %w", err)
	}
	return a.Consolidate(ctx, submissions)
}

func (a *aggregator) ForOrganization(ctx context.Context, orgID uuid.UUID) (*Report, error) {
	submissions, err := a.reader.Completed(ctx, &orgID)
	if err != nil {
		return nil, fmt.Errorf("load completed assessments for organization %s: %w", orgID, err)
	}

	rpt, err := a.Consolidate(ctx, submissions)
	if err != nil {
		return nil, err
	}
	rpt.OrganizationID = &orgID
	return rpt, nil
}

type bucket struct {
	dimensionID uuid.UUID
	scores      []int
}

func (a *aggregator) Consolidate(ctx context.Context, submissions []assessments.Assessment) (*Report, error) {
	results, err := a.load(ctx, submissions)
	if err != nil {
		return nil, err
	}

	var (
		buckets  []*bucket
		index    = make(map[uuid.UUID]*bucket)
		weighted []weighting.Weighted
		sum      int
		count    int
	)

	for _, rows := range results {
		for _, da := range rows {
			b, ok := index[da.DimensionID]
			if !ok {
				b = &bucket{dimensionID: da.DimensionID}
				index[da.DimensionID] = b
				buckets = append(buckets, b)
			}
			b.scores = append(b.scores, da.GapScore)
			sum += da.GapScore
			count++
		}
	}

	rpt := &Report{
		SubmissionCount:      len(submissions),
		DimensionAssessments: count,
		Dimensions:           make([]DimensionSummary, 0, len(buckets)),
		GeneratedAt:          a.now().UTC(),
	}

	var riskSum float64
	for _, b := range buckets {
		summary, err := a.summarize(ctx, b)
		if err != nil {
			return nil, err
		}
		rpt.Dimensions = append(rpt.Dimensions, summary)
		riskSum += summary.AverageRiskLevel

		for _, score := range b.scores {
			weighted = append(weighted, weighting.Weighted{GapScore: score, Weight: summary.Weight})
		}
	}

	if count > 0 {
		rpt.OverallAverageGapScore = float64(sum) / float64(count)
	}
	if len(buckets) > 0 {
		rpt.OverallAverageRiskLevel = riskSum / float64(len(buckets))
	}
	rpt.TotalWeightedScore = weighting.TotalWeightedScore(weighted)

	a.logger.Debug("consolidated report built",
		"submissions", rpt.SubmissionCount,
		"dimensions", len(rpt.Dimensions),
		"results", count,
	)

	return rpt, nil
}

// load fetches each submission's dimension-assessments concurrently. The
// result slice keeps submission order.
func (a *aggregator) load(ctx context.Context, submissions []assessments.Assessment) ([][]assessments.DimensionAssessment, error) {
	results := make([][]assessments.DimensionAssessment, len(submissions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadLimit)

	for i, s := range submissions {
		g.Go(func() error {
			rows, err := a.reader.DimensionAssessments(gctx, s.ID)
			if err != nil {
				return fmt.Errorf("load results of assessment %s: %w", s.ID, err)
			}
			results[i] = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *aggregator) summarize(ctx context.Context, b *bucket) (DimensionSummary, error) {
	dim, err := a.reader.Dimension(ctx, b.dimensionID)
	if err != nil {
		return DimensionSummary{}, fmt.Errorf("load dimension %s: %w", b.dimensionID, err)
	}

	recs, err := a.reader.RecommendationsByPriority(ctx, b.dimensionID, assessments.PriorityHigh)
	if err != nil {
		return DimensionSummary{}, fmt.Errorf("load recommendations of dimension %s: %w", b.dimensionID, err)
	}

	top := make([]string, 0, len(recs))
	for _, rec := range recs {
		top = append(top, rec.Description)
	}

	var scoreSum, riskSum, high, medium, low int
	for _, score := range b.scores {
		scoreSum += score
		level := riskLevel(score)
		riskSum += level
		switch level {
		case riskHigh:
			high++
		case riskMedium:
			medium++
		default:
			low++
		}
	}

	n := float64(len(b.scores))
	avg := float64(scoreSum) / n

	return DimensionSummary{
		DimensionID:     dim.ID,
		Name:            dim.Name,
		Count:           len(b.scores),
		AverageGapScore: avg,
		RiskDistribution: RiskDistribution{
			High:   float64(high) * 100 / n,
			Medium: float64(medium) * 100 / n,
			Low:    float64(low) * 100 / n,
		},
		AverageRiskLevel:   float64(riskSum) / n,
		TopRecommendations: top,
		Weight:             dim.Weight,
		WeightedGapScore:   avg * weighting.Multiplier(dim.Weight),
		PriorityScore:      weighting.PriorityScore(int(math.Round(avg)), dim.Weight),
	}, nil
}
