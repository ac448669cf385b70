// Package assessments scores the stress questionnaire and builds the recommendations shown to the student.
package assessments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mindwell-backend/internal/assessments/classifier"
	"mindwell-backend/internal/assessments/features"
	"mindwell-backend/internal/assessments/recommendations"
	"mindwell-backend/internal/shared/metrics"
	"mindwell-backend/internal/shared/telemetry"
)

// Service runs collect, score, classify and pack for one submission.
type Service struct {
	Adapter    *classifier.Adapter
	Thresholds recommendations.Thresholds
	// Strict rejects malformed or out-of-range answers instead of passing them on.
	Strict bool

	now func() time.Time
}

func NewService(adapter *classifier.Adapter, strict bool) *Service {
	return &Service{
		Adapter:    adapter,
		Thresholds: recommendations.DefaultThresholds(),
		Strict:     strict,
		now:        time.Now,
	}
}

// ModelAvailable reports whether scoring can run.
func (s *Service) ModelAvailable() bool {
	return s != nil && s.Adapter.Available()
}

// Assess scores the answers in src. Panics during scoring are recovered and reported as ErrPredictionFailed.
func (s *Service) Assess(ctx context.Context, src features.Source) (res Result, err error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if !s.ModelAvailable() {
		metrics.IncAssessmentFailure("model_unavailable")
		return Result{}, ErrModelUnavailable
	}

	now := s.now
	if now == nil {
		now = time.Now
	}
	start := now()

	defer func() {
		if rec := recover(); rec != nil {
			telemetry.Error("assessment.panic", map[string]any{"error": fmt.Sprint(rec)})
			metrics.IncAssessmentFailure("panic")
			res, err = Result{}, ErrPredictionFailed
		}
	}()

	col := features.Collect(src)
	if s.Strict && (len(col.Malformed) > 0 || len(col.OutOfRange) > 0) {
		metrics.IncAssessmentFailure("invalid_input")
		return Result{}, &InputError{Malformed: col.Malformed, OutOfRange: col.OutOfRange}
	}
	if len(col.Defaulted) > 0 || len(col.OutOfRange) > 0 {
		telemetry.Info("assessment.input_adjusted", map[string]any{
			"defaulted":    len(col.Defaulted),
			"malformed":    col.Malformed,
			"out_of_range": col.OutOfRange,
		})
	}

	pred, err := s.Adapter.Predict(col.Vector.Floats())
	if err != nil {
		if errors.Is(err, classifier.ErrModelUnavailable) {
			metrics.IncAssessmentFailure("model_unavailable")
			return Result{}, ErrModelUnavailable
		}
		telemetry.Error("assessment.failed", map[string]any{"error": err})
		metrics.IncAssessmentFailure("predict")
		return Result{}, fmt.Errorf("%w: %w", ErrPredictionFailed, err)
	}

	buckets := recommendations.Classify(col.Vector, s.Thresholds)
	pct := pred.Percentages()
	res = Result{
		Level: pred.Label,
		Probabilities: Probabilities{
			Low:    pct[0],
			Medium: pct[1],
			High:   pct[2],
		},
		Recommendations:       buckets.Attention,
		Maintain:              buckets.Maintain,
		Features:              col.Vector,
		PackedRecommendations: recommendations.Pack(buckets),
	}
	metrics.ObserveAssessment(res.Level, now().Sub(start))
	return res, nil
}
