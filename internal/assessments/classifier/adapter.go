package classifier

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"mindwell-backend/internal/assessments/features"
)

var ErrModelUnavailable = errors.New("prediction model not loaded")

// Prediction is the labelled outcome of one scoring call.
type Prediction struct {
	Index int
	Label string
	// Probabilities are renormalized fractions in label order.
	Probabilities []float64
}

// Percentages returns the probabilities scaled to sum to 100.
func (p Prediction) Percentages() []float64 {
	out := make([]float64, len(p.Probabilities))
	for i, v := range p.Probabilities {
		out[i] = v * 100
	}
	return out
}

// Adapter wraps a model loaded once at startup. It is read-only afterwards.
type Adapter struct {
	model   Model
	loadErr error
}

// NewAdapter wraps model. A nil model, or one whose classes are not Labels in order,
// gives an adapter that is not available.
func NewAdapter(model Model) *Adapter {
	if model == nil {
		return &Adapter{loadErr: ErrModelUnavailable}
	}
	if err := checkClasses(model); err != nil {
		return &Adapter{loadErr: err}
	}
	return &Adapter{model: model}
}

// Predictions index Labels directly, so the model's class order must match it exactly.
func checkClasses(model Model) error {
	if classes := model.Classes(); !slices.Equal(classes, Labels) {
		return fmt.Errorf("%w: model classes %v, want %v", ErrModelUnavailable, classes, Labels)
	}
	return nil
}

// LoadAdapter loads the model at path. The adapter is always usable; on failure it reports unavailable
// and the returned error says why.
func LoadAdapter(path string) (*Adapter, error) {
	m, err := LoadFile(path)
	if err != nil {
		return &Adapter{loadErr: err}, err
	}
	a := NewAdapter(m)
	return a, a.loadErr
}

func (a *Adapter) Available() bool {
	return a != nil && a.model != nil
}

// LoadError is the reason the model is unavailable, or nil.
func (a *Adapter) LoadError() error {
	if a == nil {
		return ErrModelUnavailable
	}
	return a.loadErr
}

// Predict scores one ordered feature vector.
func (a *Adapter) Predict(vector []float64) (Prediction, error) {
	if !a.Available() {
		return Prediction{}, ErrModelUnavailable
	}
	if len(vector) != features.Len() {
		return Prediction{}, fmt.Errorf("vector has %d values, want %d", len(vector), features.Len())
	}

	raw, err := a.model.PredictProba(vector)
	if err != nil {
		return Prediction{}, fmt.Errorf("predict: %w", err)
	}
	if len(raw) != len(Labels) {
		return Prediction{}, fmt.Errorf("model returned %d probabilities, want %d", len(raw), len(Labels))
	}

	sum := 0.0
	for i, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return Prediction{}, fmt.Errorf("invalid probability %v at index %d", v, i)
		}
		sum += v
	}
	if sum <= 0 {
		return Prediction{}, errors.New("probabilities sum to zero")
	}

	probs := make([]float64, len(raw))
	best := 0
	for i, v := range raw {
		probs[i] = v / sum
		// Strict comparison keeps the lowest index on ties.
		if probs[i] > probs[best] {
			best = i
		}
	}
	return Prediction{Index: best, Label: Labels[best], Probabilities: probs}, nil
}
