// Package classifier loads the trained stress model and turns its raw output into a labelled prediction.
package classifier

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/goccy/go-json"

	"mindwell-backend/internal/assessments/features"
)

// Labels are the stress levels in class-index order.
var Labels = []string{"Low", "Medium", "High"}

// Model is any trained classifier that yields one probability per class.
type Model interface {
	PredictProba(features []float64) ([]float64, error)
	Classes() []string
}

// LinearModel is a multinomial logistic-regression export.
type LinearModel struct {
	Kind         string      `json:"type"`
	ClassNames   []string    `json:"classes"`
	Features     []string    `json:"features"`
	Coefficients [][]float64 `json:"coefficients"`
	Intercepts   []float64   `json:"intercepts"`
	// Mean and Scale are the optional standardization applied before the linear step.
	Mean  []float64 `json:"mean,omitempty"`
	Scale []float64 `json:"scale,omitempty"`
}

// LoadFile reads and validates a model export.
func LoadFile(path string) (*LinearModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m LinearModel
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the export against the feature schedule and label order.
func (m *LinearModel) Validate() error {
	if m.Kind != "" && m.Kind != "multinomial_logistic_regression" {
		return fmt.Errorf("unsupported model type %q", m.Kind)
	}
	if !slices.Equal(m.ClassNames, Labels) {
		return fmt.Errorf("model classes %v, want %v", m.ClassNames, Labels)
	}
	if !slices.Equal(m.Features, features.Schedule()) {
		return errors.New("model feature order does not match the questionnaire schedule")
	}
	width := features.Len()
	if len(m.Coefficients) != len(Labels) || len(m.Intercepts) != len(Labels) {
		return fmt.Errorf("model needs %d coefficient rows and intercepts", len(Labels))
	}
	for i, row := range m.Coefficients {
		if len(row) != width {
			return fmt.Errorf("coefficient row %d has %d values, want %d", i, len(row), width)
		}
		if !allFinite(row) {
			return fmt.Errorf("coefficient row %d has non-finite values", i)
		}
	}
	if !allFinite(m.Intercepts) {
		return errors.New("intercepts have non-finite values")
	}
	if len(m.Mean) != 0 || len(m.Scale) != 0 {
		if len(m.Mean) != width || len(m.Scale) != width {
			return fmt.Errorf("mean and scale need %d values each", width)
		}
		if !allFinite(m.Mean) || !allFinite(m.Scale) {
			return errors.New("standardization has non-finite values")
		}
		for i, s := range m.Scale {
			if s == 0 {
				return fmt.Errorf("scale[%d] is zero", i)
			}
		}
	}
	return nil
}

func (m *LinearModel) Classes() []string {
	return slices.Clone(m.ClassNames)
}

// PredictProba returns softmax(W·x + b).
func (m *LinearModel) PredictProba(x []float64) ([]float64, error) {
	if len(x) != len(m.Features) {
		return nil, fmt.Errorf("got %d features, want %d", len(x), len(m.Features))
	}
	scaled := x
	if len(m.Mean) > 0 {
		scaled = make([]float64, len(x))
		for i := range x {
			scaled[i] = (x[i] - m.Mean[i]) / m.Scale[i]
		}
	}

	logits := make([]float64, len(m.Coefficients))
	maxLogit := math.Inf(-1)
	for k, row := range m.Coefficients {
		z := m.Intercepts[k]
		for i, w := range row {
			z += w * scaled[i]
		}
		logits[k] = z
		maxLogit = math.Max(maxLogit, z)
	}

	sum := 0.0
	for k, z := range logits {
		logits[k] = math.Exp(z - maxLogit)
		sum += logits[k]
	}
	for k := range logits {
		logits[k] /= sum
	}
	return logits, nil
}

func allFinite(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
