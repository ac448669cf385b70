package assessments

import (
	"errors"
	"fmt"
	"strings"

	"mindwell-backend/internal/assessments/classifier"
)

var (
	ErrModelUnavailable = classifier.ErrModelUnavailable
	ErrPredictionFailed = errors.New("prediction failed")
	ErrInvalidInput     = errors.New("invalid input")
)

const (
	msgModelUnavailable = "The prediction model is not loaded. Please contact the administrator."
	msgPredictionFailed = "An error occurred during prediction. Please try again."
)

// InputError lists the answers rejected in strict mode.
type InputError struct {
	Malformed  []string `json:"malformed,omitempty"`
	OutOfRange []string `json:"outOfRange,omitempty"`
}

func (e *InputError) Error() string {
	var parts []string
	if len(e.Malformed) > 0 {
		parts = append(parts, "not an integer: "+strings.Join(e.Malformed, ", "))
	}
	if len(e.OutOfRange) > 0 {
		parts = append(parts, "outside 1-10: "+strings.Join(e.OutOfRange, ", "))
	}
	return fmt.Sprintf("invalid input (%s)", strings.Join(parts, "; "))
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }
