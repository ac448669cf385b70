// Package features turns raw questionnaire answers into the ordered vector the classifier expects.
package features

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultValue = 5
	MinValue     = 1
	MaxValue     = 10
)

// schedule is the classifier's training column order.
var schedule = []string{
	"anxiety_level",
	"self_esteem",
	"mental_health_history",
	"depression",
	"headache",
	"blood_pressure",
	"sleep_quality",
	"breathing_problem",
	"noise_level",
	"living_conditions",
	"safety",
	"basic_needs",
	"academic_performance",
	"study_load",
	"teacher_student_relationship",
	"future_career_concerns",
	"social_support",
	"peer_pressure",
	"extracurricular_activities",
	"bullying",
}

// Schedule returns a copy of the ordered feature names.
func Schedule() []string {
	out := make([]string, len(schedule))
	copy(out, schedule)
	return out
}

// Len is the number of scheduled features.
func Len() int { return len(schedule) }

// Source looks up a raw answer by feature name.
type Source interface {
	Get(name string) (string, bool)
}

// Values adapts url.Values (form posts, query strings).
type Values url.Values

func (v Values) Get(name string) (string, bool) {
	vals, ok := v[name]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// Map adapts a plain string map.
type Map map[string]string

func (m Map) Get(name string) (string, bool) {
	val, ok := m[name]
	return val, ok
}

type Feature struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Vector holds one value per scheduled feature, in schedule order.
type Vector []Feature

// Floats returns the values in order as classifier input.
func (v Vector) Floats() []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f.Value)
	}
	return out
}

// Value returns the value for name.
func (v Vector) Value(name string) (int, bool) {
	for _, f := range v {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}

func (v Vector) Map() map[string]int {
	out := make(map[string]int, len(v))
	for _, f := range v {
		out[f.Name] = f.Value
	}
	return out
}

// Collection is the collected vector plus diagnostics. Diagnostics never alter Vector.
type Collection struct {
	Vector Vector
	// Defaulted lists features that were absent, blank, or not an integer.
	Defaulted []string
	// Malformed is the subset of Defaulted that had a non-blank, non-integer value.
	Malformed []string
	// OutOfRange lists features whose parsed value lies outside [MinValue, MaxValue].
	OutOfRange []string
}

// Collect reads every scheduled feature from src. Anything missing or unparsable becomes DefaultValue.
// Parsed values outside the 1-10 range pass through unchanged.
func Collect(src Source) Collection {
	col := Collection{Vector: make(Vector, 0, len(schedule))}
	for _, name := range schedule {
		raw, ok := "", false
		if src != nil {
			raw, ok = src.Get(name)
		}
		value, parsed := parse(raw)
		if !ok || !parsed {
			value = DefaultValue
			col.Defaulted = append(col.Defaulted, name)
			if ok && strings.TrimSpace(raw) != "" {
				col.Malformed = append(col.Malformed, name)
			}
		} else if value < MinValue || value > MaxValue {
			col.OutOfRange = append(col.OutOfRange, name)
		}
		col.Vector = append(col.Vector, Feature{Name: name, Value: value})
	}
	return col
}

func parse(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
