// Package recommendations buckets questionnaire answers into items needing attention and items to maintain,
// and packs them into the plain-text block carried into the PDF report.
package recommendations

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mindwell-backend/internal/assessments/features"
)

const (
	attentionFallback = "Consider consulting a counselor or adopting stress-reduction strategies relevant to this area."
	maintainPrefix    = "Good — keep doing this. "
	maintainFallback  = "This parameter is in a low-risk range. Maintain your current habits that support this."
)

var tips = map[string]string{
	"anxiety_level":        "Try practicing the 4-7-8 breathing technique. Also, consider mindfulness apps for guided meditation.",
	"self_esteem":          "Practice positive self-talk. Each day, write down three things you did well, no matter how small.",
	"depression":           "Engage in light physical activity, like a 15-minute walk outside. Sunlight and movement can have a significant positive impact on mood.",
	"sleep_quality":        "Establish a consistent sleep schedule. Avoid screens for at least an hour before bed to improve your natural sleep cycle.",
	"academic_performance": "Break down large assignments into smaller, manageable tasks. Use a planner to schedule your work.",
	"social_support":       "Schedule regular calls or meetups with friends and family. A strong social connection is a powerful buffer against stress.",
}

// Tip returns the advice for a feature, if it has any.
func Tip(name string) (string, bool) {
	tip, ok := tips[name]
	return tip, ok
}

// Thresholds are inclusive: value >= High needs attention, value <= Low is maintained.
type Thresholds struct {
	High int
	Low  int
}

func DefaultThresholds() Thresholds {
	return Thresholds{High: 7, Low: 3}
}

type Recommendation struct {
	Feature string `json:"factor"`
	Label   string `json:"label"`
	Value   int    `json:"value"`
	Tip     string `json:"tip"`
}

type Buckets struct {
	Attention []Recommendation `json:"recommendations"`
	Maintain  []Recommendation `json:"maintain"`
}

// Classify places each feature in at most one bucket, keeping vector order.
func Classify(vector features.Vector, th Thresholds) Buckets {
	b := Buckets{Attention: []Recommendation{}, Maintain: []Recommendation{}}
	for _, f := range vector {
		switch {
		case f.Value >= th.High:
			tip, ok := tips[f.Name]
			if !ok {
				tip = attentionFallback
			}
			b.Attention = append(b.Attention, newRecommendation(f, tip))
		case f.Value <= th.Low:
			tip := maintainFallback
			if t, ok := tips[f.Name]; ok {
				tip = maintainPrefix + t
			}
			b.Maintain = append(b.Maintain, newRecommendation(f, tip))
		}
	}
	return b
}

func newRecommendation(f features.Feature, tip string) Recommendation {
	return Recommendation{Feature: f.Name, Label: Humanize(f.Name), Value: f.Value, Tip: tip}
}

// Humanize turns a feature name like "sleep_quality" into "Sleep Quality".
func Humanize(name string) string {
	// A Caser holds state, so each call gets its own.
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}
