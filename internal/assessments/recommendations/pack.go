package recommendations

import (
	"fmt"
	"strings"
)

const (
	attentionHeader = "Affected Parameters:"
	maintainHeader  = "Parameters to Maintain:"
	balancedLine    = "No specific high-risk parameters detected. Inputs look balanced."
)

// Pack renders buckets as newline-separated text.
func Pack(b Buckets) string {
	var lines []string
	if len(b.Attention) > 0 {
		lines = append(lines, attentionHeader)
		for _, r := range b.Attention {
			lines = append(lines, formatLine(r))
		}
	}
	if len(b.Maintain) > 0 {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, maintainHeader)
		for _, r := range b.Maintain {
			lines = append(lines, formatLine(r))
		}
	}
	if len(lines) == 0 {
		return balancedLine
	}
	return strings.Join(lines, "\n")
}

func formatLine(r Recommendation) string {
	label := r.Label
	if label == "" {
		label = Humanize(r.Feature)
	}
	return fmt.Sprintf("%s (%d): %s", label, r.Value, r.Tip)
}
