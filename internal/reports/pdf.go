// Package reports renders the downloadable stress report and archives copies per user.
package reports

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	FileName = "mindwell_report_simple.pdf"

	title            = "MindWell — Stress Analysis Report"
	notProvided      = "Not provided"
	noRecommendation = "No specific recommendations were provided. Stress levels appear balanced."
	disclaimer       = "This report is for informational purposes only — not a medical diagnosis."

	margin     = 50.0
	bodySize   = 11.0
	lineHeight = 15.0
	bulletGap  = 14.0
)

var checklist = []string{
	"Practice 10 minutes of slow breathing / mindfulness",
	"Do 15–30 minutes of light physical activity",
	"Use 25-minute focused work blocks (Pomodoro)",
	"Talk to a friend / family member once a week",
}

// Input is what a report is built from. Empty fields fall back to placeholders.
type Input struct {
	PatientName     string
	Prediction      string
	Recommendations string
	Symptoms        string
	SymptomsLong    string
	GeneratedAt     time.Time
}

func (in Input) symptoms() string {
	if s := strings.TrimSpace(in.SymptomsLong); s != "" {
		return s
	}
	if s := strings.TrimSpace(in.Symptoms); s != "" {
		return s
	}
	return notProvided
}

// Build renders a letter-size PDF.
func Build(in Input) ([]byte, error) {
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now()
	}
	name := strings.TrimSpace(in.PatientName)
	if name == "" {
		name = "Unknown"
	}
	prediction := strings.TrimSpace(in.Prediction)
	if prediction == "" {
		prediction = "N/A"
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetCreationDate(in.GeneratedAt)
	pdf.SetTitle("MindWell Stress Analysis Report", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	width, _ := pdf.GetPageSize()
	contentWidth := width - 2*margin

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(contentWidth, 26, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0x55, 0x55, 0x55)
	pdf.CellFormat(contentWidth, 14, "Generated on: "+in.GeneratedAt.Format("2006-01-02 15:04:05"), "", 1, "C", false, 0, "")
	pdf.Ln(15)

	heading(pdf, "Patient Details")
	body(pdf, tr, contentWidth, "Name: "+name)
	body(pdf, tr, contentWidth, "Predicted Stress Level: "+prediction)
	pdf.Ln(10)

	heading(pdf, "Reported Symptoms")
	body(pdf, tr, contentWidth, in.symptoms())

	heading(pdf, "Recommendations")
	recs := strings.TrimSpace(in.Recommendations)
	if recs == "" {
		body(pdf, tr, contentWidth, noRecommendation)
	} else {
		for _, line := range strings.Split(recs, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if rest, ok := strings.CutPrefix(line, "- "); ok {
				bullet(pdf, tr, contentWidth, rest)
				continue
			}
			body(pdf, tr, contentWidth, line)
		}
	}

	heading(pdf, "Action Checklist")
	for _, item := range checklist {
		checkbox(pdf, tr, contentWidth, item)
	}
	pdf.Ln(20)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0x66, 0x66, 0x66)
	pdf.CellFormat(contentWidth, 10, tr(disclaimer), "", 1, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(0x0b, 0x48, 0x6b)
	pdf.CellFormat(0, 16, text, "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

func body(pdf *fpdf.Fpdf, tr func(string) string, width float64, text string) {
	pdf.SetFont("Helvetica", "", bodySize)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(width, lineHeight, tr(text), "", "L", false)
}

func bullet(pdf *fpdf.Fpdf, tr func(string) string, width float64, text string) {
	pdf.SetFont("Helvetica", "", bodySize)
	pdf.SetTextColor(0, 0, 0)
	x := pdf.GetX()
	pdf.SetX(x + 8)
	pdf.CellFormat(bulletGap-8, lineHeight, tr("•"), "", 0, "L", false, 0, "")
	pdf.MultiCell(width-bulletGap, lineHeight, tr(text), "", "L", false)
	pdf.SetX(x)
}

func checkbox(pdf *fpdf.Fpdf, tr func(string) string, width float64, text string) {
	pdf.SetFont("Helvetica", "", bodySize)
	pdf.SetTextColor(0, 0, 0)
	x, y := pdf.GetX(), pdf.GetY()
	pdf.SetDrawColor(0x33, 0x33, 0x33)
	pdf.Rect(x+8, y+3.5, 8, 8, "D")
	pdf.SetX(x + 8 + bulletGap)
	pdf.MultiCell(width-8-bulletGap, lineHeight, tr(text), "", "L", false)
	pdf.SetX(x)
}
