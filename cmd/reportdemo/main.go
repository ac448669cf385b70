package main

// Render a sample report end to end:
//   go run ./cmd/reportdemo -out ./out/mindwell_report_simple.pdf

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"mindwell-backend/internal/assessments"
	"mindwell-backend/internal/assessments/classifier"
	"mindwell-backend/internal/assessments/features"
	"mindwell-backend/internal/reports"
)

func main() {
	outPath := flag.String("out", "./out/"+reports.FileName, "output path for the generated PDF")
	modelPath := flag.String("model", "models/stress_model.json", "classifier export to score the sample with")
	name := flag.String("name", "Sample Student", "patient name printed on the report")
	flag.Parse()

	adapter, err := classifier.LoadAdapter(*modelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load model: %v\n", err)
		os.Exit(1)
	}

	result, err := assessments.NewService(adapter, false).Assess(context.Background(), sampleAnswers())
	if err != nil {
		fmt.Fprintf(os.Stderr, "assess failed: %v\n", err)
		os.Exit(1)
	}

	doc, err := reports.Build(reports.Input{
		PatientName:     *name,
		Prediction:      result.Level,
		Recommendations: result.PackedRecommendations,
		Symptoms:        "Trouble sleeping before exams, racing thoughts",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, doc, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}

	if err := reports.Verify(doc, "Patient Details", "Action Checklist", result.Level); err != nil {
		fmt.Fprintf(os.Stderr, "report validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK: wrote %s (level %s)\n", *outPath, result.Level)
}

func sampleAnswers() features.Map {
	return features.Map{
		"anxiety_level":              "8",
		"self_esteem":                "3",
		"depression":                 "7",
		"sleep_quality":              "2",
		"academic_performance":       "4",
		"study_load":                 "9",
		"future_career_concerns":     "8",
		"social_support":             "3",
		"peer_pressure":              "7",
		"extracurricular_activities": "5",
		"bullying":                   "2",
	}
}
