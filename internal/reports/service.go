package reports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"mindwell-backend/internal/shared/metrics"
	"mindwell-backend/internal/shared/storage/object"
	"mindwell-backend/internal/shared/telemetry"
)

var ErrNotFound = errors.New("report not found")

const contentType = "application/pdf"

// Report is a rendered PDF and, when archived, where it was stored.
type Report struct {
	PDF        []byte
	FileName   string
	StorageKey string
}

type Service struct {
	// Store is optional; without it reports are rendered but not archived.
	Store object.ObjectStore

	now func() time.Time
}

func NewService(store object.ObjectStore) *Service {
	return &Service{Store: store, now: time.Now}
}

// Generate renders the report and archives a copy under userID's namespace.
// An archive failure is logged and the rendered PDF is still returned.
func (s *Service) Generate(ctx context.Context, userID string, in Input) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	if in.GeneratedAt.IsZero() && s.now != nil {
		in.GeneratedAt = s.now()
	}
	pdf, err := Build(in)
	if err != nil {
		return Report{}, err
	}
	metrics.IncReportGenerated()

	report := Report{PDF: pdf, FileName: FileName}
	if s.Store == nil || strings.TrimSpace(userID) == "" {
		return report, nil
	}
	obj, err := s.Store.Put(ctx, userID, FileName, contentType, pdf)
	if err != nil {
		telemetry.Warn("report.archive_failed", map[string]any{
			"user_id": userID,
			"error":   err,
		})
		return report, nil
	}
	telemetry.Info("report.archived", map[string]any{
		"user_id":    userID,
		"report_key": obj.Key,
		"size_bytes": obj.Size,
		"prediction": in.Prediction,
	})
	report.StorageKey = obj.Key
	return report, nil
}

// List returns the reports archived for userID, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]object.Object, error) {
	if s.Store == nil || strings.TrimSpace(userID) == "" {
		return []object.Object{}, nil
	}
	items, err := s.Store.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return items, nil
}

// Open returns an archived report owned by userID.
func (s *Service) Open(ctx context.Context, userID, key string) ([]byte, error) {
	if s.Store == nil {
		return nil, ErrNotFound
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" || !object.OwnedBy(key, userID) {
		return nil, ErrNotFound
	}
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
