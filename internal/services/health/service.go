package health

import (
	"context"
	"database/sql"
	"time"

	"mindwell-backend/internal/shared/storage/db"
)

// ModelProbe reports whether the classifier is loaded.
type ModelProbe interface {
	ModelAvailable() bool
}

// Service encapsulates health-related checks.
type Service struct {
	DB    *sql.DB
	Model ModelProbe
}

// Status is the health payload.
type Status struct {
	OK         bool   `json:"ok"`
	Model      bool   `json:"model"`
	Database   string `json:"database"`
	DatabaseOK bool   `json:"databaseOk"`
}

// NewService constructs a new health service. A nil database means in-memory repositories.
func NewService(database *sql.DB, model ModelProbe) *Service {
	return &Service{DB: database, Model: model}
}

// Status reports liveness plus which backends are serving requests.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, Database: "memory", DatabaseOK: true}
	if s.Model != nil {
		st.Model = s.Model.ModelAvailable()
	}
	if s.DB != nil {
		st.Database = "postgres"
		st.DatabaseOK = db.Ping(ctx, s.DB, 2*time.Second)
	}
	return st
}
