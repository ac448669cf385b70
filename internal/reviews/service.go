package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	DefaultRecentLimit = 6
	MaxRecentLimit     = 50
	MaxContentLength   = 2000
)

var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	Repo        Repo
	RecentLimit int
}

func NewService(repo Repo, recentLimit int) *Service {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &Service{Repo: repo, RecentLimit: recentLimit}
}

// Create stores a review written by author.
func (s *Service) Create(ctx context.Context, author, content string) (Review, error) {
	if s == nil || s.Repo == nil {
		return Review{}, errors.New("reviews service not configured")
	}
	author = strings.TrimSpace(author)
	if author == "" {
		return Review{}, fmt.Errorf("%w: author is required", ErrInvalidInput)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Review{}, fmt.Errorf("%w: review cannot be empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return Review{}, fmt.Errorf("%w: review must be at most %d characters", ErrInvalidInput, MaxContentLength)
	}
	return s.Repo.Create(ctx, Review{
		ID:      uuid.NewString(),
		Author:  author,
		Content: content,
	})
}

// Recent lists the newest reviews. A non-positive limit uses the configured default.
func (s *Service) Recent(ctx context.Context, limit int) ([]Review, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("reviews service not configured")
	}
	if limit <= 0 {
		limit = s.RecentLimit
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	return s.Repo.Recent(ctx, limit)
}
