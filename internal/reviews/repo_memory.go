package reviews

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	reviews []Review
	now     func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{now: time.Now}
}

func (r *MemoryRepo) Create(ctx context.Context, review Review) (Review, error) {
	if err := ctx.Err(); err != nil {
		return Review{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = r.now().UTC()
	}
	r.reviews = append(r.reviews, review)
	return review, nil
}

func (r *MemoryRepo) Recent(ctx context.Context, limit int) ([]Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Review, 0, len(r.reviews))
	for i := len(r.reviews) - 1; i >= 0; i-- {
		out = append(out, r.reviews[i])
	}
	r.mu.RUnlock()

	// out starts in reverse insertion order, so ties keep the later review first.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
