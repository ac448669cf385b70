package reviews

import (
	"context"
	"database/sql"
	"fmt"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, review Review) (Review, error) {
	const query = `
INSERT INTO reviews (id, author, content, created_at)
VALUES ($1, $2, $3, now())
RETURNING created_at`
	if err := r.DB.QueryRowContext(ctx, query, review.ID, review.Author, review.Content).Scan(&review.CreatedAt); err != nil {
		return Review{}, fmt.Errorf("insert review: %w", err)
	}
	return review, nil
}

func (r *PGRepo) Recent(ctx context.Context, limit int) ([]Review, error) {
	const query = `
SELECT id, author, content, created_at
FROM reviews
ORDER BY created_at DESC, id DESC
LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	out := make([]Review, 0, limit)
	for rows.Next() {
		var review Review
		if err := rows.Scan(&review.ID, &review.Author, &review.Content, &review.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out = append(out, review)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
