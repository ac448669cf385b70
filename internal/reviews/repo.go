package reviews

import "context"

type Repo interface {
	Create(ctx context.Context, review Review) (Review, error)
	// Recent returns up to limit reviews, newest first.
	Recent(ctx context.Context, limit int) ([]Review, error)
}
