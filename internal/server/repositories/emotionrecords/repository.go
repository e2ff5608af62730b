package emotionrecords

import (
	"context"

	"github.com/emotune/emotune/internal/server/models"
)

type Repository interface {
	// Create inserts a record and fills its generated ID and timestamps.
	Create(ctx context.Context, record *models.EmotionRecord) error

	// ListByUser returns the user's records ordered by creation time
	// ascending.
	ListByUser(ctx context.Context, userID int64) ([]*models.EmotionRecord, error)

	// DeleteByUserAndID deletes at most one record matching both the
	// record id and the owning user, returning the number of rows
	// affected. A non-matching owner yields zero rows, not an error.
	DeleteByUserAndID(ctx context.Context, id, userID int64) (int64, error)
}
