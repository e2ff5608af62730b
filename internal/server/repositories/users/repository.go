package users

import (
	"context"

	"github.com/emotune/emotune/internal/server/models"
)

type Repository interface {
	// Upsert inserts a user or merges the supplied fields into the
	// existing row with the same OpenID.
	Upsert(ctx context.Context, patch *models.UserUpsert) error

	// GetByOpenID returns the user with the given OpenID, or
	// common.ErrorNotFound.
	GetByOpenID(ctx context.Context, openID string) (*models.User, error)
}
