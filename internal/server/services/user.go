// Package services contains server-side business logic. This file
// implements UserService, which owns the identity upsert policy: partial
// merges by OpenID, the owner-role default, and soft degradation when no
// database is configured.
package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/emotune/emotune/internal/common"
	"github.com/emotune/emotune/internal/logging"
	"github.com/emotune/emotune/internal/server/config"
	"github.com/emotune/emotune/internal/server/models"
	"github.com/emotune/emotune/internal/server/repositories/repomanager"
)

// UserService provides identity operations:
//   - Upsert: insert-or-merge a user by OpenID
//   - GetByOpenID: look a user up
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ownerOpenID string
	logger      logging.Logger
}

// NewUserService constructs a UserService. db may be nil when no DSN is
// configured; upserts are then skipped and lookups report not found.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		ownerOpenID: cfg.OwnerOpenID,
		logger:      l.With("module", "user_service"),
	}
}

// Upsert inserts or merges the user identified by patch.OpenID. A missing
// OpenID is a contract violation regardless of store availability. When
// the caller did not choose a role and the OpenID matches the configured
// owner identity, the role is forced to admin for both insert and update.
// An unavailable store downgrades the whole call to a logged no-op.
func (s *UserService) Upsert(ctx context.Context, patch *models.UserUpsert) error {
	if patch.OpenID == "" {
		return common.ErrOpenIDRequired
	}

	p := *patch
	if p.Role == nil && s.ownerOpenID != "" && p.OpenID == s.ownerOpenID {
		admin := models.RoleAdmin
		p.Role = &admin
	}

	if s.db == nil {
		s.logger.Warn(ctx, "cannot upsert user: database not available", "openId", p.OpenID)
		return nil
	}

	if err := s.repomanager.Users(s.db).Upsert(ctx, &p); err != nil {
		s.logger.Error(ctx, "failed to upsert user", "error", err)
		return err
	}
	return nil
}

// GetByOpenID returns the stored user or common.ErrorNotFound. An
// unavailable store also reports not found rather than failing.
func (s *UserService) GetByOpenID(ctx context.Context, openID string) (*models.User, error) {
	if s.db == nil {
		s.logger.Warn(ctx, "cannot get user: database not available", "openId", openID)
		return nil, common.ErrorNotFound
	}

	user, err := s.repomanager.Users(s.db).GetByOpenID(ctx, openID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "failed to get user", "error", err)
		}
		return nil, err
	}
	return user, nil
}
