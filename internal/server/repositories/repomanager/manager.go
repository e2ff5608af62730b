package repomanager

import (
	"context"
	"database/sql"

	"github.com/emotune/emotune/internal/dbx"
	"github.com/emotune/emotune/internal/server/repositories/emotionrecords"
	"github.com/emotune/emotune/internal/server/repositories/users"
)

// RepositoryManager vends the store implementations bound to a database
// handle. The handle is constructed once at process start and passed in
// by the caller; the manager itself holds no connection state.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	EmotionRecords(db dbx.DBTX) emotionrecords.Repository
}
