// Package users provides the PostgreSQL-backed identity store. Users are
// keyed by their opaque external OpenID; writes are upserts that merge
// only the fields the caller actually supplied.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emotune/emotune/internal/common"
	"github.com/emotune/emotune/internal/dbx"
	"github.com/emotune/emotune/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert executes a single INSERT ... ON CONFLICT (open_id) DO UPDATE
// statement assembled from the patch. Tri-state text fields go into both
// the insert values and the conflict update set only when the caller
// mentioned them, so a partial patch never clears stored fields.
//
// Two independent fallbacks keep last_signed_in fresh: if the caller did
// not supply it, the insert values default it to now; and if the update
// set would otherwise be empty, last_signed_in is stamped there too so a
// conflicting upsert always has a visible effect.
func (r *PostgresRepository) Upsert(ctx context.Context, patch *models.UserUpsert) error {
	if patch.OpenID == "" {
		return common.ErrOpenIDRequired
	}

	cols := []string{"open_id"}
	args := []any{patch.OpenID}
	var updates []string

	textFields := []struct {
		column string
		patch  models.StringPatch
	}{
		{"name", patch.Name},
		{"email", patch.Email},
		{"login_method", patch.LoginMethod},
	}
	for _, f := range textFields {
		if !f.patch.Set {
			continue
		}
		cols = append(cols, f.column)
		args = append(args, f.patch.Value)
		updates = append(updates, f.column+" = EXCLUDED."+f.column)
	}

	if patch.LastSignedIn != nil {
		cols = append(cols, "last_signed_in")
		args = append(args, *patch.LastSignedIn)
		updates = append(updates, "last_signed_in = EXCLUDED.last_signed_in")
	}
	if patch.Role != nil {
		cols = append(cols, "role")
		args = append(args, string(*patch.Role))
		updates = append(updates, "role = EXCLUDED.role")
	}
	if patch.LastSignedIn == nil {
		cols = append(cols, "last_signed_in")
		args = append(args, time.Now())
	}
	if len(updates) == 0 {
		updates = append(updates, "last_signed_in = now()")
	}
	updates = append(updates, "updated_at = now()")

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}

	query := fmt.Sprintf(
		`INSERT INTO users (%s) VALUES (%s) ON CONFLICT (open_id) DO UPDATE SET %s`,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByOpenID(ctx context.Context, openID string) (*models.User, error) {
	query := `SELECT id, open_id, name, email, login_method, role, last_signed_in, created_at, updated_at
		FROM users
		WHERE open_id = $1`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, openID).Scan(
		&user.ID, &user.OpenID, &user.Name, &user.Email, &user.LoginMethod,
		&user.Role, &user.LastSignedIn, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
