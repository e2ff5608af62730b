package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/emotune/emotune/internal/common"
	"github.com/emotune/emotune/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestUpsert_MissingOpenID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	err := repo.Upsert(context.Background(), &models.UserUpsert{})
	if !errors.Is(err, common.ErrOpenIDRequired) {
		t.Fatalf("want ErrOpenIDRequired, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no statement must be issued: %v", err)
	}
}

func TestUpsert_FullPatch(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := regexp.QuoteMeta(`INSERT INTO users (open_id, name, email, login_method, last_signed_in, role) ` +
		`VALUES ($1, $2, $3, $4, $5, $6) ` +
		`ON CONFLICT (open_id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, ` +
		`login_method = EXCLUDED.login_method, last_signed_in = EXCLUDED.last_signed_in, ` +
		`role = EXCLUDED.role, updated_at = now()`)

	signedIn := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	role := models.RoleAdmin

	mock.ExpectExec(q).
		WithArgs("open-1", "Ada", "ada@example.com", "google", signedIn, "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.UserUpsert{
		OpenID:       "open-1",
		Name:         models.PatchValue("Ada"),
		Email:        models.PatchValue("ada@example.com"),
		LoginMethod:  models.PatchValue("google"),
		LastSignedIn: &signedIn,
		Role:         &role,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// A patch mentioning only email must not touch name or login_method on
// conflict, and the insert values still default last_signed_in.
func TestUpsert_PartialMergeEmailOnly(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := regexp.QuoteMeta(`INSERT INTO users (open_id, email, last_signed_in) VALUES ($1, $2, $3) ` +
		`ON CONFLICT (open_id) DO UPDATE SET email = EXCLUDED.email, updated_at = now()`)

	mock.ExpectExec(q).
		WithArgs("open-1", "ada@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.UserUpsert{
		OpenID: "open-1",
		Email:  models.PatchValue("ada@example.com"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// An empty patch must still have a visible effect on conflict: the update
// set falls back to stamping last_signed_in.
func TestUpsert_EmptyPatchStampsLastSignedIn(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := regexp.QuoteMeta(`INSERT INTO users (open_id, last_signed_in) VALUES ($1, $2) ` +
		`ON CONFLICT (open_id) DO UPDATE SET last_signed_in = now(), updated_at = now()`)

	mock.ExpectExec(q).
		WithArgs("open-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Upsert(context.Background(), &models.UserUpsert{OpenID: "open-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// Explicitly clearing a field sends NULL, which is distinct from leaving
// the field out of the patch entirely.
func TestUpsert_ExplicitClearSendsNull(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := regexp.QuoteMeta(`INSERT INTO users (open_id, name, last_signed_in) VALUES ($1, $2, $3) ` +
		`ON CONFLICT (open_id) DO UPDATE SET name = EXCLUDED.name, updated_at = now()`)

	mock.ExpectExec(q).
		WithArgs("open-1", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.UserUpsert{
		OpenID: "open-1",
		Name:   models.PatchClear(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO users .* ON CONFLICT \(open_id\) DO UPDATE SET .*`).
		WillReturnError(errors.New("db is down"))

	err := repo.Upsert(context.Background(), &models.UserUpsert{OpenID: "open-1"})
	if err == nil || !regexp.MustCompile(`db error: .*db is down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByOpenID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "open_id", "name", "email", "login_method", "role", "last_signed_in", "created_at", "updated_at",
	}).AddRow(int64(7), "open-1", "Ada", nil, "google", "user", now, now, now)

	mock.ExpectQuery(`SELECT id, open_id, name, email, login_method, role, last_signed_in, created_at, updated_at\s+FROM users\s+WHERE open_id = \$1`).
		WithArgs("open-1").
		WillReturnRows(rows)

	user, err := repo.GetByOpenID(context.Background(), "open-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 7 || user.OpenID != "open-1" || user.Role != models.RoleUser {
		t.Fatalf("unexpected user: %+v", user)
	}
	if !user.Name.Valid || user.Name.String != "Ada" {
		t.Fatalf("name not scanned: %+v", user.Name)
	}
	if user.Email.Valid {
		t.Fatalf("NULL email must scan as invalid: %+v", user.Email)
	}
}

func TestGetByOpenID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM users\s+WHERE open_id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByOpenID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestGetByOpenID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM users\s+WHERE open_id = \$1`).
		WithArgs("open-1").
		WillReturnError(errors.New("boom"))

	_, err := repo.GetByOpenID(context.Background(), "open-1")
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
