// Package emotionrecords provides the PostgreSQL-backed store for emotion
// records. Every query is scoped by the owning user: the compound
// id+user_id predicate on deletion is the record-level access control for
// the whole system, so no statement here may drop it.
package emotionrecords

import (
	"context"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, record *models.EmotionRecord) error {
	query := `INSERT INTO emotion_records (user_id, emotion, color, intensity, music_params, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		record.UserID, record.Emotion, record.Color, record.Intensity, record.MusicParams, record.Notes,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.EmotionRecord, error) {
	query := `SELECT id, user_id, emotion, color, intensity, music_params, notes, created_at, updated_at
		FROM emotion_records
		WHERE user_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.EmotionRecord
	for rows.Next() {
		var rec models.EmotionRecord
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Emotion, &rec.Color, &rec.Intensity,
			&rec.MusicParams, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByUserAndID(ctx context.Context, id, userID int64) (int64, error) {
	query := `DELETE FROM emotion_records WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return affected, nil
}
