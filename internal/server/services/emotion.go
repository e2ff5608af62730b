// This file implements EmotionService: running the music parameter engine
// and persisting the results as user-owned history, with the
// propagate-or-degrade policy around store failures. Writes and deletes
// must not be lost silently and therefore propagate; the history read
// path degrades to an empty result instead.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/emotune/emotune/internal/common"
	"github.com/emotune/emotune/internal/logging"
	"github.com/emotune/emotune/internal/musicgen"
	"github.com/emotune/emotune/internal/server/models"
	"github.com/emotune/emotune/internal/server/repositories/repomanager"
)

// HistoryRecord is an emotion record with its stored parameter text
// parsed back into structured form.
type HistoryRecord struct {
	ID          int64
	UserID      int64
	Emotion     string
	Color       string
	Intensity   int
	MusicParams musicgen.Params
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EmotionService turns emotion submissions into persisted music
// parameters and serves a user's history.
type EmotionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

// NewEmotionService constructs an EmotionService. db may be nil when no
// DSN is configured; record writes then fail with ErrStoreUnavailable and
// history reads return empty.
func NewEmotionService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *EmotionService {
	return &EmotionService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "emotion_service"),
	}
}

// Generate computes music parameters for the submission and persists one
// record owned by userID, with the parameters serialized to opaque JSON
// text. Store failures propagate: losing a write is unacceptable.
func (s *EmotionService) Generate(ctx context.Context, userID int64, emotion, color string, intensity int, notes string) (musicgen.Params, error) {
	params := musicgen.Generate(emotion, color, intensity)

	raw, err := json.Marshal(params)
	if err != nil {
		return musicgen.Params{}, fmt.Errorf("failed to serialize music params: %w", err)
	}

	if s.db == nil {
		s.logger.Error(ctx, "cannot create emotion record: database not available", "userId", userID)
		return musicgen.Params{}, common.ErrStoreUnavailable
	}

	record := &models.EmotionRecord{
		UserID:      userID,
		Emotion:     emotion,
		Color:       color,
		Intensity:   intensity,
		MusicParams: string(raw),
		Notes:       sql.NullString{String: notes, Valid: notes != ""},
	}
	if err := s.repomanager.EmotionRecords(s.db).Create(ctx, record); err != nil {
		s.logger.Error(ctx, "failed to create emotion record", "error", err)
		return musicgen.Params{}, err
	}

	return params, nil
}

// History returns the user's records ordered by creation time ascending,
// with stored parameters parsed back to structured form. The read path
// degrades gracefully: an unavailable store or a failed query yields an
// empty slice, never an error.
func (s *EmotionService) History(ctx context.Context, userID int64) ([]*HistoryRecord, error) {
	if s.db == nil {
		s.logger.Warn(ctx, "cannot get emotion records: database not available", "userId", userID)
		return []*HistoryRecord{}, nil
	}

	records, err := s.repomanager.EmotionRecords(s.db).ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "failed to get emotion records", "error", err)
		return []*HistoryRecord{}, nil
	}

	result := make([]*HistoryRecord, 0, len(records))
	for _, rec := range records {
		var params musicgen.Params
		if err := json.Unmarshal([]byte(rec.MusicParams), &params); err != nil {
			s.logger.Warn(ctx, "skipping record with unparseable music params", "recordId", rec.ID, "error", err)
			continue
		}
		result = append(result, &HistoryRecord{
			ID:          rec.ID,
			UserID:      rec.UserID,
			Emotion:     rec.Emotion,
			Color:       rec.Color,
			Intensity:   rec.Intensity,
			MusicParams: params,
			Notes:       rec.Notes.String,
			CreatedAt:   rec.CreatedAt,
			UpdatedAt:   rec.UpdatedAt,
		})
	}
	return result, nil
}

// Delete removes the record only when both the id and the owner match.
// Zero rows affected (nonexistent record, or someone else's) is still
// success; only store failures propagate.
func (s *EmotionService) Delete(ctx context.Context, userID, recordID int64) error {
	if s.db == nil {
		s.logger.Error(ctx, "cannot delete emotion record: database not available", "userId", userID)
		return common.ErrStoreUnavailable
	}

	affected, err := s.repomanager.EmotionRecords(s.db).DeleteByUserAndID(ctx, recordID, userID)
	if err != nil {
		s.logger.Error(ctx, "failed to delete emotion record", "error", err)
		return err
	}
	if affected == 0 {
		s.logger.Debug(ctx, "delete matched no rows", "recordId", recordID, "userId", userID)
	}
	return nil
}
