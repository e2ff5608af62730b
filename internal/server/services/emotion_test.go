package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/emotune/emotune/internal/common"
	"github.com/emotune/emotune/internal/musicgen"
	"github.com/emotune/emotune/internal/server/models"
)

func newEmotionService(db *sql.DB, rm *fakeRepoManager) *EmotionService {
	return NewEmotionService(db, rm, nopLogger{})
}

func TestEmotionGenerate_PersistsSerializedParams(t *testing.T) {
	rm := &fakeRepoManager{r: &fakeRecordsRepo{}}
	s := newEmotionService(newSQLMockDB(t), rm)

	params, err := s.Generate(context.Background(), 42, "happy", "#FFAA00", 80, "after lunch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := musicgen.Generate("happy", "#FFAA00", 80)
	if params.Tempo != want.Tempo || params.BaseFrequency != want.BaseFrequency {
		t.Fatalf("returned params diverge from the engine: %+v", params)
	}

	rec := rm.r.created
	if rec == nil {
		t.Fatal("record was not persisted")
	}
	if rec.UserID != 42 || rec.Emotion != "happy" || rec.Color != "#FFAA00" || rec.Intensity != 80 {
		t.Fatalf("unexpected record fields: %+v", rec)
	}
	if !rec.Notes.Valid || rec.Notes.String != "after lunch" {
		t.Fatalf("unexpected notes: %+v", rec.Notes)
	}

	var stored musicgen.Params
	if err := json.Unmarshal([]byte(rec.MusicParams), &stored); err != nil {
		t.Fatalf("stored params are not valid JSON: %v", err)
	}
	if stored.Tempo != want.Tempo || stored.Emotion != want.Emotion {
		t.Fatalf("stored params diverge from the engine: %+v", stored)
	}
}

func TestEmotionGenerate_EmptyNotesStoredAsNull(t *testing.T) {
	rm := &fakeRepoManager{r: &fakeRecordsRepo{}}
	s := newEmotionService(newSQLMockDB(t), rm)

	if _, err := s.Generate(context.Background(), 1, "calm", "#112233", 50, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rm.r.created.Notes.Valid {
		t.Fatalf("empty notes must be stored as NULL, got %+v", rm.r.created.Notes)
	}
}

func TestEmotionGenerate_StoreUnavailable(t *testing.T) {
	rm := &fakeRepoManager{r: &fakeRecordsRepo{}}
	s := newEmotionService(nil, rm)

	if _, err := s.Generate(context.Background(), 1, "happy", "#FFAA00", 80, ""); !errors.Is(err, common.ErrStoreUnavailable) {
		t.Fatalf("want ErrStoreUnavailable, got %v", err)
	}
	if rm.r.created != nil {
		t.Fatal("nothing must be persisted without a database")
	}
}

func TestEmotionGenerate_RepoErrorPropagates(t *testing.T) {
	wantErr := errors.New("insert failed")
	rm := &fakeRepoManager{r: &fakeRecordsRepo{createErr: wantErr}}
	s := newEmotionService(newSQLMockDB(t), rm)

	if _, err := s.Generate(context.Background(), 1, "sad", "#000000", 10, ""); !errors.Is(err, wantErr) {
		t.Fatalf("want repo error, got %v", err)
	}
}

func TestEmotionHistory_ParsesStoredParams(t *testing.T) {
	raw, _ := json.Marshal(musicgen.Generate("angry", "#FF0000", 90))
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rm := &fakeRepoManager{r: &fakeRecordsRepo{listOut: []*models.EmotionRecord{
		{
			ID: 3, UserID: 42, Emotion: "angry", Color: "#FF0000", Intensity: 90,
			MusicParams: string(raw),
			Notes:       sql.NullString{String: "rough day", Valid: true},
			CreatedAt:   created, UpdatedAt: created,
		},
	}}}
	s := newEmotionService(newSQLMockDB(t), rm)

	records, err := s.History(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("want 1 record, got %d", len(records))
	}
	got := records[0]
	if got.ID != 3 || got.Emotion != "angry" || got.Notes != "rough day" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.MusicParams.Emotion != "angry" || got.MusicParams.Tempo == 0 {
		t.Fatalf("params were not parsed: %+v", got.MusicParams)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created_at: %v", got.CreatedAt)
	}
}

func TestEmotionHistory_SkipsUnparseableParams(t *testing.T) {
	raw, _ := json.Marshal(musicgen.Generate("calm", "#336699", 40))
	rm := &fakeRepoManager{r: &fakeRecordsRepo{listOut: []*models.EmotionRecord{
		{ID: 1, UserID: 42, Emotion: "calm", MusicParams: "not json"},
		{ID: 2, UserID: 42, Emotion: "calm", MusicParams: string(raw)},
	}}}
	s := newEmotionService(newSQLMockDB(t), rm)

	records, err := s.History(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].ID != 2 {
		t.Fatalf("corrupt row must be skipped, got %+v", records)
	}
}

func TestEmotionHistory_StoreUnavailable(t *testing.T) {
	rm := &fakeRepoManager{r: &fakeRecordsRepo{}}
	s := newEmotionService(nil, rm)

	records, err := s.History(context.Background(), 42)
	if err != nil {
		t.Fatalf("history must degrade, not fail: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("want empty slice, got %+v", records)
	}
}

func TestEmotionHistory_RepoErrorDegrades(t *testing.T) {
	rm := &fakeRepoManager{r: &fakeRecordsRepo{listErr: errors.New("query failed")}}
	s := newEmotionService(newSQLMockDB(t), rm)

	records, err := s.History(context.Background(), 42)
	if err != nil {
		t.Fatalf("history must degrade, not fail: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("want empty slice, got %+v", records)
	}
}

func TestEmotionDelete_ScopesToOwner(t *testing.T) {
	rm := &fakeRepoManager{r: &fakeRecordsRepo{deleteAffected: 1}}
	s := newEmotionService(newSQLMockDB(t), rm)

	if err := s.Delete(context.Background(), 42, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rm.r.gotRecordID != 7 || rm.r.gotUserID != 42 {
		t.Fatalf("delete not scoped correctly: record=%d user=%d", rm.r.gotRecordID, rm.r.gotUserID)
	}
}

func TestEmotionDelete_ZeroRowsIsSuccess(t *testing.T) {
	rm := &fakeRepoManager{r: &fakeRecordsRepo{deleteAffected: 0}}
	s := newEmotionService(newSQLMockDB(t), rm)

	if err := s.Delete(context.Background(), 42, 999); err != nil {
		t.Fatalf("zero affected rows must still succeed, got %v", err)
	}
}

func TestEmotionDelete_StoreUnavailable(t *testing.T) {
	s := newEmotionService(nil, &fakeRepoManager{r: &fakeRecordsRepo{}})

	if err := s.Delete(context.Background(), 42, 1); !errors.Is(err, common.ErrStoreUnavailable) {
		t.Fatalf("want ErrStoreUnavailable, got %v", err)
	}
}

func TestEmotionDelete_RepoErrorPropagates(t *testing.T) {
	wantErr := errors.New("delete failed")
	rm := &fakeRepoManager{r: &fakeRecordsRepo{deleteErr: wantErr}}
	s := newEmotionService(newSQLMockDB(t), rm)

	if err := s.Delete(context.Background(), 42, 1); !errors.Is(err, wantErr) {
		t.Fatalf("want repo error, got %v", err)
	}
}
