package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"worktracker.com/worktracker/internal/constants"
	model "worktracker.com/worktracker/internal/models"
)

func newFileStore(t *testing.T) Store {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "data", "document.json"))
	require.NoError(t, err)
	return s
}

func newSQLiteStore(t *testing.T) Store {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	s, err := NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var backends = map[string]func(t *testing.T) Store{
	"file":   newFileStore,
	"sqlite": newSQLiteStore,
}

func sampleDocument() *model.Document {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(27 * time.Second)
	clockIn := time.Date(2024, 1, 1, 8, 55, 0, 0, time.UTC)

	doc := model.NewDocument()
	doc.LastUpdated = end
	doc.Tasks = []model.Task{{
		ID:          "t1",
		Title:       "Write report",
		Status:      constants.StatusInProgress,
		ActualHours: 0.0075,
		Version:     2,
		CreatedAt:   start.Add(-time.Hour),
		UpdatedAt:   end,
	}}
	doc.TimeEntries = []model.TimeEntry{
		{ID: "e2", TaskID: "t1", UserID: "alice", StartTime: start, EndTime: &end, Duration: 0.45, Date: "2024-01-01"},
		{ID: "e1", TaskID: "t1", UserID: "alice", StartTime: start.Add(-time.Hour), Duration: 12, Date: "2024-01-01"},
	}
	doc.Attendance = []model.AttendanceRecord{
		{ID: "a1", UserID: "alice", Date: "2024-01-01", ClockIn: &clockIn, Notes: "remote"},
		{ID: "a2", UserID: "bob", Date: "2024-01-01"},
	}
	doc.ActiveTimers = []model.ActiveTimer{{UserID: "bob", TaskID: "t1", StartTime: start}}
	doc.ChatMessages = []json.RawMessage{json.RawMessage(`{"id":"m1","text":"hi"}`)}
	return doc
}

func TestStore_RoundTrip(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			doc := sampleDocument()
			require.NoError(t, s.Write(ctx, doc, 0))
			assert.Equal(t, uint64(1), doc.Version)

			loaded, err := s.Read(ctx)
			require.NoError(t, err)

			assert.Equal(t, uint64(1), loaded.Version)
			assert.Equal(t, doc.Tasks, loaded.Tasks)
			assert.Equal(t, doc.TimeEntries, loaded.TimeEntries)
			assert.Equal(t, doc.Attendance, loaded.Attendance)
			assert.Equal(t, doc.ActiveTimers, loaded.ActiveTimers)
			assert.JSONEq(t, `{"id":"m1","text":"hi"}`, string(loaded.ChatMessages[0]))
			assert.True(t, doc.LastUpdated.Equal(loaded.LastUpdated))
		})
	}
}

func TestStore_EmptyReadsAsNewDocument(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			doc, err := open(t).Read(context.Background())
			require.NoError(t, err)
			assert.Equal(t, uint64(0), doc.Version)
			assert.NotNil(t, doc.TimeEntries)
			assert.Empty(t, doc.TimeEntries)
		})
	}
}

func TestStore_RejectsStaleVersion(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			require.NoError(t, s.Write(ctx, model.NewDocument(), 0))

			first, err := s.Read(ctx)
			require.NoError(t, err)
			second, err := s.Read(ctx)
			require.NoError(t, err)

			first.Tasks = append(first.Tasks, model.Task{ID: "a"})
			require.NoError(t, s.Write(ctx, first, first.Version))

			second.Tasks = append(second.Tasks, model.Task{ID: "b"})
			assert.ErrorIs(t, s.Write(ctx, second, 1), ErrOptimisticLock)

			loaded, err := s.Read(ctx)
			require.NoError(t, err)
			require.Len(t, loaded.Tasks, 1)
			assert.Equal(t, "a", loaded.Tasks[0].ID)
		})
	}
}

func TestStore_AnyVersionOverwrites(t *testing.T) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			require.NoError(t, s.Write(ctx, model.NewDocument(), 0))
			require.NoError(t, s.Write(ctx, model.NewDocument(), 1))

			doc := model.NewDocument()
			doc.Tasks = []model.Task{{ID: "late"}}
			require.NoError(t, s.Write(ctx, doc, AnyVersion))
			assert.Equal(t, uint64(3), doc.Version)

			loaded, err := s.Read(ctx)
			require.NoError(t, err)
			assert.Equal(t, uint64(3), loaded.Version)
			assert.Equal(t, "late", loaded.Tasks[0].ID)
		})
	}
}

func TestFileStore_SeparateHandlesDoNotLoseWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "document.json")

	const handles, perHandle = 2, 25

	var wg sync.WaitGroup
	for h := 0; h < handles; h++ {
		s, err := NewFileStore(path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })

		wg.Add(1)
		go func(h int, s *FileStore) {
			defer wg.Done()
			for i := 0; i < perHandle; i++ {
				for {
					doc, err := s.Read(ctx)
					if !assert.NoError(t, err) {
						return
					}
					doc.Tasks = append(doc.Tasks, model.Task{ID: fmt.Sprintf("h%d-%d", h, i)})

					err = s.Write(ctx, doc, doc.Version)
					if errors.Is(err, ErrOptimisticLock) {
						continue
					}
					if !assert.NoError(t, err) {
						return
					}
					break
				}
			}
		}(h, s)
	}
	wg.Wait()

	s, err := NewFileStore(path)
	require.NoError(t, err)
	defer s.Close()

	loaded, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Tasks, handles*perHandle)
	assert.Equal(t, uint64(handles*perHandle), loaded.Version)
}
