package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"worktracker.com/worktracker/internal/attendance"
	"worktracker.com/worktracker/internal/cache"
	"worktracker.com/worktracker/internal/clock"
	"worktracker.com/worktracker/internal/export"
	"worktracker.com/worktracker/internal/http/validators"
	repository "worktracker.com/worktracker/internal/repositories"
	"worktracker.com/worktracker/internal/services"
	"worktracker.com/worktracker/internal/store"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Stats   json.RawMessage `json:"stats"`
}

type testServer struct {
	e     *echo.Echo
	clock *clock.Fixed
}

func setupTestServer(t *testing.T) *testServer {
	s, err := store.NewFileStore(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)

	c := clock.NewFixed(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	repo := repository.NewRepository(s, c, repository.PolicyOptimistic, 3)
	timers := cache.NewMemoryTimerCache()

	h := NewHandler(Services{
		Tasks:      services.NewTaskService(repo, timers, c),
		Entries:    services.NewTimeEntryService(repo, c),
		Timer:      services.NewTimerService(repo, timers, c),
		Attendance: services.NewAttendanceService(repo, attendance.DefaultPolicy(), c),
		Stats:      services.NewStatsService(repo, c),
	}, validators.NewUserAllowlist([]string{"alice", "bob"}), c)

	e := echo.New()
	Register(e, h, 1000, c)

	return &testServer{e: e, clock: c}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (s *testServer) createTask(t *testing.T, title string) string {
	rec, env := s.do(t, http.MethodPost, "/tasks", map[string]any{"title": title, "estimatedHours": 2})
	require.Equal(t, http.StatusCreated, rec.Code)

	var task struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &task))
	return task.ID
}

func TestHandler_TimerEndToEnd(t *testing.T) {
	s := setupTestServer(t)
	taskID := s.createTask(t, "T")

	rec, env := s.do(t, http.MethodPost, "/timer/start", map[string]string{"userId": "alice", "taskId": taskID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	s.clock.Advance(27 * time.Second)

	rec, env = s.do(t, http.MethodPost, "/timer/stop", map[string]string{"userId": "alice", "taskId": taskID})
	require.Equal(t, http.StatusOK, rec.Code)

	var stopped struct {
		Stopped bool `json:"stopped"`
		Entry   struct {
			Duration float64 `json:"duration"`
		} `json:"entry"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stopped))
	assert.True(t, stopped.Stopped)
	assert.InDelta(t, 0.45, stopped.Entry.Duration, 1e-9)

	var fresh struct {
		TotalActualHours float64 `json:"totalActualHours"`
	}
	require.NoError(t, json.Unmarshal(env.Stats, &fresh))
	assert.InDelta(t, 0.0075, fresh.TotalActualHours, 1e-12)

	rec, env = s.do(t, http.MethodPost, "/timer/stop", map[string]string{"userId": "alice", "taskId": taskID})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &stopped))
	assert.False(t, stopped.Stopped)

	rec, env = s.do(t, http.MethodGet, "/dashboard?userId=alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dashboard struct {
		Time struct {
			TodayMinutes float64 `json:"todayMinutes"`
		} `json:"time"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &dashboard))
	assert.InDelta(t, 0.45, dashboard.Time.TodayMinutes, 1e-9)
}

func TestHandler_ValidationErrors(t *testing.T) {
	s := setupTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/timer/start", map[string]string{"userId": "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Field 'taskId' is required", env.Message)

	rec, env = s.do(t, http.MethodGet, "/time-entries?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Message, "'from'")
}

func TestHandler_UnknownUserIsForbidden(t *testing.T) {
	s := setupTestServer(t)
	taskID := s.createTask(t, "T")

	rec, env := s.do(t, http.MethodPost, "/timer/start", map[string]string{"userId": "mallory", "taskId": taskID})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, env.Success)
}

func TestHandler_TaskNotFound(t *testing.T) {
	s := setupTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/tasks/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Message)

	rec, _ = s.do(t, http.MethodPost, "/timer/start", map[string]string{"userId": "alice", "taskId": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ClockInTwiceReturnsExistingRecord(t *testing.T) {
	s := setupTestServer(t)
	body := map[string]any{"userId": "alice", "date": "2024-01-01", "timestamp": "2024-01-01T08:50:00Z"}

	rec, env := s.do(t, http.MethodPost, "/attendance/clock-in", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var first struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &first))

	body["timestamp"] = "2024-01-01T09:00:00Z"
	rec, env = s.do(t, http.MethodPost, "/attendance/clock-in", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)

	var second struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &second))
	assert.Equal(t, first.ID, second.ID)

	rec, env = s.do(t, http.MethodPost, "/attendance/clock-out", map[string]any{"userId": "alice", "date": "2024-01-01", "timestamp": "2024-01-01T17:00:00Z"})
	require.Equal(t, http.StatusOK, rec.Code)

	var closed struct {
		Status    string  `json:"status"`
		WorkHours float64 `json:"workHours"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &closed))
	assert.Equal(t, "present", closed.Status)
	assert.InDelta(t, 8+1.0/6, closed.WorkHours, 1e-9)

	rec, _ = s.do(t, http.MethodPost, "/attendance/clock-out", map[string]any{"userId": "bob"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_ExportWorkbook(t *testing.T) {
	s := setupTestServer(t)
	taskID := s.createTask(t, "Write report")

	rec, _ := s.do(t, http.MethodPost, "/time-entries", map[string]any{
		"userId":    "alice",
		"taskId":    taskID,
		"startTime": "2024-01-01T09:00:00Z",
		"endTime":   "2024-01-01T09:30:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/time-entries/export?from=2024-01-01&to=2024-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, strconv.Itoa(rec.Body.Len()), rec.Header().Get(echo.HeaderContentLength))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.TimeEntriesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Write report", rows[1][1])
	assert.Equal(t, "30", rows[1][5])
}

func TestHandler_StatsAndReconcile(t *testing.T) {
	s := setupTestServer(t)
	taskID := s.createTask(t, "T")

	rec, _ := s.do(t, http.MethodPost, "/time-entries", map[string]any{
		"userId":    "bob",
		"taskId":    taskID,
		"startTime": "2024-01-01T09:00:00Z",
		"endTime":   "2024-01-01T09:30:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := s.do(t, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		TotalTasks       int     `json:"totalTasks"`
		TotalActualHours float64 `json:"totalActualHours"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.TotalTasks)
	assert.InDelta(t, 0.5, stats.TotalActualHours, 1e-9)

	rec, env = s.do(t, http.MethodPost, "/stats/reconcile", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var reconciled struct {
		TasksFixed int `json:"tasksFixed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &reconciled))
	assert.Equal(t, 0, reconciled.TasksFixed)
}

func TestHandler_DeleteTask(t *testing.T) {
	s := setupTestServer(t)
	taskID := s.createTask(t, "T")

	rec, env := s.do(t, http.MethodDelete, "/tasks/"+taskID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, _ = s.do(t, http.MethodDelete, "/tasks/"+taskID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_UnknownRouteUsesEnvelope(t *testing.T) {
	s := setupTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Not Found", env.Message)
}
