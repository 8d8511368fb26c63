package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

func saveDay(t *testing.T, s *testServer, token, date string, body map[string]any) domain.AttendanceDay {
	t.Helper()
	w := s.do(http.MethodPut, "/api/v1/attendance/"+date, token, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[domain.AttendanceDay](t, w)
}

func TestAttendanceHandler_Save(t *testing.T) {
	t.Run("Success: present day counts every class as attended", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t, "asha@uni.edu")

		day := saveDay(t, s, token, "2024-03-18", map[string]any{"status": "PRESENT", "total_classes": 6})

		assert.Equal(t, "2024-03-18", day.Date)
		assert.Equal(t, 6, day.AttendedClasses)
		assert.Equal(t, 1, day.Version)
	})

	t.Run("Success: saving again bumps the version", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t, "asha@uni.edu")

		saveDay(t, s, token, "2024-03-18", map[string]any{"status": "PRESENT", "total_classes": 6})
		day := saveDay(t, s, token, "2024-03-18", map[string]any{"status": "ABSENT", "total_classes": 6})

		assert.Equal(t, 2, day.Version)
		assert.Equal(t, 0, day.AttendedClasses)
	})

	t.Run("Success: omitted total_classes defaults to one class", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t, "asha@uni.edu")

		day := saveDay(t, s, token, "2024-03-18", map[string]any{"status": "PRESENT"})

		assert.Equal(t, 1, day.TotalClasses)
		assert.Equal(t, 1, day.AttendedClasses)
	})

	t.Run("Success: explicit zero classes is kept", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t, "asha@uni.edu")

		day := saveDay(t, s, token, "2024-03-18", map[string]any{"status": "PRESENT", "total_classes": 0})

		assert.Equal(t, 0, day.TotalClasses)
	})

	t.Run("Fail: future date returns 400", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t, "asha@uni.edu")

		w := s.do(http.MethodPut, "/api/v1/attendance/2024-04-02", token, map[string]any{"status": "PRESENT", "total_classes": 4})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: unknown status returns 400", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t, "asha@uni.edu")

		w := s.do(http.MethodPut, "/api/v1/attendance/2024-03-18", token, map[string]any{"status": "SICK", "total_classes": 4})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: more than 24 classes is rejected by binding", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t, "asha@uni.edu")

		w := s.do(http.MethodPut, "/api/v1/attendance/2024-03-18", token, map[string]any{"status": "PRESENT", "total_classes": 30})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAttendanceHandler_PatchAndDelete(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "asha@uni.edu")
	saveDay(t, s, token, "2024-03-18", map[string]any{"status": "PRESENT", "total_classes": 5})

	t.Run("Fail: stale version returns 409", func(t *testing.T) {
		w := s.do(http.MethodPatch, "/api/v1/attendance/2024-03-18", token, map[string]any{"remark": "lab", "version": 7})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "version conflict")
	})

	t.Run("Success: matching version merges the edit", func(t *testing.T) {
		w := s.do(http.MethodPatch, "/api/v1/attendance/2024-03-18", token, map[string]any{"remark": "lab cancelled", "version": 1})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		day := decode[domain.AttendanceDay](t, w)
		assert.Equal(t, "lab cancelled", day.Remark)
		assert.Equal(t, 5, day.TotalClasses)
		assert.Equal(t, 2, day.Version)
	})

	t.Run("Success: delete then 404 on second delete", func(t *testing.T) {
		w := s.do(http.MethodDelete, "/api/v1/attendance/2024-03-18", token, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = s.do(http.MethodDelete, "/api/v1/attendance/2024-03-18", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAttendanceHandler_ListAndReports(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "asha@uni.edu")
	other := s.login(t, "ben@uni.edu")

	saveDay(t, s, token, "2024-03-01", map[string]any{"status": "PRESENT", "total_classes": 5})
	saveDay(t, s, token, "2024-03-05", map[string]any{"status": "ABSENT", "total_classes": 5, "remark": "fever"})
	saveDay(t, s, token, "2024-03-11", map[string]any{"status": "LEAVE", "total_classes": 5, "proof_url": "https://files.example.com/note.pdf"})
	saveDay(t, s, other, "2024-03-05", map[string]any{"status": "PRESENT", "total_classes": 2})

	t.Run("Range is inclusive and scoped to the caller", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/attendance?from=2024-03-01&to=2024-03-05", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		days := decode[[]domain.AttendanceDay](t, w)
		require.Len(t, days, 2)
		assert.Equal(t, "2024-03-01", days[0].Date)
		assert.Equal(t, "2024-03-05", days[1].Date)
	})

	t.Run("Reports list annotated days newest first", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/attendance/reports", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		days := decode[[]domain.AttendanceDay](t, w)
		require.Len(t, days, 2)
		assert.Equal(t, "2024-03-11", days[0].Date)
		assert.Equal(t, "2024-03-05", days[1].Date)
	})
}

func TestAttendanceHandler_Sync(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "asha@uni.edu")

	before := time.Now().UTC().Add(-time.Second).Format(time.RFC3339)
	saveDay(t, s, token, "2024-03-18", map[string]any{"status": "PRESENT", "total_classes": 5})
	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/attendance/2024-03-18", token, nil).Code)

	t.Run("Success: deletions are part of the delta", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/attendance/sync?last_sync="+before, token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[struct {
			Changes   []domain.AttendanceDay `json:"changes"`
			Timestamp time.Time              `json:"timestamp"`
		}](t, w)
		require.Len(t, resp.Changes, 1)
		assert.NotNil(t, resp.Changes[0].DeletedAt)
		assert.False(t, resp.Timestamp.IsZero())
	})

	t.Run("Fail: malformed last_sync returns 400", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/attendance/sync?last_sync=yesterday", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// sseRecorder is a ResponseWriter that can be read while the stream is open.
type sseRecorder struct {
	mu     sync.Mutex
	header http.Header
	body   bytes.Buffer
	code   int
	closed chan bool
}

func newSSERecorder() *sseRecorder {
	return &sseRecorder{header: make(http.Header), closed: make(chan bool, 1)}
}

func (r *sseRecorder) Header() http.Header { return r.header }

func (r *sseRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Write(p)
}

func (r *sseRecorder) WriteHeader(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.code = code
}

func (r *sseRecorder) Flush() {}

func (r *sseRecorder) CloseNotify() <-chan bool { return r.closed }

func (r *sseRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

func TestAttendanceHandler_Events(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "asha@uni.edu")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// EventSource cannot set headers, so the token travels in the query.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/events?access_token="+token, nil).WithContext(ctx)
	rec := newSSERecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.router.ServeHTTP(rec, req)
	}()

	require.Eventually(t, func() bool { return s.notifier.TotalSubscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	saveDay(t, s, token, "2024-03-18", map[string]any{"status": "PRESENT", "total_classes": 5})

	assert.Eventually(t, func() bool {
		return strings.Contains(rec.String(), "event:"+domain.EventAttendanceUpdated)
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return strings.Contains(rec.String(), "event:ping")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event stream did not close after the client went away")
	}

	body := rec.String()
	assert.Contains(t, body, "event:connected")
	assert.Contains(t, body, `"date":"2024-03-18"`)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, 0, s.notifier.TotalSubscribers())
}
