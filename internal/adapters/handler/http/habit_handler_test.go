package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

func createHabit(t *testing.T, s *testServer, token, title string) domain.Habit {
	t.Helper()
	w := s.do(http.MethodPost, "/api/v1/habits", token, map[string]string{"title": title, "color": "#4F46E5"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.Habit](t, w)
}

func TestHabitHandler_Create(t *testing.T) {
	t.Run("Success: returns 201 owned by the caller", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t, "asha@uni.edu")

		habit := createHabit(t, s, token, "Revise notes")

		assert.NotEmpty(t, habit.ID)
		assert.Equal(t, "Revise notes", habit.Title)
		assert.Equal(t, 0, habit.CurrentStreak)
	})

	t.Run("Fail: missing title returns 400", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t, "asha@uni.edu")

		w := s.do(http.MethodPost, "/api/v1/habits", token, map[string]string{"color": "#4F46E5"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: invalid color returns 400", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t, "asha@uni.edu")

		w := s.do(http.MethodPost, "/api/v1/habits", token, map[string]string{"title": "Gym", "color": "blue"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHabitHandler_CheckIn(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "asha@uni.edu")
	habit := createHabit(t, s, token, "Revise notes")
	path := "/api/v1/habits/" + habit.ID + "/check-ins"

	t.Run("Success: empty body checks in today", func(t *testing.T) {
		w := s.do(http.MethodPost, path, token, nil)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		updated := decode[domain.Habit](t, w)
		assert.Equal(t, 1, updated.CurrentStreak)
		require.NotNil(t, updated.LastCheckedAt)
		assert.Equal(t, testToday, *updated.LastCheckedAt)
	})

	t.Run("Fail: second check on the same day returns 409", func(t *testing.T) {
		w := s.do(http.MethodPost, path, token, map[string]string{"date": testToday})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Fail: future check-in returns 400", func(t *testing.T) {
		w := s.do(http.MethodPost, path, token, map[string]string{"date": "2024-03-25"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: another student's habit looks missing", func(t *testing.T) {
		intruder := s.login(t, "mallory@uni.edu")

		w := s.do(http.MethodPost, path, intruder, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = s.do(http.MethodDelete, "/api/v1/habits/"+habit.ID, intruder, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHabitHandler_ListAndDelete(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "asha@uni.edu")
	first := createHabit(t, s, token, "Revise notes")
	createHabit(t, s, token, "Read a paper")

	w := s.do(http.MethodGet, "/api/v1/habits", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Habit](t, w), 2)

	w = s.do(http.MethodDelete, "/api/v1/habits/"+first.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/v1/habits", token, nil)
	habits := decode[[]domain.Habit](t, w)
	require.Len(t, habits, 1)
	assert.Equal(t, "Read a paper", habits[0].Title)
}
