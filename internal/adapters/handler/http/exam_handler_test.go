package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

func createExam(t *testing.T, s *testServer, token string, body map[string]string) domain.Exam {
	t.Helper()
	w := s.do(http.MethodPost, "/api/v1/exams", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[domain.Exam](t, w)
}

func TestExamHandler_Create(t *testing.T) {
	t.Run("Success: kind defaults to exam", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t, "asha@uni.edu")

		exam := createExam(t, s, token, map[string]string{"title": "Calculus II", "subject": "Maths", "date": "2024-04-02"})

		assert.NotEmpty(t, exam.ID)
		assert.Equal(t, domain.KindExam, exam.Kind)
		assert.Equal(t, "2024-04-02", exam.Date)
	})

	t.Run("Fail: missing date returns 400", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t, "asha@uni.edu")

		w := s.do(http.MethodPost, "/api/v1/exams", token, map[string]string{"title": "Calculus II"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: unknown kind returns 400", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t, "asha@uni.edu")

		w := s.do(http.MethodPost, "/api/v1/exams", token, map[string]string{"title": "Party", "kind": "party", "date": "2024-04-02"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestExamHandler_Schedule(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "asha@uni.edu")
	createExam(t, s, token, map[string]string{"title": "Physics", "date": "2024-04-10"})
	createExam(t, s, token, map[string]string{"title": "Essay", "kind": "assignment", "date": "2024-03-22"})
	createExam(t, s, token, map[string]string{"title": "Midterm", "date": "2024-03-01"})

	t.Run("Success: splits upcoming and past with urgency", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/exams", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		schedule := decode[domain.ExamSchedule](t, w)
		require.Len(t, schedule.Upcoming, 2)
		assert.Equal(t, "Essay", schedule.Upcoming[0].Title)
		assert.Equal(t, 2, schedule.Upcoming[0].DaysLeft)
		assert.Equal(t, domain.UrgencyCritical, schedule.Upcoming[0].Urgency)
		assert.Equal(t, domain.UrgencyLater, schedule.Upcoming[1].Urgency)
		require.Len(t, schedule.Past, 1)
		assert.Equal(t, "Midterm", schedule.Past[0].Title)
	})

	t.Run("Should start empty for another student", func(t *testing.T) {
		other := s.login(t, "mallory@uni.edu")

		w := s.do(http.MethodGet, "/api/v1/exams", other, nil)

		require.Equal(t, http.StatusOK, w.Code)
		schedule := decode[domain.ExamSchedule](t, w)
		assert.Empty(t, schedule.Upcoming)
		assert.Empty(t, schedule.Past)
	})
}

func TestExamHandler_Delete(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "asha@uni.edu")
	exam := createExam(t, s, token, map[string]string{"title": "Physics", "date": "2024-04-10"})
	path := "/api/v1/exams/" + exam.ID

	t.Run("Fail: another student's exam looks missing", func(t *testing.T) {
		intruder := s.login(t, "mallory@uni.edu")
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, intruder, nil).Code)
	})

	t.Run("Success: owner deletes", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, path, token, nil).Code)
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, path, token, nil).Code)
	})
}
