package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/studo-sync-engine/internal/core/domain"
)

func TestProfileHandler(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "asha@uni.edu")

	t.Run("Get returns the registered student", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/profile", token, nil)

		require.Equal(t, http.StatusOK, w.Code)
		student := decode[domain.Student](t, w)
		assert.Equal(t, "asha@uni.edu", student.Email)
		assert.Equal(t, "Asha", student.Name)
		assert.Nil(t, student.SemesterStart)
	})

	t.Run("Update replaces profile fields", func(t *testing.T) {
		w := s.do(http.MethodPut, "/api/v1/profile", token, map[string]any{
			"name":       "Asha Rao",
			"university": "State University",
			"course":     "B.Tech",
			"semester":   4,
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		student := decode[domain.Student](t, w)
		assert.Equal(t, "Asha Rao", student.Name)
		assert.Equal(t, 4, student.SemesterNumber)
	})

	t.Run("Semester window must be ordered", func(t *testing.T) {
		w := s.do(http.MethodPut, "/api/v1/profile/semester", token, map[string]string{
			"start_date": "2024-06-01",
			"end_date":   "2024-01-01",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Semester window can be set and cleared", func(t *testing.T) {
		w := s.do(http.MethodPut, "/api/v1/profile/semester", token, map[string]string{
			"start_date": "2024-01-08",
			"end_date":   "2024-05-31",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		student := decode[domain.Student](t, w)
		require.NotNil(t, student.SemesterStart)
		assert.Equal(t, "2024-01-08", *student.SemesterStart)

		w = s.do(http.MethodDelete, "/api/v1/profile/semester", token, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = s.do(http.MethodGet, "/api/v1/profile", token, nil)
		assert.Nil(t, decode[domain.Student](t, w).SemesterStart)
	})
}
