package view_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/applydash/internal/view"
	"github.com/stretchr/testify/assert"
)

const testSessionSecret = "a-very-secret-key-for-testing-!"

func setupTestContext() echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	store := sessions.NewCookieStore([]byte(testSessionSecret))

	// Run a no-op handler behind the session middleware so the context carries a session.
	var c echo.Context
	handler := func(ctx echo.Context) error { c = ctx; return nil }
	_ = session.Middleware(store)(handler)(e.NewContext(req, rec))

	return c
}

func TestFlashMessages(t *testing.T) {
	t.Run("success flash is read once", func(t *testing.T) {
		c := setupTestContext()

		view.SetFlashSuccess(c, "Campaign created successfully!")

		flashes := view.GetFlashData(c)
		assert.Equal(t, []string{"Campaign created successfully!"}, flashes.Success)
		assert.Empty(t, flashes.Error)

		assert.True(t, view.GetFlashData(c).Empty(), "flashes should be cleared after being read")
	})

	t.Run("error flash", func(t *testing.T) {
		c := setupTestContext()

		view.SetFlashError(c, "Error: webhook findJobs: HTTP error! status: 500")

		flashes := view.GetFlashData(c)
		assert.Equal(t, []string{"Error: webhook findJobs: HTTP error! status: 500"}, flashes.Error)
		assert.Empty(t, flashes.Success)
	})

	t.Run("no flashes", func(t *testing.T) {
		assert.True(t, view.GetFlashData(setupTestContext()).Empty())
	})
}
