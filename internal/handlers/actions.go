package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/applydash/internal/actions"
	"github.com/nfrund/applydash/internal/domain"
	"github.com/nfrund/applydash/internal/middleware"
	"github.com/nfrund/applydash/internal/rendering"
	"github.com/nfrund/applydash/internal/view"
	"github.com/nfrund/applydash/internal/view/components"
)

// MaxResumeSize bounds uploaded resume files.
const MaxResumeSize = 10 << 20

var formFields = []string{"campaignName", "jobTitle", "location", "platforms"}

// Executor runs a dashboard action.
type Executor interface {
	Execute(ctx context.Context, req actions.Request) (actions.Result, error)
}

// ActionHandler handles POST /actions/:action.
type ActionHandler struct {
	executor Executor
	renderer rendering.Renderer
}

// NewActionHandler creates a new ActionHandler.
func NewActionHandler(executor Executor, renderer rendering.Renderer) *ActionHandler {
	return &ActionHandler{executor: executor, renderer: renderer}
}

// Post runs the action named in the path. htmx requests get 204 on success
// or abort, since region updates arrive over the websocket; plain form posts
// are redirected back to the page with a flash message.
func (h *ActionHandler) Post(c echo.Context) error {
	action, err := domain.ParseAction(c.Param("action"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	req, err := readRequest(c, action)
	if err != nil {
		return err
	}

	// The workflow keeps running if the browser goes away.
	ctx := context.WithoutCancel(c.Request().Context())
	logger := middleware.FromContext(ctx).With("action", action)

	res, err := h.executor.Execute(ctx, req)
	switch {
	case errors.Is(err, domain.ErrActionAborted):
		logger.Debug("Action aborted", "reason", err)
		if isHTMX(c) {
			return c.NoContent(http.StatusNoContent)
		}
		return c.Redirect(http.StatusSeeOther, "/")

	case err != nil:
		logger.Error("Action failed", "error", err)
		if isHTMX(c) {
			return c.String(http.StatusBadGateway, err.Error())
		}
		view.SetFlashError(c, "Error: "+err.Error())
		return c.Redirect(http.StatusSeeOther, "/")
	}

	logger.Info("Action completed", "message", res.Message)
	if action == domain.ActionOpenSettings {
		if isHTMX(c) {
			return h.renderer.RenderPage(c, http.StatusOK, components.Settings(res.Settings))
		}
		return c.Redirect(http.StatusSeeOther, "/?settings=open")
	}
	if isHTMX(c) {
		return c.NoContent(http.StatusNoContent)
	}
	view.SetFlashSuccess(c, res.Message)
	return c.Redirect(http.StatusSeeOther, "/")
}

func readRequest(c echo.Context, action domain.Action) (actions.Request, error) {
	req := actions.Request{Action: action, Fields: map[string]string{}}
	for _, name := range formFields {
		req.Fields[name] = c.FormValue(name)
	}
	if action != domain.ActionUploadResume {
		return req, nil
	}

	fh, err := c.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return req, nil
	}
	if err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid upload").SetInternal(err)
	}
	if fh.Size > MaxResumeSize {
		return req, echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("resume larger than %d bytes", MaxResumeSize))
	}
	f, err := fh.Open()
	if err != nil {
		return req, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxResumeSize))
	if err != nil {
		return req, fmt.Errorf("read upload: %w", err)
	}
	req.File = &actions.File{
		Name:        fh.Filename,
		Data:        data,
		ContentType: fh.Header.Get(echo.HeaderContentType),
	}
	return req, nil
}

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}
