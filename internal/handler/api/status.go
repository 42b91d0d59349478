package api

import (
	"SentiPull/internal/domain/models"
	xhttp "SentiPull/pkg/http"

	"github.com/labstack/echo/v4"
)

// StatusProvider reports the state of the load loop.
type StatusProvider interface {
	LastRun() models.RunStatus
}

// StatusHandler serves liveness and last-run status.
type StatusHandler struct {
	status StatusProvider
}

func NewStatusHandler(status StatusProvider) *StatusHandler {
	return &StatusHandler{status: status}
}

func (h *StatusHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/status", h.Status)
}

// Health answers 200 while the process is up and the last run did not fail.
func (h *StatusHandler) Health(c echo.Context) error {
	st := h.status.LastRun()
	if st.Error != "" {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("last load failed: "+st.Error, nil))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *StatusHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.status.LastRun())
}
