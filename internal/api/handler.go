package api

import (
	"alcyxob/gymhub/internal/backup"
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GymHandler serves every tenant-scoped route. Each request opens a
// workspace for the caller, so reads always come from a fresh snapshot.
type GymHandler struct {
	svc      *service.GymService
	exporter *backup.Exporter
	now      func() time.Time
}

// NewGymHandler creates the handler. exporter may be nil when no archive is configured.
func NewGymHandler(svc *service.GymService, exporter *backup.Exporter) *GymHandler {
	return &GymHandler{svc: svc, exporter: exporter, now: time.Now}
}

// workspace opens the caller's workspace, writing the error response on failure.
func (h *GymHandler) workspace(c *gin.Context) (*service.Workspace, domain.Identity, bool) {
	id, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return nil, id, false
	}
	w, err := h.svc.Open(c.Request.Context(), id)
	if err != nil {
		abortWithServiceError(c, err)
		return nil, id, false
	}
	return w, id, true
}

// mutation runs fn against the caller's workspace and answers 204 on success.
func (h *GymHandler) mutation(c *gin.Context, fn func(w *service.Workspace) error) {
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	if err := fn(w); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// created answers 201 with v, or 404 when the mutation found nothing to act on.
func created[T any](c *gin.Context, v *T, err error, missing string) {
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	if v == nil {
		abortWithError(c, http.StatusNotFound, missing)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
