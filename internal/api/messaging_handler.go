package api

import (
	"alcyxob/gymhub/internal/service"

	"github.com/gin-gonic/gin"
)

type NotifyRequest struct {
	TargetID string `json:"targetId" binding:"required"`
	Message  string `json:"message" binding:"required"`
}

type AnnouncementRequest struct {
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
}

type ChatMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *GymHandler) Notify(c *gin.Context) {
	var req NotifyRequest
	if !bindJSON(c, &req) {
		return
	}
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	n, err := w.Notify(c.Request.Context(), req.TargetID, req.Message)
	created(c, n, err, "Notification target not found")
}

func (h *GymHandler) MarkNotificationRead(c *gin.Context) {
	h.mutation(c, func(w *service.Workspace) error {
		return w.MarkNotificationRead(c.Request.Context(), c.Param("id"))
	})
}

func (h *GymHandler) PostAnnouncement(c *gin.Context) {
	var req AnnouncementRequest
	if !bindJSON(c, &req) {
		return
	}
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	a, err := w.PostAnnouncement(c.Request.Context(), req.Title, req.Message)
	created(c, a, err, "Announcement could not be posted")
}

func (h *GymHandler) DeleteAnnouncement(c *gin.Context) {
	h.mutation(c, func(w *service.Workspace) error {
		return w.DeleteAnnouncement(c.Request.Context(), c.Param("id"))
	})
}

func (h *GymHandler) SendMessage(c *gin.Context) {
	var req ChatMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	msg, err := w.SendMessage(c.Request.Context(), c.Param("userId"), req.Text)
	created(c, msg, err, "Recipient not found")
}

// EditMessage changes one of the caller's own messages.
func (h *GymHandler) EditMessage(c *gin.Context) {
	var req ChatMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	h.mutation(c, func(w *service.Workspace) error {
		return w.EditMessage(c.Request.Context(), c.Param("userId"), c.Param("messageId"), req.Text)
	})
}

func (h *GymHandler) DeleteMessage(c *gin.Context) {
	h.mutation(c, func(w *service.Workspace) error {
		return w.DeleteMessage(c.Request.Context(), c.Param("userId"), c.Param("messageId"))
	})
}
