package api

import (
	"alcyxob/gymhub/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *GymHandler) AddTrainer(c *gin.Context) {
	var req service.TrainerInput
	if !bindJSON(c, &req) {
		return
	}
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	t, err := w.AddTrainer(c.Request.Context(), req)
	created(c, t, err, "Trainer could not be created")
}

func (h *GymHandler) UpdateTrainer(c *gin.Context) {
	var req service.TrainerUpdate
	if !bindJSON(c, &req) {
		return
	}
	h.mutation(c, func(w *service.Workspace) error {
		return w.UpdateTrainer(c.Request.Context(), c.Param("id"), req)
	})
}

// DeleteTrainer soft-deletes the trainer.
func (h *GymHandler) DeleteTrainer(c *gin.Context) {
	h.mutation(c, func(w *service.Workspace) error {
		return w.DeleteTrainer(c.Request.Context(), c.Param("id"))
	})
}
