package api

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *GymHandler) SaveProgram(c *gin.Context) {
	var req domain.Program
	if !bindJSON(c, &req) {
		return
	}
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	p, err := w.SaveProgram(c.Request.Context(), req)
	created(c, p, err, "Program could not be saved")
}

// DeleteProgram also clears the program from members it was assigned to.
func (h *GymHandler) DeleteProgram(c *gin.Context) {
	h.mutation(c, func(w *service.Workspace) error {
		return w.DeleteProgram(c.Request.Context(), c.Param("id"))
	})
}

func (h *GymHandler) SaveWorkoutPlan(c *gin.Context) {
	var req domain.WorkoutPlan
	if !bindJSON(c, &req) {
		return
	}
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	p, err := w.SaveWorkoutPlan(c.Request.Context(), req)
	created(c, p, err, "Workout plan could not be saved")
}

func (h *GymHandler) DeleteWorkoutPlan(c *gin.Context) {
	h.mutation(c, func(w *service.Workspace) error {
		return w.DeleteWorkoutPlan(c.Request.Context(), c.Param("id"))
	})
}

func (h *GymHandler) SaveMembershipPlan(c *gin.Context) {
	var req domain.MembershipPlan
	if !bindJSON(c, &req) {
		return
	}
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	p, err := w.SaveMembershipPlan(c.Request.Context(), req)
	created(c, p, err, "Membership plan could not be saved")
}

func (h *GymHandler) DeleteMembershipPlan(c *gin.Context) {
	h.mutation(c, func(w *service.Workspace) error {
		return w.DeleteMembershipPlan(c.Request.Context(), c.Param("id"))
	})
}
