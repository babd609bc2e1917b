package api

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// --- DTOs ---

type AssignProgramRequest struct {
	ProgramID string `json:"programId" binding:"required"`
}

// PaymentRequest names a membership plan by id, or carries an ad-hoc plan.
// ID (or the Idempotency-Key header) lets a client retry the same payment.
type PaymentRequest struct {
	ID     string  `json:"id"`
	PlanID string  `json:"planId"`
	Name   string  `json:"name"`
	Price  float64 `json:"price" binding:"min=0"`
	Mode   string  `json:"mode" binding:"required"`
}

type AttendanceRequest struct {
	MemberID string                  `json:"memberId"`
	Date     string                  `json:"date"`
	Status   domain.AttendanceStatus `json:"status" binding:"required"`
}

// --- Handler Methods ---

func (h *GymHandler) AddMember(c *gin.Context) {
	var req service.MemberInput
	if !bindJSON(c, &req) {
		return
	}
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	m, err := w.AddMember(c.Request.Context(), req)
	created(c, m, err, "Member could not be created")
}

func (h *GymHandler) UpdateMember(c *gin.Context) {
	var req service.MemberUpdate
	if !bindJSON(c, &req) {
		return
	}
	h.mutation(c, func(w *service.Workspace) error {
		return w.UpdateMember(c.Request.Context(), c.Param("id"), req)
	})
}

func (h *GymHandler) DeleteMember(c *gin.Context) {
	h.mutation(c, func(w *service.Workspace) error {
		return w.DeleteMember(c.Request.Context(), c.Param("id"))
	})
}

func (h *GymHandler) AssignProgram(c *gin.Context) {
	var req AssignProgramRequest
	if !bindJSON(c, &req) {
		return
	}
	h.mutation(c, func(w *service.Workspace) error {
		return w.AssignProgram(c.Request.Context(), c.Param("id"), req.ProgramID)
	})
}

func (h *GymHandler) ProcessPayment(c *gin.Context) {
	var req PaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	plan := domain.MembershipPlan{Name: req.Name, Price: req.Price}
	if req.PlanID != "" {
		found := false
		for _, p := range w.Snapshot().MembershipPlans {
			if p.ID == req.PlanID {
				plan, found = p, true
				break
			}
		}
		if !found {
			abortWithError(c, http.StatusNotFound, "Membership plan not found")
			return
		}
	}
	paymentID := req.ID
	if paymentID == "" {
		paymentID = c.GetHeader("Idempotency-Key")
	}
	payment, err := w.ProcessPayment(c.Request.Context(), c.Param("id"), plan, req.Mode, paymentID)
	created(c, payment, err, "Member not found")
}

// MarkAttendance records a day for a member. Members may only mark themselves.
func (h *GymHandler) MarkAttendance(c *gin.Context) {
	var req AttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	w, id, ok := h.workspace(c)
	if !ok {
		return
	}
	memberID := req.MemberID
	if memberID == "" {
		memberID = id.UserID
	}
	if memberID != id.UserID && !isStaff(id.Role) {
		abortWithError(c, http.StatusForbidden, "Members can only mark their own attendance")
		return
	}
	date := h.now()
	if req.Date != "" {
		d, err := time.Parse(domain.DateLayout, req.Date)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = d
	}
	if err := w.MarkAttendance(c.Request.Context(), memberID, date, req.Status); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GymHandler) UpdateSettings(c *gin.Context) {
	var req service.SettingsUpdate
	if !bindJSON(c, &req) {
		return
	}
	h.mutation(c, func(w *service.Workspace) error {
		return w.UpdateSettings(c.Request.Context(), req)
	})
}

// dietTarget allows staff to act on any member and members on themselves.
func dietTarget(c *gin.Context, id domain.Identity) (string, bool) {
	memberID := c.Param("id")
	if memberID != id.UserID && !isStaff(id.Role) {
		abortWithError(c, http.StatusForbidden, "Members can only manage their own diet plans")
		return "", false
	}
	return memberID, true
}

func (h *GymHandler) SaveDietPlan(c *gin.Context) {
	var req domain.DietPlan
	if !bindJSON(c, &req) {
		return
	}
	w, id, ok := h.workspace(c)
	if !ok {
		return
	}
	memberID, ok := dietTarget(c, id)
	if !ok {
		return
	}
	plan, err := w.SaveDietPlan(c.Request.Context(), memberID, req)
	created(c, plan, err, "Member not found")
}

func (h *GymHandler) DeleteDietPlan(c *gin.Context) {
	id, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	memberID, ok := dietTarget(c, id)
	if !ok {
		return
	}
	h.mutation(c, func(w *service.Workspace) error {
		return w.DeleteDietPlan(c.Request.Context(), memberID, c.Param("planId"))
	})
}
