package api

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/service"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// --- DTOs ---

// StartWorkoutRequest picks the routine by plan or program id, by routine
// code, or carries an ad-hoc plan.
type StartWorkoutRequest struct {
	PlanID   string               `json:"planId"`
	PlanCode string               `json:"planCode"`
	Plan     *domain.WorkoutPlan  `json:"plan"`
	Source   domain.SessionSource `json:"source"`
}

// SessionUpdateRequest is the wire form of service.SessionUpdate; Op selects the variant.
type SessionUpdateRequest struct {
	Op          string               `json:"op" binding:"required,oneof=update_set add_set remove_set add_exercise remove_exercise set_notes cancel"`
	Exercise    int                  `json:"exercise"`
	Set         int                  `json:"set"`
	Reps        *int                 `json:"reps"`
	Weight      *float64             `json:"weight"`
	Completed   *bool                `json:"completed"`
	Notes       string               `json:"notes"`
	NewExercise *domain.PlanExercise `json:"newExercise"`
}

func (r SessionUpdateRequest) toUpdate() (service.SessionUpdate, error) {
	switch r.Op {
	case "update_set":
		return service.UpdateSet{Exercise: r.Exercise, Set: r.Set, Reps: r.Reps, Weight: r.Weight, Completed: r.Completed}, nil
	case "add_set":
		return service.AddSet{Exercise: r.Exercise}, nil
	case "remove_set":
		return service.RemoveSet{Exercise: r.Exercise, Set: r.Set}, nil
	case "add_exercise":
		if r.NewExercise == nil {
			return nil, fmt.Errorf("%w: newExercise is required", service.ErrInvalidUpdate)
		}
		return service.AddExercise{Exercise: *r.NewExercise}, nil
	case "remove_exercise":
		return service.RemoveExercise{Exercise: r.Exercise}, nil
	case "set_notes":
		return service.SetSessionNotes{Notes: r.Notes}, nil
	case "cancel":
		return service.CancelSession{}, nil
	}
	return nil, fmt.Errorf("%w: unknown op %q", service.ErrInvalidUpdate, r.Op)
}

// resolvePlan finds the routine a session starts from.
func resolvePlan(snap *service.Snapshot, req StartWorkoutRequest) (domain.WorkoutPlan, bool) {
	switch {
	case req.PlanID != "":
		for _, p := range snap.WorkoutPlans {
			if p.ID == req.PlanID {
				return p, true
			}
		}
		// Programs are runnable as single-day plans.
		for _, p := range snap.Programs {
			if p.ID == req.PlanID {
				return domain.WorkoutPlan{ID: p.ID, GymID: p.GymID, Name: p.Name, Exercises: p.Exercises}, true
			}
		}
	case req.PlanCode != "":
		if p, ok := service.FindPlanByCode(snap.WorkoutPlans, req.PlanCode); ok {
			return *p, true
		}
	case req.Plan != nil:
		return *req.Plan, true
	}
	return domain.WorkoutPlan{}, false
}

// --- Handler Methods ---

func (h *GymHandler) GetActiveWorkout(c *gin.Context) {
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	s := w.Snapshot().ActiveSession
	if s == nil {
		abortWithServiceError(c, service.ErrNoActiveSession)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *GymHandler) StartWorkout(c *gin.Context) {
	var req StartWorkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	plan, found := resolvePlan(w.Snapshot(), req)
	if !found {
		abortWithError(c, http.StatusNotFound, "Workout plan not found")
		return
	}
	session, err := w.StartWorkout(c.Request.Context(), plan, req.Source)
	created(c, session, err, "Workout could not be started")
}

func (h *GymHandler) UpdateWorkout(c *gin.Context) {
	var req SessionUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	upd, err := req.toUpdate()
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	session, err := w.UpdateActiveWorkout(c.Request.Context(), upd)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	if session == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *GymHandler) FinishWorkout(c *gin.Context) {
	var req service.FinishSummary
	// The body is optional; chunked bodies report ContentLength -1.
	if c.Request.Body != nil && c.Request.Body != http.NoBody && c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	rec, err := w.FinishWorkout(c.Request.Context(), req)
	created(c, rec, err, "No active workout session")
}

func (h *GymHandler) CancelWorkout(c *gin.Context) {
	h.mutation(c, func(w *service.Workspace) error {
		return w.CancelActiveWorkout(c.Request.Context())
	})
}

// CorrectWorkoutRecord is the MASTER-only correction path for finished workouts.
func (h *GymHandler) CorrectWorkoutRecord(c *gin.Context) {
	var req service.RecordCorrection
	if !bindJSON(c, &req) {
		return
	}
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	rec, err := w.CorrectWorkoutRecord(c.Request.Context(), c.Param("recordId"), req)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	if rec == nil {
		abortWithError(c, http.StatusNotFound, "Workout record not found")
		return
	}
	c.JSON(http.StatusOK, rec)
}
