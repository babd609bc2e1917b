package api

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetMe returns the caller's identity, user record and settings.
func (h *GymHandler) GetMe(c *gin.Context) {
	w, id, ok := h.workspace(c)
	if !ok {
		return
	}
	snap := w.Snapshot()
	u, _ := snap.User(id.UserID)
	c.JSON(http.StatusOK, gin.H{"identity": id, "user": u, "gym": snap.Gym, "settings": snap.Settings})
}

// GetSnapshot returns the full tenant-scoped snapshot.
func (h *GymHandler) GetSnapshot(c *gin.Context) {
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, w.Snapshot())
}

func (h *GymHandler) GetDashboard(c *gin.Context) {
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.BuildDashboard(w.Snapshot(), h.now()))
}

func (h *GymHandler) GetMemberStatuses(c *gin.Context) {
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.MemberStatuses(w.Snapshot(), h.now()))
}

func (h *GymHandler) GetRevenue(c *gin.Context) {
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.Revenue(w.Snapshot().Payments, h.now()))
}

func (h *GymHandler) GetTrainers(c *gin.Context) {
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.ActiveTrainers(w.Snapshot().Trainers))
}

func (h *GymHandler) GetNotifications(c *gin.Context) {
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	list := service.VisibleNotifications(w.Snapshot())
	c.JSON(http.StatusOK, gin.H{"notifications": list, "unread": service.UnreadCount(list)})
}

func (h *GymHandler) GetAnnouncements(c *gin.Context) {
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.AnnouncementsNewestFirst(w.Snapshot().Announcements))
}

// historyUser is the caller, or ?userId= for staff looking at a member.
func historyUser(c *gin.Context, id domain.Identity) string {
	if other := c.Query("userId"); other != "" && isStaff(id.Role) {
		return other
	}
	return id.UserID
}

func (h *GymHandler) GetHistory(c *gin.Context) {
	w, id, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.History(w.Snapshot().WorkoutHistory, historyUser(c, id)))
}

func (h *GymHandler) GetVolume(c *gin.Context) {
	w, id, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.VolumeByDay(w.Snapshot().WorkoutHistory, historyUser(c, id)))
}

func (h *GymHandler) GetProgress(c *gin.Context) {
	w, id, ok := h.workspace(c)
	if !ok {
		return
	}
	p := w.Snapshot().Progress[historyUser(c, id)]
	if p == nil {
		p = domain.ExerciseProgress{}
	}
	c.JSON(http.StatusOK, p)
}

func (h *GymHandler) GetConversation(c *gin.Context) {
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.Conversation(w.Snapshot(), c.Param("userId")))
}

func (h *GymHandler) GetWorkoutPlanByCode(c *gin.Context) {
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	plan, found := service.FindPlanByCode(w.Snapshot().WorkoutPlans, c.Param("code"))
	if !found {
		abortWithError(c, http.StatusNotFound, "Workout plan not found")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ExportBackup archives the caller's tenant snapshot and returns a download URL.
func (h *GymHandler) ExportBackup(c *gin.Context) {
	if h.exporter == nil {
		abortWithError(c, http.StatusServiceUnavailable, "Backup archive is not configured")
		return
	}
	w, _, ok := h.workspace(c)
	if !ok {
		return
	}
	key, url, err := h.exporter.ExportSnapshot(c.Request.Context(), w.Snapshot())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"key": key, "downloadUrl": url})
}
