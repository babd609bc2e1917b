package service

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/repository"
	"context"
	"time"

	"go.uber.org/zap"
)

// Snapshot is a self-consistent, tenant-filtered view of every collection.
type Snapshot struct {
	Identity *domain.Identity    `json:"identity,omitempty"`
	Gym      *domain.Gym         `json:"gym,omitempty"`
	Settings domain.UserSettings `json:"settings"`

	Users           []domain.User           `json:"users"`
	Trainers        []domain.Trainer        `json:"trainers"`
	Programs        []domain.Program        `json:"programs"`
	WorkoutPlans    []domain.WorkoutPlan    `json:"workoutPlans"`
	WorkoutHistory  []domain.WorkoutRecord  `json:"workoutHistory"`
	Payments        []domain.Payment        `json:"payments"`
	MembershipPlans []domain.MembershipPlan `json:"membershipPlans"`
	Notifications   []domain.Notification   `json:"notifications"`
	Announcements   []domain.Announcement   `json:"announcements"`

	Attendance    map[string][]domain.AttendanceEntry `json:"attendance"`
	Streaks       map[string]domain.StreakRecord      `json:"streaks"`
	DietPlans     map[string][]domain.DietPlan        `json:"dietPlans"`
	Progress      map[string]domain.ExerciseProgress  `json:"progress"`
	Conversations map[string][]domain.ChatMessage     `json:"conversations"`

	ActiveSession *domain.ActiveWorkoutSession `json:"activeSession"`
	RefreshedAt   time.Time                    `json:"refreshedAt"`
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		Users:           []domain.User{},
		Trainers:        []domain.Trainer{},
		Programs:        []domain.Program{},
		WorkoutPlans:    []domain.WorkoutPlan{},
		WorkoutHistory:  []domain.WorkoutRecord{},
		Payments:        []domain.Payment{},
		MembershipPlans: []domain.MembershipPlan{},
		Notifications:   []domain.Notification{},
		Announcements:   []domain.Announcement{},
		Attendance:      map[string][]domain.AttendanceEntry{},
		Streaks:         map[string]domain.StreakRecord{},
		DietPlans:       map[string][]domain.DietPlan{},
		Progress:        map[string]domain.ExerciseProgress{},
		Conversations:   map[string][]domain.ChatMessage{},
	}
}

// Refresh rebuilds the snapshot from the store. It is idempotent.
func (w *Workspace) Refresh(ctx context.Context) error {
	w.svc.mu.Lock()
	defer w.svc.mu.Unlock()
	return w.rebuild(ctx)
}

// rebuild must run with svc.mu held so it never observes half of a mutation.
func (w *Workspace) rebuild(ctx context.Context) error {
	w.mu.RLock()
	resolving := w.resolving
	var id *domain.Identity
	if w.identity != nil {
		cp := *w.identity
		id = &cp
	}
	w.mu.RUnlock()

	if resolving {
		return nil
	}
	if id == nil || id.UserID == "" || id.GymID == "" {
		w.publish(emptySnapshot())
		return nil
	}

	start := time.Now()
	snap, err := buildSnapshot(ctx, w.svc.repo, *id)
	if err != nil {
		w.svc.log.Error("Snapshot refresh failed", zap.String("gym_id", id.GymID), zap.Error(err))
		return err
	}
	snap.RefreshedAt = w.svc.now()
	w.svc.metrics.ObserveRefresh(time.Since(start))
	w.publish(snap)
	return nil
}

func buildSnapshot(ctx context.Context, repo *repository.Repository, id domain.Identity) (*Snapshot, error) {
	tenant := id.GymID
	snap := emptySnapshot()
	snap.Identity = &id

	users, err := repo.Users.Load(ctx)
	if err != nil {
		return nil, err
	}
	snap.Users = filterList(users, func(u domain.User) bool { return u.GymID == tenant })

	// Keys allowed in map collections: the tenant's users plus the caller.
	allowed := make(map[string]bool, len(snap.Users)+1)
	for _, u := range snap.Users {
		allowed[u.ID] = true
		if u.ID == id.UserID {
			snap.Settings = u.Settings
		}
	}
	allowed[id.UserID] = true

	gyms, err := repo.Gyms.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range gyms {
		if gyms[i].ID == tenant {
			g := gyms[i]
			snap.Gym = &g
			break
		}
	}

	if snap.Trainers, err = loadScoped(ctx, repo.Trainers, func(t domain.Trainer) bool { return t.GymID == tenant }); err != nil {
		return nil, err
	}
	if snap.Programs, err = loadScoped(ctx, repo.Programs, func(p domain.Program) bool { return p.GymID == tenant }); err != nil {
		return nil, err
	}
	if snap.WorkoutPlans, err = loadScoped(ctx, repo.WorkoutPlans, func(p domain.WorkoutPlan) bool { return p.GymID == tenant }); err != nil {
		return nil, err
	}
	if snap.WorkoutHistory, err = loadScoped(ctx, repo.WorkoutHistory, func(r domain.WorkoutRecord) bool { return r.GymID == tenant }); err != nil {
		return nil, err
	}
	if snap.Payments, err = loadScoped(ctx, repo.Payments, func(p domain.Payment) bool { return p.GymID == tenant }); err != nil {
		return nil, err
	}
	if snap.Announcements, err = loadScoped(ctx, repo.Announcements, func(a domain.Announcement) bool { return a.GymID == tenant }); err != nil {
		return nil, err
	}
	// Global templates have no gym id.
	if snap.MembershipPlans, err = loadScoped(ctx, repo.MembershipPlans, func(p domain.MembershipPlan) bool {
		return p.GymID == "" || p.GymID == tenant
	}); err != nil {
		return nil, err
	}
	// Notifications addressed to MasterTarget are only reachable through the gym id.
	if snap.Notifications, err = loadScoped(ctx, repo.Notifications, func(n domain.Notification) bool {
		return allowed[n.TargetID] || n.GymID == tenant
	}); err != nil {
		return nil, err
	}

	if snap.Attendance, err = loadKeyed(ctx, repo.Attendance, allowed); err != nil {
		return nil, err
	}
	if snap.Streaks, err = loadKeyed(ctx, repo.Streaks, allowed); err != nil {
		return nil, err
	}
	if snap.DietPlans, err = loadKeyed(ctx, repo.DietPlans, allowed); err != nil {
		return nil, err
	}
	if snap.Progress, err = loadKeyed(ctx, repo.Progress, allowed); err != nil {
		return nil, err
	}

	conversations, err := repo.Conversations.Load(ctx)
	if err != nil {
		return nil, err
	}
	for key, msgs := range conversations {
		a, b, ok := domain.ConversationParticipants(key)
		if ok && allowed[a] && allowed[b] {
			snap.Conversations[key] = msgs
		}
	}

	sessions, err := repo.ActiveWorkouts.Load(ctx)
	if err != nil {
		return nil, err
	}
	if s, ok := sessions[id.UserID]; ok && s.UserID == id.UserID && s.GymID == tenant {
		snap.ActiveSession = &s
	}

	return snap, nil
}

func loadScoped[T any](ctx context.Context, l repository.List[T], keep func(T) bool) ([]T, error) {
	items, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return filterList(items, keep), nil
}

func loadKeyed[V any](ctx context.Context, m repository.Map[V], allowed map[string]bool) (map[string]V, error) {
	entries, err := m.Load(ctx)
	if err != nil {
		return nil, err
	}
	return filterKeys(entries, allowed), nil
}

func filterList[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func filterKeys[V any](entries map[string]V, allowed map[string]bool) map[string]V {
	out := make(map[string]V, len(entries))
	for k, v := range entries {
		if allowed[k] {
			out[k] = v
		}
	}
	return out
}

// HasUser reports whether userID belongs to the snapshot's tenant.
func (s *Snapshot) HasUser(userID string) bool {
	for i := range s.Users {
		if s.Users[i].ID == userID {
			return true
		}
	}
	return false
}

// User returns the tenant user with the given id.
func (s *Snapshot) User(userID string) (*domain.User, bool) {
	for i := range s.Users {
		if s.Users[i].ID == userID {
			u := s.Users[i]
			return &u, true
		}
	}
	return nil, false
}
