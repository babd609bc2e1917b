package service

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/repository"
	"context"
	"fmt"
	"time"
)

// MemberInput describes a member to create. An empty ID gets a generated code.
type MemberInput struct {
	ID              string `json:"id"`
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"omitempty,email"`
	Phone           string `json:"phone"`
	Plan            string `json:"plan"`
	TrainerID       string `json:"trainerId"`
	AssignedProgram string `json:"assignedProgram"`
	Status          string `json:"status"`
}

// MemberUpdate sets only the non-nil fields.
type MemberUpdate struct {
	Name       *string    `json:"name"`
	Email      *string    `json:"email" validate:"omitempty,email"`
	Phone      *string    `json:"phone"`
	Status     *string    `json:"status"`
	Plan       *string    `json:"plan"`
	TrainerID  *string    `json:"trainerId"`
	ExpiryDate *time.Time `json:"expiryDate"`
}

// SettingsUpdate sets only the non-nil fields of the caller's own settings.
type SettingsUpdate struct {
	Theme                *string `json:"theme"`
	Units                *string `json:"units" validate:"omitempty,oneof=metric imperial"`
	NotificationsEnabled *bool   `json:"notificationsEnabled"`
	WeeklyGoal           *int    `json:"weeklyGoal" validate:"omitempty,min=0,max=14"`
}

func (s *GymService) gymName(ctx context.Context, gymID string) string {
	gyms, err := s.repo.Gyms.Load(ctx)
	if err == nil {
		for _, g := range gyms {
			if g.ID == gymID && g.Name != "" {
				return g.Name
			}
		}
	}
	return gymID
}

func userID(u domain.User) string { return u.ID }

// AddMember creates a member in the caller's gym. A supplied id that is
// already taken is suffixed, never rejected.
func (w *Workspace) AddMember(ctx context.Context, in MemberInput) (*domain.User, error) {
	if err := w.svc.validate.Struct(in); err != nil {
		return nil, w.svc.invalid(err)
	}
	if in.Status != "" && !domain.ValidMemberStatus(in.Status) {
		return nil, w.svc.invalid(fmt.Errorf("unknown member status %q", in.Status))
	}
	var created *domain.User
	err := w.mutate(ctx, "add_member", func(id domain.Identity) error {
		prefix := tenantPrefix(w.svc.gymName(ctx, id.GymID))
		return w.svc.repo.Users.Update(ctx, func(users []domain.User) ([]domain.User, error) {
			taken := idSet(users, userID)
			memberID := in.ID
			if memberID == "" {
				memberID = w.svc.generateCode(prefix, taken)
			} else {
				memberID = disambiguate(memberID, taken)
			}
			status := in.Status
			if status == "" {
				status = domain.MemberStatusPending
			}
			u := domain.User{
				ID:              memberID,
				GymID:           id.GymID,
				Role:            domain.RoleMember,
				Name:            in.Name,
				Email:           in.Email,
				Phone:           in.Phone,
				Status:          status,
				Plan:            in.Plan,
				TrainerID:       in.TrainerID,
				AssignedProgram: in.AssignedProgram,
				JoinDate:        w.svc.now(),
				Settings:        domain.UserSettings{NotificationsEnabled: true},
			}
			created = &u
			return append(users, u), nil
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateMember applies upd to a member of the caller's gym. Unknown ids are ignored.
func (w *Workspace) UpdateMember(ctx context.Context, memberID string, upd MemberUpdate) error {
	if err := w.svc.validate.Struct(upd); err != nil {
		return w.svc.invalid(err)
	}
	if upd.Status != nil && !domain.ValidMemberStatus(*upd.Status) {
		return w.svc.invalid(fmt.Errorf("unknown member status %q", *upd.Status))
	}
	return w.mutate(ctx, "update_member", func(id domain.Identity) error {
		return w.svc.repo.Users.Update(ctx, func(users []domain.User) ([]domain.User, error) {
			for i := range users {
				u := &users[i]
				if u.ID != memberID || u.GymID != id.GymID || !u.IsMember() {
					continue
				}
				setIf(&u.Name, upd.Name)
				setIf(&u.Email, upd.Email)
				setIf(&u.Phone, upd.Phone)
				setIf(&u.Status, upd.Status)
				setIf(&u.Plan, upd.Plan)
				setIf(&u.TrainerID, upd.TrainerID)
				if upd.ExpiryDate != nil {
					exp := *upd.ExpiryDate
					u.ExpiryDate = &exp
				}
				return users, nil
			}
			return nil, repository.ErrUnchanged
		})
	})
}

// DeleteMember removes a member and every map entry keyed by them.
// Payments and workout history are kept as financial and training records.
// The user entry goes last, so a retry after ErrConflict still finds the
// member and finishes the cleanup.
func (w *Workspace) DeleteMember(ctx context.Context, memberID string) error {
	return w.mutate(ctx, "delete_member", func(id domain.Identity) error {
		member, err := w.svc.tenantUser(ctx, id.GymID, memberID)
		if err != nil || member == nil || !member.IsMember() {
			return err
		}
		repo := w.svc.repo
		if err := dropKey(ctx, repo.Attendance, memberID); err != nil {
			return err
		}
		if err := dropKey(ctx, repo.Streaks, memberID); err != nil {
			return err
		}
		if err := dropKey(ctx, repo.DietPlans, memberID); err != nil {
			return err
		}
		if err := dropKey(ctx, repo.Progress, memberID); err != nil {
			return err
		}
		if err := dropKey(ctx, repo.ActiveWorkouts, memberID); err != nil {
			return err
		}
		return repo.Users.Update(ctx, func(users []domain.User) ([]domain.User, error) {
			out := filterList(users, func(u domain.User) bool {
				return !(u.ID == memberID && u.GymID == id.GymID && u.IsMember())
			})
			if len(out) == len(users) {
				return nil, repository.ErrUnchanged
			}
			return out, nil
		})
	})
}

// AssignProgram sets the member's assigned program. Both ids must belong to the caller's gym.
func (w *Workspace) AssignProgram(ctx context.Context, memberID, programID string) error {
	return w.mutate(ctx, "assign_program", func(id domain.Identity) error {
		programs, err := w.svc.repo.Programs.Load(ctx)
		if err != nil {
			return err
		}
		found := false
		for _, p := range programs {
			if p.ID == programID && p.GymID == id.GymID {
				found = true
				break
			}
		}
		if !found {
			return nil
		}
		return w.svc.repo.Users.Update(ctx, func(users []domain.User) ([]domain.User, error) {
			for i := range users {
				if users[i].ID == memberID && users[i].GymID == id.GymID && users[i].IsMember() {
					users[i].AssignedProgram = programID
					return users, nil
				}
			}
			return nil, repository.ErrUnchanged
		})
	})
}

// UpdateSettings writes the caller's own settings onto their user record.
func (w *Workspace) UpdateSettings(ctx context.Context, upd SettingsUpdate) error {
	if err := w.svc.validate.Struct(upd); err != nil {
		return w.svc.invalid(err)
	}
	return w.mutate(ctx, "update_settings", func(id domain.Identity) error {
		return w.svc.repo.Users.Update(ctx, func(users []domain.User) ([]domain.User, error) {
			for i := range users {
				u := &users[i]
				if u.ID != id.UserID || u.GymID != id.GymID {
					continue
				}
				setIf(&u.Settings.Theme, upd.Theme)
				setIf(&u.Settings.Units, upd.Units)
				setIf(&u.Settings.NotificationsEnabled, upd.NotificationsEnabled)
				setIf(&u.Settings.WeeklyGoal, upd.WeeklyGoal)
				return users, nil
			}
			return nil, repository.ErrUnchanged
		})
	})
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func dropKey[V any](ctx context.Context, m repository.Map[V], key string) error {
	return m.UpdateKey(ctx, key, func(v V, ok bool) (V, bool, error) {
		return v, false, nil
	})
}
