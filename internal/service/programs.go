package service

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/repository"
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// upsertScoped replaces the tenant's record with the same id or appends a
// new one. An id owned by another tenant is suffixed instead of overwritten.
func upsertScoped[T any](items []T, item T, tenant string, idOf func(T) string, gymOf func(T) string, setID func(*T, string)) ([]T, T) {
	id := idOf(item)
	if id == "" {
		setID(&item, uuid.NewString())
		return append(items, item), item
	}
	for i := range items {
		if idOf(items[i]) != id {
			continue
		}
		if gymOf(items[i]) == tenant {
			items[i] = item
			return items, item
		}
		setID(&item, disambiguate(id, idSet(items, idOf)))
		return append(items, item), item
	}
	return append(items, item), item
}

// SaveProgram creates or replaces a program in the caller's gym.
func (w *Workspace) SaveProgram(ctx context.Context, p domain.Program) (*domain.Program, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, w.svc.invalid(errors.New("program name is required"))
	}
	if err := domain.ValidateExercises(p.Exercises); err != nil {
		return nil, w.svc.invalid(err)
	}
	var saved *domain.Program
	err := w.mutate(ctx, "save_program", func(id domain.Identity) error {
		p.GymID = id.GymID
		if p.Exercises == nil {
			p.Exercises = []domain.PlanExercise{}
		}
		return w.svc.repo.Programs.Update(ctx, func(list []domain.Program) ([]domain.Program, error) {
			next, item := upsertScoped(list, p, id.GymID,
				func(x domain.Program) string { return x.ID },
				func(x domain.Program) string { return x.GymID },
				func(x *domain.Program, v string) { x.ID = v })
			saved = &item
			return next, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// DeleteProgram removes a program and clears it from members it was assigned to.
func (w *Workspace) DeleteProgram(ctx context.Context, programID string) error {
	return w.mutate(ctx, "delete_program", func(id domain.Identity) error {
		removed := false
		err := w.svc.repo.Programs.Update(ctx, func(list []domain.Program) ([]domain.Program, error) {
			out := filterList(list, func(p domain.Program) bool { return !(p.ID == programID && p.GymID == id.GymID) })
			if len(out) == len(list) {
				return nil, repository.ErrUnchanged
			}
			removed = true
			return out, nil
		})
		if err != nil || !removed {
			return err
		}
		return w.svc.repo.Users.Update(ctx, func(users []domain.User) ([]domain.User, error) {
			changed := false
			for i := range users {
				if users[i].GymID == id.GymID && users[i].AssignedProgram == programID {
					users[i].AssignedProgram = ""
					changed = true
				}
			}
			if !changed {
				return nil, repository.ErrUnchanged
			}
			return users, nil
		})
	})
}

// SaveWorkoutPlan creates or replaces a workout plan. Plans without a code
// get a generated routine code unique within the gym.
func (w *Workspace) SaveWorkoutPlan(ctx context.Context, p domain.WorkoutPlan) (*domain.WorkoutPlan, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, w.svc.invalid(errors.New("workout plan name is required"))
	}
	if len(p.Exercises) == 0 && len(p.Schedule) == 0 {
		return nil, w.svc.invalid(errors.New("workout plan needs exercises or a schedule"))
	}
	if err := p.Validate(); err != nil {
		return nil, w.svc.invalid(err)
	}
	var saved *domain.WorkoutPlan
	err := w.mutate(ctx, "save_workout_plan", func(id domain.Identity) error {
		p.GymID = id.GymID
		if p.CreatedBy == "" {
			p.CreatedBy = id.UserID
		}
		p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
		prefix := tenantPrefix(w.svc.gymName(ctx, id.GymID)) + "R"
		return w.svc.repo.WorkoutPlans.Update(ctx, func(list []domain.WorkoutPlan) ([]domain.WorkoutPlan, error) {
			codes := make(map[string]bool)
			for _, existing := range list {
				if existing.GymID == id.GymID && existing.ID != p.ID && existing.Code != "" {
					codes[existing.Code] = true
				}
			}
			if p.Code == "" {
				p.Code = w.svc.generateCode(prefix, codes)
			} else {
				p.Code = disambiguate(p.Code, codes)
			}
			next, item := upsertScoped(list, p, id.GymID,
				func(x domain.WorkoutPlan) string { return x.ID },
				func(x domain.WorkoutPlan) string { return x.GymID },
				func(x *domain.WorkoutPlan, v string) { x.ID = v })
			saved = &item
			return next, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (w *Workspace) DeleteWorkoutPlan(ctx context.Context, planID string) error {
	return w.mutate(ctx, "delete_workout_plan", func(id domain.Identity) error {
		return w.svc.repo.WorkoutPlans.Update(ctx, func(list []domain.WorkoutPlan) ([]domain.WorkoutPlan, error) {
			out := filterList(list, func(p domain.WorkoutPlan) bool { return !(p.ID == planID && p.GymID == id.GymID) })
			if len(out) == len(list) {
				return nil, repository.ErrUnchanged
			}
			return out, nil
		})
	})
}
