package service

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/repository"
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// tenantUser reports whether userID is a user of gymID.
func (s *GymService) tenantUser(ctx context.Context, gymID, userID string) (*domain.User, error) {
	users, err := s.repo.Users.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == userID && users[i].GymID == gymID {
			return &users[i], nil
		}
	}
	return nil, nil
}

// SaveDietPlan creates or replaces one of the member's diet plans.
// CreatedBy is always the caller, so a trainer-assigned plan is told apart
// from one the member wrote for themselves.
func (w *Workspace) SaveDietPlan(ctx context.Context, memberID string, plan domain.DietPlan) (*domain.DietPlan, error) {
	if strings.TrimSpace(plan.Name) == "" {
		return nil, w.svc.invalid(errors.New("diet plan name is required"))
	}
	var saved *domain.DietPlan
	err := w.mutate(ctx, "save_diet_plan", func(id domain.Identity) error {
		if memberID != id.UserID {
			member, err := w.svc.tenantUser(ctx, id.GymID, memberID)
			if err != nil || member == nil {
				return err
			}
		}
		plan.GymID = id.GymID
		plan.CreatedBy = id.UserID
		if plan.Meals == nil {
			plan.Meals = []domain.Meal{}
		}
		return w.svc.repo.DietPlans.UpdateKey(ctx, memberID, func(plans []domain.DietPlan, _ bool) ([]domain.DietPlan, bool, error) {
			if plan.ID == "" {
				plan.ID = uuid.NewString()
				plan.CreatedAt = w.svc.now()
				plans = append(plans, plan)
			} else {
				replaced := false
				for i := range plans {
					if plans[i].ID == plan.ID {
						plan.CreatedAt = plans[i].CreatedAt
						plans[i] = plan
						replaced = true
						break
					}
				}
				if !replaced {
					plan.CreatedAt = w.svc.now()
					plans = append(plans, plan)
				}
			}
			saved = &plan
			return plans, true, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (w *Workspace) DeleteDietPlan(ctx context.Context, memberID, planID string) error {
	return w.mutate(ctx, "delete_diet_plan", func(id domain.Identity) error {
		return w.svc.repo.DietPlans.UpdateKey(ctx, memberID, func(plans []domain.DietPlan, ok bool) ([]domain.DietPlan, bool, error) {
			out := filterList(plans, func(p domain.DietPlan) bool { return !(p.ID == planID && p.GymID == id.GymID) })
			if len(out) == len(plans) {
				return nil, false, repository.ErrUnchanged
			}
			return out, true, nil
		})
	})
}
