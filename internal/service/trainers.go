package service

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/repository"
	"context"
	"errors"
)

type TrainerInput struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone"`
	Specialization string `json:"specialization"`
}

type TrainerUpdate struct {
	Name           *string               `json:"name"`
	Email          *string               `json:"email" validate:"omitempty,email"`
	Phone          *string               `json:"phone"`
	Specialization *string               `json:"specialization"`
	Status         *domain.TrainerStatus `json:"status"`
}

// AddTrainer creates the trainer record and its TRAINER user under one
// generated code. A trainer record left without its user by an earlier
// ErrConflict is completed rather than duplicated when the same name and
// email are added again.
func (w *Workspace) AddTrainer(ctx context.Context, in TrainerInput) (*domain.Trainer, error) {
	if err := w.svc.validate.Struct(in); err != nil {
		return nil, w.svc.invalid(err)
	}
	var created *domain.Trainer
	err := w.mutate(ctx, "add_trainer", func(id domain.Identity) error {
		users, err := w.svc.repo.Users.Load(ctx)
		if err != nil {
			return err
		}
		trainers, err := w.svc.repo.Trainers.Load(ctx)
		if err != nil {
			return err
		}
		taken := idSet(users, userID)

		t, pending := pendingTrainer(trainers, taken, id.GymID, in)
		if !pending {
			for _, tr := range trainers {
				taken[tr.ID] = true
			}
			code := w.svc.generateCode(tenantPrefix(w.svc.gymName(ctx, id.GymID))+"T", taken)
			t = domain.Trainer{
				ID:             code,
				GymID:          id.GymID,
				Name:           in.Name,
				Code:           code,
				Email:          in.Email,
				Phone:          in.Phone,
				Specialization: in.Specialization,
				Status:         domain.TrainerActive,
				CreatedAt:      w.svc.now(),
			}
			if err := w.svc.repo.Trainers.Update(ctx, func(list []domain.Trainer) ([]domain.Trainer, error) {
				return append(list, t), nil
			}); err != nil {
				return err
			}
		}

		if err := w.svc.repo.Users.Update(ctx, func(list []domain.User) ([]domain.User, error) {
			return append(list, domain.User{
				ID:       t.ID,
				GymID:    id.GymID,
				Role:     domain.RoleTrainer,
				Name:     t.Name,
				Email:    t.Email,
				Phone:    t.Phone,
				Status:   string(domain.TrainerActive),
				JoinDate: t.CreatedAt,
				Settings: domain.UserSettings{NotificationsEnabled: true},
			}), nil
		}); err != nil {
			return err
		}
		created = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// pendingTrainer finds an active trainer of gymID matching in whose user
// entry was never written.
func pendingTrainer(trainers []domain.Trainer, userIDs map[string]bool, gymID string, in TrainerInput) (domain.Trainer, bool) {
	for _, t := range trainers {
		if t.GymID == gymID && t.Status == domain.TrainerActive && !userIDs[t.ID] &&
			t.Name == in.Name && t.Email == in.Email {
			return t, true
		}
	}
	return domain.Trainer{}, false
}

// UpdateTrainer edits a trainer of the caller's gym. Deletion goes through DeleteTrainer.
func (w *Workspace) UpdateTrainer(ctx context.Context, trainerID string, upd TrainerUpdate) error {
	if err := w.svc.validate.Struct(upd); err != nil {
		return w.svc.invalid(err)
	}
	if upd.Status != nil && *upd.Status != domain.TrainerActive && *upd.Status != domain.TrainerInactive {
		return w.svc.invalid(errors.New("status must be Active or Inactive"))
	}
	return w.mutate(ctx, "update_trainer", func(id domain.Identity) error {
		return w.svc.repo.Trainers.Update(ctx, func(list []domain.Trainer) ([]domain.Trainer, error) {
			for i := range list {
				t := &list[i]
				if t.ID != trainerID || t.GymID != id.GymID || t.Status == domain.TrainerDeleted {
					continue
				}
				setIf(&t.Name, upd.Name)
				setIf(&t.Email, upd.Email)
				setIf(&t.Phone, upd.Phone)
				setIf(&t.Specialization, upd.Specialization)
				setIf(&t.Status, upd.Status)
				return list, nil
			}
			return nil, repository.ErrUnchanged
		})
	})
}

// DeleteTrainer soft-deletes: the record stays with status Deleted.
func (w *Workspace) DeleteTrainer(ctx context.Context, trainerID string) error {
	return w.mutate(ctx, "delete_trainer", func(id domain.Identity) error {
		deleted := false
		err := w.svc.repo.Trainers.Update(ctx, func(list []domain.Trainer) ([]domain.Trainer, error) {
			for i := range list {
				if list[i].ID == trainerID && list[i].GymID == id.GymID && list[i].Status != domain.TrainerDeleted {
					list[i].Status = domain.TrainerDeleted
					deleted = true
					return list, nil
				}
			}
			return nil, repository.ErrUnchanged
		})
		if err != nil || !deleted {
			return err
		}
		return w.svc.repo.Users.Update(ctx, func(users []domain.User) ([]domain.User, error) {
			for i := range users {
				if users[i].ID == trainerID && users[i].GymID == id.GymID && users[i].Role == domain.RoleTrainer {
					users[i].Status = string(domain.TrainerDeleted)
					return users, nil
				}
			}
			return nil, repository.ErrUnchanged
		})
	})
}
