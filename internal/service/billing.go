package service

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// planDurations is checked in order; the first token found in the plan name wins.
var planDurations = []struct {
	token         string
	years, months int
}{
	{"1 Year", 1, 0},
	{"6 Months", 0, 6},
	{"3 Months", 0, 3},
	{"1 Month", 0, 1},
}

// ExpiryFor advances from by the duration named in planName. A name without
// a known duration token leaves the expiry at from.
func ExpiryFor(planName string, from time.Time) time.Time {
	for _, d := range planDurations {
		if strings.Contains(planName, d.token) {
			return from.AddDate(d.years, d.months, 0)
		}
	}
	return from
}

// ProcessPayment renews a member on plan: it appends a Payment, then
// updates the member's status, plan and expiry from it. Unknown members are
// ignored.
//
// paymentID makes the call repeatable: when a Payment with that id already
// exists, the stored one is reused and only the missing writes are applied,
// so retrying after ErrConflict never records the payment twice. An empty
// paymentID gets a fresh id.
func (w *Workspace) ProcessPayment(ctx context.Context, memberID string, plan domain.MembershipPlan, mode, paymentID string) (*domain.Payment, error) {
	if strings.TrimSpace(plan.Name) == "" {
		return nil, w.svc.invalid(errors.New("plan name is required"))
	}
	if paymentID == "" {
		paymentID = uuid.NewString()
	}
	var payment *domain.Payment
	err := w.mutate(ctx, "process_payment", func(id domain.Identity) error {
		member, err := w.svc.tenantUser(ctx, id.GymID, memberID)
		if err != nil || member == nil || !member.IsMember() {
			return err
		}

		now := w.svc.now()
		p := domain.Payment{
			ID:         paymentID,
			GymID:      id.GymID,
			MemberID:   member.ID,
			MemberName: member.Name,
			Amount:     plan.Price,
			Plan:       plan.Name,
			Mode:       mode,
			Date:       now,
			ExpiryDate: ExpiryFor(plan.Name, now),
		}
		reused := false
		err = w.svc.repo.Payments.Update(ctx, func(list []domain.Payment) ([]domain.Payment, error) {
			for _, existing := range list {
				if existing.ID != p.ID {
					continue
				}
				if existing.GymID != id.GymID || existing.MemberID != member.ID {
					return nil, w.svc.invalid(fmt.Errorf("payment id %q is already used", p.ID))
				}
				p, reused = existing, true
				return nil, repository.ErrUnchanged
			}
			return append(list, p), nil
		})
		if err != nil {
			return err
		}

		err = w.svc.repo.Users.Update(ctx, func(users []domain.User) ([]domain.User, error) {
			for i := range users {
				u := &users[i]
				if u.ID != member.ID || u.GymID != id.GymID {
					continue
				}
				// A repeated payment never rolls back a later renewal.
				if reused && u.ExpiryDate != nil && !u.ExpiryDate.Before(p.ExpiryDate) {
					return nil, repository.ErrUnchanged
				}
				expiry := p.ExpiryDate
				u.Status = domain.MemberStatusActive
				u.Plan = p.Plan
				u.ExpiryDate = &expiry
				return users, nil
			}
			return nil, repository.ErrUnchanged
		})
		if err != nil {
			return err
		}

		notificationID := "payment-" + p.ID
		err = w.svc.repo.Notifications.Update(ctx, func(list []domain.Notification) ([]domain.Notification, error) {
			for _, n := range list {
				if n.ID == notificationID {
					return nil, repository.ErrUnchanged
				}
			}
			return append(list, domain.Notification{
				ID:        notificationID,
				TargetID:  domain.MasterTarget,
				GymID:     id.GymID,
				Message:   fmt.Sprintf("Payment of %.2f received from %s for %s", p.Amount, p.MemberName, p.Plan),
				CreatedAt: p.Date,
			}), nil
		})
		if err != nil {
			return err
		}
		payment = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// SaveMembershipPlan creates or replaces a plan owned by the caller's gym.
// Global templates cannot be overwritten; reusing their id creates a suffixed copy.
func (w *Workspace) SaveMembershipPlan(ctx context.Context, p domain.MembershipPlan) (*domain.MembershipPlan, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, w.svc.invalid(errors.New("plan name is required"))
	}
	if p.Price < 0 || p.DurationMonths < 0 {
		return nil, w.svc.invalid(errors.New("price and duration must not be negative"))
	}
	var saved *domain.MembershipPlan
	err := w.mutate(ctx, "save_membership_plan", func(id domain.Identity) error {
		p.GymID = id.GymID
		return w.svc.repo.MembershipPlans.Update(ctx, func(list []domain.MembershipPlan) ([]domain.MembershipPlan, error) {
			next, item := upsertScoped(list, p, id.GymID,
				func(x domain.MembershipPlan) string { return x.ID },
				func(x domain.MembershipPlan) string { return x.GymID },
				func(x *domain.MembershipPlan, v string) { x.ID = v })
			saved = &item
			return next, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// DeleteMembershipPlan removes a plan owned by the caller's gym.
func (w *Workspace) DeleteMembershipPlan(ctx context.Context, planID string) error {
	return w.mutate(ctx, "delete_membership_plan", func(id domain.Identity) error {
		return w.svc.repo.MembershipPlans.Update(ctx, func(list []domain.MembershipPlan) ([]domain.MembershipPlan, error) {
			out := filterList(list, func(p domain.MembershipPlan) bool { return !(p.ID == planID && p.GymID == id.GymID) })
			if len(out) == len(list) {
				return nil, repository.ErrUnchanged
			}
			return out, nil
		})
	})
}
