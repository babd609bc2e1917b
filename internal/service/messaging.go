package service

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/repository"
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Notify addresses a notification to a tenant user or to domain.MasterTarget.
func (w *Workspace) Notify(ctx context.Context, targetID, message string) (*domain.Notification, error) {
	if strings.TrimSpace(message) == "" || targetID == "" {
		return nil, w.svc.invalid(errors.New("target and message are required"))
	}
	var created *domain.Notification
	err := w.mutate(ctx, "notify", func(id domain.Identity) error {
		if targetID != domain.MasterTarget {
			target, err := w.svc.tenantUser(ctx, id.GymID, targetID)
			if err != nil || target == nil {
				return err
			}
		}
		n := domain.Notification{
			ID:        uuid.NewString(),
			TargetID:  targetID,
			GymID:     id.GymID,
			Message:   message,
			CreatedAt: w.svc.now(),
		}
		created = &n
		return w.svc.repo.Notifications.Update(ctx, func(list []domain.Notification) ([]domain.Notification, error) {
			return append(list, n), nil
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// MarkNotificationRead marks one of the caller's visible notifications as read.
func (w *Workspace) MarkNotificationRead(ctx context.Context, notificationID string) error {
	return w.mutate(ctx, "mark_notification_read", func(id domain.Identity) error {
		return w.svc.repo.Notifications.Update(ctx, func(list []domain.Notification) ([]domain.Notification, error) {
			for i := range list {
				n := &list[i]
				if n.ID != notificationID || n.GymID != id.GymID || !notificationVisibleTo(*n, id) || n.Read {
					continue
				}
				n.Read = true
				return list, nil
			}
			return nil, repository.ErrUnchanged
		})
	})
}

func (w *Workspace) PostAnnouncement(ctx context.Context, title, message string) (*domain.Announcement, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(message) == "" {
		return nil, w.svc.invalid(errors.New("title and message are required"))
	}
	var created *domain.Announcement
	err := w.mutate(ctx, "post_announcement", func(id domain.Identity) error {
		a := domain.Announcement{
			ID:        uuid.NewString(),
			GymID:     id.GymID,
			Title:     title,
			Message:   message,
			CreatedBy: id.UserID,
			CreatedAt: w.svc.now(),
		}
		created = &a
		return w.svc.repo.Announcements.Update(ctx, func(list []domain.Announcement) ([]domain.Announcement, error) {
			return append(list, a), nil
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (w *Workspace) DeleteAnnouncement(ctx context.Context, announcementID string) error {
	return w.mutate(ctx, "delete_announcement", func(id domain.Identity) error {
		return w.svc.repo.Announcements.Update(ctx, func(list []domain.Announcement) ([]domain.Announcement, error) {
			out := filterList(list, func(a domain.Announcement) bool { return !(a.ID == announcementID && a.GymID == id.GymID) })
			if len(out) == len(list) {
				return nil, repository.ErrUnchanged
			}
			return out, nil
		})
	})
}
