package service

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/repository"
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Chat history is one record per pair of users under domain.ConversationKey,
// so both participants always read the same messages.

// SendMessage appends a message from the caller to recipientID, who must belong to the caller's gym.
func (w *Workspace) SendMessage(ctx context.Context, recipientID, text string) (*domain.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, w.svc.invalid(errors.New("message text is required"))
	}
	var sent *domain.ChatMessage
	err := w.mutate(ctx, "send_message", func(id domain.Identity) error {
		if recipientID == "" || recipientID == id.UserID {
			return w.svc.invalid(errors.New("recipient must be another user"))
		}
		recipient, err := w.svc.tenantUser(ctx, id.GymID, recipientID)
		if err != nil || recipient == nil {
			return err
		}
		msg := domain.ChatMessage{
			ID:          uuid.NewString(),
			GymID:       id.GymID,
			SenderID:    id.UserID,
			RecipientID: recipientID,
			Text:        text,
			Timestamp:   w.svc.now(),
		}
		key := domain.ConversationKey(id.UserID, recipientID)
		if err := w.svc.repo.Conversations.UpdateKey(ctx, key, func(msgs []domain.ChatMessage, _ bool) ([]domain.ChatMessage, bool, error) {
			return append(msgs, msg), true, nil
		}); err != nil {
			return err
		}
		sent = &msg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sent, nil
}

// EditMessage replaces the text of one of the caller's own messages.
func (w *Workspace) EditMessage(ctx context.Context, otherID, messageID, text string) error {
	if strings.TrimSpace(text) == "" {
		return w.svc.invalid(errors.New("message text is required"))
	}
	return w.mutate(ctx, "edit_message", func(id domain.Identity) error {
		return w.svc.repo.Conversations.UpdateKey(ctx, domain.ConversationKey(id.UserID, otherID),
			func(msgs []domain.ChatMessage, ok bool) ([]domain.ChatMessage, bool, error) {
				i, err := ownMessage(msgs, messageID, id.UserID)
				if err != nil {
					return nil, false, err
				}
				edited := w.svc.now()
				msgs[i].Text = text
				msgs[i].EditedAt = &edited
				return msgs, true, nil
			})
	})
}

// DeleteMessage removes one of the caller's own messages.
func (w *Workspace) DeleteMessage(ctx context.Context, otherID, messageID string) error {
	return w.mutate(ctx, "delete_message", func(id domain.Identity) error {
		return w.svc.repo.Conversations.UpdateKey(ctx, domain.ConversationKey(id.UserID, otherID),
			func(msgs []domain.ChatMessage, ok bool) ([]domain.ChatMessage, bool, error) {
				i, err := ownMessage(msgs, messageID, id.UserID)
				if err != nil {
					return nil, false, err
				}
				msgs = append(msgs[:i], msgs[i+1:]...)
				return msgs, len(msgs) > 0, nil
			})
	})
}

// ownMessage finds messageID. A missing message is a no-op; someone else's
// message is ErrForbidden.
func ownMessage(msgs []domain.ChatMessage, messageID, senderID string) (int, error) {
	for i := range msgs {
		if msgs[i].ID != messageID {
			continue
		}
		if msgs[i].SenderID != senderID {
			return -1, ErrForbidden
		}
		return i, nil
	}
	return -1, repository.ErrUnchanged
}
