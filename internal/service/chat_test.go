package service

import (
	"alcyxob/gymhub/internal/domain"
	"context"
	"errors"
	"testing"
	"time"
)

func TestChatEditVisibleToBothParticipants(t *testing.T) {
	ctx := context.Background()
	svc, repo, clock := newTestService(t)
	seedTwoGyms(t, repo)
	master := openAs(t, svc, masterG1)
	member := openAs(t, svc, memberM1)

	msg, err := master.SendMessage(ctx, "M1", "See you at 6")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	clock.Advance(time.Minute)
	if err := master.EditMessage(ctx, "M1", msg.ID, "See you at 7"); err != nil {
		t.Fatalf("EditMessage() error = %v", err)
	}
	if err := member.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	for name, snap := range map[string]*Snapshot{"sender": master.Snapshot(), "recipient": member.Snapshot()} {
		other := "M1"
		if name == "recipient" {
			other = "MASTER1"
		}
		msgs := Conversation(snap, other)
		if len(msgs) != 1 {
			t.Fatalf("%s sees %d messages, want 1", name, len(msgs))
		}
		if msgs[0].Text != "See you at 7" || msgs[0].EditedAt == nil {
			t.Errorf("%s sees %+v, want edited text", name, msgs[0])
		}
	}
}

func TestChatOnlySenderMayEdit(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	seedTwoGyms(t, repo)
	master := openAs(t, svc, masterG1)
	member := openAs(t, svc, memberM1)

	msg, err := master.SendMessage(ctx, "M1", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if err := member.EditMessage(ctx, "MASTER1", msg.ID, "changed"); !errors.Is(err, ErrForbidden) {
		t.Errorf("recipient edit error = %v, want ErrForbidden", err)
	}
	if err := member.DeleteMessage(ctx, "MASTER1", msg.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("recipient delete error = %v, want ErrForbidden", err)
	}
	if err := master.EditMessage(ctx, "M1", "missing", "x"); err != nil {
		t.Errorf("edit of missing message error = %v, want nil", err)
	}

	if err := master.DeleteMessage(ctx, "M1", msg.ID); err != nil {
		t.Fatal(err)
	}
	if msgs := Conversation(master.Snapshot(), "M1"); len(msgs) != 0 {
		t.Errorf("messages after delete = %+v", msgs)
	}
}

func TestChatAcrossTenantsIgnored(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	seedTwoGyms(t, repo)
	w := openAs(t, svc, memberM1)

	msg, err := w.SendMessage(ctx, "M2", "hi from G1")
	if err != nil || msg != nil {
		t.Fatalf("SendMessage(M2) = %+v, %v; want nil, nil", msg, err)
	}
	if _, err := w.SendMessage(ctx, "M1", "self"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("self message error = %v, want ErrInvalidInput", err)
	}
	convs, _ := repo.Conversations.Load(ctx)
	if len(convs) != 0 {
		t.Errorf("conversations = %v, want none", convs)
	}
}

func TestConversationKeyIsSymmetric(t *testing.T) {
	if domain.ConversationKey("a", "b") != domain.ConversationKey("b", "a") {
		t.Fatal("ConversationKey depends on argument order")
	}
	a, b, ok := domain.ConversationParticipants(domain.ConversationKey("M1", "MASTER1"))
	if !ok || a != "M1" || b != "MASTER1" {
		t.Errorf("participants = %q %q %v", a, b, ok)
	}
}
