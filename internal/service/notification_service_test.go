package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
)

func TestNotification_InboxTargeting(t *testing.T) {
	tables := newMockTables()
	svc := NewNotificationService(tables.client(), nil, zap.NewNop())
	ctx := context.Background()
	kim := instructorUser("ins-1", "KIM01")

	send := func(req *dto.CreateNotificationRequest) {
		t.Helper()
		if _, err := svc.Create(ctx, kim, req); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	send(&dto.CreateNotificationRequest{TargetType: model.TargetAll, Title: "Welcome", Message: "hi"})
	send(&dto.CreateNotificationRequest{TargetType: model.TargetNoAPIKey, Title: "Set your key", Message: "go"})
	send(&dto.CreateNotificationRequest{TargetType: model.TargetSpecific, TargetStudentIDs: []string{"stu-2"}, Title: "Only you", Message: "x"})

	withKey := studentUser("stu-1")
	withKey.HasAPIKey = true
	if got := svc.Inbox(ctx, withKey); len(got) != 1 || got[0].Title != "Welcome" {
		t.Errorf("student with key: unexpected inbox %+v", got)
	}

	noKey := studentUser("stu-2")
	got := svc.Inbox(ctx, noKey)
	if len(got) != 3 {
		t.Fatalf("student without key should see 3, got %d", len(got))
	}
	if got[0].Title != "Only you" {
		t.Error("inbox should be newest first")
	}

	if n := len(svc.History(ctx, "ins-1")); n != 3 {
		t.Errorf("expected 3 in history, got %d", n)
	}
}

func TestNotification_CreateRules(t *testing.T) {
	tables := newMockTables()
	svc := NewNotificationService(tables.client(), nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, studentUser("stu-1"), &dto.CreateNotificationRequest{TargetType: model.TargetAll, Title: "t", Message: "m"})
	if !errors.Is(err, ErrNotInstructor) {
		t.Errorf("expected ErrNotInstructor, got %v", err)
	}

	_, err = svc.Create(ctx, instructorUser("ins-1", "KIM01"), &dto.CreateNotificationRequest{TargetType: model.TargetSpecific, Title: "t", Message: "m"})
	if !errors.Is(err, ErrNoTargetStudents) {
		t.Errorf("expected ErrNoTargetStudents, got %v", err)
	}

	n, err := svc.Create(ctx, instructorUser("ins-1", "KIM01"), &dto.CreateNotificationRequest{TargetType: model.TargetAll, Title: "t", Message: "m"})
	if err != nil {
		t.Fatal(err)
	}
	if n.TargetStudentIDs == nil {
		t.Error("target ids must never be nil")
	}
}
