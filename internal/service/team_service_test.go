package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
)

func setupTestTeam() (TeamService, *mockTables) {
	tables := newMockTables()
	tables.profiles.add(&model.Profile{ID: "stu-1", Name: "Minh", Role: model.RoleStudent})
	tables.profiles.add(&model.Profile{ID: "stu-2", Name: "Lan", Role: model.RoleStudent})
	tables.profiles.add(&model.Profile{ID: "ins-2", Name: "Park", Role: model.RoleInstructor})
	return NewTeamService(tables.client(), nil, zap.NewNop()), tables
}

// classroomWithTeam creates a marketing classroom owned by ins-1 holding
// stu-1, and a team inside it.
func classroomWithTeam(t *testing.T, svc TeamService) (*model.ClassroomGroup, *model.TeamGroup) {
	t.Helper()
	ctx := context.Background()
	kim := instructorUser("ins-1", "KIM01")
	room, err := svc.CreateClassroom(ctx, kim, &dto.CreateClassroomRequest{
		Track: model.SchoolMarketing, ClassroomName: " Marketing A ", OrgCode: " abc234 ",
	})
	if err != nil {
		t.Fatalf("create classroom: %v", err)
	}
	if _, err := svc.AddClassroomMember(ctx, kim, room.ID, &dto.AddClassroomMemberRequest{UserID: "stu-1"}); err != nil {
		t.Fatalf("add classroom member: %v", err)
	}
	team, err := svc.CreateTeam(ctx, kim, room.ID, &dto.CreateTeamRequest{Name: "Tigers"})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	return room, team
}

func TestTeam_CreateClassroomNormalizes(t *testing.T) {
	svc, _ := setupTestTeam()
	room, _ := classroomWithTeam(t, svc)

	if room.ClassroomName != "Marketing A" || room.OrgCode != "ABC234" || room.InstructorID != "ins-1" {
		t.Errorf("unexpected classroom %+v", room)
	}
	list := svc.ListClassrooms(context.Background(), "ins-1")
	if len(list) != 1 || list[0].ID != room.ID {
		t.Errorf("list = %+v", list)
	}
	if len(svc.ListClassrooms(context.Background(), "ins-2")) != 0 {
		t.Error("other instructor sees the classroom")
	}
}

func TestTeam_CreateClassroomRequiresInstructor(t *testing.T) {
	svc, _ := setupTestTeam()
	_, err := svc.CreateClassroom(context.Background(), studentUser("stu-1"),
		&dto.CreateClassroomRequest{Track: model.SchoolCareer, ClassroomName: "X"})
	if !errors.Is(err, ErrNotInstructor) {
		t.Errorf("expected ErrNotInstructor, got %v", err)
	}
}

func TestTeam_OwnerOnly(t *testing.T) {
	svc, _ := setupTestTeam()
	room, team := classroomWithTeam(t, svc)
	ctx := context.Background()
	park := instructorUser("ins-2", "PARK01")

	if _, err := svc.ClassroomMembers(ctx, park, room.ID); !errors.Is(err, ErrNotClassroomOwner) {
		t.Errorf("members: expected ErrNotClassroomOwner, got %v", err)
	}
	if err := svc.DeleteTeam(ctx, park, team.ID); !errors.Is(err, ErrNotClassroomOwner) {
		t.Errorf("delete team: expected ErrNotClassroomOwner, got %v", err)
	}
	if err := svc.DeleteClassroom(ctx, park, room.ID); !errors.Is(err, ErrNotClassroomOwner) {
		t.Errorf("delete classroom: expected ErrNotClassroomOwner, got %v", err)
	}
	if err := svc.DeleteClassroom(ctx, park, "room-404"); !errors.Is(err, ErrClassroomNotFound) {
		t.Errorf("expected ErrClassroomNotFound, got %v", err)
	}
}

func TestTeam_AddClassroomMember(t *testing.T) {
	svc, _ := setupTestTeam()
	room, _ := classroomWithTeam(t, svc)
	ctx := context.Background()
	kim := instructorUser("ins-1", "KIM01")

	_, err := svc.AddClassroomMember(ctx, kim, room.ID, &dto.AddClassroomMemberRequest{UserID: "stu-1"})
	if !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("duplicate: expected ErrAlreadyMember, got %v", err)
	}
	_, err = svc.AddClassroomMember(ctx, kim, room.ID, &dto.AddClassroomMemberRequest{UserID: "ins-2"})
	if !errors.Is(err, ErrNotStudent) {
		t.Errorf("instructor: expected ErrNotStudent, got %v", err)
	}
	_, err = svc.AddClassroomMember(ctx, kim, room.ID, &dto.AddClassroomMemberRequest{UserID: "ghost"})
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("unknown: expected ErrProfileNotFound, got %v", err)
	}

	members, err := svc.ClassroomMembers(ctx, kim, room.ID)
	if err != nil || len(members) != 1 {
		t.Fatalf("members = %+v, %v", members, err)
	}
	if members[0].UserName != "Minh" || members[0].Status != model.MemberActive {
		t.Errorf("unexpected member %+v", members[0])
	}

	if err := svc.RemoveClassroomMember(ctx, kim, members[0].ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.RemoveClassroomMember(ctx, kim, members[0].ID); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("second remove: expected ErrMemberNotFound, got %v", err)
	}
}

func TestTeam_TeamMemberMustBeInClassroom(t *testing.T) {
	svc, _ := setupTestTeam()
	_, team := classroomWithTeam(t, svc)
	ctx := context.Background()
	kim := instructorUser("ins-1", "KIM01")

	_, err := svc.AddTeamMember(ctx, kim, team.ID, &dto.AddTeamMemberRequest{UserID: "stu-2"})
	if !errors.Is(err, ErrNotClassroomMember) {
		t.Errorf("expected ErrNotClassroomMember, got %v", err)
	}

	m, err := svc.AddTeamMember(ctx, kim, team.ID, &dto.AddTeamMemberRequest{UserID: "stu-1", AnimalIcon: "tiger", AptitudeType: " "})
	if err != nil {
		t.Fatalf("add team member: %v", err)
	}
	if m.AnimalIcon == nil || *m.AnimalIcon != "tiger" || m.AptitudeType != nil {
		t.Errorf("unexpected optional fields %+v", m)
	}
	if _, err := svc.AddTeamMember(ctx, kim, team.ID, &dto.AddTeamMemberRequest{UserID: "stu-1"}); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("duplicate: expected ErrAlreadyMember, got %v", err)
	}

	members, err := svc.TeamMembers(ctx, kim, team.ID)
	if err != nil || len(members) != 1 || members[0].UserName != "Minh" {
		t.Errorf("members = %+v, %v", members, err)
	}
	if err := svc.RemoveTeamMember(ctx, instructorUser("ins-2", "PARK01"), m.ID); !errors.Is(err, ErrNotClassroomOwner) {
		t.Errorf("foreign remove: expected ErrNotClassroomOwner, got %v", err)
	}
	if err := svc.RemoveTeamMember(ctx, kim, m.ID); err != nil {
		t.Errorf("remove: %v", err)
	}
}

func TestTeam_MyTeam(t *testing.T) {
	svc, _ := setupTestTeam()
	room, team := classroomWithTeam(t, svc)
	ctx := context.Background()

	if svc.MyTeam(ctx, "stu-1") != nil {
		t.Fatal("student without a team got one")
	}
	if _, err := svc.AddTeamMember(ctx, instructorUser("ins-1", "KIM01"), team.ID, &dto.AddTeamMemberRequest{UserID: "stu-1"}); err != nil {
		t.Fatalf("add team member: %v", err)
	}

	mine := svc.MyTeam(ctx, "stu-1")
	if mine == nil {
		t.Fatal("expected a team")
	}
	if mine.Team.ID != team.ID || mine.Classroom.ID != room.ID || len(mine.Members) != 1 {
		t.Errorf("unexpected team view %+v", mine)
	}
}

func TestTeam_IdeaBox(t *testing.T) {
	svc, _ := setupTestTeam()
	_, team := classroomWithTeam(t, svc)
	ctx := context.Background()
	minh := studentUser("stu-1")
	req := &dto.CreateTeamIdeaRequest{ToolID: "k-copywriter", Title: " Slogan ", Content: "Fresh kimchi daily"}

	if _, err := svc.AddIdea(ctx, minh, req); !errors.Is(err, ErrNoTeam) {
		t.Errorf("expected ErrNoTeam, got %v", err)
	}
	if _, err := svc.AddTeamMember(ctx, instructorUser("ins-1", "KIM01"), team.ID,
		&dto.AddTeamMemberRequest{UserID: "stu-1", AnimalIcon: "tiger"}); err != nil {
		t.Fatalf("add team member: %v", err)
	}

	idea, err := svc.AddIdea(ctx, minh, req)
	if err != nil {
		t.Fatalf("add idea: %v", err)
	}
	if idea.TeamID != team.ID || idea.Title != "Slogan" || idea.AnimalIcon == nil || *idea.AnimalIcon != "tiger" {
		t.Errorf("unexpected idea %+v", idea)
	}
	if got := svc.Ideas(ctx, "stu-1"); len(got) != 1 {
		t.Errorf("ideas = %+v", got)
	}
	if got := svc.Ideas(ctx, "stu-2"); len(got) != 0 {
		t.Errorf("teamless student sees ideas %+v", got)
	}

	if err := svc.DeleteIdea(ctx, "stu-2", idea.ID); !errors.Is(err, ErrTeamIdeaNotFound) {
		t.Errorf("foreign delete: expected ErrTeamIdeaNotFound, got %v", err)
	}
	if err := svc.DeleteIdea(ctx, "stu-1", idea.ID); err != nil {
		t.Errorf("own delete: %v", err)
	}
}

func TestTeam_Assignments(t *testing.T) {
	svc, tables := setupTestTeam()
	room, _ := classroomWithTeam(t, svc)
	ctx := context.Background()

	if !svc.IsAssignedToTrack(ctx, "stu-1", model.SchoolMarketing) {
		t.Error("stu-1 should be assigned to marketing")
	}
	if svc.IsAssignedToTrack(ctx, "stu-1", model.SchoolCareer) {
		t.Error("stu-1 should not be assigned to career")
	}
	if svc.IsAssignedToTrack(ctx, "stu-2", model.SchoolMarketing) {
		t.Error("stu-2 should not be assigned")
	}

	got := svc.Assignments(ctx, "stu-1")
	if len(got) != 1 || got[0].GroupID != room.ID || got[0].Track != model.SchoolMarketing || got[0].ClassroomName != "Marketing A" {
		t.Errorf("assignments = %+v", got)
	}

	tables.classrooms.failing = errors.New("connection reset")
	if svc.IsAssignedToTrack(ctx, "stu-1", model.SchoolMarketing) {
		t.Error("read errors should read as unassigned")
	}
	if got := svc.Assignments(ctx, "stu-1"); got == nil || len(got) != 0 {
		t.Errorf("read errors should give an empty list, got %+v", got)
	}
}

func TestTeam_Offline(t *testing.T) {
	svc := NewTeamService(backend.NewOffline(zap.NewNop()), nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.CreateClassroom(ctx, instructorUser("ins-1", "KIM01"),
		&dto.CreateClassroomRequest{Track: model.SchoolMarketing, ClassroomName: "A"})
	if !errors.Is(err, backend.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if svc.MyTeam(ctx, "stu-1") != nil || len(svc.Assignments(ctx, "stu-1")) != 0 || len(svc.Ideas(ctx, "stu-1")) != 0 {
		t.Error("offline reads should be empty")
	}
}
