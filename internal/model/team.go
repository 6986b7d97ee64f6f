package model

import "time"

// Classroom member statuses.
const (
	MemberActive   = "active"
	MemberInactive = "inactive"
)

// ClassroomGroup is an instructor's class for one track, table classroom_groups.
type ClassroomGroup struct {
	ID            string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OrgCode       string  `gorm:"type:varchar(10);not null;default:''"           json:"org_code"`
	Track         TrackID `gorm:"type:varchar(30);not null"                      json:"track"`
	ClassroomName string  `gorm:"type:varchar(100);not null"                     json:"classroom_name"`
	InstructorID  string  `gorm:"type:uuid;not null;index"                       json:"instructor_id"`
	CreatedModel
}

// TableName table name.
func (ClassroomGroup) TableName() string { return "classroom_groups" }

// ClassroomMember places a student in a classroom, table classroom_members.
// UserName is copied at insert time.
type ClassroomMember struct {
	ID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	GroupID  string `gorm:"type:uuid;not null;index"                       json:"group_id"`
	UserID   string `gorm:"type:uuid;not null;index"                       json:"user_id"`
	UserName string `gorm:"type:varchar(100);not null"                     json:"user_name"`
	Status   string `gorm:"type:varchar(20);not null"                      json:"status"`
	CreatedModel
}

// TableName table name.
func (ClassroomMember) TableName() string { return "classroom_members" }

// TeamGroup is a team inside a classroom, table team_groups.
type TeamGroup struct {
	ID               string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClassroomGroupID string `gorm:"type:uuid;not null;index"                       json:"classroom_group_id"`
	Name             string `gorm:"type:varchar(100);not null"                     json:"name"`
	CreatedBy        string `gorm:"type:uuid;not null"                             json:"created_by"`
	CreatedModel
}

// TableName table name.
func (TeamGroup) TableName() string { return "team_groups" }

// TeamMember places a student in a team, table team_members.
type TeamMember struct {
	ID           string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TeamID       string    `gorm:"type:uuid;not null;index"                       json:"team_id"`
	UserID       string    `gorm:"type:uuid;not null;index"                       json:"user_id"`
	UserName     string    `gorm:"type:varchar(100);not null"                     json:"user_name"`
	AptitudeType *string   `gorm:"type:varchar(50)"                               json:"aptitude_type"`
	AnimalIcon   *string   `gorm:"type:varchar(50)"                               json:"animal_icon"`
	JoinedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"joined_at"`
}

// TableName table name.
func (TeamMember) TableName() string { return "team_members" }

// TeamIdea is an idea shared into a team's idea box, table team_ideas.
type TeamIdea struct {
	ID         string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TeamID     string  `gorm:"type:uuid;not null;index"                       json:"team_id"`
	UserID     string  `gorm:"type:uuid;not null"                             json:"user_id"`
	UserName   string  `gorm:"type:varchar(100);not null"                     json:"user_name"`
	AnimalIcon *string `gorm:"type:varchar(50)"                               json:"animal_icon"`
	ToolID     string  `gorm:"type:varchar(100);not null"                     json:"tool_id"`
	Title      string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Content    string  `gorm:"type:text;not null"                             json:"content"`
	CreatedModel
}

// TableName table name.
func (TeamIdea) TableName() string { return "team_ideas" }

// MyTeam is a student's team with its classroom and roster.
type MyTeam struct {
	Team      TeamGroup      `json:"team"`
	Classroom ClassroomGroup `json:"classroom"`
	Members   []TeamMember   `json:"members"`
}

// StudentAssignment is one active classroom placement of a student.
type StudentAssignment struct {
	Track         TrackID `json:"track"`
	ClassroomName string  `json:"classroom_name"`
	GroupID       string  `json:"group_id"`
}
