package repository

import "gorm.io/gorm"

// Repository aggregates the backend tables.
type Repository struct {
	AuthUser           AuthUserRepository
	Profile            ProfileRepository
	Enrollment         EnrollmentRepository
	SchoolProfile      SchoolProfileRepository
	InstructorSettings InstructorSettingsRepository
	Organization       OrganizationRepository
	Notification       NotificationRepository
	Portfolio          PortfolioRepository
	IdeaBox            IdeaBoxRepository
	DigitalProgress    DigitalProgressRepository
	MarketingProgress  MarketingProgressRepository
	ActivityLog        ActivityLogRepository
	SchoolProgress     SchoolProgressRepository
	Classroom          ClassroomRepository
	Team               TeamRepository
}

// NewRepository wires every table to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		AuthUser:           NewAuthUserRepo(db),
		Profile:            NewProfileRepo(db),
		Enrollment:         NewEnrollmentRepo(db),
		SchoolProfile:      NewSchoolProfileRepo(db),
		InstructorSettings: NewInstructorSettingsRepo(db),
		Organization:       NewOrganizationRepo(db),
		Notification:       NewNotificationRepo(db),
		Portfolio:          NewPortfolioRepo(db),
		IdeaBox:            NewIdeaBoxRepo(db),
		DigitalProgress:    NewDigitalProgressRepo(db),
		MarketingProgress:  NewMarketingProgressRepo(db),
		ActivityLog:        NewActivityLogRepo(db),
		SchoolProgress:     NewSchoolProgressRepo(db),
		Classroom:          NewClassroomRepo(db),
		Team:               NewTeamRepo(db),
	}
}
