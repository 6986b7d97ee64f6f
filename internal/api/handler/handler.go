package handler

import "github.com/infoamous-source/kiosk-sub001/internal/service"

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth         *AuthHandler
	Enrollment   *EnrollmentHandler
	Visibility   *VisibilityHandler
	Profile      *ProfileHandler
	Organization *OrganizationHandler
	Notification *NotificationHandler
	Portfolio    *PortfolioHandler
	Progress     *ProgressHandler
	School       *SchoolHandler
	Team         *TeamHandler
	Kiosk        *KioskHandler
}

// NewHandler wires handlers to the services and the kiosk session store.
func NewHandler(svc *service.Service, kiosks KioskStore) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		Enrollment:   NewEnrollmentHandler(svc.Enrollment),
		Visibility:   NewVisibilityHandler(svc.Auth, svc.Visibility),
		Profile:      NewProfileHandler(svc.Auth, svc.Profile),
		Organization: NewOrganizationHandler(svc.Auth, svc.Organization),
		Notification: NewNotificationHandler(svc.Auth, svc.Notification),
		Portfolio:    NewPortfolioHandler(svc.Portfolio, svc.IdeaBox),
		Progress:     NewProgressHandler(svc.Progress, svc.Activity),
		School:       NewSchoolHandler(svc.SchoolProgress),
		Team:         NewTeamHandler(svc.Auth, svc.Team),
		Kiosk:        NewKioskHandler(kiosks),
	}
}
