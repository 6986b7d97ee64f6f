package model

import (
	"time"

	"gorm.io/datatypes"
)

// PeriodID identifies one of the six marketing school periods.
type PeriodID string

const (
	PeriodAptitudeTest   PeriodID = "aptitude-test"
	PeriodMarketScanner  PeriodID = "market-scanner"
	PeriodEdgeMaker      PeriodID = "edge-maker"
	PeriodViralCardMaker PeriodID = "viral-card-maker"
	PeriodPerfectPlanner PeriodID = "perfect-planner"
	PeriodROASSimulator  PeriodID = "roas-simulator"
)

// Curriculum lists the periods in order.
var Curriculum = []PeriodID{
	PeriodAptitudeTest,
	PeriodMarketScanner,
	PeriodEdgeMaker,
	PeriodViralCardMaker,
	PeriodPerfectPlanner,
	PeriodROASSimulator,
}

// ProDurationDays is how long Pro tools stay unlocked after graduation.
const ProDurationDays = 180

// IsValidPeriod reports whether id is part of the curriculum.
func IsValidPeriod(id PeriodID) bool {
	for _, p := range Curriculum {
		if p == id {
			return true
		}
	}
	return false
}

// StampProgress is the stamp of one period.
type StampProgress struct {
	PeriodID    PeriodID   `json:"periodId"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Graduation is the graduation state.
type Graduation struct {
	IsGraduated  bool       `json:"isGraduated"`
	GraduatedAt  *time.Time `json:"graduatedAt,omitempty"`
	Review       string     `json:"review,omitempty"`
	ProExpiresAt *time.Time `json:"proExpiresAt,omitempty"`
}

// SchoolProgress is the stamp board of an enrollment, table school_progress.
type SchoolProgress struct {
	ID                string                             `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EnrollmentID      string                             `gorm:"type:uuid;not null;uniqueIndex"                 json:"enrollment_id"`
	StudentID         string                             `gorm:"type:uuid;not null;index"                       json:"student_id"`
	SchoolID          SchoolID                           `gorm:"type:varchar(30);not null"                      json:"school_id"`
	Stamps            datatypes.JSONSlice[StampProgress] `gorm:"type:jsonb;not null"                            json:"stamps"`
	Graduation        datatypes.JSONType[Graduation]     `gorm:"type:jsonb;not null"                            json:"graduation"`
	AptitudeResult    datatypes.JSON                     `gorm:"type:jsonb;not null;default:'{}'"               json:"aptitude_result"`
	SimulationResult  datatypes.JSON                     `gorm:"type:jsonb;not null;default:'{}'"               json:"simulation_result"`
	MarketCompassData datatypes.JSON                     `gorm:"type:jsonb;not null;default:'{}'"               json:"market_compass_data"`
	EnrolledAt        time.Time                          `gorm:"not null"                                       json:"enrolled_at"`
	UpdatedAt         time.Time                          `gorm:"not null"                                       json:"updated_at"`
}

// TableName table name.
func (SchoolProgress) TableName() string { return "school_progress" }

// NewSchoolProgress returns an empty stamp board.
func NewSchoolProgress(enrollment *Enrollment, now time.Time) *SchoolProgress {
	stamps := make([]StampProgress, 0, len(Curriculum))
	for _, p := range Curriculum {
		stamps = append(stamps, StampProgress{PeriodID: p})
	}
	return &SchoolProgress{
		EnrollmentID:      enrollment.ID,
		StudentID:         enrollment.StudentID,
		SchoolID:          enrollment.SchoolID,
		Stamps:            stamps,
		Graduation:        datatypes.NewJSONType(Graduation{}),
		AptitudeResult:    emptyJSON(),
		SimulationResult:  emptyJSON(),
		MarketCompassData: emptyJSON(),
		EnrolledAt:        now,
		UpdatedAt:         now,
	}
}

func emptyJSON() datatypes.JSON { return datatypes.JSON("{}") }

// HasResult reports whether a free-form result column holds data.
func HasResult(j datatypes.JSON) bool {
	s := string(j)
	return s != "" && s != "{}" && s != "null"
}

// EarnStamp marks a period complete once; later calls keep the first time.
func (p *SchoolProgress) EarnStamp(period PeriodID, now time.Time) bool {
	for i := range p.Stamps {
		if p.Stamps[i].PeriodID == period {
			if p.Stamps[i].Completed {
				return false
			}
			p.Stamps[i].Completed = true
			p.Stamps[i].CompletedAt = TimePtr(now)
			return true
		}
	}
	return false
}

// CompletedStamps counts earned stamps.
func (p *SchoolProgress) CompletedStamps() int {
	n := 0
	for _, s := range p.Stamps {
		if s.Completed {
			n++
		}
	}
	return n
}

// HasAllStamps reports whether every period is stamped.
func (p *SchoolProgress) HasAllStamps() bool {
	if len(p.Stamps) < len(Curriculum) {
		return false
	}
	return p.CompletedStamps() == len(p.Stamps)
}

// CanGraduate requires every stamp, a simulation result, and no prior graduation.
func (p *SchoolProgress) CanGraduate() bool {
	return p.HasAllStamps() && HasResult(p.SimulationResult) && !p.Graduation.Data().IsGraduated
}

// Graduate records graduation and unlocks Pro tools for ProDurationDays.
func (p *SchoolProgress) Graduate(review string, now time.Time) {
	p.Graduation = datatypes.NewJSONType(Graduation{
		IsGraduated:  true,
		GraduatedAt:  TimePtr(now),
		Review:       review,
		ProExpiresAt: TimePtr(now.AddDate(0, 0, ProDurationDays)),
	})
}

// ProRemainingDays is the number of days Pro tools stay unlocked, rounded up.
func (p *SchoolProgress) ProRemainingDays(now time.Time) int {
	g := p.Graduation.Data()
	if !g.IsGraduated || g.ProExpiresAt == nil {
		return 0
	}
	left := g.ProExpiresAt.Sub(now)
	if left <= 0 {
		return 0
	}
	day := 24 * time.Hour
	return int((left + day - 1) / day)
}
