package service

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/infoamous-source/kiosk-sub001/internal/model"
)

const calendarProductID = "-//Kkakdugi School//Stamp Board//KO"

var periodTitles = map[model.PeriodID]string{
	model.PeriodAptitudeTest:   "1교시 적성 검사",
	model.PeriodMarketScanner:  "2교시 시장 스캐너",
	model.PeriodEdgeMaker:      "3교시 엣지 메이커",
	model.PeriodViralCardMaker: "4교시 바이럴 카드 메이커",
	model.PeriodPerfectPlanner: "5교시 퍼펙트 플래너",
	model.PeriodROASSimulator:  "6교시 ROAS 시뮬레이터",
}

// renderCalendar publishes one event per earned stamp, plus graduation and
// Pro expiry once graduated. Events are one hour long.
func renderCalendar(e *model.Enrollment, p *model.SchoolProgress, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetName(fmt.Sprintf("Kkakdugi %s", e.SchoolID))

	for _, st := range p.Stamps {
		if !st.Completed || st.CompletedAt == nil {
			continue
		}
		title := periodTitles[st.PeriodID]
		if title == "" {
			title = string(st.PeriodID)
		}
		addEvent(cal, fmt.Sprintf("%s-%s@kkakdugi", p.EnrollmentID, st.PeriodID),
			*st.CompletedAt, title, "Stamp earned", now)
	}

	g := p.Graduation.Data()
	if g.IsGraduated && g.GraduatedAt != nil {
		addEvent(cal, p.EnrollmentID+"-graduation@kkakdugi",
			*g.GraduatedAt, "졸업 Graduation", g.Review, now)
		if g.ProExpiresAt != nil {
			addEvent(cal, p.EnrollmentID+"-pro-expiry@kkakdugi",
				*g.ProExpiresAt, "Pro 도구 만료 Pro tools expire", "", now)
		}
	}
	return cal.Serialize()
}

func addEvent(cal *ics.Calendar, uid string, at time.Time, summary, description string, stamp time.Time) {
	ev := cal.AddEvent(uid)
	ev.SetDtStampTime(stamp)
	ev.SetStartAt(at)
	ev.SetEndAt(at.Add(time.Hour))
	ev.SetSummary(summary)
	if description != "" {
		ev.SetDescription(description)
	}
}

func calendarFilename(schoolID model.SchoolID, now time.Time) string {
	return fmt.Sprintf("kkakdugi_%s_%s.ics", schoolID, now.Format("20060102"))
}
