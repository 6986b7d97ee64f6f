package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/internal/repository"
)

var uniqueViolation = &pgconn.PgError{Code: "23505"}

// ── Mock AuthUserRepository ──

type mockAuthUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.AuthUser
	seq   int
	// onCreate mimics the profile trigger.
	onCreate func(u *model.AuthUser)
}

func newMockAuthUserRepo() *mockAuthUserRepo {
	return &mockAuthUserRepo{users: make(map[string]*model.AuthUser)}
}

func (m *mockAuthUserRepo) Create(_ context.Context, u *model.AuthUser) error {
	m.mu.Lock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			m.mu.Unlock()
			return uniqueViolation
		}
	}
	m.seq++
	u.ID = fmt.Sprintf("user-%d", m.seq)
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	hook := m.onCreate
	m.mu.Unlock()

	if hook != nil {
		hook(u)
	}
	return nil
}

func (m *mockAuthUserRepo) GetByID(_ context.Context, id string) (*model.AuthUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAuthUserRepo) GetByEmail(_ context.Context, email string) (*model.AuthUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAuthUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockAuthUserRepo) TouchSignIn(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.LastSignInAt = &at
	}
	return nil
}

// ── Mock ProfileRepository ──

type mockProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*model.Profile
	err      error
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (m *mockProfileRepo) add(p *model.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
}

func (m *mockProfileRepo) GetByID(_ context.Context, id string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	p, ok := m.profiles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			p.Name = v.(string)
		case "country":
			p.Country = v.(string)
		case "gender":
			p.Gender = v.(string)
		case "age":
			age := v.(int)
			p.Age = &age
		case "organization":
			p.Organization = v.(string)
		case "instructor_code":
			p.InstructorCode = v.(string)
		case "org_code":
			p.OrgCode = v.(string)
		case "learning_purpose":
			p.LearningPurpose = v.(string)
		case "gemini_api_key":
			p.GeminiAPIKey = v.(string)
		}
	}
	return nil
}

func (m *mockProfileRepo) filter(keep func(p *model.Profile) bool) []model.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Profile{}
	for _, p := range m.profiles {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *mockProfileRepo) ListStudents(_ context.Context) ([]model.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.filter(func(p *model.Profile) bool { return p.Role == model.RoleStudent }), nil
}

func (m *mockProfileRepo) ListByInstructorCode(_ context.Context, code string) ([]model.Profile, error) {
	return m.filter(func(p *model.Profile) bool {
		return p.Role == model.RoleStudent && p.InstructorCode == code
	}), nil
}

func (m *mockProfileRepo) SearchStudents(_ context.Context, query string, limit int) ([]model.Profile, error) {
	q := strings.ToLower(query)
	out := m.filter(func(p *model.Profile) bool {
		return p.Role == model.RoleStudent &&
			(strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Email), q))
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockProfileRepo) FindInstructorByCode(_ context.Context, code string) (*model.Profile, error) {
	list := m.filter(func(p *model.Profile) bool {
		return p.Role == model.RoleInstructor && p.InstructorCode == code
	})
	if len(list) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &list[0], nil
}

func (m *mockProfileRepo) ListByOrgCode(_ context.Context, code string) ([]model.Profile, error) {
	return m.filter(func(p *model.Profile) bool {
		return p.Role == model.RoleStudent && p.OrgCode == code
	}), nil
}

func (m *mockProfileRepo) CountByOrgCode(ctx context.Context, code string) (int64, error) {
	list, _ := m.ListByOrgCode(ctx, code)
	return int64(len(list)), nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	mu   sync.Mutex
	rows []*model.Enrollment
	seq  int
	err  error
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{}
}

func (m *mockEnrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.seq++
	e.ID = fmt.Sprintf("enr-%d", m.seq)
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now()
	}
	cp := *e
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *mockEnrollmentRepo) GetByID(_ context.Context, id string) (*model.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.rows {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) list(keep func(e *model.Enrollment) bool) []model.Enrollment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Enrollment{}
	for _, e := range m.rows {
		if keep(e) {
			out = append(out, *e)
		}
	}
	return out
}

func (m *mockEnrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]model.Enrollment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.list(func(e *model.Enrollment) bool { return e.StudentID == studentID }), nil
}

func (m *mockEnrollmentRepo) ListAll(_ context.Context) ([]model.Enrollment, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := m.list(func(*model.Enrollment) bool { return true })
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (m *mockEnrollmentRepo) ListBySchool(_ context.Context, schoolID model.SchoolID) ([]model.Enrollment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.list(func(e *model.Enrollment) bool { return e.SchoolID == schoolID }), nil
}

func (m *mockEnrollmentRepo) Save(_ context.Context, e *model.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.ID == e.ID {
			cp := *e
			m.rows[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock SchoolProfileRepository ──

type mockSchoolProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*model.SchoolProfile
}

func newMockSchoolProfileRepo() *mockSchoolProfileRepo {
	return &mockSchoolProfileRepo{profiles: make(map[string]*model.SchoolProfile)}
}

func (m *mockSchoolProfileRepo) Create(_ context.Context, p *model.SchoolProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.EnrollmentID]; ok {
		return uniqueViolation
	}
	p.ID = "sp-" + p.EnrollmentID
	m.profiles[p.EnrollmentID] = p
	return nil
}

func (m *mockSchoolProfileRepo) GetByEnrollment(_ context.Context, enrollmentID string) (*model.SchoolProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[enrollmentID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock InstructorSettingsRepository ──

type mockSettingsRepo struct {
	mu   sync.Mutex
	rows map[string]*model.InstructorSettingsRow
	err  error
}

func newMockSettingsRepo() *mockSettingsRepo {
	return &mockSettingsRepo{rows: make(map[string]*model.InstructorSettingsRow)}
}

func (m *mockSettingsRepo) Get(_ context.Context, code string) (*model.InstructorSettingsRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if r, ok := m.rows[code]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSettingsRepo) Upsert(_ context.Context, row *model.InstructorSettingsRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.rows[row.InstructorCode] = row
	return nil
}

// ── Mock OrganizationRepository ──

type mockOrganizationRepo struct {
	mu   sync.Mutex
	orgs map[string]*model.Organization
	seq  int
}

func newMockOrganizationRepo() *mockOrganizationRepo {
	return &mockOrganizationRepo{orgs: make(map[string]*model.Organization)}
}

func (m *mockOrganizationRepo) Create(_ context.Context, org *model.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orgs {
		if o.Code == org.Code {
			return uniqueViolation
		}
	}
	m.seq++
	org.ID = fmt.Sprintf("org-%d", m.seq)
	m.orgs[org.ID] = org
	return nil
}

func (m *mockOrganizationRepo) GetByID(_ context.Context, id string) (*model.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orgs[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrganizationRepo) GetByCode(_ context.Context, code string) (*model.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orgs {
		if o.Code == code {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrganizationRepo) ListByInstructor(_ context.Context, instructorID string) ([]model.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Organization{}
	for _, o := range m.orgs {
		if o.InstructorID == instructorID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrganizationRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orgs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.orgs, id)
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	mu   sync.Mutex
	rows []model.Notification
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = fmt.Sprintf("ntf-%d", len(m.rows)+1)
	m.rows = append(m.rows, *n)
	return nil
}

func (m *mockNotificationRepo) newest(keep func(n *model.Notification) bool, limit int) []model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Notification{}
	for i := len(m.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(&m.rows[i]) {
			out = append(out, m.rows[i])
		}
	}
	return out
}

func (m *mockNotificationRepo) ListByInstructor(_ context.Context, instructorID string, limit int) ([]model.Notification, error) {
	return m.newest(func(n *model.Notification) bool { return n.InstructorID == instructorID }, limit), nil
}

func (m *mockNotificationRepo) ListForStudent(_ context.Context, studentID string, hasAPIKey bool, limit int) ([]model.Notification, error) {
	return m.newest(func(n *model.Notification) bool { return n.Targets(studentID, hasAPIKey) }, limit), nil
}

// ── Mock PortfolioRepository / IdeaBoxRepository ──

type mockPortfolioRepo struct {
	mu      sync.Mutex
	entries []model.PortfolioEntry
}

func (m *mockPortfolioRepo) Create(_ context.Context, e *model.PortfolioEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = fmt.Sprintf("pf-%d", len(m.entries)+1)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	m.entries = append(m.entries, *e)
	return nil
}

func (m *mockPortfolioRepo) ListByUser(_ context.Context, userID, toolID string) ([]model.PortfolioEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.PortfolioEntry{}
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if e.UserID == userID && (toolID == "" || e.ToolID == toolID) {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockIdeaBoxRepo struct {
	mu    sync.Mutex
	items []model.IdeaBoxItem
}

func (m *mockIdeaBoxRepo) Create(_ context.Context, item *model.IdeaBoxItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = fmt.Sprintf("idea-%d", len(m.items)+1)
	m.items = append(m.items, *item)
	return nil
}

func (m *mockIdeaBoxRepo) ListByUser(_ context.Context, userID string) ([]model.IdeaBoxItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.IdeaBoxItem{}
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].UserID == userID {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

func (m *mockIdeaBoxRepo) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.items {
		if it.ID == id && it.UserID == userID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock progress repositories ──

type mockDigitalProgressRepo struct {
	mu   sync.Mutex
	rows map[string]model.DigitalProgress
}

func (m *mockDigitalProgressRepo) ListByUser(_ context.Context, userID string) ([]model.DigitalProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.DigitalProgress{}
	for _, p := range m.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockDigitalProgressRepo) Upsert(_ context.Context, p *model.DigitalProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows == nil {
		m.rows = map[string]model.DigitalProgress{}
	}
	m.rows[p.UserID+"/"+p.ModuleID] = *p
	return nil
}

type mockMarketingProgressRepo struct {
	mu      sync.Mutex
	rows    map[string]model.MarketingProgress
	columns [][]string
}

func (m *mockMarketingProgressRepo) ListByUser(_ context.Context, userID string) ([]model.MarketingProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.MarketingProgress{}
	for _, p := range m.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Upsert copies only the named columns onto an existing row.
func (m *mockMarketingProgressRepo) Upsert(_ context.Context, p *model.MarketingProgress, columns []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows == nil {
		m.rows = map[string]model.MarketingProgress{}
	}
	m.columns = append(m.columns, columns)
	key := p.UserID + "/" + p.ModuleID
	row, ok := m.rows[key]
	if !ok {
		m.rows[key] = *p
		return nil
	}
	for _, c := range columns {
		switch c {
		case "viewed_at":
			row.ViewedAt = p.ViewedAt
		case "tool_used_at":
			row.ToolUsedAt = p.ToolUsedAt
		case "tool_output_count":
			row.ToolOutputCount = p.ToolOutputCount
		case "completed_at":
			row.CompletedAt = p.CompletedAt
		}
	}
	row.UpdatedAt = p.UpdatedAt
	m.rows[key] = row
	return nil
}

type mockActivityLogRepo struct {
	mu   sync.Mutex
	rows []model.ActivityLog
	seq  int
}

func (m *mockActivityLogRepo) Create(_ context.Context, l *model.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	l.ID = fmt.Sprintf("log-%d", m.seq)
	m.rows = append(m.rows, *l)
	return nil
}

func (m *mockActivityLogRepo) ListByUser(_ context.Context, userID string, trackID model.TrackID, limit int) ([]model.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ActivityLog{}
	for i := len(m.rows) - 1; i >= 0; i-- {
		l := m.rows[i]
		if l.UserID != userID || (trackID != "" && l.TrackID != trackID) {
			continue
		}
		out = append(out, l)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockActivityLogRepo) trim(keepUser func(string) bool, keep int) int64 {
	counts := map[string]int{}
	kept := make([]model.ActivityLog, 0, len(m.rows))
	var removed int64
	for i := len(m.rows) - 1; i >= 0; i-- {
		l := m.rows[i]
		if keepUser(l.UserID) {
			counts[l.UserID]++
			if counts[l.UserID] > keep {
				removed++
				continue
			}
		}
		kept = append(kept, l)
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	m.rows = kept
	return removed
}

func (m *mockActivityLogRepo) TrimUser(_ context.Context, userID string, keep int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trim(func(id string) bool { return id == userID }, keep), nil
}

func (m *mockActivityLogRepo) TrimAll(_ context.Context, keep int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trim(func(string) bool { return true }, keep), nil
}

type mockSchoolProgressRepo struct {
	mu     sync.Mutex
	boards map[string]*model.SchoolProgress
}

func (m *mockSchoolProgressRepo) GetByEnrollment(_ context.Context, enrollmentID string) (*model.SchoolProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.boards[enrollmentID]; ok {
		cp := *p
		cp.Stamps = append(cp.Stamps[:0:0], p.Stamps...)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSchoolProgressRepo) Upsert(_ context.Context, p *model.SchoolProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.boards == nil {
		m.boards = map[string]*model.SchoolProgress{}
	}
	cp := *p
	cp.Stamps = append(cp.Stamps[:0:0], p.Stamps...)
	m.boards[p.EnrollmentID] = &cp
	return nil
}

func (m *mockSchoolProgressRepo) DeleteByEnrollment(_ context.Context, enrollmentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.boards, enrollmentID)
	return nil
}

type mockClassroomRepo struct {
	mu      sync.Mutex
	seq     int
	groups  []model.ClassroomGroup
	members []model.ClassroomMember
	failing error
}

func (m *mockClassroomRepo) Create(_ context.Context, g *model.ClassroomGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	g.ID = fmt.Sprintf("room-%d", m.seq)
	g.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Second)
	m.groups = append(m.groups, *g)
	return nil
}

func (m *mockClassroomRepo) GetByID(_ context.Context, id string) (*model.ClassroomGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.groups {
		if g.ID == id {
			return &g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassroomRepo) ListByInstructor(_ context.Context, instructorID string) ([]model.ClassroomGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ClassroomGroup
	for i := len(m.groups) - 1; i >= 0; i-- {
		if m.groups[i].InstructorID == instructorID {
			out = append(out, m.groups[i])
		}
	}
	return out, nil
}

func (m *mockClassroomRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, g := range m.groups {
		if g.ID == id {
			m.groups = append(m.groups[:i], m.groups[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockClassroomRepo) AddMember(_ context.Context, c *model.ClassroomMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.members {
		if existing.GroupID == c.GroupID && existing.UserID == c.UserID {
			return uniqueViolation
		}
	}
	m.seq++
	c.ID = fmt.Sprintf("cm-%d", m.seq)
	m.members = append(m.members, *c)
	return nil
}

func (m *mockClassroomRepo) GetMember(_ context.Context, id string) (*model.ClassroomMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.members {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassroomRepo) ListMembers(_ context.Context, groupID string) ([]model.ClassroomMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ClassroomMember
	for _, c := range m.members {
		if c.GroupID == groupID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockClassroomRepo) IsMember(_ context.Context, groupID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.members {
		if c.GroupID == groupID && c.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockClassroomRepo) RemoveMember(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.members {
		if c.ID == id {
			m.members = append(m.members[:i], m.members[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockClassroomRepo) group(id string) (model.ClassroomGroup, bool) {
	for _, g := range m.groups {
		if g.ID == id {
			return g, true
		}
	}
	return model.ClassroomGroup{}, false
}

func (m *mockClassroomRepo) HasTrackMembership(_ context.Context, userID string, track model.TrackID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return false, m.failing
	}
	for _, c := range m.members {
		if g, ok := m.group(c.GroupID); ok && c.UserID == userID && g.Track == track {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockClassroomRepo) ListActiveAssignments(_ context.Context, userID string) ([]model.StudentAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return nil, m.failing
	}
	var out []model.StudentAssignment
	for _, c := range m.members {
		g, ok := m.group(c.GroupID)
		if !ok || c.UserID != userID || c.Status != model.MemberActive {
			continue
		}
		out = append(out, model.StudentAssignment{Track: g.Track, ClassroomName: g.ClassroomName, GroupID: g.ID})
	}
	return out, nil
}

type mockTeamRepo struct {
	mu      sync.Mutex
	seq     int
	teams   []model.TeamGroup
	members []model.TeamMember
	ideas   []model.TeamIdea
}

func (m *mockTeamRepo) Create(_ context.Context, t *model.TeamGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t.ID = fmt.Sprintf("team-%d", m.seq)
	m.teams = append(m.teams, *t)
	return nil
}

func (m *mockTeamRepo) GetByID(_ context.Context, id string) (*model.TeamGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.teams {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) ListByClassroom(_ context.Context, classroomID string) ([]model.TeamGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.TeamGroup
	for _, t := range m.teams {
		if t.ClassroomGroupID == classroomID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTeamRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.teams {
		if t.ID == id {
			m.teams = append(m.teams[:i], m.teams[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) AddMember(_ context.Context, tm *model.TeamMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.members {
		if existing.TeamID == tm.TeamID && existing.UserID == tm.UserID {
			return uniqueViolation
		}
	}
	m.seq++
	tm.ID = fmt.Sprintf("tm-%d", m.seq)
	tm.JoinedAt = time.Now()
	m.members = append(m.members, *tm)
	return nil
}

func (m *mockTeamRepo) GetMember(_ context.Context, id string) (*model.TeamMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tm := range m.members {
		if tm.ID == id {
			return &tm, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) ListMembers(_ context.Context, teamID string) ([]model.TeamMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.TeamMember
	for _, tm := range m.members {
		if tm.TeamID == teamID {
			out = append(out, tm)
		}
	}
	return out, nil
}

func (m *mockTeamRepo) FindMembership(_ context.Context, userID string) (*model.TeamMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tm := range m.members {
		if tm.UserID == userID {
			return &tm, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) RemoveMember(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, tm := range m.members {
		if tm.ID == id {
			m.members = append(m.members[:i], m.members[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) AddIdea(_ context.Context, idea *model.TeamIdea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	idea.ID = fmt.Sprintf("idea-%d", m.seq)
	m.ideas = append(m.ideas, *idea)
	return nil
}

func (m *mockTeamRepo) ListIdeas(_ context.Context, teamID string) ([]model.TeamIdea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.TeamIdea
	for i := len(m.ideas) - 1; i >= 0; i-- {
		if m.ideas[i].TeamID == teamID {
			out = append(out, m.ideas[i])
		}
	}
	return out, nil
}

func (m *mockTeamRepo) DeleteIdea(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, idea := range m.ideas {
		if idea.ID == id && idea.UserID == userID {
			m.ideas = append(m.ideas[:i], m.ideas[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── fixtures ──

type mockTables struct {
	authUsers      *mockAuthUserRepo
	profiles       *mockProfileRepo
	enrollments    *mockEnrollmentRepo
	schoolProfiles *mockSchoolProfileRepo
	settings       *mockSettingsRepo
	orgs           *mockOrganizationRepo
	notifications  *mockNotificationRepo
	portfolio      *mockPortfolioRepo
	ideas          *mockIdeaBoxRepo
	digital        *mockDigitalProgressRepo
	marketing      *mockMarketingProgressRepo
	activity       *mockActivityLogRepo
	boards         *mockSchoolProgressRepo
	classrooms     *mockClassroomRepo
	teams          *mockTeamRepo
}

func newMockTables() *mockTables {
	t := &mockTables{
		authUsers:      newMockAuthUserRepo(),
		profiles:       newMockProfileRepo(),
		enrollments:    newMockEnrollmentRepo(),
		schoolProfiles: newMockSchoolProfileRepo(),
		settings:       newMockSettingsRepo(),
		orgs:           newMockOrganizationRepo(),
		notifications:  &mockNotificationRepo{},
		portfolio:      &mockPortfolioRepo{},
		ideas:          &mockIdeaBoxRepo{},
		digital:        &mockDigitalProgressRepo{},
		marketing:      &mockMarketingProgressRepo{},
		activity:       &mockActivityLogRepo{},
		boards:         &mockSchoolProgressRepo{},
		classrooms:     &mockClassroomRepo{},
		teams:          &mockTeamRepo{},
	}
	// profile trigger
	t.authUsers.onCreate = func(u *model.AuthUser) {
		role := u.MetaString("role")
		if role == "" {
			role = model.RoleStudent
		}
		t.profiles.add(&model.Profile{
			ID:    u.ID,
			Name:  u.MetaString("name"),
			Email: u.Email,
			Role:  role,
		})
	}
	return t
}

func (t *mockTables) repository() *repository.Repository {
	return &repository.Repository{
		AuthUser:           t.authUsers,
		Profile:            t.profiles,
		Enrollment:         t.enrollments,
		SchoolProfile:      t.schoolProfiles,
		InstructorSettings: t.settings,
		Organization:       t.orgs,
		Notification:       t.notifications,
		Portfolio:          t.portfolio,
		IdeaBox:            t.ideas,
		DigitalProgress:    t.digital,
		MarketingProgress:  t.marketing,
		ActivityLog:        t.activity,
		SchoolProgress:     t.boards,
		Classroom:          t.classrooms,
		Team:               t.teams,
	}
}

// client returns a configured backend without an auth provider.
func (t *mockTables) client() *backend.Client {
	return backend.New(t.repository(), nil, zap.NewNop())
}

func instructorUser(id, code string) *model.AppUser {
	return &model.AppUser{ID: id, Name: "Kim", Role: model.RoleInstructor, InstructorCode: code}
}

func studentUser(id string) *model.AppUser {
	return &model.AppUser{ID: id, Name: "Minh", Role: model.RoleStudent}
}
