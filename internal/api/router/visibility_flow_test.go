package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/infoamous-source/kiosk-sub001/config"
	"github.com/infoamous-source/kiosk-sub001/internal/api/handler"
	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/internal/kiosk"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/internal/repository"
	"github.com/infoamous-source/kiosk-sub001/internal/service"
	"github.com/infoamous-source/kiosk-sub001/pkg/jwt"
	"github.com/infoamous-source/kiosk-sub001/pkg/metrics"
)

// ═══════════════════════════════════════════════════════════
// In-memory tables
// ═══════════════════════════════════════════════════════════

// memDB stands in for Postgres: accounts, the profiles the insert trigger
// creates, enrollments and instructor_settings rows.
type memDB struct {
	mu          sync.Mutex
	seq         int
	accounts    map[string]*model.AuthUser
	profiles    map[string]*model.Profile
	enrollments []model.Enrollment
	settings    map[string]model.InstructorSettingsRow
}

func newMemDB() *memDB {
	return &memDB{
		accounts: map[string]*model.AuthUser{},
		profiles: map[string]*model.Profile{},
		settings: map[string]model.InstructorSettingsRow{},
	}
}

func (db *memDB) nextID() string {
	db.seq++
	return "00000000-0000-0000-0000-" + strconv.Itoa(100000000000+db.seq)
}

type memAuthUsers struct{ db *memDB }

func (r memAuthUsers) Create(_ context.Context, u *model.AuthUser) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u.ID = r.db.nextID()
	cp := *u
	r.db.accounts[u.ID] = &cp
	r.db.profiles[u.ID] = &model.Profile{ID: u.ID, Email: u.Email, Name: u.MetaString("name"), Role: u.MetaString("role")}
	return nil
}

func (r memAuthUsers) GetByID(_ context.Context, id string) (*model.AuthUser, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if u, ok := r.db.accounts[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memAuthUsers) GetByEmail(_ context.Context, email string) (*model.AuthUser, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.accounts {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memAuthUsers) UpdatePassword(_ context.Context, id, hash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.accounts[id].PasswordHash = hash
	return nil
}

func (r memAuthUsers) TouchSignIn(context.Context, string, time.Time) error { return nil }

type memProfiles struct{ db *memDB }

func (r memProfiles) GetByID(_ context.Context, id string) (*model.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if p, ok := r.db.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memProfiles) Update(_ context.Context, id string, fields map[string]interface{}) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["instructor_code"].(string); ok {
		p.InstructorCode = v
	}
	return nil
}

func (r memProfiles) filter(keep func(p *model.Profile) bool) []model.Profile {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.Profile
	for _, p := range r.db.profiles {
		if keep(p) {
			out = append(out, *p)
		}
	}
	return out
}

func (r memProfiles) ListStudents(context.Context) ([]model.Profile, error) {
	return r.filter(func(p *model.Profile) bool { return p.Role == model.RoleStudent }), nil
}

func (r memProfiles) ListByInstructorCode(_ context.Context, code string) ([]model.Profile, error) {
	return r.filter(func(p *model.Profile) bool {
		return p.Role == model.RoleStudent && p.InstructorCode == code
	}), nil
}

func (r memProfiles) SearchStudents(context.Context, string, int) ([]model.Profile, error) {
	return nil, nil
}

func (r memProfiles) FindInstructorByCode(_ context.Context, code string) (*model.Profile, error) {
	list := r.filter(func(p *model.Profile) bool {
		return p.Role == model.RoleInstructor && p.InstructorCode == code
	})
	if len(list) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &list[0], nil
}

func (r memProfiles) ListByOrgCode(context.Context, string) ([]model.Profile, error) { return nil, nil }
func (r memProfiles) CountByOrgCode(context.Context, string) (int64, error)          { return 0, nil }

type memEnrollments struct{ db *memDB }

func (r memEnrollments) Create(_ context.Context, e *model.Enrollment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	e.ID = r.db.nextID()
	r.db.enrollments = append(r.db.enrollments, *e)
	return nil
}

func (r memEnrollments) GetByID(_ context.Context, id string) (*model.Enrollment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, e := range r.db.enrollments {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memEnrollments) ListByStudent(_ context.Context, studentID string) ([]model.Enrollment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.Enrollment
	for _, e := range r.db.enrollments {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memEnrollments) ListAll(context.Context) ([]model.Enrollment, error) { return nil, nil }
func (r memEnrollments) ListBySchool(context.Context, model.SchoolID) ([]model.Enrollment, error) {
	return nil, nil
}
func (r memEnrollments) Save(context.Context, *model.Enrollment) error { return nil }

type memSettings struct{ db *memDB }

func (r memSettings) Get(_ context.Context, code string) (*model.InstructorSettingsRow, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if row, ok := r.db.settings[code]; ok {
		return &row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memSettings) Upsert(_ context.Context, row *model.InstructorSettingsRow) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.settings[row.InstructorCode] = *row
	return nil
}

// ═══════════════════════════════════════════════════════════
// Flow
// ═══════════════════════════════════════════════════════════

type flowServer struct {
	engine *gin.Engine
	client *backend.Client
	db     *memDB
}

func newFlowServer(t *testing.T) *flowServer {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080, MaxBodyBytes: 1 << 20},
		Auth: config.AuthConfig{
			AccessTokenTTL:          time.Hour,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 720 * time.Hour,
			LoginResolveTimeout:     5 * time.Second,
			MinPasswordLength:       6,
		},
		Kiosk: config.KioskConfig{IdleTimeout: time.Minute, MaxSessions: 8},
		Jobs:  config.JobsConfig{ActivityLogCap: 1000},
	}
	logger := zap.NewNop()
	m := metrics.New()
	db := newMemDB()
	tables := &repository.Repository{
		AuthUser:           memAuthUsers{db},
		Profile:            memProfiles{db},
		Enrollment:         memEnrollments{db},
		InstructorSettings: memSettings{db},
	}
	mgr := jwt.NewManager("0123456789abcdef0123456789abcdef", &cfg.Auth)
	client := backend.New(tables, backend.NewAuthProvider(tables.AuthUser, mgr, nil, cfg.Auth.MinPasswordLength, logger), logger)
	t.Cleanup(client.Close)

	svc := service.NewService(cfg, client, nil, m, logger)
	t.Cleanup(svc.Close)
	h := handler.NewHandler(svc, kiosk.NewStore(&cfg.Kiosk, m, logger))
	return &flowServer{
		engine: Setup(cfg, h, Deps{JWT: mgr, Metrics: m, Backend: client}, logger),
		client: client,
		db:     db,
	}
}

func (s *flowServer) call(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = strings.NewReader(string(b))
	} else {
		rd = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *flowServer) instructor(t *testing.T, email, code string) {
	t.Helper()
	ctx := context.Background()
	u, err := s.client.Auth.SignUp(ctx, email, "secret-pass", map[string]interface{}{"name": "Kim", "role": model.RoleInstructor})
	require.NoError(t, err)
	require.NoError(t, s.client.Tables.Profile.Update(ctx, u.ID, map[string]interface{}{"instructor_code": code}))
}

func (s *flowServer) login(t *testing.T, email string) string {
	t.Helper()
	w := s.call(t, "POST", "/api/v1/auth/login", "", dto.LoginRequest{Email: email, Password: "secret-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Data dto.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data.AccessToken
}

func (s *flowServer) visible(t *testing.T, token, query string) bool {
	t.Helper()
	w := s.call(t, "GET", "/api/v1/visibility/check?"+query, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Data dto.VisibilityResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data.Visible
}

func TestVisibilityFlow_StudentSeesInstructorToggles(t *testing.T) {
	s := newFlowServer(t)
	s.instructor(t, "kim@school.kr", "KIM01")

	// a student registers with the instructor's code
	w := s.call(t, "POST", "/api/v1/auth/register", "", dto.RegisterRequest{
		Email: "minh@school.kr", Password: "secret-pass", Name: "Minh", InstructorCode: "KIM01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var reg struct {
		Data dto.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	require.Equal(t, "KIM01", reg.Data.User.InstructorCode)

	// and one signs up without a code
	w = s.call(t, "POST", "/api/v1/auth/register", "", dto.RegisterRequest{
		Email: "lan@school.kr", Password: "secret-pass", Name: "Lan",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	kim := s.login(t, "kim@school.kr")
	minh := s.login(t, "minh@school.kr")
	lan := s.login(t, "lan@school.kr")
	assert.True(t, s.visible(t, minh, "track_id=marketing"))

	hidden := false
	w = s.call(t, "PUT", "/api/v1/instructor/visibility/track", kim,
		dto.SetTrackVisibleRequest{TrackID: model.SchoolMarketing, Visible: &hidden})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the instructor's own round trip
	assert.False(t, s.visible(t, kim, "track_id=marketing"))
	// the linked student, on the register token and on a fresh login
	assert.False(t, s.visible(t, reg.Data.AccessToken, "track_id=marketing"))
	assert.False(t, s.visible(t, minh, "track_id=marketing&tool_id=k-copywriter"))
	assert.True(t, s.visible(t, minh, "track_id=career"))
	// an unlinked student is not gated by anyone
	assert.True(t, s.visible(t, lan, "track_id=marketing"))

	w = s.call(t, "GET", "/api/v1/visibility", minh, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var doc struct {
		Data model.InstructorSettings `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "KIM01", doc.Data.RefCode)
}

func TestVisibilityFlow_CodelessInstructorDoesNotGateUnlinkedStudents(t *testing.T) {
	s := newFlowServer(t)
	_, err := s.client.Auth.SignUp(context.Background(), "park@school.kr", "secret-pass",
		map[string]interface{}{"name": "Park", "role": model.RoleInstructor})
	require.NoError(t, err)
	w := s.call(t, "POST", "/api/v1/auth/register", "", dto.RegisterRequest{
		Email: "lan@school.kr", Password: "secret-pass", Name: "Lan",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	park := s.login(t, "park@school.kr")
	lan := s.login(t, "lan@school.kr")

	hidden := false
	w = s.call(t, "PUT", "/api/v1/instructor/visibility/track", park,
		dto.SetTrackVisibleRequest{TrackID: model.SchoolMarketing, Visible: &hidden})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, stored := s.db.settings[model.DefaultSettingsCode]
	assert.True(t, stored)

	assert.True(t, s.visible(t, lan, "track_id=marketing"))
}

// assigning a student to an instructor moves them under that instructor's document.
func TestVisibilityFlow_AssignRelinksStudent(t *testing.T) {
	s := newFlowServer(t)
	s.instructor(t, "kim@school.kr", "KIM01")
	w := s.call(t, "POST", "/api/v1/auth/register", "", dto.RegisterRequest{
		Email: "lan@school.kr", Password: "secret-pass", Name: "Lan",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	kim := s.login(t, "kim@school.kr")
	lan := s.login(t, "lan@school.kr")

	hidden := false
	w = s.call(t, "PUT", "/api/v1/instructor/visibility/track", kim,
		dto.SetTrackVisibleRequest{TrackID: model.SchoolCareer, Visible: &hidden})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, s.visible(t, lan, "track_id=career"))

	account, err := s.client.Tables.AuthUser.GetByEmail(context.Background(), "lan@school.kr")
	require.NoError(t, err)
	w = s.call(t, "POST", "/api/v1/instructor/students/assign", kim, dto.AssignInstructorRequest{StudentID: account.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.False(t, s.visible(t, lan, "track_id=career"))
}
