package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chibuike2003/palgunn/internal/model"
	"github.com/chibuike2003/palgunn/internal/repository"
	apperrors "github.com/chibuike2003/palgunn/pkg/errors"
)

// ── Mock AccountRepository ──

type mockAccountRepo struct {
	accounts map[string]*model.Account
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: make(map[string]*model.Account)}
}

func (m *mockAccountRepo) Create(_ context.Context, account *model.Account) error {
	if account.AccountID == "" {
		account.AccountID = fmt.Sprintf("acc-%d", len(m.accounts)+1)
	}
	m.accounts[account.AccountID] = account
	return nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id string) (*model.Account, error) {
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccountRepo) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAccountRepo) GetByRegNumber(_ context.Context, regNumber string) (*model.Account, error) {
	for _, a := range m.accounts {
		if a.RegNumber != nil && *a.RegNumber == regNumber {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
	seq     int

	// createErr is returned once by the next Create.
	createErr error
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if err := m.createErr; err != nil {
		m.createErr = nil
		return err
	}
	for _, c := range m.courses {
		if c.CourseCode == course.CourseCode {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	if course.CourseID == "" {
		course.CourseID = uuid.NewString()
	}
	cp := *course
	m.courses[course.CourseID] = &cp
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByCode(_ context.Context, code string) (*model.Course, error) {
	for _, c := range m.courses {
		if c.CourseCode == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	if _, ok := m.courses[course.CourseID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *course
	m.courses[course.CourseID] = &cp
	return nil
}

func (m *mockCourseRepo) List(_ context.Context, session string) ([]model.Course, error) {
	var out []model.Course
	for _, c := range m.courses {
		if session == "" || c.SessionWritten == session {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseCode < out[j].CourseCode })
	return out, nil
}

func (m *mockCourseRepo) ListSessions(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, c := range m.courses {
		if !seen[c.SessionWritten] {
			seen[c.SessionWritten] = true
			out = append(out, c.SessionWritten)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

// ── Mock ResultRepository ──

type mockResultRepo struct {
	results map[string]*model.StudentResult
	courses *mockCourseRepo
	seq     int

	// failOn makes Create/Update fail for a reg number with the given error.
	failOn map[string]error
}

func newMockResultRepo(courses *mockCourseRepo) *mockResultRepo {
	return &mockResultRepo{
		results: make(map[string]*model.StudentResult),
		courses: courses,
		failOn:  make(map[string]error),
	}
}

func (m *mockResultRepo) withCourse(r *model.StudentResult) *model.StudentResult {
	cp := *r
	if c, ok := m.courses.courses[r.CourseID]; ok {
		cc := *c
		cp.Course = &cc
	}
	return &cp
}

func (m *mockResultRepo) Create(_ context.Context, result *model.StudentResult) error {
	if err := m.failOn[result.RegNumber]; err != nil {
		return err
	}
	for _, r := range m.results {
		if r.CourseID == result.CourseID && r.RegNumber == result.RegNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	if result.ResultID == "" {
		result.ResultID = fmt.Sprintf("result-%d", m.seq)
	}
	cp := *result
	cp.Course = nil
	m.results[result.ResultID] = &cp
	return nil
}

func (m *mockResultRepo) GetByID(_ context.Context, id string) (*model.StudentResult, error) {
	if r, ok := m.results[id]; ok {
		return m.withCourse(r), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockResultRepo) GetByCourseAndReg(_ context.Context, courseID, regNumber string) (*model.StudentResult, error) {
	for _, r := range m.results {
		if r.CourseID == courseID && r.RegNumber == regNumber {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockResultRepo) Update(_ context.Context, result *model.StudentResult) error {
	if err := m.failOn[result.RegNumber]; err != nil {
		return err
	}
	stored, ok := m.results[result.ResultID]
	if !ok || stored.Version != result.Version {
		return apperrors.ErrOptimisticLock
	}
	result.Version++
	cp := *result
	cp.Course = nil
	m.results[result.ResultID] = &cp
	return nil
}

func (m *mockResultRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.results, id)
	return nil
}

func (m *mockResultRepo) Search(_ context.Context, filter repository.ResultFilter, offset, limit int) ([]model.StudentResult, int64, error) {
	var out []model.StudentResult
	for _, r := range m.results {
		full := m.withCourse(r)
		c := full.Course
		if q := strings.ToLower(filter.Query); q != "" &&
			!strings.Contains(strings.ToLower(r.RegNumber), q) &&
			!strings.Contains(strings.ToLower(c.CourseCode), q) {
			continue
		}
		if filter.CourseCode != "" && c.CourseCode != filter.CourseCode {
			continue
		}
		if filter.Year != "" && c.Year != filter.Year {
			continue
		}
		if filter.Semester != "" && c.Semester != filter.Semester {
			continue
		}
		if filter.Session != "" && c.SessionWritten != filter.Session {
			continue
		}
		if filter.RegPrefix != "" && !strings.HasPrefix(r.RegNumber, filter.RegPrefix) {
			continue
		}
		out = append(out, *full)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegNumber < out[j].RegNumber })

	total := int64(len(out))
	if offset >= len(out) {
		return []model.StudentResult{}, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (m *mockResultRepo) ListByCourse(_ context.Context, courseID string) ([]model.StudentResult, error) {
	var out []model.StudentResult
	for _, r := range m.results {
		if r.CourseID == courseID {
			out = append(out, *m.withCourse(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegNumber < out[j].RegNumber })
	return out, nil
}

func (m *mockResultRepo) ListByRegAndCourse(_ context.Context, regNumber, courseID string) ([]model.StudentResult, error) {
	var out []model.StudentResult
	for _, r := range m.results {
		if r.CourseID == courseID && r.RegNumber == regNumber {
			out = append(out, *m.withCourse(r))
		}
	}
	return out, nil
}

// ── Mock PublicationRepository ──

type mockPublicationRepo struct {
	schedules map[string]*model.PublicationSchedule
	courses   *mockCourseRepo
	seq       int
}

func newMockPublicationRepo(courses *mockCourseRepo) *mockPublicationRepo {
	return &mockPublicationRepo{schedules: make(map[string]*model.PublicationSchedule), courses: courses}
}

func (m *mockPublicationRepo) withCourse(p *model.PublicationSchedule) *model.PublicationSchedule {
	cp := *p
	if c, ok := m.courses.courses[p.CourseID]; ok {
		cc := *c
		cp.Course = &cc
	}
	return &cp
}

func (m *mockPublicationRepo) Create(_ context.Context, schedule *model.PublicationSchedule) error {
	for _, p := range m.schedules {
		if p.CourseID == schedule.CourseID && p.SessionWritten == schedule.SessionWritten {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	if schedule.ScheduleID == "" {
		schedule.ScheduleID = fmt.Sprintf("schedule-%d", m.seq)
	}
	cp := *schedule
	cp.Course = nil
	m.schedules[schedule.ScheduleID] = &cp
	return nil
}

func (m *mockPublicationRepo) GetByID(_ context.Context, id string) (*model.PublicationSchedule, error) {
	if p, ok := m.schedules[id]; ok {
		return m.withCourse(p), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPublicationRepo) GetByCourseAndSession(_ context.Context, courseID, session string) (*model.PublicationSchedule, error) {
	for _, p := range m.schedules {
		if p.CourseID == courseID && p.SessionWritten == session {
			return m.withCourse(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPublicationRepo) Update(_ context.Context, schedule *model.PublicationSchedule) error {
	stored, ok := m.schedules[schedule.ScheduleID]
	if !ok || stored.Version != schedule.Version {
		return apperrors.ErrOptimisticLock
	}
	for id, p := range m.schedules {
		if id != schedule.ScheduleID && p.CourseID == schedule.CourseID && p.SessionWritten == schedule.SessionWritten {
			return gorm.ErrDuplicatedKey
		}
	}
	schedule.Version++
	cp := *schedule
	cp.Course = nil
	m.schedules[schedule.ScheduleID] = &cp
	return nil
}

func (m *mockPublicationRepo) List(_ context.Context, filter repository.PublicationFilter) ([]model.PublicationSchedule, error) {
	var out []model.PublicationSchedule
	for _, p := range m.schedules {
		if filter.CourseID != "" && p.CourseID != filter.CourseID {
			continue
		}
		if filter.Active != nil && p.IsActive != *filter.Active {
			continue
		}
		out = append(out, *m.withCourse(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishStart.After(out[j].PublishStart) })
	return out, nil
}

func (m *mockPublicationRepo) ListOpenAt(_ context.Context, now time.Time) ([]model.PublicationSchedule, error) {
	var out []model.PublicationSchedule
	for _, p := range m.schedules {
		if p.VisibleAt(now) {
			out = append(out, *m.withCourse(p))
		}
	}
	return out, nil
}

// ── Mock ActivityLogRepository ──

type mockActivityLogRepo struct {
	logs []model.ActivityLog
}

func newMockActivityLogRepo() *mockActivityLogRepo {
	return &mockActivityLogRepo{}
}

func (m *mockActivityLogRepo) Create(_ context.Context, log *model.ActivityLog) error {
	log.LogID = fmt.Sprintf("log-%d", len(m.logs)+1)
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockActivityLogRepo) List(_ context.Context, actorID string, offset, limit int) ([]model.ActivityLog, int64, error) {
	var out []model.ActivityLog
	for i := len(m.logs) - 1; i >= 0; i-- {
		if actorID == "" || m.logs[i].ActorID == actorID {
			out = append(out, m.logs[i])
		}
	}
	total := int64(len(out))
	if offset >= len(out) {
		return []model.ActivityLog{}, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	revoked map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl > 0 {
		m.revoked[jti] = ttl
	}
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.revoked[jti]
	return ok, nil
}

// ── test fixture ──

type mockRepos struct {
	repo         *repository.Repository
	accounts     *mockAccountRepo
	courses      *mockCourseRepo
	results      *mockResultRepo
	publications *mockPublicationRepo
	activity     *mockActivityLogRepo
}

func newMockRepos() *mockRepos {
	courses := newMockCourseRepo()
	m := &mockRepos{
		accounts:     newMockAccountRepo(),
		courses:      courses,
		results:      newMockResultRepo(courses),
		publications: newMockPublicationRepo(courses),
		activity:     newMockActivityLogRepo(),
	}
	m.repo = &repository.Repository{
		Account:     m.accounts,
		Course:      m.courses,
		Result:      m.results,
		Publication: m.publications,
		ActivityLog: m.activity,
	}
	return m
}
