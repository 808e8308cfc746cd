package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/fyp-labs/adaptive-learning-platform/internal/models"
	"github.com/fyp-labs/adaptive-learning-platform/internal/repositories"
	"github.com/fyp-labs/adaptive-learning-platform/internal/validator"
)

// memRepo is an in-memory repositories.Repository. Reads return copies so
// services cannot mutate stored state without going through a write.
type memRepo struct {
	mu          sync.Mutex
	nextID      uint
	users       map[string]*models.User
	companies   map[uint]*models.Company
	topics      map[uint]*models.Topic
	files       map[uint]*models.File
	assessments map[uint]*models.Assessment
	deleted     map[uint]bool
	attempts    map[uint]*models.Attempt
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:       map[string]*models.User{},
		companies:   map[uint]*models.Company{},
		topics:      map[uint]*models.Topic{},
		files:       map[uint]*models.File{},
		assessments: map[uint]*models.Assessment{},
		deleted:     map[uint]bool{},
		attempts:    map[uint]*models.Attempt{},
	}
}

func (r *memRepo) id() uint {
	r.nextID++
	return r.nextID
}

func (r *memRepo) User() repositories.UserRepository             { return memUsers{r} }
func (r *memRepo) Company() repositories.CompanyRepository       { return memCompanies{r} }
func (r *memRepo) Topic() repositories.TopicRepository           { return memTopics{r} }
func (r *memRepo) File() repositories.FileRepository             { return memFiles{r} }
func (r *memRepo) Assessment() repositories.AssessmentRepository { return memAssessments{r} }
func (r *memRepo) Attempt() repositories.AttemptRepository       { return memAttempts{r} }

func (r *memRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

func (r *memRepo) Ping(ctx context.Context) error { return nil }
func (r *memRepo) Close() error                   { return nil }

func cloneAssessment(a *models.Assessment) *models.Assessment {
	c := *a
	c.Questions = append([]models.Question(nil), a.Questions...)
	c.QuestionsCount = len(c.Questions)
	return &c
}

func (r *memRepo) cloneAttempt(a *models.Attempt) *models.Attempt {
	c := *a
	c.Answers = append([]models.Answer(nil), a.Answers...)
	if def, ok := r.assessments[a.AssessmentID]; ok {
		c.Assessment = cloneAssessment(def)
	}
	return &c
}

// ===== USERS =====

type memUsers struct{ r *memRepo }

func (m memUsers) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	for _, u := range m.r.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	c := *user
	m.r.users[user.ID] = &c
	return nil
}

func (m memUsers) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	u, ok := m.r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (m memUsers) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	for _, u := range m.r.users {
		if u.Email == normalizeEmail(email) {
			c := *u
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m memUsers) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, tx, email)
	return err == nil, nil
}

func (m memUsers) Upsert(ctx context.Context, tx *gorm.DB, user *models.User) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if existing, ok := m.r.users[user.ID]; ok {
		existing.Name, existing.Email, existing.Role = user.Name, user.Email, user.Role
		return nil
	}
	c := *user
	m.r.users[user.ID] = &c
	return nil
}

func (m memUsers) UpdateResume(ctx context.Context, tx *gorm.DB, id string, resume *models.Resume) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	u, ok := m.r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c := *resume
	u.Resume = &c
	return nil
}

// ===== COMPANIES / TOPICS / FILES =====

type memCompanies struct{ r *memRepo }

func (m memCompanies) Create(ctx context.Context, tx *gorm.DB, company *models.Company) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	company.ID = m.r.id()
	c := *company
	m.r.companies[company.ID] = &c
	return nil
}

func (m memCompanies) GetByID(ctx context.Context, tx *gorm.DB, id uint, userID string) (*models.Company, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	c, ok := m.r.companies[id]
	if !ok || c.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m memCompanies) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Company, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var out []*models.Company
	for _, c := range m.r.companies {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memCompanies) Delete(ctx context.Context, tx *gorm.DB, id uint, userID string) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	c, ok := m.r.companies[id]
	if !ok || c.UserID != userID {
		return repositories.ErrNotFound
	}
	delete(m.r.companies, id)
	return nil
}

func (m memCompanies) Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	_, ok := m.r.companies[id]
	return ok, nil
}

type memTopics struct{ r *memRepo }

func (m memTopics) Create(ctx context.Context, tx *gorm.DB, topic *models.Topic) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	topic.ID = m.r.id()
	c := *topic
	m.r.topics[topic.ID] = &c
	return nil
}

func (m memTopics) GetByID(ctx context.Context, tx *gorm.DB, id uint, userID string) (*models.Topic, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	t, ok := m.r.topics[id]
	if !ok || t.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m memTopics) ListByCompany(ctx context.Context, tx *gorm.DB, companyID uint, userID string) ([]*models.Topic, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var out []*models.Topic
	for _, t := range m.r.topics {
		if t.CompanyID == companyID && t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memTopics) Delete(ctx context.Context, tx *gorm.DB, id uint, userID string) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	t, ok := m.r.topics[id]
	if !ok || t.UserID != userID {
		return repositories.ErrNotFound
	}
	delete(m.r.topics, id)
	return nil
}

func (m memTopics) Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	_, ok := m.r.topics[id]
	return ok, nil
}

type memFiles struct{ r *memRepo }

func (m memFiles) Create(ctx context.Context, tx *gorm.DB, file *models.File) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	file.ID = m.r.id()
	c := *file
	m.r.files[file.ID] = &c
	return nil
}

func (m memFiles) GetByID(ctx context.Context, tx *gorm.DB, id uint, userID string) (*models.File, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	f, ok := m.r.files[id]
	if !ok || f.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m memFiles) ListByTopic(ctx context.Context, tx *gorm.DB, topicID uint, userID string) ([]*models.File, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var out []*models.File
	for _, f := range m.r.files {
		if f.TopicID == topicID && f.UserID == userID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memFiles) Delete(ctx context.Context, tx *gorm.DB, id uint, userID string) (*models.File, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	f, ok := m.r.files[id]
	if !ok || f.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	delete(m.r.files, id)
	return f, nil
}

// ===== ASSESSMENTS =====

type memAssessments struct{ r *memRepo }

func (m memAssessments) Create(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	assessment.ID = m.r.id()
	m.r.assessments[assessment.ID] = cloneAssessment(assessment)
	return nil
}

func (m memAssessments) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	a, ok := m.r.assessments[id]
	if !ok || m.r.deleted[id] {
		return nil, repositories.ErrNotFound
	}
	return cloneAssessment(a), nil
}

func (m memAssessments) GetByIDUnscoped(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	a, ok := m.r.assessments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneAssessment(a), nil
}

func (m memAssessments) List(ctx context.Context, tx *gorm.DB, filters repositories.AssessmentFilters) ([]*models.Assessment, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var out []*models.Assessment
	for id, a := range m.r.assessments {
		if m.r.deleted[id] || (filters.ActiveOnly && !a.IsActive) {
			continue
		}
		out = append(out, cloneAssessment(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m memAssessments) Update(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if _, ok := m.r.assessments[assessment.ID]; !ok || m.r.deleted[assessment.ID] {
		return repositories.ErrNotFound
	}
	m.r.assessments[assessment.ID] = cloneAssessment(assessment)
	return nil
}

func (m memAssessments) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if _, ok := m.r.assessments[id]; !ok || m.r.deleted[id] {
		return repositories.ErrNotFound
	}
	m.r.deleted[id] = true
	return nil
}

// ===== ATTEMPTS =====

type memAttempts struct{ r *memRepo }

func (m memAttempts) Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	attempt.ID = m.r.id()
	c := *attempt
	m.r.attempts[attempt.ID] = &c
	return nil
}

func (m memAttempts) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	a, ok := m.r.attempts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return m.r.cloneAttempt(a), nil
}

func (m memAttempts) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Attempt, error) {
	return m.list(func(a *models.Attempt) bool { return a.UserID == userID }), nil
}

func (m memAttempts) ListByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uint) ([]*models.Attempt, error) {
	return m.list(func(a *models.Attempt) bool { return a.AssessmentID == assessmentID }), nil
}

func (m memAttempts) list(match func(*models.Attempt) bool) []*models.Attempt {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var out []*models.Attempt
	for _, a := range m.r.attempts {
		if match(a) {
			out = append(out, m.r.cloneAttempt(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m memAttempts) Complete(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	stored, ok := m.r.attempts[attempt.ID]
	if !ok || stored.Status != models.AttemptInProgress {
		return repositories.ErrConditionFailed
	}
	c := *attempt
	c.Answers = append([]models.Answer(nil), attempt.Answers...)
	c.Assessment = nil
	m.r.attempts[attempt.ID] = &c
	return nil
}

func (m memAttempts) Abandon(ctx context.Context, tx *gorm.DB, id uint) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	stored, ok := m.r.attempts[id]
	if !ok || stored.Status != models.AttemptInProgress {
		return repositories.ErrConditionFailed
	}
	stored.Status = models.AttemptAbandoned
	return nil
}

func (m memAttempts) GetAssessmentStats(ctx context.Context, tx *gorm.DB, assessmentID uint) (*repositories.AssessmentStats, error) {
	stats := &repositories.AssessmentStats{AssessmentID: assessmentID}
	var scoreSum, percentageSum float64
	for _, a := range m.list(func(a *models.Attempt) bool { return a.AssessmentID == assessmentID }) {
		stats.TotalAttempts++
		if a.Status != models.AttemptCompleted {
			continue
		}
		stats.CompletedAttempts++
		if a.Passed {
			stats.PassedAttempts++
		}
		scoreSum += a.TotalScore
		percentageSum += a.Percentage
	}
	if stats.CompletedAttempts > 0 {
		n := float64(stats.CompletedAttempts)
		stats.AverageScore = scoreSum / n
		stats.AveragePercentage = percentageSum / n
		stats.PassRate = float64(stats.PassedAttempts) / n * 100
	}
	return stats, nil
}

// ===== SHARED FIXTURES =====

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

var (
	adminIdentity   = Identity{UserID: "admin-1", Role: models.RoleAdmin, Email: "admin@example.com"}
	studentIdentity = Identity{UserID: "user-1", Role: models.RoleUser, Email: "student@example.com"}
	otherIdentity   = Identity{UserID: "user-2", Role: models.RoleUser, Email: "other@example.com"}
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServices struct {
	repo        *memRepo
	publisher   *recordingPublisher
	assessments AssessmentService
	attempts    AttemptService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	repo := newMemRepo()
	publisher := &recordingPublisher{}
	v := validator.New()
	return &testServices{
		repo:        repo,
		publisher:   publisher,
		assessments: NewAssessmentService(repo, testLogger(), v, publisher),
		attempts:    NewAttemptService(repo, testLogger(), v, NewGradingService(), publisher),
	}
}

// seedAssessment stores the four question fixture directly
func (ts *testServices) seedAssessment(t *testing.T) *models.Assessment {
	t.Helper()
	def := fourQuestionAssessment()
	def.ID = 0
	if err := ts.repo.Assessment().Create(context.Background(), nil, def); err != nil {
		t.Fatalf("seed assessment: %v", err)
	}
	return def
}

func sampleAssessmentRequest() *models.AssessmentRequest {
	return &models.AssessmentRequest{
		Title: "  Placement practice  ",
		Questions: []models.QuestionRequest{
			{
				Kind:          models.MultipleChoice,
				Prompt:        "2 + 2 = ?",
				Options:       []string{"3", "4", "5"},
				CorrectAnswer: "4",
				Section:       models.SectionAptitude,
			},
			{
				Kind:    models.Coding,
				Prompt:  "Reverse a string",
				Section: models.SectionCoding,
				TestCases: []models.TestCase{
					{Input: "abc", ExpectedOutput: "cba"},
				},
			},
		},
	}
}
