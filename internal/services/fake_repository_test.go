package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/examind/exam-service/internal/models"
	"github.com/examind/exam-service/internal/repositories"
	"gorm.io/gorm"
)

// fakeRepository is an in-memory repositories.Repository for service
// tests. Transactions apply immediately; tests exercise the guard
// paths that return before any write happens.
type fakeRepository struct {
	mu sync.Mutex

	exams       map[uint]*models.Exam
	attempts    map[uint]*models.ExamAttempt
	answers     map[uint]*models.StudentAnswer
	focusEvents map[uint]*models.FocusLossEvent
	reports     map[uint]*models.ExamReport
	users       map[string]*models.User

	nextID uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		exams:       make(map[uint]*models.Exam),
		attempts:    make(map[uint]*models.ExamAttempt),
		answers:     make(map[uint]*models.StudentAnswer),
		focusEvents: make(map[uint]*models.FocusLossEvent),
		reports:     make(map[uint]*models.ExamReport),
		users:       make(map[string]*models.User),
		nextID:      1000,
	}
}

func (f *fakeRepository) allocID() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepository) addExam(exam *models.Exam) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exams[exam.ID] = exam
}

func (f *fakeRepository) addUser(user *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
}

func (f *fakeRepository) Exam() repositories.ExamRepository             { return &fakeExamRepo{f} }
func (f *fakeRepository) Section() repositories.SectionRepository       { return &fakeSectionRepo{f} }
func (f *fakeRepository) Question() repositories.QuestionRepository     { return &fakeQuestionRepo{f} }
func (f *fakeRepository) Attempt() repositories.AttemptRepository       { return &fakeAttemptRepo{f} }
func (f *fakeRepository) Answer() repositories.AnswerRepository         { return &fakeAnswerRepo{f} }
func (f *fakeRepository) FocusEvent() repositories.FocusEventRepository { return &fakeFocusEventRepo{f} }
func (f *fakeRepository) Report() repositories.ReportRepository         { return &fakeReportRepo{f} }
func (f *fakeRepository) User() repositories.UserRepository             { return &fakeUserRepo{f} }

func (f *fakeRepository) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

// ===== EXAMS =====

type fakeExamRepo struct{ f *fakeRepository }

func (r *fakeExamRepo) Create(ctx context.Context, exam *models.Exam) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if exam.ID == 0 {
		exam.ID = r.f.allocID()
	}
	r.f.exams[exam.ID] = exam
	return nil
}

func (r *fakeExamRepo) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	return r.GetByIDWithSections(ctx, id)
}

func (r *fakeExamRepo) GetByIDWithSections(ctx context.Context, id uint) (*models.Exam, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	exam, ok := r.f.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return exam, nil
}

func (r *fakeExamRepo) Update(ctx context.Context, exam *models.Exam) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.exams[exam.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.exams[exam.ID] = exam
	return nil
}

func (r *fakeExamRepo) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	exams := make([]*models.Exam, 0, len(r.f.exams))
	for _, exam := range r.f.exams {
		exams = append(exams, exam)
	}
	sort.Slice(exams, func(i, j int) bool { return exams[i].ID < exams[j].ID })
	return exams, int64(len(exams)), nil
}

func (r *fakeExamRepo) ListAvailable(ctx context.Context, now time.Time) ([]*models.Exam, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var exams []*models.Exam
	for _, exam := range r.f.exams {
		if exam.IsActive && exam.EndTime.After(now) {
			exams = append(exams, exam)
		}
	}
	sort.Slice(exams, func(i, j int) bool { return exams[i].ID < exams[j].ID })
	return exams, nil
}

// ===== SECTIONS =====

type fakeSectionRepo struct{ f *fakeRepository }

func (r *fakeSectionRepo) CreateBatch(ctx context.Context, sections []*models.Section) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, section := range sections {
		if section.ID == 0 {
			section.ID = r.f.allocID()
		}
		exam, ok := r.f.exams[section.ExamID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		exam.Sections = append(exam.Sections, *section)
	}
	return nil
}

func (r *fakeSectionRepo) GetByID(ctx context.Context, id uint) (*models.Section, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, exam := range r.f.exams {
		for i := range exam.Sections {
			if exam.Sections[i].ID == id {
				// Bare row, questions are loaded separately.
				copied := exam.Sections[i]
				copied.Questions = nil
				return &copied, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSectionRepo) GetByExamAndType(ctx context.Context, examID uint, sectionType models.SectionType) (*models.Section, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	exam, ok := r.f.exams[examID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for i := range exam.Sections {
		if exam.Sections[i].Type == sectionType {
			copied := exam.Sections[i]
			copied.Questions = nil
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSectionRepo) ListByExam(ctx context.Context, examID uint) ([]*models.Section, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	exam, ok := r.f.exams[examID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	sections := make([]*models.Section, 0, len(exam.Sections))
	for i := range exam.Sections {
		sections = append(sections, &exam.Sections[i])
	}
	return sections, nil
}

// ===== QUESTIONS =====

type fakeQuestionRepo struct{ f *fakeRepository }

func (r *fakeQuestionRepo) CreateBatch(ctx context.Context, questions []*models.Question) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, q := range questions {
		if q.ID == 0 {
			q.ID = r.f.allocID()
		}
		for i := range q.Options {
			if q.Options[i].ID == 0 {
				q.Options[i].ID = r.f.allocID()
			}
			q.Options[i].QuestionID = q.ID
		}
		for _, exam := range r.f.exams {
			for i := range exam.Sections {
				if exam.Sections[i].ID == q.SectionID {
					exam.Sections[i].Questions = append(exam.Sections[i].Questions, *q)
				}
			}
		}
	}
	return nil
}

func (r *fakeQuestionRepo) ListBySection(ctx context.Context, sectionID uint) ([]*models.Question, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, exam := range r.f.exams {
		for i := range exam.Sections {
			if exam.Sections[i].ID == sectionID {
				questions := make([]*models.Question, 0, len(exam.Sections[i].Questions))
				for j := range exam.Sections[i].Questions {
					questions = append(questions, &exam.Sections[i].Questions[j])
				}
				return questions, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeQuestionRepo) CountBySection(ctx context.Context, sectionID uint) (int64, error) {
	questions, err := r.ListBySection(ctx, sectionID)
	if err != nil {
		return 0, err
	}
	return int64(len(questions)), nil
}

// ===== ATTEMPTS =====

type fakeAttemptRepo struct{ f *fakeRepository }

func (r *fakeAttemptRepo) Create(ctx context.Context, attempt *models.ExamAttempt) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, existing := range r.f.attempts {
		if existing.ExamID == attempt.ExamID && existing.StudentID == attempt.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	attempt.ID = r.f.allocID()
	stored := *attempt
	r.f.attempts[attempt.ID] = &stored
	return nil
}

func (r *fakeAttemptRepo) GetByID(ctx context.Context, id uint) (*models.ExamAttempt, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	attempt, ok := r.f.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *attempt
	return &copied, nil
}

func (r *fakeAttemptRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.ExamAttempt, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeAttemptRepo) GetByIDWithAnswers(ctx context.Context, id uint) (*models.ExamAttempt, error) {
	attempt, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	attempt.Answers = r.answersOf(id)
	return attempt, nil
}

func (r *fakeAttemptRepo) Update(ctx context.Context, attempt *models.ExamAttempt) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.attempts[attempt.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *attempt
	r.f.attempts[attempt.ID] = &stored
	return nil
}

func (r *fakeAttemptRepo) ExistsByExamAndStudent(ctx context.Context, examID uint, studentID string) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, attempt := range r.f.attempts {
		if attempt.ExamID == examID && attempt.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAttemptRepo) ListByExam(ctx context.Context, examID uint, filters repositories.AttemptFilters) ([]*models.ExamAttempt, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var attempts []*models.ExamAttempt
	for _, attempt := range r.f.attempts {
		if attempt.ExamID != examID {
			continue
		}
		copied := *attempt
		copied.Answers = r.answersOf(attempt.ID)
		attempts = append(attempts, &copied)
	}
	sort.Slice(attempts, func(i, j int) bool { return attempts[i].StudentID < attempts[j].StudentID })
	return attempts, nil
}

// answersOf must be called with f.mu held.
func (r *fakeAttemptRepo) answersOf(attemptID uint) []models.StudentAnswer {
	var answers []models.StudentAnswer
	for _, a := range r.f.answers {
		if a.AttemptID == attemptID {
			answers = append(answers, *a)
		}
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].QuestionID < answers[j].QuestionID })
	return answers
}

// ===== ANSWERS =====

type fakeAnswerRepo struct{ f *fakeRepository }

func (r *fakeAnswerRepo) CreateBatch(ctx context.Context, answers []*models.StudentAnswer) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, answer := range answers {
		for _, existing := range r.f.answers {
			if existing.AttemptID == answer.AttemptID && existing.QuestionID == answer.QuestionID {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	for _, answer := range answers {
		answer.ID = r.f.allocID()
		stored := *answer
		r.f.answers[answer.ID] = &stored
	}
	return nil
}

func (r *fakeAnswerRepo) ListByAttempt(ctx context.Context, attemptID uint) ([]*models.StudentAnswer, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var answers []*models.StudentAnswer
	for _, a := range r.f.answers {
		if a.AttemptID == attemptID {
			copied := *a
			answers = append(answers, &copied)
		}
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].QuestionID < answers[j].QuestionID })
	return answers, nil
}

// ===== FOCUS EVENTS =====

type fakeFocusEventRepo struct{ f *fakeRepository }

func (r *fakeFocusEventRepo) Create(ctx context.Context, event *models.FocusLossEvent) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	event.ID = r.f.allocID()
	stored := *event
	r.f.focusEvents[event.ID] = &stored
	return nil
}

func (r *fakeFocusEventRepo) ListByAttempt(ctx context.Context, attemptID uint) ([]*models.FocusLossEvent, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var events []*models.FocusLossEvent
	for _, e := range r.f.focusEvents {
		if e.AttemptID == attemptID {
			copied := *e
			events = append(events, &copied)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

// ===== REPORTS =====

type fakeReportRepo struct{ f *fakeRepository }

func (r *fakeReportRepo) Create(ctx context.Context, report *models.ExamReport) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	report.ID = r.f.allocID()
	stored := *report
	r.f.reports[report.ID] = &stored
	return nil
}

func (r *fakeReportRepo) GetByID(ctx context.Context, id uint) (*models.ExamReport, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	report, ok := r.f.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *report
	return &copied, nil
}

func (r *fakeReportRepo) ListByExam(ctx context.Context, examID uint) ([]*models.ExamReport, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var reports []*models.ExamReport
	for _, report := range r.f.reports {
		if report.ExamID == examID {
			copied := *report
			reports = append(reports, &copied)
		}
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].ID < reports[j].ID })
	return reports, nil
}

// ===== USERS =====

type fakeUserRepo struct{ f *fakeRepository }

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	user, ok := r.f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) ListByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var users []*models.User
	for _, id := range ids {
		if user, ok := r.f.users[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}
