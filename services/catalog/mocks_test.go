package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/openlearn/openlearn-backend/models"
	"github.com/openlearn/openlearn-backend/repositories"
	"github.com/stretchr/testify/mock"
)

// MockCourseRepository is a mock implementation of repositories.CourseRepository
type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) Create(ctx context.Context, course *models.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*models.Course), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCourseRepository) GetBySlug(ctx context.Context, slug string) (*models.Course, error) {
	args := m.Called(ctx, slug)
	if c := args.Get(0); c != nil {
		return c.(*models.Course), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCourseRepository) ListPublished(ctx context.Context, limit, offset int) ([]*models.Course, error) {
	args := m.Called(ctx, limit, offset)
	if c := args.Get(0); c != nil {
		return c.([]*models.Course), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCourseRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Course, error) {
	args := m.Called(ctx, authorID)
	if c := args.Get(0); c != nil {
		return c.([]*models.Course), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCourseRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Course, error) {
	args := m.Called(ctx, query, limit, offset)
	if c := args.Get(0); c != nil {
		return c.([]*models.Course), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCourseRepository) Update(ctx context.Context, course *models.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLessonRepository is a mock implementation of repositories.LessonRepository
type MockLessonRepository struct {
	mock.Mock
}

func (m *MockLessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	args := m.Called(ctx, lesson)
	return args.Error(0)
}

func (m *MockLessonRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	args := m.Called(ctx, id)
	if l := args.Get(0); l != nil {
		return l.(*models.Lesson), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLessonRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*models.Lesson, error) {
	args := m.Called(ctx, courseID)
	if l := args.Get(0); l != nil {
		return l.([]*models.Lesson), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	args := m.Called(ctx, lesson)
	return args.Error(0)
}

func (m *MockLessonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMaterialRepository is a mock implementation of repositories.MaterialRepository
type MockMaterialRepository struct {
	mock.Mock
}

func (m *MockMaterialRepository) Create(ctx context.Context, material *models.Material) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

func (m *MockMaterialRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	args := m.Called(ctx, id)
	if mat := args.Get(0); mat != nil {
		return mat.(*models.Material), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMaterialRepository) ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]*models.Material, error) {
	args := m.Called(ctx, lessonID)
	if mat := args.Get(0); mat != nil {
		return mat.([]*models.Material), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMaterialRepository) ListFileKeysByCourse(ctx context.Context, courseID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, courseID)
	if keys := args.Get(0); keys != nil {
		return keys.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMaterialRepository) ListFileKeysByLesson(ctx context.Context, lessonID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, lessonID)
	if keys := args.Get(0); keys != nil {
		return keys.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMaterialRepository) Update(ctx context.Context, material *models.Material) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

func (m *MockMaterialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEnrollmentRepository is a mock implementation of repositories.EnrollmentRepository
type MockEnrollmentRepository struct {
	mock.Mock
}

func (m *MockEnrollmentRepository) Upsert(ctx context.Context, enrollment *models.Enrollment) (*models.Enrollment, bool, error) {
	args := m.Called(ctx, enrollment)
	if e := args.Get(0); e != nil {
		return e.(*models.Enrollment), args.Bool(1), args.Error(2)
	}
	return nil, false, args.Error(2)
}

func (m *MockEnrollmentRepository) Get(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	args := m.Called(ctx, userID, courseID)
	if e := args.Get(0); e != nil {
		return e.(*models.Enrollment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEnrollmentRepository) Exists(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEnrollmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Enrollment, error) {
	args := m.Called(ctx, userID)
	if e := args.Get(0); e != nil {
		return e.([]*models.Enrollment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEnrollmentRepository) Delete(ctx context.Context, userID, courseID uuid.UUID) error {
	args := m.Called(ctx, userID, courseID)
	return args.Error(0)
}

// stubTxManager runs transactional functions inline so service logic
// can be tested without a database
type stubTxManager struct {
	beginErr error
}

func (s *stubTxManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	return nil, s.beginErr
}

func (s *stubTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	if s.beginErr != nil {
		return s.beginErr
	}
	return fn(ctx, nil)
}
