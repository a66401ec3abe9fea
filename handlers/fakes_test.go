package handlers

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/openlearn/openlearn-backend/models"
	"github.com/openlearn/openlearn-backend/repositories"
)

// In-memory repository fakes. Handler tests exercise real services over
// these so request round trips behave like they would against postgres.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

type fakeCourseRepo struct {
	mu      sync.Mutex
	courses map[uuid.UUID]*models.Course
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[uuid.UUID]*models.Course)}
}

func (r *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.courses {
		if c.Slug == course.Slug {
			return repositories.ErrDuplicate
		}
	}
	r.courses[course.ID] = course
	return nil
}

func (r *fakeCourseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.courses[id]; ok {
		return c, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeCourseRepo) GetBySlug(ctx context.Context, slug string) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.courses {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeCourseRepo) ListPublished(ctx context.Context, limit, offset int) ([]*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Course
	for _, c := range r.courses {
		if c.IsPublished {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r *fakeCourseRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Course
	for _, c := range r.courses {
		if c.AuthorID == authorID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCourseRepo) Search(ctx context.Context, query string, limit, offset int) ([]*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := strings.ToLower(query)
	var out []*models.Course
	for _, c := range r.courses {
		if !c.IsPublished {
			continue
		}
		if strings.Contains(strings.ToLower(c.Title), q) || strings.Contains(strings.ToLower(c.Description), q) {
			out = append(out, c)
		}
	}
	return page(out, limit, offset), nil
}

func (r *fakeCourseRepo) Update(ctx context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[course.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.courses[course.ID] = course
	return nil
}

func (r *fakeCourseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.courses, id)
	return nil
}

type fakeLessonRepo struct {
	mu      sync.Mutex
	lessons map[uuid.UUID]*models.Lesson
}

func newFakeLessonRepo() *fakeLessonRepo {
	return &fakeLessonRepo{lessons: make(map[uuid.UUID]*models.Lesson)}
}

func (r *fakeLessonRepo) Create(ctx context.Context, lesson *models.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lessons[lesson.ID] = lesson
	return nil
}

func (r *fakeLessonRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.lessons[id]; ok {
		return l, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeLessonRepo) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*models.Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Lesson
	for _, l := range r.lessons {
		if l.CourseID == courseID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeLessonRepo) Update(ctx context.Context, lesson *models.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lessons[lesson.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.lessons[lesson.ID] = lesson
	return nil
}

func (r *fakeLessonRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lessons[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.lessons, id)
	return nil
}

type fakeMaterialRepo struct {
	mu        sync.Mutex
	materials map[uuid.UUID]*models.Material
	lessons   *fakeLessonRepo
}

func newFakeMaterialRepo(lessons *fakeLessonRepo) *fakeMaterialRepo {
	return &fakeMaterialRepo{
		materials: make(map[uuid.UUID]*models.Material),
		lessons:   lessons,
	}
}

func (r *fakeMaterialRepo) Create(ctx context.Context, material *models.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.materials[material.ID] = material
	return nil
}

func (r *fakeMaterialRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.materials[id]; ok {
		return m, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeMaterialRepo) ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]*models.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Material
	for _, m := range r.materials {
		if m.LessonID == lessonID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMaterialRepo) ListFileKeysByCourse(ctx context.Context, courseID uuid.UUID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []string
	for _, m := range r.materials {
		lesson, err := r.lessons.GetByID(ctx, m.LessonID)
		if err != nil {
			continue
		}
		if lesson.CourseID == courseID {
			keys = append(keys, m.FileKey)
		}
	}
	return keys, nil
}

func (r *fakeMaterialRepo) ListFileKeysByLesson(ctx context.Context, lessonID uuid.UUID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []string
	for _, m := range r.materials {
		if m.LessonID == lessonID {
			keys = append(keys, m.FileKey)
		}
	}
	return keys, nil
}

func (r *fakeMaterialRepo) Update(ctx context.Context, material *models.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.materials[material.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.materials[material.ID] = material
	return nil
}

func (r *fakeMaterialRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.materials[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.materials, id)
	return nil
}

type fakeEnrollmentRepo struct {
	mu          sync.Mutex
	enrollments map[uuid.UUID]*models.Enrollment
	courses     *fakeCourseRepo
}

func newFakeEnrollmentRepo(courses *fakeCourseRepo) *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{
		enrollments: make(map[uuid.UUID]*models.Enrollment),
		courses:     courses,
	}
}

func (r *fakeEnrollmentRepo) Upsert(ctx context.Context, enrollment *models.Enrollment) (*models.Enrollment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.enrollments {
		if e.UserID == enrollment.UserID && e.CourseID == enrollment.CourseID {
			return e, false, nil
		}
	}
	r.enrollments[enrollment.ID] = enrollment
	return enrollment, true, nil
}

func (r *fakeEnrollmentRepo) Get(ctx context.Context, userID, courseID uuid.UUID) (*models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return e, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeEnrollmentRepo) Exists(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	_, err := r.Get(ctx, userID, courseID)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *fakeEnrollmentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Enrollment
	for _, e := range r.enrollments {
		if e.UserID == userID {
			if course, err := r.courses.GetByID(ctx, e.CourseID); err == nil {
				e.Course = course
			}
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrolledAt.After(out[j].EnrolledAt) })
	return out, nil
}

func (r *fakeEnrollmentRepo) Delete(ctx context.Context, userID, courseID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			delete(r.enrollments, id)
			return nil
		}
	}
	return repositories.ErrNotFound
}

// stubTxManager runs the function inline without a real transaction
type stubTxManager struct{}

func (stubTxManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	return nil, errors.New("not supported")
}

func (stubTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	return fn(ctx, nil)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
