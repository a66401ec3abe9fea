package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/openlearn/openlearn-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleCreateLesson(t *testing.T) {
	t.Run("author adds a lesson", func(t *testing.T) {
		s := newTestServer(t)
		author, token := s.seedUser(t, "author@example.com", models.RoleAuthor)

		course := models.NewCourse(author.ID, "Go Basics", "", "", models.DifficultyBeginner)
		require.NoError(t, s.courses.Create(context.Background(), course))

		rec := s.do(t, http.MethodPost, "/api/v1/courses/go-basics/lessons", token, map[string]interface{}{
			"title":   "Intro",
			"content": "welcome",
			"order":   1,
		})

		require.Equal(t, http.StatusCreated, rec.Code)

		var lesson models.Lesson
		decodeData(t, rec, &lesson)
		assert.Equal(t, course.ID, lesson.CourseID)
		assert.Equal(t, 1, lesson.Order)
	})

	t.Run("negative order is rejected", func(t *testing.T) {
		s := newTestServer(t)
		author, token := s.seedUser(t, "author@example.com", models.RoleAuthor)

		course := models.NewCourse(author.ID, "Go Basics", "", "", models.DifficultyBeginner)
		require.NoError(t, s.courses.Create(context.Background(), course))

		rec := s.do(t, http.MethodPost, "/api/v1/courses/go-basics/lessons", token, map[string]interface{}{
			"title": "Intro",
			"order": -1,
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("student may not add lessons", func(t *testing.T) {
		s := newTestServer(t)
		author, _ := s.seedUser(t, "author@example.com", models.RoleAuthor)
		_, studentToken := s.seedUser(t, "student@example.com", models.RoleStudent)

		course := models.NewCourse(author.ID, "Go Basics", "", "", models.DifficultyBeginner)
		course.IsPublished = true
		require.NoError(t, s.courses.Create(context.Background(), course))

		rec := s.do(t, http.MethodPost, "/api/v1/courses/go-basics/lessons", studentToken, map[string]interface{}{
			"title": "Intro",
			"order": 0,
		})

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHandleListLessons(t *testing.T) {
	s := newTestServer(t)
	author, _ := s.seedUser(t, "author@example.com", models.RoleAuthor)

	course := models.NewCourse(author.ID, "Go Basics", "", "", models.DifficultyBeginner)
	course.IsPublished = true
	second := models.NewLesson(course.ID, "Second", "", 2)
	first := models.NewLesson(course.ID, "First", "", 1)
	ctx := context.Background()
	require.NoError(t, s.courses.Create(ctx, course))
	require.NoError(t, s.lessons.Create(ctx, second))
	require.NoError(t, s.lessons.Create(ctx, first))

	t.Run("titles are public on published courses", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/v1/courses/go-basics/lessons", "", nil)

		require.Equal(t, http.StatusOK, rec.Code)

		var lessons []*models.Lesson
		decodeData(t, rec, &lessons)
		require.Len(t, lessons, 2)
		assert.Equal(t, "First", lessons[0].Title)
		assert.Equal(t, "Second", lessons[1].Title)
	})
}

func TestHandleUpdateLesson(t *testing.T) {
	s := newTestServer(t)
	author, authorToken := s.seedUser(t, "author@example.com", models.RoleAuthor)
	_, studentToken := s.seedUser(t, "student@example.com", models.RoleStudent)

	course := models.NewCourse(author.ID, "Go Basics", "", "", models.DifficultyBeginner)
	course.IsPublished = true
	lesson := models.NewLesson(course.ID, "Intro", "old", 0)
	ctx := context.Background()
	require.NoError(t, s.courses.Create(ctx, course))
	require.NoError(t, s.lessons.Create(ctx, lesson))

	path := "/api/v1/courses/go-basics/lessons/" + lesson.ID.String()

	t.Run("author updates content", func(t *testing.T) {
		rec := s.do(t, http.MethodPut, path, authorToken, map[string]string{
			"content": "new",
		})

		require.Equal(t, http.StatusOK, rec.Code)

		var got models.Lesson
		decodeData(t, rec, &got)
		assert.Equal(t, "new", got.Content)
	})

	t.Run("student is forbidden", func(t *testing.T) {
		rec := s.do(t, http.MethodPut, path, studentToken, map[string]string{
			"content": "hijacked",
		})

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHandleDeleteLesson(t *testing.T) {
	s := newTestServer(t)
	author, token := s.seedUser(t, "author@example.com", models.RoleAuthor)

	course := models.NewCourse(author.ID, "Go Basics", "", "", models.DifficultyBeginner)
	lesson := models.NewLesson(course.ID, "Intro", "", 0)
	material := models.NewMaterial(lesson.ID, "Slides", "materials/slides.pdf", "slides.pdf", models.MaterialTypePDF, "")
	ctx := context.Background()
	require.NoError(t, s.courses.Create(ctx, course))
	require.NoError(t, s.lessons.Create(ctx, lesson))
	require.NoError(t, s.materials.Create(ctx, material))
	require.NoError(t, s.blobs.Save(ctx, material.FileKey, strings.NewReader("x")))

	rec := s.do(t, http.MethodDelete, "/api/v1/courses/go-basics/lessons/"+lesson.ID.String(), token, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, s.blobs.Has(material.FileKey))
}
