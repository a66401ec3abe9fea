package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/openlearn/openlearn-backend/blobstore"
	"github.com/openlearn/openlearn-backend/middleware"
	"github.com/openlearn/openlearn-backend/models"
	"github.com/openlearn/openlearn-backend/services/access"
	"github.com/openlearn/openlearn-backend/services/catalog"
	"github.com/openlearn/openlearn-backend/services/enrollment"
	"github.com/openlearn/openlearn-backend/services/identity"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// testServer wires real services over in-memory fakes behind the same
// routing the application uses
type testServer struct {
	router      chi.Router
	users       *fakeUserRepo
	courses     *fakeCourseRepo
	lessons     *fakeLessonRepo
	materials   *fakeMaterialRepo
	enrollments *fakeEnrollmentRepo
	blobs       *blobstore.Memory
	identity    *identity.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()

	users := newFakeUserRepo()
	courses := newFakeCourseRepo()
	lessons := newFakeLessonRepo()
	materials := newFakeMaterialRepo(lessons)
	enrollments := newFakeEnrollmentRepo(courses)
	blobs := blobstore.NewMemory()

	identitySvc := identity.NewService(users, "test-secret", time.Hour, logger)
	accessSvc := access.NewService(enrollments, logger)
	enrollmentSvc := enrollment.NewService(courses, enrollments, logger)
	catalogSvc := catalog.NewService(courses, lessons, materials, accessSvc, stubTxManager{}, blobs, logger)

	authHandler := NewAuthHandler(identitySvc, logger)
	courseHandler := NewCourseHandler(catalogSvc, logger)
	lessonHandler := NewLessonHandler(catalogSvc, logger)
	materialHandler := NewMaterialHandler(catalogSvc, logger)
	enrollmentHandler := NewEnrollmentHandler(catalogSvc, enrollmentSvc, logger)

	authMW := middleware.NewAuthMiddleware(identitySvc, logger)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		r.Route("/courses", func(r chi.Router) {
			r.With(authMW.OptionalAuth).Get("/", courseHandler.HandleListCourses)
			r.With(authMW.RequireAuth, authMW.RequireRole(models.RoleAuthor)).Post("/", courseHandler.HandleCreateCourse)

			r.Route("/{slug}", func(r chi.Router) {
				r.With(authMW.OptionalAuth).Get("/", courseHandler.HandleGetCourse)
				r.With(authMW.RequireAuth).Put("/", courseHandler.HandleUpdateCourse)
				r.With(authMW.RequireAuth).Delete("/", courseHandler.HandleDeleteCourse)

				r.With(authMW.RequireAuth).Post("/enroll", enrollmentHandler.HandleEnroll)
				r.With(authMW.RequireAuth).Delete("/enroll", enrollmentHandler.HandleUnenroll)

				r.Route("/lessons", func(r chi.Router) {
					r.With(authMW.OptionalAuth).Get("/", lessonHandler.HandleListLessons)
					r.With(authMW.RequireAuth).Post("/", lessonHandler.HandleCreateLesson)
					r.With(authMW.RequireAuth).Get("/{lessonID}", lessonHandler.HandleGetLesson)
					r.With(authMW.RequireAuth).Put("/{lessonID}", lessonHandler.HandleUpdateLesson)
					r.With(authMW.RequireAuth).Delete("/{lessonID}", lessonHandler.HandleDeleteLesson)
				})
			})
		})

		r.With(authMW.RequireAuth).Post("/lessons/{lessonID}/materials", materialHandler.HandleUploadMaterial)
		r.Route("/materials/{id}", func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Get("/", materialHandler.HandleGetMaterial)
			r.Get("/download", materialHandler.HandleDownloadMaterial)
			r.Put("/", materialHandler.HandleUpdateMaterial)
			r.Delete("/", materialHandler.HandleDeleteMaterial)
		})

		r.Route("/me", func(r chi.Router) {
			r.Use(authMW.RequireAuth)
			r.Get("/", authHandler.HandleMe)
			r.Get("/courses", enrollmentHandler.HandleMyCourses)
			r.With(authMW.RequireRole(models.RoleAuthor)).Get("/teaching", courseHandler.HandleListTeaching)
		})
	})

	return &testServer{
		router:      r,
		users:       users,
		courses:     courses,
		lessons:     lessons,
		materials:   materials,
		enrollments: enrollments,
		blobs:       blobs,
		identity:    identitySvc,
	}
}

// seedUser stores an account directly and returns it with a session token
func (s *testServer) seedUser(t *testing.T, email string, role models.Role) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2secret"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.NewUser(email, string(hash), "Test User", role)
	require.NoError(t, s.users.Create(context.Background(), user))

	token, _, err := s.identity.Login(context.Background(), email, "hunter2secret")
	require.NoError(t, err)
	return user, token
}

// do sends a JSON request through the router. An empty token leaves the
// request anonymous.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// upload sends a multipart material upload through the router
func (s *testServer) upload(t *testing.T, path, token, fileName, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the "data" envelope of a success response
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

// errorCode extracts the error code of an error response
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error
}
