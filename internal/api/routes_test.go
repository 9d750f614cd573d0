package api

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository/memory"
	"alcyxob/fitness-coach/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const testSecret = "test-secret"

type stubStorage struct{}

func (stubStorage) GeneratePresignedUploadURL(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	return "https://bucket.example.com/" + key + "?put", nil
}

func (stubStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "https://bucket.example.com/" + key + "?get", nil
}

func (stubStorage) DeleteObject(ctx context.Context, key string) error { return nil }

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repos := memory.NewRepositories()
	clock := func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }
	router := gin.New()
	SetupRoutes(router, testSecret, Services{
		Auth:          service.NewAuthService(repos.Users, testSecret, time.Hour),
		Trainer:       service.NewTrainerService(repos),
		Templates:     service.NewTemplateService(repos),
		Cycles:        service.NewCycleService(repos, clock),
		Forks:         service.NewForkService(repos),
		Logs:          service.NewLogService(repos),
		Uploads:       service.NewUploadService(repos, stubStorage{}, time.Minute),
		Notifications: service.NewNotificationService(repos.Notifications, clock),
	})
	return &testServer{t: t, router: router}
}

// do sends body (JSON-encoded unless it is a string) and decodes the
// response into out when out is non-nil.
func (s *testServer) do(method, path, token string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			s.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec
}

func (s *testServer) expect(rec *httptest.ResponseRecorder, code int) {
	s.t.Helper()
	if rec.Code != code {
		s.t.Fatalf("status = %d, want %d: %s", rec.Code, code, rec.Body.String())
	}
}

// signup registers a user and returns a login token with the user id.
func (s *testServer) signup(name, email string, role domain.Role) (string, string) {
	s.t.Helper()
	s.expect(s.do(http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Name: name, Email: email, Password: "password123", Role: role,
	}, nil), http.StatusCreated)

	var resp LoginResponse
	s.expect(s.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: email, Password: "password123"}, &resp), http.StatusOK)
	return resp.Token, resp.User.ID
}

func TestAuthAndRoles(t *testing.T) {
	s := newTestServer(t)
	s.expect(s.do(http.MethodGet, "/ping", "", nil, nil), http.StatusOK)

	coach, coachID := s.signup("Coach", "coach@example.com", domain.RoleTrainer)
	client, _ := s.signup("Client", "client@example.com", domain.RoleClient)

	var me UserResponse
	s.expect(s.do(http.MethodGet, "/api/v1/me", coach, nil, &me), http.StatusOK)
	if me.ID != coachID || me.Role != domain.RoleTrainer {
		t.Errorf("me = %+v", me)
	}

	s.expect(s.do(http.MethodGet, "/api/v1/me", "", nil, nil), http.StatusUnauthorized)
	s.expect(s.do(http.MethodGet, "/api/v1/me", "not-a-token", nil, nil), http.StatusUnauthorized)
	s.expect(s.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "coach@example.com", Password: "nope-nope"}, nil), http.StatusUnauthorized)
	s.expect(s.do(http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Name: "Dup", Email: "coach@example.com", Password: "password123", Role: domain.RoleClient,
	}, nil), http.StatusConflict)

	s.expect(s.do(http.MethodGet, "/api/v1/trainer/templates", client, nil, nil), http.StatusForbidden)
	s.expect(s.do(http.MethodGet, "/api/v1/client/mesocycles", coach, nil, nil), http.StatusForbidden)

	var clients []UserResponse
	s.expect(s.do(http.MethodGet, "/api/v1/trainer/clients", coach, nil, &clients), http.StatusOK)
	if clients == nil || len(clients) != 0 {
		t.Errorf("clients = %v, want empty list", clients)
	}
}

func TestCoachClientFlow(t *testing.T) {
	s := newTestServer(t)
	coach, _ := s.signup("Coach", "coach@example.com", domain.RoleTrainer)
	client, clientID := s.signup("Client", "client@example.com", domain.RoleClient)

	s.expect(s.do(http.MethodPost, "/api/v1/trainer/clients", coach, AddClientRequest{ClientEmail: "client@example.com"}, nil), http.StatusOK)

	var tpl service.TemplateTree
	s.expect(s.do(http.MethodPost, "/api/v1/trainer/templates", coach, service.TemplateInput{Title: "Full body", NumberOfDays: 2}, &tpl), http.StatusCreated)
	tplPath := "/api/v1/trainer/templates/" + tpl.Template.ID.Hex()
	dayID := tpl.Days[0].Day.ID.Hex()

	var ex domain.Exercise
	s.expect(s.do(http.MethodPost, tplPath+"/days/"+dayID+"/exercises", coach, service.ExerciseInput{
		Name: "Squat",
		Sets: []service.SetInput{{SetNumber: 1, MinReps: 5, MaxReps: 8}},
	}, &ex), http.StatusCreated)
	s.expect(s.do(http.MethodPost, tplPath+"/days/"+dayID+"/exercises", coach, `{"name":"Bad","sets":[{"setNumber":1,"minReps":9,"maxReps":3}]}`, nil), http.StatusBadRequest)

	var view service.MesocycleView
	s.expect(s.do(http.MethodPost, "/api/v1/trainer/clients/"+clientID+"/mesocycles", coach, CreateMesocycleRequest{
		TemplateID: tpl.Template.ID.Hex(), StartDate: "2024-01-01", DurationWeeks: 4,
	}, &view), http.StatusCreated)
	if len(view.Microcycles) != 4 || view.Mesocycle.EndDate.Format(DateLayout) != "2024-01-28" {
		t.Fatalf("view = %d weeks ending %s", len(view.Microcycles), view.Mesocycle.EndDate.Format(DateLayout))
	}
	s.expect(s.do(http.MethodPost, "/api/v1/trainer/clients/"+clientID+"/mesocycles", coach, CreateMesocycleRequest{
		StartDate: "01/02/2024", DayCount: 3, DurationWeeks: 4,
	}, nil), http.StatusBadRequest)
	s.expect(s.do(http.MethodDelete, tplPath, coach, nil, nil), http.StatusConflict)

	var active service.MesocycleView
	s.expect(s.do(http.MethodGet, "/api/v1/client/active-mesocycle", client, nil, &active), http.StatusOK)
	if active.Mesocycle.ID != view.Mesocycle.ID {
		t.Fatalf("active = %s", active.Mesocycle.ID.Hex())
	}

	week := view.Microcycles[0].ID.Hex()
	logBody := `{"dayId":"` + dayID + `","completedAt":"2024-01-02T18:00:00Z","rpe":7,` +
		`"exercises":[{"exerciseId":"` + ex.ID.Hex() + `","sets":[{"setNumber":1,"reps":6,"weight":0}]}]}`
	var entry domain.WorkoutDayLog
	s.expect(s.do(http.MethodPost, "/api/v1/client/microcycles/"+week+"/logs", client, logBody, &entry), http.StatusCreated)
	s.expect(s.do(http.MethodPost, "/api/v1/client/microcycles/"+week+"/logs", client, strings.Replace(logBody, `,"weight":0`, "", 1), nil), http.StatusBadRequest)
	s.expect(s.do(http.MethodPost, "/api/v1/client/microcycles/not-an-id/logs", client, logBody, nil), http.StatusBadRequest)

	var weeks []service.LoggedWeek
	s.expect(s.do(http.MethodGet, "/api/v1/mesocycles/"+view.Mesocycle.ID.Hex()+"/logged-weeks", coach, nil, &weeks), http.StatusOK)
	if len(weeks) != 1 || weeks[0].LogCount != 1 {
		t.Errorf("weeks = %+v", weeks)
	}

	// Editing the mesocycle forks it; the template keeps its tree.
	mesoPath := "/api/v1/trainer/mesocycles/" + view.Mesocycle.ID.Hex()
	s.expect(s.do(http.MethodPatch, mesoPath+"/days/"+dayID, coach, service.DayInput{Title: "Legs"}, nil), http.StatusOK)
	s.expect(s.do(http.MethodPatch, mesoPath+"/days/"+dayID, coach, service.DayInput{Title: "Again"}, nil), http.StatusNotFound)

	var forked service.MesocycleView
	s.expect(s.do(http.MethodGet, "/api/v1/mesocycles/"+view.Mesocycle.ID.Hex(), client, nil, &forked), http.StatusOK)
	if !forked.Mesocycle.IsForked || forked.Days[0].Day.Title != "Legs" {
		t.Errorf("forked = %+v", forked.Mesocycle)
	}
	var tplNow service.TemplateTree
	s.expect(s.do(http.MethodGet, tplPath, coach, nil, &tplNow), http.StatusOK)
	if tplNow.Days[0].Day.Title != "" {
		t.Errorf("template day title = %q", tplNow.Days[0].Day.Title)
	}

	var notes []domain.Notification
	s.expect(s.do(http.MethodGet, "/api/v1/notifications", coach, nil, &notes), http.StatusOK)
	if len(notes) != 1 || notes[0].Kind != domain.NotificationWorkoutLogged {
		t.Errorf("coach notifications = %+v", notes)
	}

	var saved service.TemplateTree
	s.expect(s.do(http.MethodPost, mesoPath+"/save-as-template", coach, nil, &saved), http.StatusCreated)
	if saved.Template.ID == tpl.Template.ID || len(saved.Days) != 2 {
		t.Errorf("saved = %+v", saved.Template)
	}
	s.expect(s.do(http.MethodPost, mesoPath+"/complete", coach, nil, nil), http.StatusOK)
	s.expect(s.do(http.MethodGet, "/api/v1/client/active-mesocycle", client, nil, nil), http.StatusNotFound)
}

func TestForeignResourcesAreNotFound(t *testing.T) {
	s := newTestServer(t)
	coach, _ := s.signup("Coach", "coach@example.com", domain.RoleTrainer)
	other, _ := s.signup("Other", "other@example.com", domain.RoleAdmin)
	_, clientID := s.signup("Client", "client@example.com", domain.RoleClient)

	var tpl service.TemplateTree
	s.expect(s.do(http.MethodPost, "/api/v1/trainer/templates", coach, service.TemplateInput{Title: "Mine", NumberOfDays: 1}, &tpl), http.StatusCreated)

	s.expect(s.do(http.MethodGet, "/api/v1/trainer/templates/"+tpl.Template.ID.Hex(), other, nil, nil), http.StatusNotFound)
	s.expect(s.do(http.MethodGet, "/api/v1/trainer/templates/zzz", other, nil, nil), http.StatusBadRequest)
	s.expect(s.do(http.MethodGet, "/api/v1/trainer/clients/"+clientID+"/mesocycles", coach, nil, nil), http.StatusNotFound)
}

func TestTemplateImportAndReorder(t *testing.T) {
	s := newTestServer(t)
	coach, _ := s.signup("Coach", "coach@example.com", domain.RoleTrainer)

	plan := `
title = "Imported"

[[day]]
title = "A"

  [[day.exercise]]
  name = "Press"
  sets = 3
  reps = "6-8"

[[day]]
title = "B"
`
	var tree service.TemplateTree
	s.expect(s.do(http.MethodPost, "/api/v1/trainer/template-imports?format=toml", coach, plan, &tree), http.StatusCreated)
	if tree.Template.Title != "Imported" || len(tree.Days) != 2 || len(tree.Days[0].Exercises[0].Sets) != 3 {
		t.Fatalf("tree = %+v", tree)
	}
	s.expect(s.do(http.MethodPost, "/api/v1/trainer/template-imports?format=yaml", coach, "title: [", nil), http.StatusBadRequest)

	path := "/api/v1/trainer/templates/" + tree.Template.ID.Hex()
	a, b := tree.Days[0].Day.ID.Hex(), tree.Days[1].Day.ID.Hex()
	var days []domain.Day
	s.expect(s.do(http.MethodPut, path+"/day-order", coach, `{"items":[{"id":"`+a+`","order":2},{"id":"`+b+`","order":1}]}`, &days), http.StatusOK)
	if len(days) != 2 || days[0].ID.Hex() != b || days[0].DayNumber != 1 {
		t.Errorf("days = %+v", days)
	}
	s.expect(s.do(http.MethodPut, path+"/day-order", coach, `{"items":[{"id":"`+a+`","order":1}]}`, nil), http.StatusBadRequest)
	s.expect(s.do(http.MethodPut, path+"/day-order", coach, `{"items":[]}`, nil), http.StatusBadRequest)

	var dup service.TemplateTree
	s.expect(s.do(http.MethodPost, path+"/duplicate", coach, nil, &dup), http.StatusCreated)
	if dup.Template.Title != "Imported (copy)" {
		t.Errorf("duplicate title = %q", dup.Template.Title)
	}
	var list []domain.Template
	s.expect(s.do(http.MethodGet, "/api/v1/trainer/templates", coach, nil, &list), http.StatusOK)
	if len(list) != 2 {
		t.Errorf("templates = %d, want 2", len(list))
	}
	s.expect(s.do(http.MethodDelete, "/api/v1/trainer/templates/"+dup.Template.ID.Hex(), coach, nil, nil), http.StatusNoContent)
}

func TestExerciseVideoRoutes(t *testing.T) {
	s := newTestServer(t)
	coach, _ := s.signup("Coach", "coach@example.com", domain.RoleTrainer)

	var tpl service.TemplateTree
	s.expect(s.do(http.MethodPost, "/api/v1/trainer/templates", coach, service.TemplateInput{Title: "T", NumberOfDays: 1}, &tpl), http.StatusCreated)
	var ex domain.Exercise
	s.expect(s.do(http.MethodPost, "/api/v1/trainer/templates/"+tpl.Template.ID.Hex()+"/days/"+tpl.Days[0].Day.ID.Hex()+"/exercises", coach,
		service.ExerciseInput{Name: "Deadlift"}, &ex), http.StatusCreated)

	base := "/api/v1/trainer/exercises/" + ex.ID.Hex() + "/video"
	var upload service.UploadURLResponse
	s.expect(s.do(http.MethodPost, base+"/upload-url", coach, RequestUploadURLRequest{ContentType: "video/mp4"}, &upload), http.StatusOK)
	if !strings.HasSuffix(upload.ObjectKey, ".mp4") || upload.UploadURL == "" {
		t.Fatalf("upload = %+v", upload)
	}
	s.expect(s.do(http.MethodPost, base+"/upload-url", coach, RequestUploadURLRequest{ContentType: "text/plain"}, nil), http.StatusBadRequest)
	s.expect(s.do(http.MethodGet, "/api/v1/exercises/"+ex.ID.Hex()+"/video", coach, nil, nil), http.StatusNotFound)

	s.expect(s.do(http.MethodPost, base+"/confirm", coach, ConfirmUploadRequest{ObjectKey: upload.ObjectKey, ContentType: "video/mp4", Size: 10}, nil), http.StatusOK)
	var dl VideoDownloadURLResponse
	s.expect(s.do(http.MethodGet, "/api/v1/exercises/"+ex.ID.Hex()+"/video", coach, nil, &dl), http.StatusOK)
	if !strings.Contains(dl.DownloadURL, upload.ObjectKey) {
		t.Errorf("download = %q", dl.DownloadURL)
	}
}
