package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/compass/internal/api/dto"
	"github.com/hugh/compass/internal/api/handlers"
	"github.com/hugh/compass/internal/api/middleware"
	"github.com/hugh/compass/internal/database/models"
	"github.com/hugh/compass/internal/progress"
	"github.com/hugh/compass/internal/testutil"
	"github.com/hugh/compass/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncryptor(t *testing.T) *crypto.Encryptor {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	enc, err := crypto.NewEncryptor(key)
	require.NoError(t, err)
	return enc
}

func setupDataTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup, *crypto.Encryptor) {
	tc := testutil.NewTestContext(t)
	logger := testutil.DiscardLogger()
	enc := newTestEncryptor(t)

	goals := handlers.NewGoalHandler(tc.DB, logger)
	tasks := handlers.NewTaskHandler(tc.DB, logger)
	logs := handlers.NewLogHandler(tc.DB, logger)
	reflections := handlers.NewReflectionHandler(tc.DB, enc, logger)
	prog := handlers.NewProgressHandler(progress.NewCalculator(tc.DB), logger)

	r := chi.NewRouter()
	r.Use(middleware.Auth(tc.JWTService))
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/goals", goals.List)
		r.Post("/goals", goals.Create)
		r.Put("/goals/{id}", goals.Update)
		r.Delete("/goals/{id}", goals.Delete)
		r.Get("/tasks", tasks.List)
		r.Post("/tasks", tasks.Create)
		r.Post("/tasks/{id}/toggle", tasks.Toggle)
		r.Delete("/tasks/{id}", tasks.Delete)
		r.Get("/logs", logs.List)
		r.Post("/logs", logs.Create)
		r.Get("/reflections", reflections.List)
		r.Post("/reflections", reflections.Create)
		r.Get("/progress", prog.Get)
	})

	return r, tc, enc
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestGoalHandler_CreateAndComplete(t *testing.T) {
	router, tc, _ := setupDataTestRouter(t)
	defer tc.Cleanup()

	rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/goals",
		map[string]string{"title": "Run a 10k", "category": "health"}, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	var goal models.Goal
	testutil.ParseJSONResponse(t, rr, &goal)
	assert.Equal(t, models.GoalActive, goal.Status)
	assert.Equal(t, tc.User.ID, goal.UserID)

	rr = serve(router, testutil.AuthenticatedRequest(t, "PUT", "/api/v1/goals/"+goal.ID.String(),
		map[string]string{"status": "completed"}, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.ParseJSONResponse(t, rr, &goal)
	assert.Equal(t, models.GoalCompleted, goal.Status)
	assert.NotNil(t, goal.CompletedAt)

	rr = serve(router, testutil.AuthenticatedRequest(t, "PUT", "/api/v1/goals/"+goal.ID.String(),
		map[string]string{"status": "done"}, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestGoalHandler_Validation(t *testing.T) {
	router, tc, _ := setupDataTestRouter(t)
	defer tc.Cleanup()

	rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/goals", map[string]string{}, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	var resp dto.ErrorResponse
	testutil.ParseJSONResponse(t, rr, &resp)
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Contains(t, resp.Details, "title")
}

func TestGoalHandler_OtherUsersGoal(t *testing.T) {
	router, tc, _ := setupDataTestRouter(t)
	defer tc.Cleanup()

	other := testutil.CreateTestUser(t, tc.DB, models.RoleClient)
	goal := testutil.CreateTestGoal(t, tc.DB, other.ID, "Not mine", models.GoalActive)

	rr := serve(router, testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/goals/"+goal.ID.String(), nil, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusNotFound)

	rr = serve(router, testutil.AuthenticatedRequest(t, "GET", "/api/v1/goals", nil, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusOK)
	var goals []models.Goal
	testutil.ParseJSONResponse(t, rr, &goals)
	assert.Empty(t, goals)
}

func TestGoalHandler_DeleteKeepsTasks(t *testing.T) {
	router, tc, _ := setupDataTestRouter(t)
	defer tc.Cleanup()

	goal := testutil.CreateTestGoal(t, tc.DB, tc.User.ID, "Learn Go", models.GoalActive)
	rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/tasks",
		map[string]string{"title": "Read the tour", "goalId": goal.ID.String()}, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	var task models.Task
	testutil.ParseJSONResponse(t, rr, &task)
	require.NotNil(t, task.GoalID)

	rr = serve(router, testutil.AuthenticatedRequest(t, "DELETE", "/api/v1/goals/"+goal.ID.String(), nil, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	var reloaded models.Task
	require.NoError(t, tc.DB.First(&reloaded, "id = ?", task.ID).Error)
	assert.Nil(t, reloaded.GoalID)
}

func TestTaskHandler_Create(t *testing.T) {
	router, tc, _ := setupDataTestRouter(t)
	defer tc.Cleanup()

	other := testutil.CreateTestUser(t, tc.DB, models.RoleClient)
	foreignGoal := testutil.CreateTestGoal(t, tc.DB, other.ID, "Theirs", models.GoalActive)

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{"plain task", map[string]string{"title": "Call mum"}, http.StatusCreated},
		{"missing title", map[string]string{}, http.StatusBadRequest},
		{"bad goal id", map[string]string{"title": "x", "goalId": "nope"}, http.StatusBadRequest},
		{"goal of another user", map[string]string{"title": "x", "goalId": foreignGoal.ID.String()}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/tasks", tt.body, tc.Token))
			testutil.AssertStatus(t, rr, tt.wantStatus)
		})
	}
}

func TestTaskHandler_Toggle(t *testing.T) {
	router, tc, _ := setupDataTestRouter(t)
	defer tc.Cleanup()

	task := testutil.CreateTestTask(t, tc.DB, tc.User.ID, "Stretch", false)
	path := "/api/v1/tasks/" + task.ID.String() + "/toggle"

	rr := serve(router, testutil.AuthenticatedRequest(t, "POST", path, nil, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusOK)
	var got models.Task
	testutil.ParseJSONResponse(t, rr, &got)
	assert.True(t, got.Completed)
	assert.NotNil(t, got.CompletedAt)

	rr = serve(router, testutil.AuthenticatedRequest(t, "POST", path, nil, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusOK)
	got = models.Task{}
	testutil.ParseJSONResponse(t, rr, &got)
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletedAt)
}

func TestLogHandler(t *testing.T) {
	router, tc, _ := setupDataTestRouter(t)
	defer tc.Cleanup()

	rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/logs",
		map[string]interface{}{"mood": 4, "energy": 3, "note": "Good day"}, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	rr = serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/logs",
		map[string]interface{}{"mood": 6, "energy": 3}, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	rr = serve(router, testutil.AuthenticatedRequest(t, "GET", "/api/v1/logs", nil, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusOK)
	var logs []models.DailyLog
	testutil.ParseJSONResponse(t, rr, &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, 4, logs[0].Mood)
}

func TestReflectionHandler_EncryptsAtRest(t *testing.T) {
	router, tc, enc := setupDataTestRouter(t)
	defer tc.Cleanup()

	const body = "Today I noticed I avoid hard conversations."
	rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/reflections",
		map[string]string{"prompt": "What did you learn?", "body": body}, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	var stored models.Reflection
	require.NoError(t, tc.DB.First(&stored, "user_id = ?", tc.User.ID).Error)
	assert.NotContains(t, stored.Body, "hard conversations")
	plain, err := enc.DecryptString(stored.Body)
	require.NoError(t, err)
	assert.Equal(t, body, plain)

	rr = serve(router, testutil.AuthenticatedRequest(t, "GET", "/api/v1/reflections", nil, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusOK)
	var list []dto.ReflectionResponse
	testutil.ParseJSONResponse(t, rr, &list)
	require.Len(t, list, 1)
	assert.Equal(t, body, list[0].Body)
}

func TestProgressHandler(t *testing.T) {
	router, tc, _ := setupDataTestRouter(t)
	defer tc.Cleanup()

	testutil.CreateTestGoal(t, tc.DB, tc.User.ID, "A", models.GoalCompleted)
	testutil.CreateTestGoal(t, tc.DB, tc.User.ID, "B", models.GoalActive)
	testutil.CreateTestTask(t, tc.DB, tc.User.ID, "t1", true)

	rr := serve(router, testutil.AuthenticatedRequest(t, "GET", "/api/v1/progress", nil, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var summary progress.Summary
	testutil.ParseJSONResponse(t, rr, &summary)
	assert.Equal(t, 50, summary.Goals.Percent)
	assert.Equal(t, 100, summary.Tasks.Percent)
	assert.Equal(t, 75, summary.Overall)
}
