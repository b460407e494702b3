package handlers_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/compass/internal/api/handlers"
	"github.com/hugh/compass/internal/api/middleware"
	"github.com/hugh/compass/internal/assistant"
	"github.com/hugh/compass/internal/database/models"
	"github.com/hugh/compass/internal/reports"
	"github.com/hugh/compass/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAssistantTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)
	logger := testutil.DiscardLogger()
	handler := handlers.NewAssistantHandler(reports.NewGenerator(tc.DB, nil, nil, logger), logger)

	r := chi.NewRouter()
	r.Use(middleware.Auth(tc.JWTService))
	r.Route("/api/v1/assistant", func(r chi.Router) {
		r.Post("/chat", handler.Chat)
		r.Get("/reports", handler.ListReports)
		r.Post("/reports", handler.GenerateReport)
	})
	return r, tc
}

func TestAssistantHandler_Chat(t *testing.T) {
	router, tc := setupAssistantTestRouter(t)
	defer tc.Cleanup()

	rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/assistant/chat",
		map[string]string{"message": "I feel so stressed about work"}, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var reply assistant.Reply
	testutil.ParseJSONResponse(t, rr, &reply)
	assert.Equal(t, assistant.TopicStress, reply.Topic)
	assert.NotEmpty(t, reply.Message)

	rr = serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/assistant/chat",
		map[string]string{"message": ""}, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestAssistantHandler_Reports(t *testing.T) {
	router, tc := setupAssistantTestRouter(t)
	defer tc.Cleanup()

	testutil.CreateTestGoal(t, tc.DB, tc.User.ID, "Ship it", models.GoalCompleted)

	rr := serve(router, testutil.AuthenticatedRequest(t, "POST", "/api/v1/assistant/reports", nil, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	var report models.AIReport
	testutil.ParseJSONResponse(t, rr, &report)
	assert.Equal(t, 100, report.GoalPercent)
	assert.NotEmpty(t, report.Summary)

	rr = serve(router, testutil.AuthenticatedRequest(t, "GET", "/api/v1/assistant/reports", nil, tc.Token))
	testutil.AssertStatus(t, rr, http.StatusOK)
	var list []models.AIReport
	testutil.ParseJSONResponse(t, rr, &list)
	require.Len(t, list, 1)
	assert.Equal(t, report.ID, list[0].ID)
}
