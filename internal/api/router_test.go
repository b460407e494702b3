package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hugh/compass/internal/api"
	"github.com/hugh/compass/internal/api/dto"
	"github.com/hugh/compass/internal/auth"
	"github.com/hugh/compass/internal/database/models"
	"github.com/hugh/compass/internal/mentorship"
	"github.com/hugh/compass/internal/reports"
	"github.com/hugh/compass/internal/testutil"
	"github.com/hugh/compass/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type apiFixture struct {
	router      http.Handler
	db          *gorm.DB
	mentor      *models.User
	client      *models.User
	mentorToken string
	clientToken string
	jwt         *auth.JWTService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	jwtService := testutil.CreateTestJWTService()
	logger := testutil.DiscardLogger()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	encryptor, err := crypto.NewEncryptor(key)
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		DB:          db,
		Logger:      logger,
		JWTService:  jwtService,
		AuthService: auth.NewService(db, jwtService),
		Mentorship:  mentorship.NewService(db, nil, logger),
		Encryptor:   encryptor,
		Reports:     reports.NewGenerator(db, nil, nil, logger),
	})

	mentor := testutil.CreateTestUser(t, db, models.RoleMentor)
	client := testutil.CreateTestUser(t, db, models.RoleClient)

	return &apiFixture{
		router:      router,
		db:          db,
		mentor:      mentor,
		client:      client,
		mentorToken: testutil.GenerateTestToken(t, jwtService, mentor),
		clientToken: testutil.GenerateTestToken(t, jwtService, client),
		jwt:         jwtService,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.AuthenticatedRequest(t, method, path, body, token)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func (f *apiFixture) invite(t *testing.T) string {
	t.Helper()
	rr := f.do(t, "POST", "/api/v1/mentor/invite", map[string]string{"clientEmail": f.client.Email}, f.mentorToken)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp dto.InviteResponse
	testutil.ParseJSONResponse(t, rr, &resp)
	return resp.RelationshipID
}

func (f *apiFixture) notificationCount(t *testing.T, userID interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&count).Error)
	return count
}

func TestRelationshipLifecycle(t *testing.T) {
	f := newAPIFixture(t)

	// Invite
	rr := f.do(t, "POST", "/api/v1/mentor/invite", map[string]string{
		"clientEmail": f.client.Email,
		"message":     "Let's work on your goals",
	}, f.mentorToken)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var invited dto.InviteResponse
	testutil.ParseJSONResponse(t, rr, &invited)
	assert.Equal(t, "pending", invited.Status)
	assert.Equal(t, f.client.ID.String(), invited.ClientID)
	assert.Equal(t, f.client.Email, invited.ClientEmail)
	assert.Equal(t, int64(1), f.notificationCount(t, f.client.ID))

	// Second invite for the same pair
	rr = f.do(t, "POST", "/api/v1/mentor/invite", map[string]string{"clientEmail": f.client.Email}, f.mentorToken)
	testutil.AssertStatus(t, rr, http.StatusConflict)
	var conflict dto.ErrorResponse
	testutil.ParseJSONResponse(t, rr, &conflict)
	assert.Contains(t, conflict.Error, "pending invite already exists")

	// Accept
	rr = f.do(t, "POST", "/api/v1/mentor/relationships/"+invited.RelationshipID+"/accept", nil, f.clientToken)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var accepted dto.AcceptResponse
	testutil.ParseJSONResponse(t, rr, &accepted)
	assert.Equal(t, "active", accepted.Status)
	assert.NotNil(t, accepted.AcceptedAt)
	assert.Equal(t, int64(1), f.notificationCount(t, f.mentor.ID))
	assert.Equal(t, int64(2), f.notificationCount(t, f.client.ID))

	rr = f.do(t, "GET", "/api/v1/mentor/relationships/"+invited.RelationshipID+"/permissions", nil, f.mentorToken)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var perms dto.PermissionsResponse
	testutil.ParseJSONResponse(t, rr, &perms)
	assert.True(t, perms.IsActive)

	// Mentor listing
	rr = f.do(t, "GET", "/api/v1/mentor/relationships", nil, f.mentorToken)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var list []dto.RelationshipResponse
	testutil.ParseJSONResponse(t, rr, &list)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Client)
	assert.Equal(t, f.client.Email, list[0].Client.Email)
	assert.True(t, list[0].HasActivePermissions)

	// Terminate
	rr = f.do(t, "DELETE", "/api/v1/mentor/relationships/"+invited.RelationshipID+"/terminate",
		map[string]string{"reason": "no longer engaged"}, f.mentorToken)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var terminated dto.TerminateResponse
	testutil.ParseJSONResponse(t, rr, &terminated)
	assert.Equal(t, "terminated", terminated.Status)
	assert.NotNil(t, terminated.TerminatedAt)
	assert.Equal(t, int64(3), f.notificationCount(t, f.client.ID))

	var rel models.MentorClientRelationship
	require.NoError(t, f.db.Preload("Permission").First(&rel, "id = ?", invited.RelationshipID).Error)
	assert.Equal(t, "no longer engaged", rel.TerminationReason)
	assert.False(t, rel.Permission.IsActive)

	// Terminate again
	rr = f.do(t, "DELETE", "/api/v1/mentor/relationships/"+invited.RelationshipID+"/terminate", nil, f.mentorToken)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	var already dto.ErrorResponse
	testutil.ParseJSONResponse(t, rr, &already)
	assert.Equal(t, "this relationship is already terminated", already.Error)
	assert.Equal(t, int64(3), f.notificationCount(t, f.client.ID))
}

func TestAccept_ByOutsider(t *testing.T) {
	f := newAPIFixture(t)
	relID := f.invite(t)

	outsider := testutil.CreateTestUser(t, f.db, models.RoleClient)
	token := testutil.GenerateTestToken(t, f.jwt, outsider)

	rr := f.do(t, "POST", "/api/v1/mentor/relationships/"+relID+"/accept", nil, token)
	testutil.AssertStatus(t, rr, http.StatusForbidden)

	var rel models.MentorClientRelationship
	require.NoError(t, f.db.First(&rel, "id = ?", relID).Error)
	assert.Equal(t, models.RelationshipPending, rel.Status)
}

func TestInvite_Errors(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name       string
		body       interface{}
		token      string
		wantStatus int
	}{
		{"invalid email", map[string]string{"clientEmail": "not-an-email"}, f.mentorToken, http.StatusBadRequest},
		{"unknown client", map[string]string{"clientEmail": "nobody@example.com"}, f.mentorToken, http.StatusNotFound},
		{"client cannot invite", map[string]string{"clientEmail": f.mentor.Email}, f.clientToken, http.StatusForbidden},
		{"malformed body", "not json", f.mentorToken, http.StatusBadRequest},
		{"unauthenticated", map[string]string{"clientEmail": f.client.Email}, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := f.do(t, "POST", "/api/v1/mentor/invite", tt.body, tt.token)
			testutil.AssertStatus(t, rr, tt.wantStatus)
		})
	}
}

func TestMentorRelationships_RequiresMentorRole(t *testing.T) {
	f := newAPIFixture(t)

	rr := f.do(t, "GET", "/api/v1/mentor/relationships", nil, f.clientToken)
	testutil.AssertStatus(t, rr, http.StatusForbidden)

	admin := testutil.CreateTestUser(t, f.db, models.RoleAdmin)
	rr = f.do(t, "GET", "/api/v1/mentor/relationships", nil, testutil.GenerateTestToken(t, f.jwt, admin))
	testutil.AssertStatus(t, rr, http.StatusForbidden)

	rr = f.do(t, "GET", "/api/v1/mentor/relationships", nil, f.mentorToken)
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = f.do(t, "GET", "/api/v1/client/relationships", nil, f.clientToken)
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestAdminPurge(t *testing.T) {
	f := newAPIFixture(t)
	relID := f.invite(t)

	admin := testutil.CreateTestUser(t, f.db, models.RoleAdmin)
	adminToken := testutil.GenerateTestToken(t, f.jwt, admin)

	rr := f.do(t, "DELETE", "/api/v1/admin/relationships/"+relID, nil, adminToken)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)

	rr = f.do(t, "DELETE", "/api/v1/mentor/relationships/"+relID+"/terminate", nil, f.clientToken)
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = f.do(t, "DELETE", "/api/v1/admin/relationships/"+relID, nil, f.mentorToken)
	testutil.AssertStatus(t, rr, http.StatusForbidden)

	rr = f.do(t, "DELETE", "/api/v1/admin/relationships/"+relID, nil, adminToken)
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	// The pair can be invited again
	f.invite(t)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newAPIFixture(t)

	rr := f.do(t, "GET", "/health", nil, "")
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = f.do(t, "GET", "/metrics", nil, "")
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Contains(t, rr.Body.String(), "compass_http_requests_total")
}
