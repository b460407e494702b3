package auth_test

import (
	"context"
	"testing"

	"github.com/hugh/compass/internal/auth"
	"github.com/hugh/compass/internal/database/models"
	"github.com/hugh/compass/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *auth.Service {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return auth.NewService(db, testutil.CreateTestJWTService())
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("correct horse 1")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse 1", hash)
	assert.True(t, auth.CheckPassword("correct horse 1", hash))
	assert.False(t, auth.CheckPassword("wrong horse 1", hash))
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, auth.RegisterInput{
		Email:    "  Ada@Example.com ",
		Password: "password123",
		Name:     "Ada",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Equal(t, models.RoleClient, resp.User.Role)
	assert.False(t, resp.User.IsMentor)

	_, err = svc.Register(ctx, auth.RegisterInput{Email: "ada@example.com", Password: "password123", Name: "Ada"})
	assert.ErrorIs(t, err, auth.ErrUserExists)

	login, err := svc.Login(ctx, auth.LoginInput{Email: "ADA@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = svc.Login(ctx, auth.LoginInput{Email: "ada@example.com", Password: "wrong-password1"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, auth.LoginInput{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestService_GetUserByEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, auth.RegisterInput{Email: "grace@example.com", Password: "password123", Name: "Grace"})
	require.NoError(t, err)

	user, err := svc.GetUserByEmail(ctx, " Grace@Example.com")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)

	_, err = svc.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestService_RegisterRoles(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, auth.RegisterInput{Email: "m@example.com", Password: "password123", Name: "M", Role: models.RoleMentor})
	require.NoError(t, err)
	assert.Equal(t, models.RoleMentor, resp.User.Role)
	assert.True(t, resp.User.IsMentor)

	_, err = svc.Register(ctx, auth.RegisterInput{Email: "x@example.com", Password: "password123", Name: "X", Role: "superuser"})
	assert.ErrorIs(t, err, auth.ErrInvalidRole)
}

func TestService_RegisterMentor(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, auth.RegisterInput{Email: "c@example.com", Password: "password123", Name: "C"})
	require.NoError(t, err)

	upgraded, err := svc.RegisterMentor(ctx, resp.User.ID, auth.MentorProfileInput{Bio: "Career coach", Expertise: "careers"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleMentor, upgraded.User.Role)
	assert.True(t, upgraded.User.IsMentor)
	assert.Equal(t, "Career coach", upgraded.User.Bio)

	claims, err := testutil.CreateTestJWTService().ValidateToken(upgraded.Token)
	require.NoError(t, err)
	assert.Equal(t, "mentor", claims.Role)

	_, err = svc.RegisterMentor(ctx, resp.User.ID, auth.MentorProfileInput{})
	assert.ErrorIs(t, err, auth.ErrAlreadyMentor)
}

func TestService_UpdateProfile(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, auth.RegisterInput{Email: "p@example.com", Password: "password123", Name: "P"})
	require.NoError(t, err)

	name := " Patricia "
	user, err := svc.UpdateProfile(ctx, resp.User.ID, auth.ProfileInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Patricia", user.Name)
	assert.Equal(t, "p@example.com", user.Email)
}

func TestService_InactiveUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := auth.NewService(db, testutil.CreateTestJWTService())
	user := testutil.CreateTestUser(t, db, models.RoleClient)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err := svc.Login(context.Background(), auth.LoginInput{Email: user.Email, Password: "testpassword123"})
	assert.ErrorIs(t, err, auth.ErrInactiveUser)
}
