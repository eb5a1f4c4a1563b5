package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*AuthService, *utils.JWTManager) {
	env := newTestEnv(t)
	jwt := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	return NewAuthService(env.userRepo, jwt), jwt
}

func TestEnsureAdminAndLogin(t *testing.T) {
	svc, jwt := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "Owner", "Admin@Pharmacy.local", "s3cret-pass"))
	require.NoError(t, svc.EnsureAdmin(ctx, "Owner", "admin@pharmacy.local", "other-pass"))

	out, err := svc.Login(ctx, &LoginInput{Email: "admin@pharmacy.local", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, enum.RoleAdmin, out.User.Role)
	assert.Equal(t, int64(3600), out.ExpiresIn)

	claims, err := jwt.ValidateAccessToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, out.User.ID, claims.UserID)

	_, err = svc.Login(ctx, &LoginInput{Email: "admin@pharmacy.local", Password: "other-pass"})
	assert.Equal(t, apperror.ErrInvalidCredentials, err)

	refreshed, err := svc.RefreshToken(ctx, out.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshToken(ctx, out.AccessToken)
	assert.Equal(t, apperror.ErrInvalidToken, err)
}

func TestEnsureAdmin_NoPasswordIsNoop(t *testing.T) {
	svc, _ := newAuthService(t)
	require.NoError(t, svc.EnsureAdmin(context.Background(), "Owner", "admin@pharmacy.local", ""))

	_, err := svc.Login(context.Background(), &LoginInput{Email: "admin@pharmacy.local", Password: ""})
	assert.Equal(t, apperror.ErrInvalidCredentials, err)
}

func TestCreateUser(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, &CreateUserInput{Name: "Meena", Email: "meena@pharmacy.local", Password: "counter-01"})
	require.NoError(t, err)
	assert.Equal(t, enum.RolePharmacist, user.Role)
	assert.NotEqual(t, "counter-01", user.Password)

	_, err = svc.CreateUser(ctx, &CreateUserInput{Name: "Meena", Email: "MEENA@pharmacy.local", Password: "counter-01"})
	assertAppError(t, err, http.StatusBadRequest)

	_, err = svc.CreateUser(ctx, &CreateUserInput{Name: "X", Email: "not-an-email", Password: "short", Role: "owner"})
	appErr := assertAppError(t, err, http.StatusBadRequest)
	assert.Len(t, appErr.Errors, 3)

	me, err := svc.GetCurrentUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meena", me.Name)
}
