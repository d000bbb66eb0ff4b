package token

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mvribeiro/suplemarket/internal/models"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.RefreshToken{}))

	return &TokenService{
		DB:            db,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
}

func TestSignAccessToken_Claims(t *testing.T) {
	svc := newTestTokenService(t)
	userID := uuid.New()

	raw, err := SignAccessToken(userID, "operator", svc.JWTSecret)
	require.NoError(t, err)

	tok, err := jwt.Parse(raw, func(j *jwt.Token) (interface{}, error) { return svc.JWTSecret, nil })
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, userID.String(), claims["sub"])
	assert.Equal(t, "operator", claims["role"])
}

func TestValidateRefresh_HappyPath(t *testing.T) {
	svc := newTestTokenService(t)
	userID := uuid.New()

	raw, err := SignRefreshToken(userID, "operator", svc.RefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(svc.DB, raw, userID))

	claims, err := ValidateRefresh(raw, svc.RefreshSecret, svc.DB)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims["sub"])
	assert.Equal(t, "refresh", claims["typ"])
}

func TestValidateRefresh_RejectsUnknownToken(t *testing.T) {
	svc := newTestTokenService(t)

	raw, err := SignRefreshToken(uuid.New(), "operator", svc.RefreshSecret)
	require.NoError(t, err)

	_, err = ValidateRefresh(raw, svc.RefreshSecret, svc.DB)
	require.ErrorContains(t, err, "not found")
}

func TestValidateRefresh_RejectsAccessToken(t *testing.T) {
	svc := newTestTokenService(t)

	// access tokens carry no typ claim and must not pass as refresh tokens
	raw, err := SignAccessToken(uuid.New(), "operator", svc.RefreshSecret)
	require.NoError(t, err)

	_, err = ValidateRefresh(raw, svc.RefreshSecret, svc.DB)
	require.ErrorContains(t, err, "not a refresh token")
}

func TestRotateToken_RevokesOldToken(t *testing.T) {
	svc := newTestTokenService(t)
	userID := uuid.New()

	raw, err := SignRefreshToken(userID, "operator", svc.RefreshSecret)
	require.NoError(t, err)
	require.NoError(t, SaveRefreshToken(svc.DB, raw, userID))

	access, refresh, err := svc.RotateToken(raw)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, raw, refresh)

	// the rotated-out token is burned
	_, _, err = svc.RotateToken(raw)
	require.Error(t, err)

	// the replacement still works
	_, _, err = svc.RotateToken(refresh)
	require.NoError(t, err)
}
