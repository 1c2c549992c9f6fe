package service

import (
	"testing"
	"time"

	"kidquiz/config"
	"kidquiz/internal/auth"
	"kidquiz/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) (*AuthService, *config.Config) {
	cfg := &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:   "test-access",
			RefreshSecret:  "test-refresh",
			AccessExpiry:   time.Hour,
			RefreshExpiry:  24 * time.Hour,
			KidTokenExpiry: 12 * time.Hour,
			Issuer:         "kidquiz-test",
		},
	}
	return NewAuthService(cfg, repository.NewGuardianRepository(db)), cfg
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc, cfg := newAuthService(db)

	g, access, refresh, err := svc.Register("parent@example.com", "Pat", "s3cret-pw")
	require.NoError(t, err)
	assert.NotZero(t, g.ID)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, "s3cret-pw", g.PasswordHash)

	claims, err := auth.ParseAccessToken(&cfg.JWT, access)
	require.NoError(t, err)
	assert.Equal(t, g.ID, claims.AccountID)

	got, _, _, err := svc.Login("parent@example.com", "s3cret-pw")
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)

	_, _, _, err = svc.Login("parent@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCreds)
	_, _, _, err = svc.Login("nobody@example.com", "s3cret-pw")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthService(db)

	_, _, _, err := svc.Register("parent@example.com", "Pat", "pw-one")
	require.NoError(t, err)
	_, _, _, err = svc.Register("parent@example.com", "Other", "pw-two")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRefreshRotatesTokens(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthService(db)

	g, _, refresh, err := svc.Register("parent@example.com", "Pat", "pw")
	require.NoError(t, err)

	got, access, _, err := svc.Refresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)
	assert.NotEmpty(t, access)

	_, _, _, err = svc.Refresh("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
