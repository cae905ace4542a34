package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-schedule-api/internal/models"
	appErrors "github.com/noah-isme/gym-schedule-api/pkg/errors"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "gym-schedule-api", Expiry: time.Minute})

	token, err := svc.IssueToken("trainer-1", models.RoleTrainer, "Tess Trainer")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "trainer-1", claims.UserID)
	assert.Equal(t, models.RoleTrainer, claims.Role)
	assert.Equal(t, "gym-schedule-api", claims.Issuer)
}

func TestTokenServiceRejectsForeignTokens(t *testing.T) {
	issuer := NewTokenService(TokenConfig{Secret: "other", Issuer: "gym-schedule-api"})
	validator := NewTokenService(TokenConfig{Secret: "secret", Issuer: "gym-schedule-api"})

	token, err := issuer.IssueToken("member-1", models.RoleMember, "Mo")
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)

	expired := NewTokenService(TokenConfig{Secret: "secret", Issuer: "gym-schedule-api", Expiry: time.Minute})
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.IssueToken("member-1", models.RoleMember, "Mo")
	require.NoError(t, err)
	_, err = validator.ValidateToken(stale)
	assert.Error(t, err)

	_, err = validator.ValidateToken("not-a-token")
	assert.Error(t, err)
}
