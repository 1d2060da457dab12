package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicef/etools-sub003/internal/infrastructure/config"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Expiration: 15 * time.Minute,
		Issuer:     "etools-test",
	})
}

func newTestInput() TokenInput {
	partnerID := uuid.New()
	return TokenInput{
		TenantID:        uuid.New(),
		UserID:          uuid.New(),
		Email:           "jsmith@unicef.org",
		Groups:          []string{"PME", "LMSM CO Admin"},
		OrganizationIDs: []uuid.UUID{uuid.New(), uuid.New()},
		PartnerID:       &partnerID,
	}
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	token, err := svc.Generate(input)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, input.TenantID.String(), claims.TenantID)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, input.Email, claims.Email)
	assert.Equal(t, input.Groups, claims.Groups)
	assert.Equal(t, "etools-test", claims.Issuer)

	t.Run("uuid accessors round-trip", func(t *testing.T) {
		tenantID, err := claims.GetTenantUUID()
		require.NoError(t, err)
		assert.Equal(t, input.TenantID, tenantID)

		userID, err := claims.GetUserUUID()
		require.NoError(t, err)
		assert.Equal(t, input.UserID, userID)

		orgIDs, err := claims.GetOrganizationUUIDs()
		require.NoError(t, err)
		assert.Equal(t, input.OrganizationIDs, orgIDs)

		partnerID, err := claims.GetPartnerUUID()
		require.NoError(t, err)
		require.NotNil(t, partnerID)
		assert.Equal(t, *input.PartnerID, *partnerID)
	})
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := newTestJWTService().Generate(newTestInput())
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:     "a-completely-different-secret-key",
		Expiration: 15 * time.Minute,
		Issuer:     "etools-test",
	})
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Expired(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars",
		Expiration: -time.Minute,
		Issuer:     "etools-test",
	})
	token, err := svc.Generate(newTestInput())
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidate_Garbage(t *testing.T) {
	_, err := newTestJWTService().Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetPartnerUUID_Empty(t *testing.T) {
	claims := &Claims{}
	id, err := claims.GetPartnerUUID()
	require.NoError(t, err)
	assert.Nil(t, id)
}
