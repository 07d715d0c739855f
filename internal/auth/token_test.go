package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 15)
	actor := domain.Actor{Type: domain.SubjectTypeStaff, ID: "agent-7"}

	token, expiresAt, err := tm.GenerateToken(actor)
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "agent-7", claims.ActorID)
	assert.Equal(t, domain.SubjectTypeStaff, claims.ActorType)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 15)
	verifier := NewTokenManager("secret-b", 15)

	token, _, err := issuer.GenerateToken(domain.SystemActor())
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}
