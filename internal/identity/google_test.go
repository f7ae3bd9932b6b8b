package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"

	"github.com/soma-studio/soma-approve-api/pkg/config"
)

func TestVerifyMapsClaims(t *testing.T) {
	verifier := NewGoogleVerifier(config.GoogleConfig{ClientID: "client-id-1"})
	verifier.validate = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		assert.Equal(t, "cred-1", token)
		assert.Equal(t, "client-id-1", audience)
		return &idtoken.Payload{
			Subject: "sub-1",
			Claims: map[string]interface{}{
				"email":   "ana@acme.com",
				"name":    "Ana",
				"picture": "https://lh3.example/a.png",
			},
		}, nil
	}

	identity, err := verifier.Verify(context.Background(), "cred-1")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", identity.SubjectID)
	assert.Equal(t, "ana@acme.com", identity.Email)
	assert.Equal(t, "Ana", identity.Name)
	assert.Equal(t, "https://lh3.example/a.png", identity.AvatarURL)
}

func TestVerifyRejectsMissingEmail(t *testing.T) {
	verifier := NewGoogleVerifier(config.GoogleConfig{ClientID: "client-id-1"})
	verifier.validate = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		return &idtoken.Payload{Subject: "sub-1", Claims: map[string]interface{}{}}, nil
	}

	_, err := verifier.Verify(context.Background(), "cred-1")
	require.Error(t, err)
}

func TestVerifyPropagatesFailure(t *testing.T) {
	verifier := NewGoogleVerifier(config.GoogleConfig{ClientID: "client-id-1", VerifyTimeout: time.Second})
	calls := 0
	verifier.validate = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		calls++
		return nil, errors.New("token expired")
	}

	_, err := verifier.Verify(context.Background(), "stale")
	require.Error(t, err)
	assert.Equal(t, 1, calls, "a failed credential is not retried")
}
