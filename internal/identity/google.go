// Package identity verifies Google Identity Services credentials.
package identity

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/soma-studio/soma-approve-api/internal/models"
	"github.com/soma-studio/soma-approve-api/pkg/config"
)

// GoogleVerifier validates ID tokens issued to the configured OAuth client.
// A credential is checked exactly once per login attempt; expired or
// malformed tokens fail fast and send the user back to the sign-in screen.
type GoogleVerifier struct {
	clientID string
	timeout  time.Duration
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// NewGoogleVerifier constructs the verifier.
func NewGoogleVerifier(cfg config.GoogleConfig) *GoogleVerifier {
	timeout := cfg.VerifyTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GoogleVerifier{
		clientID: cfg.ClientID,
		timeout:  timeout,
		validate: idtoken.Validate,
	}
}

// Verify checks the credential's signature, audience, and expiry, returning
// the attested identity.
func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (*models.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	payload, err := v.validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("validate google credential: %w", err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("google credential carries no email claim")
	}
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	return &models.Identity{
		SubjectID: payload.Subject,
		Email:     email,
		Name:      name,
		AvatarURL: picture,
	}, nil
}
