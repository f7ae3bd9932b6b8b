package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/soma-studio/soma-approve-api/internal/models"
	"github.com/soma-studio/soma-approve-api/pkg/config"
	appErrors "github.com/soma-studio/soma-approve-api/pkg/errors"
)

// IdentityVerifier validates an opaque Google Identity Services credential and
// returns the identity it attests. Verification failures are terminal for the
// login attempt; there is no retry.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (*models.Identity, error)
}

type sessionStore interface {
	Save(ctx context.Context, session *models.Session, ttl time.Duration) error
	Load(ctx context.Context, subjectID string) *models.Session
	Clear(ctx context.Context, subjectID string)
}

// AuthService exchanges verified identities for application sessions.
type AuthService struct {
	verifier    IdentityVerifier
	sessions    sessionStore
	validator   *validator.Validate
	logger      *zap.Logger
	jwtConfig   config.JWTConfig
	sessionTTL  time.Duration
	adminEmails map[string]struct{}
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(verifier IdentityVerifier, sessions sessionStore, validate *validator.Validate, logger *zap.Logger, jwtCfg config.JWTConfig, authCfg config.AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	admins := make(map[string]struct{}, len(authCfg.AdminEmails))
	for _, email := range authCfg.AdminEmails {
		email = strings.TrimSpace(email)
		if email != "" {
			admins[email] = struct{}{}
		}
	}
	ttl := authCfg.SessionTTL
	if ttl <= 0 {
		ttl = jwtCfg.Expiration
	}
	return &AuthService{
		verifier:    verifier,
		sessions:    sessions,
		validator:   validate,
		logger:      logger,
		jwtConfig:   jwtCfg,
		sessionTTL:  ttl,
		adminEmails: admins,
	}
}

// RoleFor derives the application role for an email address. Membership in
// the admin allow-list is the only path to admin; everyone else is a client.
// The address must match a configured entry exactly, case included.
func (s *AuthService) RoleFor(email string) models.Role {
	if _, ok := s.adminEmails[email]; ok {
		return models.RoleAdmin
	}
	return models.RoleClient
}

// IssueSession binds a verified identity to a session valid from now. It is
// deterministic: the same identity and instant always produce the same session.
func (s *AuthService) IssueSession(identity *models.Identity, credential string, now time.Time) *models.Session {
	now = now.UTC()
	return &models.Session{
		SubjectID:  identity.SubjectID,
		Email:      identity.Email,
		Name:       identity.Name,
		Role:       s.RoleFor(identity.Email),
		AvatarURL:  identity.AvatarURL,
		Credential: credential,
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.sessionTTL),
	}
}

// LoginWithGoogle verifies the submitted credential, derives the role, stores
// the session, and returns it with a signed bearer token.
func (s *AuthService) LoginWithGoogle(ctx context.Context, req models.GoogleLoginRequest) (*models.Session, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "credential is required")
	}

	identity, err := s.verifier.Verify(ctx, req.Credential)
	if err != nil {
		s.logger.Info("credential verification failed", zap.Error(err))
		return nil, "", appErrors.Wrap(err, appErrors.ErrInvalidCredential.Code, appErrors.ErrInvalidCredential.Status, appErrors.ErrInvalidCredential.Message)
	}

	session := s.IssueSession(identity, req.Credential, time.Now())
	if err := s.sessions.Save(ctx, session, s.sessionTTL); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session")
	}

	token, err := s.generateToken(session)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session token")
	}

	s.logger.Info("session issued",
		zap.String("subject_id", session.SubjectID),
		zap.String("role", string(session.Role)),
	)
	return session, token, nil
}

// Session returns the live session for a subject, or nil when logged out.
func (s *AuthService) Session(ctx context.Context, subjectID string) *models.Session {
	session := s.sessions.Load(ctx, subjectID)
	if session == nil {
		return nil
	}
	if !session.ExpiresAt.IsZero() && session.ExpiresAt.Before(time.Now()) {
		s.sessions.Clear(ctx, subjectID)
		return nil
	}
	return session
}

// Logout drops the subject's session. Logging out twice is indistinguishable
// from logging out once.
func (s *AuthService) Logout(ctx context.Context, subjectID string) {
	s.sessions.Clear(ctx, subjectID)
}

// ValidateToken parses and validates a session token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateToken(session *models.Session) (string, error) {
	claims := &models.JWTClaims{
		UserID: session.SubjectID,
		Email:  session.Email,
		Role:   session.Role,
		Name:   session.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.SubjectID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			NotBefore: jwt.NewNumericDate(session.IssuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.Secret))
}
