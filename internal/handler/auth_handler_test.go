package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soma-studio/soma-approve-api/internal/middleware"
	"github.com/soma-studio/soma-approve-api/internal/models"
	appErrors "github.com/soma-studio/soma-approve-api/pkg/errors"
)

type authServiceMock struct {
	session   *models.Session
	token     string
	loginErr  error
	loggedOut []string
}

func (m *authServiceMock) LoginWithGoogle(ctx context.Context, req models.GoogleLoginRequest) (*models.Session, string, error) {
	if m.loginErr != nil {
		return nil, "", m.loginErr
	}
	return m.session, m.token, nil
}

func (m *authServiceMock) Session(ctx context.Context, subjectID string) *models.Session {
	if m.session != nil && m.session.SubjectID == subjectID {
		return m.session
	}
	return nil
}

func (m *authServiceMock) Logout(ctx context.Context, subjectID string) {
	m.loggedOut = append(m.loggedOut, subjectID)
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestGoogleLoginSuccessShape(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &authServiceMock{
		session: &models.Session{SubjectID: "sub-1", Email: "ana@acme.com", Name: "Ana", Role: models.RoleClient},
		token:   "signed-token",
	}
	handler := NewAuthHandler(mockSvc)

	payload, _ := json.Marshal(models.GoogleLoginRequest{Credential: "google-jwt"})
	c, w := newGinContext(http.MethodPost, "/auth/google", payload)

	handler.GoogleLogin(c)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.GoogleAuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "signed-token", resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "sub-1", resp.User.ID)
	assert.Equal(t, models.RoleClient, resp.User.Role)
}

func TestGoogleLoginMissingCredential(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&authServiceMock{})

	c, w := newGinContext(http.MethodPost, "/auth/google", []byte(`{}`))
	handler.GoogleLogin(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.GoogleAuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "credential is required", resp.Message)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Contains(t, raw, "message")
}

func TestGoogleLoginVerificationFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &authServiceMock{
		loginErr: appErrors.Wrap(errors.New("expired"), appErrors.ErrInvalidCredential.Code, appErrors.ErrInvalidCredential.Status, appErrors.ErrInvalidCredential.Message),
	}
	handler := NewAuthHandler(mockSvc)

	payload, _ := json.Marshal(models.GoogleLoginRequest{Credential: "stale"})
	c, w := newGinContext(http.MethodPost, "/auth/google", payload)

	handler.GoogleLogin(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var resp models.GoogleAuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, appErrors.ErrInvalidCredential.Message, resp.Message)
	assert.Equal(t, appErrors.ErrInvalidCredential.Code, resp.Error)
}

func TestLogoutClearsSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &authServiceMock{}
	handler := NewAuthHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/auth/logout", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "sub-1"})

	handler.Logout(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"sub-1"}, mockSvc.loggedOut)
}

func TestMeRequiresLiveSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &authServiceMock{}
	handler := NewAuthHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/auth/me", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "sub-1"})

	handler.Me(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
