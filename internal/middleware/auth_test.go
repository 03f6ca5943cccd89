package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/talentia-hr/vacaciones-api/internal/models"
)

type stubValidator struct {
	claims *models.JWTClaims
	err    error
}

func (s *stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	return s.claims, s.err
}

type stubUserLoader struct {
	user *models.User
	err  error
}

func (s *stubUserLoader) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.user, s.err
}

func performAuth(t *testing.T, header string, tokens tokenValidator, users userLoader) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	_, router := gin.CreateTestContext(recorder)
	router.GET("/protected", Authenticate(tokens, users, zap.NewNop()), func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID, "rol": claims.Role})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestAuthenticateMissingHeader(t *testing.T) {
	rec := performAuth(t, "", &stubValidator{}, &stubUserLoader{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	rec := performAuth(t, "Token abc", &stubValidator{}, &stubUserLoader{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateInactiveUserIsCutOff(t *testing.T) {
	tokens := &stubValidator{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleEmpleado}}
	users := &stubUserLoader{user: &models.User{ID: "u1", Active: false}}

	rec := performAuth(t, "Bearer token", tokens, users)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthenticateDeletedUserIsUnauthorized(t *testing.T) {
	tokens := &stubValidator{claims: &models.JWTClaims{UserID: "u1"}}
	users := &stubUserLoader{err: sql.ErrNoRows}

	rec := performAuth(t, "Bearer token", tokens, users)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRefreshesRoleFromDatabase(t *testing.T) {
	tokens := &stubValidator{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleEmpleado}}
	users := &stubUserLoader{user: &models.User{ID: "u1", Active: true, Role: models.RoleRRHH}}

	rec := performAuth(t, "Bearer token", tokens, users)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rol":"rrhh"`)
}
