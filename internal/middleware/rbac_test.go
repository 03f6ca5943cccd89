package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/talentia-hr/vacaciones-api/internal/models"
)

func performWithClaims(claims *models.JWTClaims, guard gin.HandlerFunc, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	_, router := gin.CreateTestContext(recorder)
	router.GET("/resource/:id", func(c *gin.Context) {
		if claims != nil {
			c.Set(claimsContextKey, claims)
		}
		c.Next()
	}, guard, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleRRHH}
	rec := performWithClaims(claims, RequireRoles(models.RoleRRHH), "/resource/x")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRolesRejectsOtherRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleEmpleado}
	rec := performWithClaims(claims, RequireRoles(models.RoleRRHH, models.RoleJefeSuperior), "/resource/x")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesRejectsMissingClaims(t *testing.T) {
	rec := performWithClaims(nil, RequireRoles(models.RoleRRHH), "/resource/x")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSelfOrRolesAllowsSelf(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleEmpleado}
	rec := performWithClaims(claims, RequireSelfOrRoles("id", models.RoleRRHH), "/resource/u1")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSelfOrRolesRejectsOtherEmployee(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleEmpleado}
	rec := performWithClaims(claims, RequireSelfOrRoles("id", models.RoleRRHH), "/resource/u2")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireSelfOrRolesAllowsPrivilegedRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "hr", Role: models.RoleRRHH}
	rec := performWithClaims(claims, RequireSelfOrRoles("id", models.RoleRRHH), "/resource/u2")
	assert.Equal(t, http.StatusOK, rec.Code)
}
