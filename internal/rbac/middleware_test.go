package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/cartodesk/internal/auth"
	"github.com/stretchr/testify/assert"
)

func serve(id *auth.Identity, allowed ...string) int {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		if id != nil {
			c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), *id))
		}
		c.Next()
	}, RequireAnyRole(allowed...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w.Code
}

func TestRequireAnyRole(t *testing.T) {
	admin := &auth.Identity{UserID: "u", Role: RoleAdmin}
	practitioner := &auth.Identity{UserID: "u", Role: RolePractitioner, PractitionerID: "1"}

	assert.Equal(t, http.StatusOK, serve(admin, RolePractitioner))
	assert.Equal(t, http.StatusOK, serve(admin))
	assert.Equal(t, http.StatusOK, serve(practitioner, RolePractitioner))
	assert.Equal(t, http.StatusForbidden, serve(practitioner, RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, serve(nil, RoleAdmin))
}
