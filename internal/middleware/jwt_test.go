package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"realestate-service/internal/auth"
	"realestate-service/internal/model"
	"realestate-service/internal/repository/memory"
)

func init() { gin.SetMode(gin.TestMode) }

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequireRole(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	st := memory.New()

	seller := &model.Identity{Name: "Sam", Username: "sam", Email: "sam@x.com", PhoneNumber: "+1 234 567 8901", Role: model.RoleSeller}
	require.NoError(t, st.Identities.Create(context.Background(), model.RoleSeller, seller))
	sellerToken, err := tokens.Issue(seller)
	require.NoError(t, err)

	buyerToken, err := tokens.Issue(&model.Identity{ID: "b1", Role: model.RoleBuyer})
	require.NoError(t, err)
	ghostToken, err := tokens.Issue(&model.Identity{ID: "ghost", Role: model.RoleSeller})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/seller", RequireRole(tokens, model.RoleSeller, st.Identities, zap.NewNop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentIdentity(c).ID, "claims": CurrentClaims(c).ID})
	})

	tests := []struct {
		name   string
		header string
		status int
		msg    string
	}{
		{"no header", "", http.StatusUnauthorized, "No authentication token, access denied"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "No authentication token, access denied"},
		{"garbage", "Bearer nope", http.StatusUnauthorized, "Invalid token"},
		{"wrong role", "Bearer " + buyerToken, http.StatusForbidden, "Access denied. Seller only."},
		{"deleted identity", "Bearer " + ghostToken, http.StatusUnauthorized, "Seller not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/seller", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, decode(t, w)["message"])
		})
	}

	t.Run("ok", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/seller", nil)
		req.Header.Set("Authorization", "Bearer "+sellerToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, seller.ID, body["id"])
		assert.Equal(t, seller.ID, body["claims"])
	})
}

func TestRequireRoleWithoutLookup(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	tok, err := tokens.Issue(&model.Identity{ID: "a1", Role: model.RoleAdmin})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/admin", RequireRole(tokens, model.RoleAdmin, nil, zap.NewNop()), func(c *gin.Context) {
		assert.Nil(t, CurrentIdentity(c))
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
