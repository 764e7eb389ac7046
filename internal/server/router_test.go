package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"realestate-service/internal/auth"
	"realestate-service/internal/metrics"
	"realestate-service/internal/middleware"
	"realestate-service/internal/repository/memory"
)

func init() { gin.SetMode(gin.TestMode) }

type client struct {
	t *testing.T
	r *gin.Engine
}

func newClient(t *testing.T, limiter middleware.Limiter) *client {
	t.Helper()
	r := NewRouter(Deps{
		Store:       memory.New(),
		Tokens:      auth.NewTokenManager("test-secret", time.Hour),
		Metrics:     metrics.New(),
		Limiter:     limiter,
		CORSOrigins: []string{"http://localhost:5173"},
		Logger:      zap.NewNop(),
	})
	return &client{t: t, r: r}
}

func (c *client) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (c *client) list(path, token string) []map[string]any {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	var out []map[string]any
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (c *client) register(name, role string) (id, token string) {
	c.t.Helper()
	w, body := c.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": name, "username": name, "email": name + "@example.com",
		"password": "secret1", "phoneNumber": "+1 555 123 4567", "role": role,
	})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())
	return body["_id"].(string), body["token"].(string)
}

func house(title string) map[string]any {
	return map[string]any{
		"title": title, "propertyType": "house", "price": 350000,
		"address": "12 Elm St", "imageUrl": "http://img/h.jpg",
		"beds": "3", "baths": 2, "sqft": "1800",
	}
}

func TestMarketplaceFlow(t *testing.T) {
	c := newClient(t, nil)

	buyerID, buyerTok := c.register("alice", "buyer")
	sellerID, sellerTok := c.register("samseller", "seller")
	_, adminTok := c.register("root", "admin")

	w, body := c.do(http.MethodPost, "/api/auth/signin", "", map[string]any{
		"email": "alice@example.com", "password": "secret1", "role": "buyer",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, buyerID, body["_id"])

	w, listing := c.do(http.MethodPost, "/api/seller/properties", sellerTok, house("Cottage"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "pending", listing["status"])
	assert.Equal(t, float64(3), listing["beds"])
	listingID := listing["_id"].(string)

	w, _ = c.do(http.MethodPost, "/api/seller/properties", sellerTok, house("Shack"))
	require.Equal(t, http.StatusCreated, w.Code)

	// pending listings stay hidden
	assert.Empty(t, c.list("/api/properties", ""))
	w, _ = c.do(http.MethodGet, "/api/properties/"+listingID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, approved := c.do(http.MethodPut, "/api/admin/properties/"+listingID+"/approve", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "approved", approved["status"])

	public := c.list("/api/properties", "")
	require.Len(t, public, 1)
	assert.Equal(t, listingID, public[0]["_id"])
	assert.NotContains(t, public[0], "interested")
	creator := public[0]["creator"].(map[string]any)
	assert.Equal(t, sellerID, creator["_id"])

	buyerList := c.list("/api/buyer/properties", buyerTok)
	require.Len(t, buyerList, 1)

	w, body = c.do(http.MethodPost, "/api/buyer/properties/"+listingID+"/interested", buyerTok, map[string]any{"action": "mark"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Property marked as interested successfully", body["message"])

	w, detail := c.do(http.MethodGet, "/api/buyer/properties/"+listingID, buyerTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, detail["isInterested"])
	assert.Equal(t, buyerID, detail["buyer"].(map[string]any)["_id"])

	w, appt := c.do(http.MethodPost, "/api/buyer/appointments", buyerTok, map[string]any{
		"propertyId": listingID, "sellerId": sellerID,
		"date": "2030-05-01T10:00:00Z", "placeToVisit": "Front door",
		"message": "Is the garden fenced?",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	apptID := appt["_id"].(string)
	assert.Equal(t, "pending", appt["status"])
	assert.Equal(t, "Cottage", appt["property"].(map[string]any)["title"])

	sellerAppts := c.list("/api/seller/appointments", sellerTok)
	require.Len(t, sellerAppts, 1)

	w, updated := c.do(http.MethodPut, "/api/seller/appointments/"+apptID, sellerTok, map[string]any{"status": "accepted"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "accepted", updated["status"])

	// decided appointments cannot be cancelled
	w, body = c.do(http.MethodDelete, "/api/buyer/appointments/"+apptID, buyerTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Appointment not found or cannot be cancelled", body["message"])

	w, stats := c.do(http.MethodGet, "/api/seller/dashboard-stats", sellerTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), stats["totalProperties"])
	assert.Equal(t, float64(1), stats["approvedProperties"])
	assert.Equal(t, float64(1), stats["totalAppointments"])

	w, dash := c.do(http.MethodGet, "/api/admin/dashboard", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), dash["totalProperties"])
	assert.Equal(t, float64(2), dash["totalUsers"])

	w, body = c.do(http.MethodDelete, "/api/admin/sellers/"+sellerID, adminTok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["message"], "Cannot delete seller")

	w, body = c.do(http.MethodDelete, "/api/seller/properties/"+listingID, sellerTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Property deleted successfully", body["message"])
	assert.Equal(t, listingID, body["deletedProperty"].(map[string]any)["_id"])
}

func TestRoleGuards(t *testing.T) {
	c := newClient(t, nil)
	_, buyerTok := c.register("bob", "buyer")

	w, body := c.do(http.MethodGet, "/api/seller/properties", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No authentication token, access denied", body["message"])

	w, body = c.do(http.MethodGet, "/api/admin/dashboard", buyerTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied. Admin only.", body["message"])

	w, body = c.do(http.MethodGet, "/api/buyer/profile", buyerTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bob", body["username"])
	assert.NotContains(t, body, "password")
}

func TestAdminManagesBuyers(t *testing.T) {
	c := newClient(t, nil)
	_, adminTok := c.register("root", "admin")

	payload := map[string]any{
		"name": "Carol", "username": "carol", "email": "carol@example.com",
		"password": "secret1", "phoneNumber": "5551234567",
	}
	w, created := c.do(http.MethodPost, "/api/admin/buyers/add", adminTok, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := created["_id"].(string)

	w, body := c.do(http.MethodPost, "/api/admin/buyers/add", adminTok, payload)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Buyer with this email already exists", body["message"])

	w, page := c.do(http.MethodGet, "/api/admin/buyers/all?search=car&page=1&limit=5", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), page["totalItems"])
	assert.Len(t, page["data"], 1)

	w, body = c.do(http.MethodDelete, "/api/admin/buyers/delete/"+id, adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Buyer deleted successfully", body["message"])

	w, _ = c.do(http.MethodGet, "/api/admin/buyers/"+id, adminTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPhotoUploadAndDownload(t *testing.T) {
	c := newClient(t, nil)
	_, sellerTok := c.register("pat", "seller")
	_, adminTok := c.register("root", "admin")

	w, listing := c.do(http.MethodPost, "/api/seller/properties", sellerTok, house("Loft"))
	require.Equal(t, http.StatusCreated, w.Code)
	id := listing["_id"].(string)
	w, _ = c.do(http.MethodPut, "/api/admin/properties/"+id+"/approve", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	png := []byte("\x89PNG\r\n\x1a\n0000")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "front.png")
	require.NoError(t, err)
	_, _ = fw.Write(png)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/seller/properties/"+id+"/photo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+sellerTok)
	rec := httptest.NewRecorder()
	c.r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "/api/properties/"+id+"/photo", updated["imageUrl"])
	assert.Equal(t, "pending", updated["status"])

	rec = httptest.NewRecorder()
	c.r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/properties/"+id+"/photo", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, png, rec.Body.Bytes())
}

func TestAuthRateLimit(t *testing.T) {
	c := newClient(t, middleware.NewLocalLimiter(0.001, 2))
	creds := map[string]any{"email": "x@example.com", "password": "secret1", "role": "buyer"}

	for i := 0; i < 2; i++ {
		w, _ := c.do(http.MethodPost, "/api/auth/signin", "", creds)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w, body := c.do(http.MethodPost, "/api/auth/signin", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too many requests", body["message"])

	// other routes are not limited
	w, _ = c.do(http.MethodGet, "/api/properties", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOpsEndpoints(t *testing.T) {
	c := newClient(t, nil)

	w, body := c.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])

	c.do(http.MethodGet, "/api/properties", "", nil)
	rec := httptest.NewRecorder()
	c.r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `realestate_http_requests_total{method="GET",route="/api/properties",status="200"} 1`)
}
