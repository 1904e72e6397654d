package router

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/cakeshop-checkout/internal/config"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
	"github.com/polkiloo/cakeshop-checkout/internal/server/http/handlers"
	"github.com/polkiloo/cakeshop-checkout/internal/server/http/middleware"
	testhelpers "github.com/polkiloo/cakeshop-checkout/internal/test"
	"github.com/polkiloo/cakeshop-checkout/internal/test/httpstub"
)

func newEngine(cfg *config.Config) *gin.Engine {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	facade := httpstub.StorefrontFacadeStub{
		StationMap: map[string][]string{"Nairobi": {"Westlands"}},
		OrderFn: func(_ context.Context, id int64) (*model.Order, error) {
			return &model.Order{ID: id, Status: model.OrderStatusPaid}, nil
		},
	}
	return Setup(facade, testhelpers.KeyVerifierStub{Key: "admin-secret"}, cfg, logger)
}

func serve(engine *gin.Engine, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	return resp
}

func TestSetupRoutes(t *testing.T) {
	engine := newEngine(&config.Config{})

	cases := []struct {
		method string
		target string
		body   []byte
		status int
	}{
		{http.MethodGet, "/health", nil, http.StatusOK},
		{http.MethodGet, "/api/checkout/county-stations?county=Nairobi", nil, http.StatusOK},
		{http.MethodGet, "/api/orders/5/payment-status", nil, http.StatusOK},
		{http.MethodPost, "/api/orders/5/cancel", nil, http.StatusOK},
		{http.MethodPost, "/mpesa/callback", []byte(`{"Body":{}}`), http.StatusOK},
		{http.MethodGet, "/api/unknown", nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		resp := serve(engine, tc.method, tc.target, tc.body, nil)
		if resp.Code != tc.status {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.target, tc.status, resp.Code)
		}
		if resp.Header().Get(middleware.RequestIDHeader) == "" {
			t.Fatalf("%s %s: expected request id header", tc.method, tc.target)
		}
	}
}

func TestAdminRoutesRequireKey(t *testing.T) {
	engine := newEngine(&config.Config{})

	if resp := serve(engine, http.MethodGet, "/api/admin/orders/1", nil, nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", resp.Code)
	}
	if resp := serve(engine, http.MethodGet, "/api/admin/orders/1", nil, map[string]string{"Authorization": "Bearer wrong"}); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong key, got %d", resp.Code)
	}
	if resp := serve(engine, http.MethodGet, "/api/admin/orders/1", nil, map[string]string{"Authorization": "Bearer admin-secret"}); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with admin key, got %d", resp.Code)
	}
	if resp := serve(engine, http.MethodPost, "/api/admin/orders/1/fulfill", nil, map[string]string{"Authorization": "Bearer admin-secret"}); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for fulfil, got %d", resp.Code)
	}
}

func TestCallbackBodyIsLimited(t *testing.T) {
	engine := newEngine(&config.Config{})

	oversized := bytes.Repeat([]byte("a"), callbackBodyLimit+1)
	resp := serve(engine, http.MethodPost, "/mpesa/callback", oversized, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected gateway to be acknowledged, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("Invalid JSON")) {
		t.Fatalf("expected invalid json ack, got %s", resp.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	engine := newEngine(&config.Config{CORSAllowedOrigins: []string{"https://shop.example.com"}})

	resp := serve(engine, http.MethodOptions, "/api/checkout", nil, map[string]string{
		"Origin":                        "https://shop.example.com",
		"Access-Control-Request-Method": http.MethodPost,
	})
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Fatalf("unexpected allow origin %q", got)
	}

	resp = serve(engine, http.MethodGet, "/health", nil, map[string]string{"Origin": "https://evil.example.com"})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign origin, got %d", resp.Code)
	}
}

func TestCORSWildcard(t *testing.T) {
	cfg := corsConfig([]string{"https://a.example.com", "*"})
	if !cfg.AllowAllOrigins || len(cfg.AllowOrigins) != 0 || cfg.AllowCredentials {
		t.Fatalf("unexpected wildcard config %+v", cfg)
	}
}

var _ handlers.StorefrontFacade = httpstub.StorefrontFacadeStub{}
