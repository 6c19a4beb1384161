package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/config"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/rules"
)

func testServer() *Server {
	cfg, _ := config.Load()
	cfg.APIKey = "secret"
	log := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	return NewServer(rules.Default(), nil, log, cfg)
}

func TestHealthIsPublic(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestParseRequiresAuth(t *testing.T) {
	s := testServer()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(`{"content":"milk"}`))
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(`{"content":"milk"}`))
	req.Header.Set("Authorization", "Bearer wrong")
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestParseEndpoint(t *testing.T) {
	s := testServer()

	body := `{"content":"Dairy:\nmilk x2\nsurprise us"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret")
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	var resp parseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("items=%+v", resp.Items)
	}
	if resp.Items[0].Name == nil || *resp.Items[0].Name != "Milk" || resp.Items[0].Qty != "2" {
		t.Fatalf("first item: %+v", resp.Items[0])
	}
	if resp.Items[0].Section == nil || *resp.Items[0].Section != "Dairy" {
		t.Fatalf("first item section: %+v", resp.Items[0])
	}
	if resp.Items[1].Directive == nil || *resp.Items[1].Directive != "surprise us" {
		t.Fatalf("second item: %+v", resp.Items[1])
	}
}

func TestParseRejectsEmptyContent(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(`{"content":"  "}`))
	req.Header.Set("Authorization", "Bearer secret")
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestResolveWithoutResolver(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/resolve", strings.NewReader(`{"content":"milk"}`))
	req.Header.Set("Authorization", "Bearer secret")
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rec.Code)
	}
}
