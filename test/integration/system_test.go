//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestHealth(t *testing.T) {
	resp := env.GET(t, "/health")
	requireStatus(t, resp, http.StatusOK)
	result := decodeJSON[struct {
		Status string `json:"status"`
	}](t, resp)
	requireField(t, result.Status, "ok", "status")
}

func TestDeepHealth(t *testing.T) {
	resp := env.GET(t, "/api/health/deep")
	requireStatus(t, resp, http.StatusOK)

	result := decodeJSON[struct {
		Quotes int `json:"quotes"`
	}](t, resp)
	if result.Quotes == 0 {
		t.Fatal("expected the market book to hold quotes")
	}
}

func TestOpenAPI(t *testing.T) {
	resp := env.GET(t, "/openapi.json")
	requireStatus(t, resp, http.StatusOK)
	doc := decodeJSON[map[string]any](t, resp)
	if _, ok := doc["paths"]; !ok {
		t.Fatal("openapi document has no paths")
	}
}
