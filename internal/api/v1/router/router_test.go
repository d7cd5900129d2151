package router

import (
	"net/http/httptest"
	"testing"

	"skillpath/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestAppendParam(t *testing.T) {
	assert.Equal(t, "postgres://u@h/db?sslmode=disable", appendParam("postgres://u@h/db", "sslmode=disable"))
	assert.Equal(t, "postgresql://u@h/db?a=1&sslmode=disable", appendParam("postgresql://u@h/db?a=1", "sslmode=disable"))
	assert.Equal(t, "host=h dbname=db sslmode=disable", appendParam("host=h dbname=db", "sslmode=disable"))
}

func TestAllowedOrigins(t *testing.T) {
	prod := &config.Config{Environment: "production", FrontendURL: "https://skillpath.dev"}
	assert.Equal(t, []string{"https://skillpath.dev"}, allowedOrigins(prod))

	dev := &config.Config{Environment: "development", FrontendURL: "http://localhost:3000"}
	assert.Contains(t, allowedOrigins(dev), "http://localhost:5173")
}

func TestWithQueryKeepsRawQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/content/smart-feed/default?page=2", nil)
	assert.Equal(t, "/v1/content/smart-feed/default?page=2", withQuery("/v1/content/smart-feed/default", r))

	r = httptest.NewRequest("GET", "/api/usage", nil)
	assert.Equal(t, "/v1/usage", withQuery("/v1/usage", r))
}
