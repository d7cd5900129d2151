package handler

import (
	"errors"
	"net/http"

	"skillpath/internal/ai"
)

// aiFailure maps a failed model call to a status and machine-readable code.
func aiFailure(err error) (int, string) {
	switch {
	case errors.Is(err, ai.ErrUpstreamFormat):
		return http.StatusInternalServerError, "AI_FORMAT_ERROR"
	case errors.Is(err, ai.ErrNotConfigured):
		return http.StatusServiceUnavailable, "AI_CONFIG_ERROR"
	default:
		return http.StatusInternalServerError, "AI_GENERATION_ERROR"
	}
}
