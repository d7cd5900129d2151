package handler

import (
	"errors"
	"fmt"
	"net/http"

	"skillpath/internal/api/v1/dto"
	"skillpath/internal/model"
	"skillpath/internal/quota"
	"skillpath/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type SuggestionHandler struct {
	suggestionService service.SuggestionService
	usageService      service.UsageService
	validate          *validator.Validate
	logger            zerolog.Logger
}

func NewSuggestionHandler(suggestionService service.SuggestionService, usageService service.UsageService, validate *validator.Validate, logger zerolog.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		suggestionService: suggestionService,
		usageService:      usageService,
		validate:          validate,
		logger:            logger,
	}
}

// RegisterRoutes mounts v1 suggestion routes
func (h *SuggestionHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("GET /suggestions/usage", authMw(http.HandlerFunc(h.usage)))
	mux.Handle("POST /suggestions/suggest", authMw(http.HandlerFunc(h.suggest)))
	mux.Handle("GET /suggestions/saved", authMw(http.HandlerFunc(h.saved)))
	mux.Handle("GET /suggestions/{id}", authMw(http.HandlerFunc(h.get)))
	mux.Handle("DELETE /suggestions/{id}", authMw(http.HandlerFunc(h.delete)))
}

// usage godoc
// @Summary Get AI suggestion usage
// @Tags suggestions
// @Produce json
// @Success 200 {object} quota.Status
// @Failure 401 {object} dto.ErrorDTO "Unauthorized"
// @Failure 404 {object} dto.ErrorDTO "User not found"
// @Failure 500 {object} dto.ErrorDTO "Server error"
// @Router /suggestions/usage [get]
func (h *SuggestionHandler) usage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		writeJSON(w, h.logger, http.StatusUnauthorized, dto.ErrorDTO{Error: "Unauthorized"})
		return
	}
	st, err := h.usageService.Status(r.Context(), userID, model.FeatureAISuggestions)
	if err != nil {
		if userGone(w, h.logger, err, dto.ErrorDTO{Error: "User not found"}) {
			return
		}
		writeJSON(w, h.logger, http.StatusInternalServerError, dto.ErrorDTO{Error: "Server error"})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, st)
}

// suggest godoc
// @Summary Get an AI learning suggestion
// @Description Returns sanitized HTML advice and saves it. Counts against the daily suggestion quota only on success.
// @Tags suggestions
// @Accept json
// @Produce json
// @Param answers body dto.SuggestDTO true "Questionnaire answers"
// @Success 200 {object} dto.SuggestResponseDTO
// @Failure 400 {object} dto.ErrorDTO "Invalid answers"
// @Failure 401 {object} dto.ErrorDTO "Unauthorized"
// @Failure 404 {object} dto.ErrorDTO "User not found"
// @Failure 429 {object} dto.ErrorDTO "Daily limit reached"
// @Failure 500 {object} dto.ErrorDTO "AI_GENERATION_ERROR"
// @Failure 503 {object} dto.ErrorDTO "AI_CONFIG_ERROR"
// @Router /suggestions/suggest [post]
func (h *SuggestionHandler) suggest(w http.ResponseWriter, r *http.Request) {
	// 1. Extract UserID from context
	userID, ok := currentUser(r)
	if !ok {
		writeJSON(w, h.logger, http.StatusUnauthorized, dto.ErrorDTO{Error: "Unauthorized"})
		return
	}

	// 2. Decode and validate the questionnaire
	var req dto.SuggestDTO
	if err := decode(w, r, h.validate, &req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, dto.ErrorDTO{Error: err.Error()})
		return
	}

	// 3. Generate and save the suggestion
	a := req.Answers
	saved, st, err := h.suggestionService.Suggest(r.Context(), userID, model.SuggestionAnswers{
		CareerGoals:      a.CareerGoals,
		Experience:       a.Experience,
		LearningStyle:    a.LearningStyle,
		TimeCommitment:   a.TimeCommitment,
		CurrentKnowledge: a.CurrentKnowledge,
		Preference:       a.Preference,
	})
	if err != nil {
		if userGone(w, h.logger, err, dto.ErrorDTO{Error: "User not found"}) {
			return
		}
		if errors.Is(err, service.ErrQuotaExceeded) {
			writeJSON(w, h.logger, http.StatusTooManyRequests, dto.LimitErrorDTO{
				Error: "Daily limit reached",
				Message: fmt.Sprintf("You have reached your daily limit of %d AI suggestions. Please try again tomorrow.",
					quota.Cap(model.FeatureAISuggestions)),
				UsageCount:     st.UsageCount,
				RemainingCount: 0,
			})
			return
		}
		status, code := aiFailure(err)
		h.logger.Error().Err(err).Str("code", code).Msg("Failed to generate suggestion")
		writeJSON(w, h.logger, status, dto.ErrorDTO{Error: "Failed to generate roadmap", Details: code})
		return
	}

	// 4. Return sanitized HTML with updated usage
	writeJSON(w, h.logger, http.StatusOK, dto.SuggestResponseDTO{
		Roadmap:   saved.Roadmap,
		ID:        saved.ID,
		UsageInfo: dto.UsageCountsDTO{UsageCount: st.UsageCount, RemainingCount: st.RemainingCount},
	})
}

// saved godoc
// @Summary List saved suggestions
// @Tags suggestions
// @Produce json
// @Success 200 {object} dto.SavedSuggestionsResponseDTO
// @Failure 401 {object} dto.ErrorDTO "Unauthorized"
// @Failure 404 {object} dto.ErrorDTO "User not found"
// @Failure 500 {object} dto.ErrorDTO "Server error"
// @Router /suggestions/saved [get]
func (h *SuggestionHandler) saved(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		writeJSON(w, h.logger, http.StatusUnauthorized, dto.ErrorDTO{Error: "Unauthorized"})
		return
	}
	list, err := h.suggestionService.List(r.Context(), userID)
	if err != nil {
		if userGone(w, h.logger, err, dto.ErrorDTO{Error: "User not found"}) {
			return
		}
		h.logger.Error().Err(err).Msg("Failed to list suggestions")
		writeJSON(w, h.logger, http.StatusInternalServerError, dto.ErrorDTO{Error: "Server error"})
		return
	}
	if list == nil {
		list = []model.SavedSuggestion{}
	}
	writeJSON(w, h.logger, http.StatusOK, dto.SavedSuggestionsResponseDTO{SavedSuggestions: list})
}

// get godoc
// @Summary Get a saved suggestion
// @Tags suggestions
// @Produce json
// @Param id path string true "Suggestion ID"
// @Success 200 {object} dto.SuggestionResponseDTO
// @Failure 401 {object} dto.ErrorDTO "Unauthorized"
// @Failure 404 {object} dto.ErrorDTO "Suggestion not found"
// @Failure 500 {object} dto.ErrorDTO "Server error"
// @Router /suggestions/{id} [get]
func (h *SuggestionHandler) get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		writeJSON(w, h.logger, http.StatusUnauthorized, dto.ErrorDTO{Error: "Unauthorized"})
		return
	}
	s, err := h.suggestionService.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		if userGone(w, h.logger, err, dto.ErrorDTO{Error: "User not found"}) {
			return
		}
		if errors.Is(err, service.ErrSuggestionNotFound) {
			writeJSON(w, h.logger, http.StatusNotFound, dto.ErrorDTO{Error: "Suggestion not found"})
			return
		}
		h.logger.Error().Err(err).Msg("Failed to get suggestion")
		writeJSON(w, h.logger, http.StatusInternalServerError, dto.ErrorDTO{Error: "Server error"})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.SuggestionResponseDTO{Success: true, Suggestion: s})
}

// delete godoc
// @Summary Delete a saved suggestion
// @Tags suggestions
// @Produce json
// @Param id path string true "Suggestion ID"
// @Success 200 {object} dto.MessageDTO
// @Failure 401 {object} dto.ErrorDTO "Unauthorized"
// @Failure 404 {object} dto.MessageDTO "Suggestion or user not found"
// @Failure 500 {object} dto.MessageDTO "Internal Server Error"
// @Router /suggestions/{id} [delete]
func (h *SuggestionHandler) delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		writeJSON(w, h.logger, http.StatusUnauthorized, dto.ErrorDTO{Error: "Unauthorized"})
		return
	}
	if err := h.suggestionService.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		if userGone(w, h.logger, err, dto.MessageDTO{Message: "User not found"}) {
			return
		}
		if errors.Is(err, service.ErrSuggestionNotFound) {
			writeJSON(w, h.logger, http.StatusNotFound, dto.MessageDTO{Message: "Suggestion not found"})
			return
		}
		h.logger.Error().Err(err).Msg("Failed to delete suggestion")
		writeJSON(w, h.logger, http.StatusInternalServerError, dto.MessageDTO{Message: "Internal Server Error"})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.MessageDTO{Message: "AI suggestion deleted successfully"})
}
