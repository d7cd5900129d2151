package handler

import (
	"errors"
	"net/http"

	"skillpath/internal/api/v1/dto"
	"skillpath/internal/model"
	"skillpath/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type MentorHandler struct {
	mentorService service.MentorService
	usageService  service.UsageService
	validate      *validator.Validate
	logger        zerolog.Logger
}

func NewMentorHandler(mentorService service.MentorService, usageService service.UsageService, validate *validator.Validate, logger zerolog.Logger) *MentorHandler {
	return &MentorHandler{
		mentorService: mentorService,
		usageService:  usageService,
		validate:      validate,
		logger:        logger,
	}
}

// RegisterRoutes mounts v1 mentor routes
func (h *MentorHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("GET /chatbot/usage", authMw(http.HandlerFunc(h.usage)))
	mux.Handle("POST /chatbot/chat", authMw(http.HandlerFunc(h.chat)))
	mux.Handle("GET /chatbot/insights", authMw(http.HandlerFunc(h.insights)))
}

// usage godoc
// @Summary Get mentor chat usage
// @Tags mentor
// @Produce json
// @Success 200 {object} dto.MentorUsageResponseDTO
// @Failure 401 {object} dto.MentorErrorDTO "AUTH_ERROR"
// @Failure 404 {object} dto.MentorErrorDTO "USER_NOT_FOUND"
// @Failure 500 {object} dto.MentorErrorDTO "USAGE_ERROR"
// @Router /chatbot/usage [get]
func (h *MentorHandler) usage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		h.fail(w, http.StatusUnauthorized, "Authentication failed", "AUTH_ERROR")
		return
	}
	st, err := h.usageService.Status(r.Context(), userID, model.FeatureChatbot)
	if err != nil {
		if userGone(w, h.logger, err, dto.MentorErrorDTO{Error: "User not found", Code: "USER_NOT_FOUND"}) {
			return
		}
		h.fail(w, http.StatusInternalServerError, "Failed to get usage information", "USAGE_ERROR")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.MentorUsageResponseDTO{Success: true, Status: st})
}

// chat godoc
// @Summary Chat with the learning mentor
// @Description Answers with the learner profile as context. Only the most recent history turns are sent to the model.
// @Tags mentor
// @Accept json
// @Produce json
// @Param chat body dto.MentorChatDTO true "Message and recent history"
// @Success 200 {object} dto.MentorChatResponseDTO
// @Failure 400 {object} dto.MentorErrorDTO "INVALID_INPUT or MESSAGE_TOO_LONG"
// @Failure 401 {object} dto.MentorErrorDTO "AUTH_ERROR"
// @Failure 404 {object} dto.MentorErrorDTO "USER_NOT_FOUND"
// @Failure 429 {object} dto.MentorErrorDTO "USAGE_LIMIT_EXCEEDED"
// @Failure 500 {object} dto.MentorErrorDTO "AI_GENERATION_ERROR"
// @Router /chatbot/chat [post]
func (h *MentorHandler) chat(w http.ResponseWriter, r *http.Request) {
	// 1. Extract UserID from context
	userID, ok := currentUser(r)
	if !ok {
		h.fail(w, http.StatusUnauthorized, "Authentication failed", "AUTH_ERROR")
		return
	}

	// 2. Decode and validate request body
	var req dto.MentorChatDTO
	if err := decode(w, r, h.validate, &req); err != nil {
		code := "INVALID_INPUT"
		msg := "Message is required"
		if len(req.Message) > 1000 {
			code = "MESSAGE_TOO_LONG"
			msg = "Message is too long. Please keep it under 1000 characters."
		}
		h.fail(w, http.StatusBadRequest, msg, code)
		return
	}

	// 3. Map history; anything not sent by the user is a mentor turn
	history := make([]model.ChatTurn, 0, len(req.ConversationHistory))
	for _, m := range req.ConversationHistory {
		role := "assistant"
		if m.Type == "user" {
			role = "user"
		}
		history = append(history, model.ChatTurn{Role: role, Content: m.Content})
	}

	// 4. Ask the mentor
	answer, st, err := h.mentorService.Chat(r.Context(), userID, req.Message, history)
	if err != nil {
		if userGone(w, h.logger, err, dto.MentorErrorDTO{Error: "User not found", Code: "USER_NOT_FOUND"}) {
			return
		}
		if errors.Is(err, service.ErrQuotaExceeded) {
			writeJSON(w, h.logger, http.StatusTooManyRequests, dto.MentorErrorDTO{
				Success: false,
				Error:   "Daily limit reached",
				Code:    "USAGE_LIMIT_EXCEEDED",
				Usage:   &st,
			})
			return
		}
		status, code := aiFailure(err)
		h.logger.Error().Err(err).Str("code", code).Msg("Mentor chat failed")
		h.fail(w, status, "Failed to generate AI response. Please try again.", code)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, dto.MentorChatResponseDTO{Success: true, Response: answer, Usage: st})
}

// insights godoc
// @Summary Get learning insights
// @Tags mentor
// @Produce json
// @Success 200 {object} dto.InsightsResponseDTO
// @Failure 401 {object} dto.MentorErrorDTO "AUTH_ERROR"
// @Failure 404 {object} dto.MentorErrorDTO "USER_NOT_FOUND"
// @Failure 500 {object} dto.MentorErrorDTO "INSIGHTS_ERROR"
// @Router /chatbot/insights [get]
func (h *MentorHandler) insights(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		h.fail(w, http.StatusUnauthorized, "Authentication failed", "AUTH_ERROR")
		return
	}
	in, err := h.mentorService.Insights(r.Context(), userID)
	if err != nil {
		if userGone(w, h.logger, err, dto.MentorErrorDTO{Error: "User not found", Code: "USER_NOT_FOUND"}) {
			return
		}
		h.logger.Error().Err(err).Msg("Failed to build insights")
		h.fail(w, http.StatusInternalServerError, "Failed to generate insights", "INSIGHTS_ERROR")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.InsightsResponseDTO{Success: true, Insights: in})
}

func (h *MentorHandler) fail(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, h.logger, status, dto.MentorErrorDTO{Success: false, Error: msg, Code: code})
}
