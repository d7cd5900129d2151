package handler

import (
	"errors"
	"net/http"

	"skillpath/internal/api/v1/dto"
	"skillpath/internal/model"
	"skillpath/internal/quota"
	"skillpath/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type RoadmapHandler struct {
	roadmapService service.RoadmapService
	usageService   service.UsageService
	validate       *validator.Validate
	logger         zerolog.Logger
}

func NewRoadmapHandler(roadmapService service.RoadmapService, usageService service.UsageService, validate *validator.Validate, logger zerolog.Logger) *RoadmapHandler {
	return &RoadmapHandler{
		roadmapService: roadmapService,
		usageService:   usageService,
		validate:       validate,
		logger:         logger,
	}
}

// RegisterRoutes mounts v1 roadmap generation and usage routes
func (h *RoadmapHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("GET /usage", authMw(http.HandlerFunc(h.usageOverview)))
	mux.Handle("GET /ai/usage", authMw(http.HandlerFunc(h.usage)))
	mux.Handle("POST /ai/generate", authMw(http.HandlerFunc(h.generate)))
	mux.Handle("GET /ai/generated-roadmaps", authMw(http.HandlerFunc(h.list)))
	mux.Handle("GET /ai/generated-roadmaps/{id}", authMw(http.HandlerFunc(h.get)))
	mux.Handle("DELETE /ai/generated-roadmaps/{id}", authMw(http.HandlerFunc(h.delete)))
}

// usageOverview godoc
// @Summary Get usage of every AI feature
// @Tags usage
// @Produce json
// @Success 200 {object} dto.UsageOverviewDTO
// @Failure 401 {object} dto.ErrorDTO "Unauthorized"
// @Failure 404 {object} dto.MsgDTO "User not found"
// @Failure 500 {object} dto.ErrorDTO "Server error"
// @Router /usage [get]
func (h *RoadmapHandler) usageOverview(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		writeJSON(w, h.logger, http.StatusUnauthorized, dto.ErrorDTO{Error: "Unauthorized"})
		return
	}
	all, err := h.usageService.All(r.Context(), userID)
	if err != nil {
		if userGone(w, h.logger, err, dto.MsgDTO{Msg: "User not found"}) {
			return
		}
		writeJSON(w, h.logger, http.StatusInternalServerError, dto.ErrorDTO{Error: "Server error"})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.UsageOverviewDTO{
		RoadmapGeneration: all[model.FeatureRoadmap],
		Chatbot:           all[model.FeatureChatbot],
		AISuggestions:     all[model.FeatureAISuggestions],
		CareerTrack:       all[model.FeatureCareerTrack],
	})
}

// usage godoc
// @Summary Get roadmap generation usage
// @Tags roadmaps
// @Produce json
// @Success 200 {object} dto.RoadmapUsageDTO
// @Failure 401 {object} dto.ErrorDTO "Unauthorized"
// @Failure 404 {object} dto.MsgDTO "User not found"
// @Failure 500 {object} dto.ErrorDTO "Server error"
// @Router /ai/usage [get]
func (h *RoadmapHandler) usage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		writeJSON(w, h.logger, http.StatusUnauthorized, dto.ErrorDTO{Error: "Unauthorized"})
		return
	}
	st, err := h.usageService.Status(r.Context(), userID, model.FeatureRoadmap)
	if err != nil {
		if userGone(w, h.logger, err, dto.MsgDTO{Msg: "User not found"}) {
			return
		}
		writeJSON(w, h.logger, http.StatusInternalServerError, dto.ErrorDTO{Error: "Server error"})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, roadmapUsage(st))
}

// generate godoc
// @Summary Generate a roadmap
// @Description Generates and saves a roadmap with AI feedback. Counts against the daily roadmap quota only on success.
// @Tags roadmaps
// @Accept json
// @Produce json
// @Param roadmap body dto.GenerateRoadmapDTO true "Roadmap request"
// @Success 200 {object} dto.GenerateRoadmapResponseDTO
// @Failure 400 {object} dto.ErrorDTO "Input, timeframe, and level are required"
// @Failure 401 {object} dto.ErrorDTO "Unauthorized"
// @Failure 403 {object} dto.LimitErrorDTO "Daily limit reached"
// @Failure 404 {object} dto.MsgDTO "User not found"
// @Failure 500 {object} dto.ErrorDTO "AI_GENERATION_ERROR or AI_FORMAT_ERROR"
// @Failure 503 {object} dto.ErrorDTO "AI_CONFIG_ERROR"
// @Router /ai/generate [post]
func (h *RoadmapHandler) generate(w http.ResponseWriter, r *http.Request) {
	// 1. Extract UserID from context
	userID, ok := currentUser(r)
	if !ok {
		writeJSON(w, h.logger, http.StatusUnauthorized, dto.ErrorDTO{Error: "Unauthorized"})
		return
	}

	// 2. Decode and validate request body
	var req dto.GenerateRoadmapDTO
	if err := decode(w, r, h.validate, &req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, dto.ErrorDTO{Error: "Input, timeframe, and level are required"})
		return
	}

	// 3. Generate, persist and count
	rm, st, err := h.roadmapService.Generate(r.Context(), userID, service.GenerateInput{
		Topic:       req.Input,
		Timeframe:   req.Timeframe,
		Level:       req.Level,
		ContextInfo: req.ContextInfo,
	})
	if err != nil {
		if userGone(w, h.logger, err, dto.MsgDTO{Msg: "User not found"}) {
			return
		}
		if errors.Is(err, service.ErrQuotaExceeded) {
			writeJSON(w, h.logger, http.StatusForbidden, dto.LimitErrorDTO{
				Error:          "Daily limit reached",
				UsageCount:     st.UsageCount,
				RemainingCount: 0,
			})
			return
		}
		status, code := aiFailure(err)
		h.logger.Error().Err(err).Str("code", code).Msg("Failed to generate roadmap")
		writeJSON(w, h.logger, status, dto.ErrorDTO{Error: "Failed to generate roadmap", Details: code})
		return
	}

	// 4. Return the roadmap with updated usage
	writeJSON(w, h.logger, http.StatusOK, dto.GenerateRoadmapResponseDTO{
		Roadmap:    rm.Roadmap,
		RoadmapID:  rm.ID,
		UsageInfo:  roadmapUsage(st),
		AIFeedback: rm.Feedback,
	})
}

// list godoc
// @Summary List generated roadmaps
// @Tags roadmaps
// @Produce json
// @Success 200 {object} dto.GeneratedRoadmapsResponseDTO
// @Failure 401 {object} dto.ErrorDTO "Unauthorized"
// @Failure 404 {object} dto.MsgDTO "User not found"
// @Failure 500 {object} dto.ErrorDTO "Server error"
// @Router /ai/generated-roadmaps [get]
func (h *RoadmapHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		writeJSON(w, h.logger, http.StatusUnauthorized, dto.ErrorDTO{Error: "Unauthorized"})
		return
	}
	list, err := h.roadmapService.List(r.Context(), userID)
	if err != nil {
		if userGone(w, h.logger, err, dto.MsgDTO{Msg: "User not found"}) {
			return
		}
		h.logger.Error().Err(err).Msg("Failed to list generated roadmaps")
		writeJSON(w, h.logger, http.StatusInternalServerError, dto.ErrorDTO{Error: "Server error"})
		return
	}
	if list == nil {
		list = []model.GeneratedRoadmap{}
	}
	writeJSON(w, h.logger, http.StatusOK, dto.GeneratedRoadmapsResponseDTO{AIGeneratedRoadmaps: list})
}

// get godoc
// @Summary Get a generated roadmap
// @Tags roadmaps
// @Produce json
// @Param id path string true "Generated roadmap ID"
// @Success 200 {object} dto.GeneratedRoadmapResponseDTO
// @Failure 401 {object} dto.ErrorDTO "Unauthorized"
// @Failure 404 {object} dto.MsgDTO "Roadmap not found"
// @Failure 500 {object} dto.ErrorDTO "Server error"
// @Router /ai/generated-roadmaps/{id} [get]
func (h *RoadmapHandler) get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		writeJSON(w, h.logger, http.StatusUnauthorized, dto.ErrorDTO{Error: "Unauthorized"})
		return
	}
	rm, err := h.roadmapService.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		if userGone(w, h.logger, err, dto.MsgDTO{Msg: "User not found"}) {
			return
		}
		if errors.Is(err, service.ErrRoadmapNotFound) {
			writeJSON(w, h.logger, http.StatusNotFound, dto.MsgDTO{Msg: "Roadmap not found"})
			return
		}
		h.logger.Error().Err(err).Msg("Failed to get generated roadmap")
		writeJSON(w, h.logger, http.StatusInternalServerError, dto.ErrorDTO{Error: "Server error"})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.GeneratedRoadmapResponseDTO{Roadmap: rm})
}

// delete godoc
// @Summary Delete a generated roadmap
// @Tags roadmaps
// @Produce json
// @Param id path string true "Generated roadmap ID"
// @Success 200 {object} dto.MsgDTO
// @Failure 401 {object} dto.ErrorDTO "Unauthorized"
// @Failure 404 {object} dto.MsgDTO "Roadmap not found"
// @Failure 500 {object} dto.ErrorDTO "Server error"
// @Router /ai/generated-roadmaps/{id} [delete]
func (h *RoadmapHandler) delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		writeJSON(w, h.logger, http.StatusUnauthorized, dto.ErrorDTO{Error: "Unauthorized"})
		return
	}
	if err := h.roadmapService.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		if userGone(w, h.logger, err, dto.MsgDTO{Msg: "User not found"}) {
			return
		}
		if errors.Is(err, service.ErrRoadmapNotFound) {
			writeJSON(w, h.logger, http.StatusNotFound, dto.MsgDTO{Msg: "Roadmap not found"})
			return
		}
		h.logger.Error().Err(err).Msg("Failed to delete generated roadmap")
		writeJSON(w, h.logger, http.StatusInternalServerError, dto.ErrorDTO{Error: "Server error"})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.MsgDTO{Msg: "Roadmap deleted successfully"})
}

func roadmapUsage(st quota.Status) dto.RoadmapUsageDTO {
	return dto.RoadmapUsageDTO{
		CanGenerate:    st.CanUse,
		UsageCount:     st.UsageCount,
		RemainingCount: st.RemainingCount,
	}
}
