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

type CareerHandler struct {
	careerService service.CareerService
	usageService  service.UsageService
	validate      *validator.Validate
	logger        zerolog.Logger
}

func NewCareerHandler(careerService service.CareerService, usageService service.UsageService, validate *validator.Validate, logger zerolog.Logger) *CareerHandler {
	return &CareerHandler{
		careerService: careerService,
		usageService:  usageService,
		validate:      validate,
		logger:        logger,
	}
}

// RegisterRoutes mounts v1 career track routes
func (h *CareerHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("GET /career-track/usage", authMw(http.HandlerFunc(h.usage)))
	mux.Handle("POST /career-track/simulate", authMw(http.HandlerFunc(h.simulate)))
	mux.Handle("GET /career-track/saved", authMw(http.HandlerFunc(h.saved)))
	mux.Handle("GET /career-track/{id}", authMw(http.HandlerFunc(h.get)))
	mux.Handle("DELETE /career-track/{id}", authMw(http.HandlerFunc(h.delete)))
}

// usage godoc
// @Summary Get career track usage
// @Tags career
// @Produce json
// @Success 200 {object} quota.Status
// @Failure 401 {object} dto.ErrorDTO "Unauthorized"
// @Failure 404 {object} dto.ErrorDTO "User not found"
// @Failure 500 {object} dto.ErrorDTO "Server error"
// @Router /career-track/usage [get]
func (h *CareerHandler) usage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		writeJSON(w, h.logger, http.StatusUnauthorized, dto.ErrorDTO{Error: "Unauthorized"})
		return
	}
	st, err := h.usageService.Status(r.Context(), userID, model.FeatureCareerTrack)
	if err != nil {
		if userGone(w, h.logger, err, dto.ErrorDTO{Error: "User not found"}) {
			return
		}
		writeJSON(w, h.logger, http.StatusInternalServerError, dto.ErrorDTO{Error: "Server error"})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, st)
}

// simulate godoc
// @Summary Simulate a career path
// @Tags career
// @Accept json
// @Produce json
// @Param career body dto.SimulateCareerDTO true "Current skills and goal"
// @Success 200 {object} dto.SimulateCareerResponseDTO
// @Failure 400 {object} dto.ErrorDTO "Invalid input"
// @Failure 401 {object} dto.ErrorDTO "Unauthorized"
// @Failure 404 {object} dto.ErrorDTO "User not found"
// @Failure 429 {object} dto.ErrorDTO "Daily career track usage limit reached"
// @Failure 500 {object} dto.ErrorDTO "AI_GENERATION_ERROR or AI_FORMAT_ERROR"
// @Failure 503 {object} dto.ErrorDTO "AI_CONFIG_ERROR"
// @Router /career-track/simulate [post]
func (h *CareerHandler) simulate(w http.ResponseWriter, r *http.Request) {
	// 1. Extract UserID from context
	userID, ok := currentUser(r)
	if !ok {
		writeJSON(w, h.logger, http.StatusUnauthorized, dto.ErrorDTO{Error: "Unauthorized"})
		return
	}

	// 2. Decode and validate the questionnaire
	var req dto.SimulateCareerDTO
	if err := decode(w, r, h.validate, &req); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, dto.ErrorDTO{Error: err.Error()})
		return
	}

	// 3. Simulate and save the path
	path, st, err := h.careerService.Simulate(r.Context(), userID, model.CareerInputs{
		CurrentSkills:     req.CurrentSkills,
		CareerGoal:        req.CareerGoal,
		CareerStage:       req.CareerStage,
		EducationLevel:    req.EducationLevel,
		GoalTimeframe:     req.GoalTimeframe,
		HoursPerWeek:      req.HoursPerWeek,
		CurrentlyStudying: req.CurrentlyStudying,
		Major:             req.Major,
		YearsOfExperience: req.YearsOfExperience,
	})
	if err != nil {
		if userGone(w, h.logger, err, dto.ErrorDTO{Error: "User not found"}) {
			return
		}
		if errors.Is(err, service.ErrQuotaExceeded) {
			writeJSON(w, h.logger, http.StatusTooManyRequests, dto.LimitErrorDTO{
				Error:          "Daily career track usage limit reached",
				UsageCount:     st.UsageCount,
				RemainingCount: 0,
			})
			return
		}
		status, code := aiFailure(err)
		h.logger.Error().Err(err).Str("code", code).Msg("Failed to generate career path")
		writeJSON(w, h.logger, status, dto.ErrorDTO{Error: "Failed to generate career path", Details: code})
		return
	}

	// 4. Return the steps with updated usage
	writeJSON(w, h.logger, http.StatusOK, dto.SimulateCareerResponseDTO{
		ID:         path.ID,
		CareerPath: path.Steps,
		Message:    "Career path generated successfully",
		UsageInfo:  st,
	})
}

// saved godoc
// @Summary List saved career paths
// @Tags career
// @Produce json
// @Success 200 {object} dto.SavedCareerPathsResponseDTO
// @Failure 401 {object} dto.ErrorDTO "Unauthorized"
// @Failure 404 {object} dto.ErrorDTO "User not found"
// @Failure 500 {object} dto.ErrorDTO "Server error"
// @Router /career-track/saved [get]
func (h *CareerHandler) saved(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		writeJSON(w, h.logger, http.StatusUnauthorized, dto.ErrorDTO{Error: "Unauthorized"})
		return
	}
	list, err := h.careerService.List(r.Context(), userID)
	if err != nil {
		if userGone(w, h.logger, err, dto.ErrorDTO{Error: "User not found"}) {
			return
		}
		h.logger.Error().Err(err).Msg("Failed to list career paths")
		writeJSON(w, h.logger, http.StatusInternalServerError, dto.ErrorDTO{Error: "Server error"})
		return
	}
	if list == nil {
		list = []model.CareerPath{}
	}
	writeJSON(w, h.logger, http.StatusOK, dto.SavedCareerPathsResponseDTO{SavedCareerPaths: list})
}

// get godoc
// @Summary Get a saved career path
// @Tags career
// @Produce json
// @Param id path string true "Career path ID"
// @Success 200 {object} dto.CareerPathResponseDTO
// @Failure 401 {object} dto.ErrorDTO "Unauthorized"
// @Failure 404 {object} dto.ErrorDTO "Career path not found"
// @Failure 500 {object} dto.ErrorDTO "Server error"
// @Router /career-track/{id} [get]
func (h *CareerHandler) get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		writeJSON(w, h.logger, http.StatusUnauthorized, dto.ErrorDTO{Error: "Unauthorized"})
		return
	}
	path, err := h.careerService.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		if userGone(w, h.logger, err, dto.ErrorDTO{Error: "User not found"}) {
			return
		}
		if errors.Is(err, service.ErrCareerPathNotFound) {
			writeJSON(w, h.logger, http.StatusNotFound, dto.ErrorDTO{Error: "Career path not found"})
			return
		}
		h.logger.Error().Err(err).Msg("Failed to get career path")
		writeJSON(w, h.logger, http.StatusInternalServerError, dto.ErrorDTO{Error: "Server error"})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.CareerPathResponseDTO{CareerPath: path})
}

// delete godoc
// @Summary Delete a saved career path
// @Tags career
// @Produce json
// @Param id path string true "Career path ID"
// @Success 200 {object} dto.MessageDTO
// @Failure 401 {object} dto.ErrorDTO "Unauthorized"
// @Failure 404 {object} dto.ErrorDTO "Career path not found"
// @Failure 500 {object} dto.ErrorDTO "Server error"
// @Router /career-track/{id} [delete]
func (h *CareerHandler) delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		writeJSON(w, h.logger, http.StatusUnauthorized, dto.ErrorDTO{Error: "Unauthorized"})
		return
	}
	if err := h.careerService.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		if userGone(w, h.logger, err, dto.ErrorDTO{Error: "User not found"}) {
			return
		}
		if errors.Is(err, service.ErrCareerPathNotFound) {
			writeJSON(w, h.logger, http.StatusNotFound, dto.ErrorDTO{Error: "Career path not found"})
			return
		}
		h.logger.Error().Err(err).Msg("Failed to delete career path")
		writeJSON(w, h.logger, http.StatusInternalServerError, dto.ErrorDTO{Error: "Server error"})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.MessageDTO{Message: "Career path deleted successfully"})
}
