package handler

import (
	"errors"
	"net/http"

	"skillpath/internal/api/v1/dto"
	"skillpath/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type ProgressHandler struct {
	progressService service.ProgressService
	bookmarkService service.BookmarkService
	validate        *validator.Validate
	logger          zerolog.Logger
}

func NewProgressHandler(progressService service.ProgressService, bookmarkService service.BookmarkService, validate *validator.Validate, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		bookmarkService: bookmarkService,
		validate:        validate,
		logger:          logger,
	}
}

// RegisterRoutes mounts v1 progress and bookmark routes
func (h *ProgressHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /progress/toggle", authMw(http.HandlerFunc(h.toggle)))
	mux.Handle("GET /progress/{roadmapId}", authMw(http.HandlerFunc(h.completedNodes)))
	mux.Handle("GET /progress/{roadmapId}/stats", authMw(http.HandlerFunc(h.stats)))

	mux.Handle("POST /bookmark", authMw(http.HandlerFunc(h.toggleBookmark)))
	mux.Handle("GET /bookmark", authMw(http.HandlerFunc(h.listBookmarks)))
	mux.Handle("GET /bookmark/{roadmapId}", authMw(http.HandlerFunc(h.isBookmarked)))
}

// toggle godoc
// @Summary Toggle a roadmap node
// @Description Marks the node completed, or clears it when it already was. totalNodes updates the roadmap size when given.
// @Tags progress
// @Accept json
// @Produce json
// @Param toggle body dto.ToggleProgressDTO true "Node to flip"
// @Success 200 {object} dto.ToggleProgressResponseDTO
// @Failure 400 {object} dto.MessageDTO "RoadmapId and nodeId are required"
// @Failure 401 {object} dto.MessageDTO "Unauthorized"
// @Failure 404 {object} dto.MessageDTO "User not found"
// @Failure 500 {object} dto.MessageDTO "Internal server error"
// @Router /progress/toggle [post]
func (h *ProgressHandler) toggle(w http.ResponseWriter, r *http.Request) {
	// 1. Extract UserID from context
	userID, ok := currentUser(r)
	if !ok {
		h.message(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	// 2. Decode and validate request body
	var req dto.ToggleProgressDTO
	if err := decode(w, r, h.validate, &req); err != nil {
		h.message(w, http.StatusBadRequest, "RoadmapId and nodeId are required")
		return
	}

	// 3. Flip the node
	res, err := h.progressService.Toggle(r.Context(), userID, req.RoadmapID, req.NodeID, req.TotalNodes)
	if err != nil {
		h.failure(w, err, "Failed to toggle node")
		return
	}

	// 4. Return new state
	writeJSON(w, h.logger, http.StatusOK, dto.ToggleProgressResponseDTO{
		Success:   true,
		Completed: res.Completed,
		Timestamp: res.Timestamp,
	})
}

// completedNodes godoc
// @Summary List completed nodes of a roadmap
// @Tags progress
// @Produce json
// @Param roadmapId path string true "Roadmap ID"
// @Success 200 {array} dto.CompletedNodeDTO
// @Failure 401 {object} dto.MessageDTO "Unauthorized"
// @Failure 404 {object} dto.MessageDTO "User not found"
// @Failure 500 {object} dto.MessageDTO "Internal server error"
// @Router /progress/{roadmapId} [get]
func (h *ProgressHandler) completedNodes(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		h.message(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	nodes, err := h.progressService.CompletedNodes(r.Context(), userID, r.PathValue("roadmapId"))
	if err != nil {
		h.failure(w, err, "Failed to fetch roadmap progress")
		return
	}

	resp := make([]dto.CompletedNodeDTO, 0, len(nodes))
	for _, n := range nodes {
		resp = append(resp, dto.CompletedNodeDTO{NodeID: n.NodeID, Timestamp: n.Timestamp})
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

// stats godoc
// @Summary Get progress statistics for a roadmap
// @Tags progress
// @Produce json
// @Param roadmapId path string true "Roadmap ID"
// @Success 200 {object} model.ProgressStats
// @Failure 401 {object} dto.MessageDTO "Unauthorized"
// @Failure 404 {object} dto.MessageDTO "User not found"
// @Failure 500 {object} dto.MessageDTO "Internal server error"
// @Router /progress/{roadmapId}/stats [get]
func (h *ProgressHandler) stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		h.message(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	stats, err := h.progressService.Stats(r.Context(), userID, r.PathValue("roadmapId"))
	if err != nil {
		h.failure(w, err, "Failed to compute progress stats")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, stats)
}

// toggleBookmark godoc
// @Summary Toggle a roadmap bookmark
// @Tags bookmarks
// @Accept json
// @Produce json
// @Param bookmark body dto.ToggleBookmarkDTO true "Roadmap to bookmark"
// @Success 200 {object} dto.BookmarkToggleResponseDTO
// @Failure 400 {object} dto.MessageDTO "RoadmapId is required"
// @Failure 401 {object} dto.MessageDTO "Unauthorized"
// @Failure 404 {object} dto.MessageDTO "User not found"
// @Failure 500 {object} dto.MessageDTO "Internal server error"
// @Router /bookmark [post]
func (h *ProgressHandler) toggleBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		h.message(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req dto.ToggleBookmarkDTO
	if err := decode(w, r, h.validate, &req); err != nil {
		h.message(w, http.StatusBadRequest, "RoadmapId is required")
		return
	}

	bookmarked, err := h.bookmarkService.Toggle(r.Context(), userID, req.RoadmapID)
	if err != nil {
		h.failure(w, err, "Failed to toggle bookmark")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.BookmarkToggleResponseDTO{Success: true, Bookmarked: bookmarked})
}

// listBookmarks godoc
// @Summary List bookmarked roadmaps
// @Tags bookmarks
// @Produce json
// @Success 200 {object} dto.BookmarkListResponseDTO
// @Failure 401 {object} dto.MessageDTO "Unauthorized"
// @Failure 404 {object} dto.MessageDTO "User not found"
// @Failure 500 {object} dto.MessageDTO "Internal server error"
// @Router /bookmark [get]
func (h *ProgressHandler) listBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		h.message(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bookmarks, err := h.bookmarkService.List(r.Context(), userID)
	if err != nil {
		h.failure(w, err, "Failed to list bookmarks")
		return
	}
	ids := make([]string, 0, len(bookmarks))
	for _, b := range bookmarks {
		ids = append(ids, b.RoadmapID)
	}
	writeJSON(w, h.logger, http.StatusOK, dto.BookmarkListResponseDTO{Bookmarks: ids})
}

// isBookmarked godoc
// @Summary Check a roadmap bookmark
// @Tags bookmarks
// @Produce json
// @Param roadmapId path string true "Roadmap ID"
// @Success 200 {object} dto.BookmarkToggleResponseDTO
// @Failure 401 {object} dto.MessageDTO "Unauthorized"
// @Failure 404 {object} dto.MessageDTO "User not found"
// @Failure 500 {object} dto.MessageDTO "Internal server error"
// @Router /bookmark/{roadmapId} [get]
func (h *ProgressHandler) isBookmarked(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		h.message(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bookmarked, err := h.bookmarkService.IsBookmarked(r.Context(), userID, r.PathValue("roadmapId"))
	if err != nil {
		h.failure(w, err, "Failed to check bookmark")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.BookmarkToggleResponseDTO{Success: true, Bookmarked: bookmarked})
}

// failure writes a missing account as 404 and anything else as 500.
func (h *ProgressHandler) failure(w http.ResponseWriter, err error, logMsg string) {
	if errors.Is(err, service.ErrUserNotFound) {
		h.message(w, http.StatusNotFound, "User not found")
		return
	}
	h.logger.Error().Err(err).Msg(logMsg)
	h.message(w, http.StatusInternalServerError, "Internal server error")
}

func (h *ProgressHandler) message(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, h.logger, status, dto.MessageDTO{Message: msg})
}
