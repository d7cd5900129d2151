package handler

import (
	"errors"
	"net/http"
	"strconv"

	"skillpath/internal/api/v1/dto"
	"skillpath/internal/model"
	"skillpath/internal/service"

	"github.com/rs/zerolog"
)

// ContentHandler serves the article feed and the curated roadmaps. Neither
// requires authentication.
type ContentHandler struct {
	contentService service.ContentService
	catalogService service.CatalogService
	logger         zerolog.Logger
}

func NewContentHandler(contentService service.ContentService, catalogService service.CatalogService, logger zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes mounts v1 content and main roadmap routes
func (h *ContentHandler) RegisterRoutes(mux *http.ServeMux, _ func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /content/smart-feed/{roadmapId}", h.smartFeed)
	mux.HandleFunc("GET /content/sources", h.sources)
	mux.HandleFunc("GET /roadmaps/{roadmapId}", h.mainRoadmap)
}

// smartFeed godoc
// @Summary Get the article feed for a roadmap
// @Description Merges articles from every source for the roadmap tags, newest first, without duplicate URLs.
// @Tags content
// @Produce json
// @Param roadmapId path string true "Roadmap category"
// @Param page query int false "Page number" default(1)
// @Param source query string false "Source ID or name, all for every source"
// @Success 200 {object} dto.FeedResponseDTO
// @Failure 400 {object} dto.MessageDTO "Unknown roadmap category"
// @Failure 500 {object} dto.MessageDTO "Failed to fetch content"
// @Router /content/smart-feed/{roadmapId} [get]
func (h *ContentHandler) smartFeed(w http.ResponseWriter, r *http.Request) {
	// 1. Parse page and source from query parameters
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil && p > 0 {
			page = p
		}
	}
	source := r.URL.Query().Get("source")

	// 2. Build the merged feed
	feed, err := h.contentService.Feed(r.Context(), r.PathValue("roadmapId"), page, source)
	if err != nil {
		if errors.Is(err, service.ErrUnknownTag) {
			writeJSON(w, h.logger, http.StatusBadRequest, dto.MessageDTO{Message: "Unknown roadmap category"})
			return
		}
		h.logger.Error().Err(err).Msg("Failed to fetch content")
		writeJSON(w, h.logger, http.StatusInternalServerError, dto.MessageDTO{Message: "Failed to fetch content"})
		return
	}

	// 3. Return articles with pagination
	articles := feed.Articles
	if articles == nil {
		articles = []model.Article{}
	}
	writeJSON(w, h.logger, http.StatusOK, dto.FeedResponseDTO{
		Articles:         articles,
		Pagination:       dto.PaginationDTO{CurrentPage: feed.Page, HasMore: feed.HasMore},
		AvailableSources: feed.Sources,
	})
}

// sources godoc
// @Summary List content sources
// @Tags content
// @Produce json
// @Success 200 {object} dto.SourcesResponseDTO
// @Router /content/sources [get]
func (h *ContentHandler) sources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, dto.SourcesResponseDTO{Sources: h.contentService.Sources()})
}

// mainRoadmap godoc
// @Summary Get a curated roadmap
// @Tags roadmaps
// @Produce json
// @Param roadmapId path string true "Roadmap ID, slug or title"
// @Success 200 {object} dto.MainRoadmapResponseDTO
// @Failure 404 {object} dto.MainRoadmapNotFoundDTO "Roadmap not found"
// @Failure 500 {object} dto.MessageDTO "Error fetching roadmap"
// @Router /roadmaps/{roadmapId} [get]
func (h *ContentHandler) mainRoadmap(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("roadmapId")
	rm, err := h.catalogService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRoadmapNotFound) {
			writeJSON(w, h.logger, http.StatusNotFound, dto.MainRoadmapNotFoundDTO{
				Success:     false,
				Message:     "Roadmap not found",
				RequestedID: id,
			})
			return
		}
		h.logger.Error().Err(err).Str("roadmap_id", id).Msg("Failed to fetch roadmap")
		writeJSON(w, h.logger, http.StatusInternalServerError, dto.MessageDTO{Message: "Error fetching roadmap"})
		return
	}

	children := rm.Children
	if children == nil {
		children = []model.RoadmapNode{}
	}
	writeJSON(w, h.logger, http.StatusOK, dto.MainRoadmapResponseDTO{
		Success: true,
		Data:    dto.MainRoadmapDTO{Name: rm.Name, Children: children},
	})
}
