package leaderboard

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Traijan1/emote-counter/internal/utils"
	"github.com/Traijan1/emote-counter/pkg/database"
)

// UsageReader is the single-emote lookup the read API serves.
type UsageReader interface {
	CountFor(ctx context.Context, query string) (int64, error)
}

type Handler struct {
	service  *Service
	store    UsageReader
	redis    *redis.Client
	cacheTTL time.Duration
}

func NewHandler(service *Service, store UsageReader, redisClient *redis.Client, cacheTTL time.Duration) *Handler {
	return &Handler{
		service:  service,
		store:    store,
		redis:    redisClient,
		cacheTTL: cacheTTL,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/leaderboard", h.GetLeaderboard)
	r.Get("/emotes/count", h.GetEmoteCount)

	return r
}

type pageResponse struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Content  string `json:"content"`
}

// GetLeaderboard renders one page of the ranked leaderboard. Pages are
// cached briefly in Redis; the cache only serves this endpoint, reaction
// paging always renders fresh.
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	page := utils.GetQueryInt(r, "page", 0)
	if page < 0 {
		utils.RespondError(w, http.StatusBadRequest, "Page must be non-negative")
		return
	}

	cacheKey := fmt.Sprintf("leaderboard:%d", page)
	if cached, err := database.GetCachedPage(r.Context(), h.redis, cacheKey); err == nil && cached != "" {
		utils.RespondSuccess(w, pageResponse{Page: page, PageSize: h.service.PageSize(), Content: cached})
		return
	}

	content, err := h.service.RenderPage(r.Context(), page)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to render leaderboard")
		return
	}

	if content != "" {
		if err := database.SetCachedPage(r.Context(), h.redis, cacheKey, content, h.cacheTTL); err != nil {
			log.Error().Err(err).Msg("Failed to cache leaderboard page")
		}
	}

	utils.RespondSuccess(w, pageResponse{Page: page, PageSize: h.service.PageSize(), Content: content})
}

type countResponse struct {
	Emote string `json:"emote"`
	Count int64  `json:"count"`
}

// GetEmoteCount looks up the usage count of a single emote by name or ID.
func (h *Handler) GetEmoteCount(w http.ResponseWriter, r *http.Request) {
	emote := utils.GetQueryString(r, "emote", "")
	if emote == "" {
		utils.RespondError(w, http.StatusBadRequest, "Missing emote parameter")
		return
	}

	count, err := h.store.CountFor(r.Context(), emote)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to count emote usage")
		return
	}

	utils.RespondSuccess(w, countResponse{Emote: emote, Count: count})
}
