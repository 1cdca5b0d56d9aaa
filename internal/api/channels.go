package api

import (
	"net/http"

	"github.com/mtakeda/furugi/internal/logger"
	"github.com/mtakeda/furugi/internal/store"
)

// ChannelsHandler serves the configured sales channels.
type ChannelsHandler struct {
	Repo store.Repository
}

// List handles GET /api/sales-channels.
func (h *ChannelsHandler) List(w http.ResponseWriter, r *http.Request) {
	channels, err := h.Repo.ListSalesChannels(r.Context())
	if err != nil {
		logger.Logger.Error().Err(err).Msg("listing sales channels")
		jsonError(w, http.StatusBadGateway, "failed to list sales channels")
		return
	}
	if channels == nil {
		channels = []string{}
	}
	jsonResponse(w, http.StatusOK, channels)
}
