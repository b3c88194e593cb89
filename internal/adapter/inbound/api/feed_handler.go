package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"recipefeeder/internal/application/common/slogger"
	"recipefeeder/internal/config"
	"recipefeeder/internal/port/inbound"
)

// FeederFactory builds a feeder for one request's effective configuration.
type FeederFactory func(cfg config.FeederConfig) inbound.FeederService

// FeedHandler handles HTTP requests that trigger a feeding run. The handler
// persists nothing: the next cursor comes back in the response body and the
// caller keeps it for the next trigger.
type FeedHandler struct {
	baseConfig config.FeederConfig
	newFeeder  FeederFactory
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(baseConfig config.FeederConfig, newFeeder FeederFactory) *FeedHandler {
	return &FeedHandler{baseConfig: baseConfig, newFeeder: newFeeder}
}

// FeedRequest is the optional JSON body of a feed trigger: a resume cursor
// plus per-request overrides for the feeder options. Omitted overrides keep
// the configured values.
type FeedRequest struct {
	Cursor string `json:"cursor"`
	config.FeedProfile
}

// TriggerFeed handles POST /api/v1/feed.
func (h *FeedHandler) TriggerFeed(w http.ResponseWriter, r *http.Request) {
	var request FeedRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	feederCfg, err := request.Apply(h.baseConfig)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.newFeeder(feederCfg).RunFull(r.Context(), request.Cursor)
	if err != nil {
		slogger.ErrorWithError(r.Context(), err, "Feeding run failed", slogger.Fields{
			"cursor": request.Cursor,
		})
		// A failed run still reports partial statistics and the resumable
		// cursor; progress already made is never dropped.
		if result != nil {
			_ = WriteJSON(w, http.StatusInternalServerError, result)
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}
