package location

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"aquiguaira/rdx"
	"aquiguaira/utils"

	"github.com/julienschmidt/httprouter"
)

const cacheTTL = time.Hour

type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// Search handles GET /api/location/search?q=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"error": "Query parameter is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	key := cacheKey(q)
	var cached json.RawMessage
	if rdx.GetJSON(ctx, key, &cached) {
		utils.RespondWithJSON(w, http.StatusOK, cached)
		return
	}

	results, err := h.client.Search(ctx, q)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			log.Printf("❌ Nominatim %d for %q", upstream.Status, q)
			utils.RespondWithJSON(w, upstream.Status, utils.M{
				"error":   "Nominatim API error: " + http.StatusText(upstream.Status),
				"details": upstream.Body,
			})
			return
		}
		utils.RespondWithServerError(w, r, err)
		return
	}

	rdx.SetJSON(ctx, key, results, cacheTTL)
	utils.RespondWithJSON(w, http.StatusOK, results)
}
