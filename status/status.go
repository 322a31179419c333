package status

import (
	"context"
	"net/http"
	"time"

	"aquiguaira/db"
	"aquiguaira/globals"
	"aquiguaira/rdx"
	"aquiguaira/utils"

	"github.com/julienschmidt/httprouter"
)

// Status handles GET /api/status and /health by pinging MongoDB.
func Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{
			"status":  "error",
			"message": "Failed to connect to MongoDB",
			"error":   err.Error(),
		})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"status":   "ok",
		"message":  "MongoDB Connection Successful",
		"database": globals.MongoDatabase,
		"cache":    rdx.Enabled(),
	})
}
