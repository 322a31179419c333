package places

import (
	"context"
	"errors"
	"net/http"
	"time"

	"aquiguaira/db"
	"aquiguaira/models"
	"aquiguaira/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const msgNotFound = "Local não encontrado"

// GetPlaces handles GET /api/locais[?id=|?slug=].
func GetPlaces(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	col, err := db.Collection(ctx, db.PlacesCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	q := r.URL.Query()
	switch {
	case q.Get("id") != "":
		oid, err := utils.ParseObjectID(q.Get("id"))
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "ID inválido")
			return
		}
		findOne(ctx, w, r, col, bson.M{"_id": oid})
	case q.Get("slug") != "":
		findOne(ctx, w, r, col, bson.M{"slug": q.Get("slug"), "status": models.StatusActive})
	default:
		opts := options.Find().SetSort(bson.D{{Key: "nome", Value: 1}})
		cursor, err := col.Find(ctx, bson.M{"status": models.StatusActive}, opts)
		if err != nil {
			utils.RespondWithServerError(w, r, err)
			return
		}
		defer cursor.Close(ctx)

		var locais []bson.M
		if err := cursor.All(ctx, &locais); err != nil {
			utils.RespondWithServerError(w, r, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.NormalizeAll(locais))
	}
}

func findOne(ctx context.Context, w http.ResponseWriter, r *http.Request, col *mongo.Collection, filter bson.M) {
	var local bson.M
	if err := col.FindOne(ctx, filter).Decode(&local); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, msgNotFound)
			return
		}
		utils.RespondWithServerError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NormalizeID(local))
}
