package history

import (
	"context"
	"net/http"
	"time"

	"aquiguaira/db"
	"aquiguaira/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultLimit = 20

// GetHistory handles GET /api/historico?user_id|user_identifier[&limite].
func GetHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	q := r.URL.Query()
	field, value, ok := utils.UserKey(q.Get("user_id"), q.Get("user_identifier"))
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "user_id ou user_identifier é obrigatório")
		return
	}

	col, err := db.Collection(ctx, db.HistoryCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "visualizado_em", Value: -1}}).
		SetLimit(utils.ParseLimit(r, "limite", defaultLimit))

	cursor, err := col.Find(ctx, bson.M{field: value}, opts)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	defer cursor.Close(ctx)

	var historico []bson.M
	if err := cursor.All(ctx, &historico); err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NormalizeAll(historico))
}

// AddHistory handles POST /api/historico. Every view is recorded.
func AddHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	item, err := utils.DecodeDocument(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	utils.StripFields(item, "id", "_id")
	item["_id"] = primitive.NewObjectID()
	item["visualizado_em"] = time.Now().UTC()

	col, err := db.Collection(ctx, db.HistoryCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	if _, err := col.InsertOne(ctx, item); err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.NormalizeID(item))
}
