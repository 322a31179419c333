package favorites

import (
	"context"
	"errors"
	"net/http"
	"time"

	"aquiguaira/db"
	"aquiguaira/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	msgUserKeyRequired = "user_id ou user_identifier é obrigatório"
	requestBudget      = 10 * time.Second
)

// GetFavorites handles GET /api/favoritos?user_id|user_identifier[&tipo].
func GetFavorites(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	q := r.URL.Query()
	field, value, ok := utils.UserKey(q.Get("user_id"), q.Get("user_identifier"))
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, msgUserKeyRequired)
		return
	}
	filter := bson.M{field: value}
	if tipo := q.Get("tipo"); tipo != "" {
		filter["tipo"] = tipo
	}

	col, err := db.Collection(ctx, db.FavoritesCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	cursor, err := col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	defer cursor.Close(ctx)

	var favoritos []bson.M
	if err := cursor.All(ctx, &favoritos); err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NormalizeAll(favoritos))
}

// AddFavorite handles POST /api/favoritos. Adding the same item twice returns
// the stored favorite with 200 instead of inserting a duplicate.
func AddFavorite(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	favorito, err := utils.DecodeDocument(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	utils.StripFields(favorito, "id", "_id")

	field, value, ok := utils.UserKey(utils.StringField(favorito, "user_id"), utils.StringField(favorito, "user_identifier"))
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, msgUserKeyRequired)
		return
	}
	itemID := utils.StringField(favorito, "item_id")
	tipo := utils.StringField(favorito, "tipo")
	if itemID == "" || tipo == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "item_id e tipo são obrigatórios")
		return
	}

	col, err := db.Collection(ctx, db.FavoritesCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	var existing bson.M
	err = col.FindOne(ctx, bson.M{field: value, "item_id": itemID, "tipo": tipo}).Decode(&existing)
	switch {
	case err == nil:
		utils.RespondWithJSON(w, http.StatusOK, utils.NormalizeID(existing))
		return
	case !errors.Is(err, mongo.ErrNoDocuments):
		utils.RespondWithServerError(w, r, err)
		return
	}

	favorito["_id"] = primitive.NewObjectID()
	favorito["created_at"] = time.Now().UTC()
	if _, err := col.InsertOne(ctx, favorito); err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.NormalizeID(favorito))
}

// RemoveFavorite handles DELETE /api/favoritos?user_id|user_identifier&tipo&item_id.
func RemoveFavorite(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	q := r.URL.Query()
	field, value, ok := utils.UserKey(q.Get("user_id"), q.Get("user_identifier"))
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, msgUserKeyRequired)
		return
	}
	itemID, tipo := q.Get("item_id"), q.Get("tipo")
	if itemID == "" || tipo == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "item_id e tipo são obrigatórios")
		return
	}

	col, err := db.Collection(ctx, db.FavoritesCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	res, err := col.DeleteOne(ctx, bson.M{field: value, "item_id": itemID, "tipo": tipo})
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "deletedCount": res.DeletedCount})
}
