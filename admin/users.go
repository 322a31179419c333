package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"aquiguaira/db"
	"aquiguaira/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const msgUserNotFound = "Usuário não encontrado"

// GetUsers lists every user without the password hash, newest first.
func GetUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	col, err := db.Collection(ctx, db.UserCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	opts := options.Find().
		SetProjection(bson.M{"senha": 0}).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, bson.M{}, opts)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	defer cursor.Close(ctx)

	var usuarios []bson.M
	if err := cursor.All(ctx, &usuarios); err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NormalizeAll(usuarios))
}

// ToggleAdmin flips is_admin in a single update so concurrent toggles do not
// read a stale flag.
func ToggleAdmin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	oid, err := utils.ParseObjectID(r.URL.Query().Get("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	col, err := db.Collection(ctx, db.UserCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	update := mongo.Pipeline{{{Key: "$set", Value: bson.M{
		"is_admin":   bson.M{"$not": bson.A{"$is_admin"}},
		"updated_at": time.Now().UTC(),
	}}}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"is_admin": 1})

	var updated struct {
		IsAdmin bool `bson:"is_admin"`
	}
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		utils.RespondWithServerError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":  fmt.Sprintf("Status admin alterado para %t", updated.IsAdmin),
		"is_admin": updated.IsAdmin,
	})
}

func DeleteUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	oid, err := utils.ParseObjectID(r.URL.Query().Get("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	col, err := db.Collection(ctx, db.UserCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, msgUserNotFound)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Usuário excluído"})
}
