package auth

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

// UpdateProfile handles PATCH /api/auth?id=. Password and admin flag cannot
// be changed here.
func UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	id := r.URL.Query().Get("id")
	if id == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "ID do usuário é obrigatório")
		return
	}
	oid, err := utils.ParseObjectID(id)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	body, err := utils.DecodeDocument(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	utils.StripFields(body, "id", "_id", "senha", "is_admin")
	body["updated_at"] = time.Now().UTC()

	col, err := db.Collection(ctx, db.UserCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"senha": 0})

	var user models.User
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": body}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, "Usuário não encontrado")
			return
		}
		utils.RespondWithServerError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user.Response())
}
