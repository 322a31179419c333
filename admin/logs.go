package admin

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

const defaultLogLimit = 100

// GetLogs handles GET /api/admin?action=logs[&page=&limit=].
func GetLogs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	page, limit := utils.ParsePagination(r, defaultLogLimit)
	skip, err := utils.Skip(page, limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Paginação inválida")
		return
	}

	col, err := db.Collection(ctx, db.AdminLogsCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cursor, err := col.Find(ctx, bson.M{}, opts)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	defer cursor.Close(ctx)

	var logs []bson.M
	if err := cursor.All(ctx, &logs); err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NormalizeAll(logs))
}

// CreateLog handles POST /api/admin.
func CreateLog(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	entry, err := utils.DecodeDocument(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	utils.StripFields(entry, "id", "_id")
	entry["_id"] = primitive.NewObjectID()
	entry["created_at"] = time.Now().UTC()
	if userID := utils.GetUserIDFromRequest(r); userID != "" {
		entry["admin_id"] = userID
	}

	col, err := db.Collection(ctx, db.AdminLogsCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	if _, err := col.InsertOne(ctx, entry); err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.NormalizeID(entry))
}
