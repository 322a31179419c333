package jobs

import (
	"context"
	"errors"
	"net/http"
	"time"

	"aquiguaira/db"
	"aquiguaira/models"
	"aquiguaira/mq"
	"aquiguaira/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	msgNotFound   = "Vaga não encontrada"
	msgIDRequired = "ID é obrigatório"
	requestBudget = 10 * time.Second
)

// ListFilter returns every job of an employer, or only open jobs for the
// public board.
func ListFilter(empresaID string) bson.M {
	if empresaID != "" {
		return bson.M{"empresa_id": empresaID}
	}
	return bson.M{"status": models.JobOpen}
}

// GetJobs handles GET /api/vagas[?id=|?empresa_id=].
func GetJobs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	col, err := db.Collection(ctx, db.JobsCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	q := r.URL.Query()
	if id := q.Get("id"); id != "" {
		oid, err := utils.ParseObjectID(id)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "ID inválido")
			return
		}
		var vaga bson.M
		if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&vaga); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				utils.RespondWithError(w, http.StatusNotFound, msgNotFound)
				return
			}
			utils.RespondWithServerError(w, r, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.NormalizeID(vaga))
		return
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, ListFilter(q.Get("empresa_id")), opts)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	defer cursor.Close(ctx)

	var vagas []bson.M
	if err := cursor.All(ctx, &vagas); err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NormalizeAll(vagas))
}

// CreateJob handles POST /api/vagas.
func CreateJob(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	vaga, err := utils.DecodeDocument(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	utils.StripFields(vaga, "id", "_id")
	applyDefaults(vaga)

	now := time.Now().UTC()
	vaga["_id"] = primitive.NewObjectID()
	vaga["created_at"] = now
	vaga["updated_at"] = now

	col, err := db.Collection(ctx, db.JobsCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	if _, err := col.InsertOne(ctx, vaga); err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	vaga = utils.NormalizeID(vaga)
	go mq.Emit(context.WithoutCancel(ctx), models.Event{
		Type:       models.EventJobCreated,
		EntityType: "vaga",
		EntityID:   vaga["id"].(string),
		Summary:    utils.StringField(vaga, "titulo"),
	})

	utils.RespondWithJSON(w, http.StatusCreated, vaga)
}

// applyDefaults fills quantidade and status when missing or zero-valued.
func applyDefaults(vaga bson.M) {
	switch q := vaga["quantidade"].(type) {
	case float64:
		if q == 0 {
			vaga["quantidade"] = 1
		}
	case nil:
		vaga["quantidade"] = 1
	case string:
		if q == "" {
			vaga["quantidade"] = 1
		}
	}
	if utils.StringField(vaga, "status") == "" {
		vaga["status"] = models.JobOpen
	}
}

// UpdateJob handles PATCH /api/vagas?id=.
func UpdateJob(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	id := r.URL.Query().Get("id")
	if id == "" {
		utils.RespondWithError(w, http.StatusBadRequest, msgIDRequired)
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
	utils.StripFields(body, "id", "_id")
	body["updated_at"] = time.Now().UTC()

	col, err := db.Collection(ctx, db.JobsCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	res, err := col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": body})
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, msgNotFound)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Vaga atualizada com sucesso"})
}

// DeleteJob handles DELETE /api/vagas?id=.
func DeleteJob(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	id := r.URL.Query().Get("id")
	if id == "" {
		utils.RespondWithError(w, http.StatusBadRequest, msgIDRequired)
		return
	}
	oid, err := utils.ParseObjectID(id)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	col, err := db.Collection(ctx, db.JobsCollection)
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
		utils.RespondWithError(w, http.StatusNotFound, msgNotFound)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Vaga excluída com sucesso"})
}
