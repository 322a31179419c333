package posts

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"aquiguaira/db"
	"aquiguaira/models"
	"aquiguaira/mq"
	"aquiguaira/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const msgCommentNotFound = "Comentário não encontrado"

func isCommentTarget(q url.Values) bool {
	return q.Get("action") == "comentario" || q.Get("comentarioId") != ""
}

// commentID prefers comentarioId over id.
func commentID(q url.Values) string {
	if id := q.Get("comentarioId"); id != "" {
		return id
	}
	return q.Get("id")
}

// GetComments returns the approved comments of a post, oldest first.
func GetComments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	postID := r.URL.Query().Get("postId")
	if postID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "postId é obrigatório")
		return
	}

	col, err := db.Collection(ctx, db.CommentsCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	filter := bson.M{"post_id": postID, "status": models.StatusApproved}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	defer cursor.Close(ctx)

	var comentarios []bson.M
	if err := cursor.All(ctx, &comentarios); err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NormalizeAll(comentarios))
}

// CreateComment publishes a comment immediately.
func CreateComment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	comentario, err := utils.DecodeDocument(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	utils.StripFields(comentario, "id", "_id")

	if conteudo, ok := comentario["conteudo"].(string); ok {
		comentario["conteudo"] = StripMarkup(conteudo)
	}
	comentario["_id"] = primitive.NewObjectID()
	comentario["status"] = models.StatusApproved
	comentario["curtidas"] = 0
	comentario["created_at"] = time.Now().UTC()

	col, err := db.Collection(ctx, db.CommentsCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	if _, err := col.InsertOne(ctx, comentario); err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	comentario = utils.NormalizeID(comentario)
	go mq.Emit(context.WithoutCancel(ctx), models.Event{
		Type:       models.EventCommentCreated,
		EntityType: "comentario",
		EntityID:   comentario["id"].(string),
		Summary:    utils.StringField(comentario, "post_id"),
	})

	utils.RespondWithJSON(w, http.StatusCreated, comentario)
}

func UpdateComment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	id := commentID(r.URL.Query())
	if id == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "ID do comentário é obrigatório")
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

	col, err := db.Collection(ctx, db.CommentsCollection)
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
		utils.RespondWithError(w, http.StatusNotFound, msgCommentNotFound)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Comentário atualizado"})
}

func DeleteComment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	id := commentID(r.URL.Query())
	if id == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "ID do comentário é obrigatório")
		return
	}
	oid, err := utils.ParseObjectID(id)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	col, err := db.Collection(ctx, db.CommentsCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	if _, err := col.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Comentário excluído"})
}
