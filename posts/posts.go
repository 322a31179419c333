package posts

import (
	"context"
	"net/http"
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

const (
	msgPostNotFound = "Post não encontrado"
	defaultLimit    = 50
	requestBudget   = 10 * time.Second
)

// ListFilter builds the posts query. Without an owner filter only approved
// posts are visible to non-admins.
func ListFilter(empresaID, userID string, admin bool) bson.M {
	filter := bson.M{}
	if empresaID != "" {
		filter["empresa_id"] = empresaID
	}
	if userID != "" {
		filter["user_id"] = userID
	}
	if !admin && empresaID == "" && userID == "" {
		filter["status"] = models.StatusApproved
	}
	return filter
}

// GetPosts handles GET /api/posts and GET /api/posts?action=comentarios.
func GetPosts(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	q := r.URL.Query()
	if q.Get("action") == "comentarios" {
		GetComments(w, r, ps)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	col, err := db.Collection(ctx, db.PostsCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	filter := ListFilter(q.Get("empresaId"), q.Get("userId"), utils.IsAdminView(r))
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(utils.ParseLimit(r, "limite", defaultLimit))

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	defer cursor.Close(ctx)

	var posts []bson.M
	if err := cursor.All(ctx, &posts); err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NormalizeAll(posts))
}

// CreatePost handles POST /api/posts. New posts always wait for moderation.
func CreatePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if r.URL.Query().Get("action") == "comentario" {
		CreateComment(w, r, ps)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	post, err := utils.DecodeDocument(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	utils.StripFields(post, "id", "_id")

	if conteudo, ok := post["conteudo"].(string); ok {
		post["conteudo"] = StripMarkup(conteudo)
	}
	post["_id"] = primitive.NewObjectID()
	post["status"] = models.StatusPending
	post["curtidas"] = 0
	post["visualizacoes"] = 0
	post["created_at"] = time.Now().UTC()

	col, err := db.Collection(ctx, db.PostsCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	if _, err := col.InsertOne(ctx, post); err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	post = utils.NormalizeID(post)
	go mq.Emit(context.WithoutCancel(ctx), models.Event{
		Type:       models.EventPostCreated,
		EntityType: "post",
		EntityID:   post["id"].(string),
		Summary:    utils.StringField(post, "titulo"),
	})

	utils.RespondWithJSON(w, http.StatusCreated, post)
}

// UpdatePost handles PATCH /api/posts?id=[&action=curtir]. Comment updates
// are routed to UpdateComment.
func UpdatePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	q := r.URL.Query()
	if isCommentTarget(q) {
		UpdateComment(w, r, ps)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	id := q.Get("id")
	if id == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "ID do post é obrigatório")
		return
	}
	oid, err := utils.ParseObjectID(id)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	var update bson.M
	message := "Post atualizado com sucesso"
	if q.Get("action") == "curtir" {
		update = bson.M{"$inc": bson.M{"curtidas": 1}}
		message = "Curtida registrada"
	} else {
		body, err := utils.DecodeDocument(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "JSON inválido")
			return
		}
		utils.StripFields(body, "id", "_id")
		if conteudo, ok := body["conteudo"].(string); ok {
			body["conteudo"] = StripMarkup(conteudo)
		}
		body["updated_at"] = time.Now().UTC()
		update = bson.M{"$set": body}
	}

	col, err := db.Collection(ctx, db.PostsCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	res, err := col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, msgPostNotFound)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": message})
}

// DeletePost handles DELETE /api/posts?id=. Comment deletes are routed to
// DeleteComment.
func DeletePost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	q := r.URL.Query()
	if isCommentTarget(q) {
		DeleteComment(w, r, ps)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	id := q.Get("id")
	if id == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "ID do post é obrigatório")
		return
	}
	oid, err := utils.ParseObjectID(id)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	col, err := db.Collection(ctx, db.PostsCollection)
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
		utils.RespondWithError(w, http.StatusNotFound, msgPostNotFound)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Post excluído com sucesso"})
}
