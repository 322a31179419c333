package companies

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"aquiguaira/db"
	"aquiguaira/models"
	"aquiguaira/mq"
	"aquiguaira/rdx"
	"aquiguaira/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	msgNotFound   = "Empresa não encontrada"
	defaultLimit  = 50
	cacheTTL      = 5 * time.Minute
	requestBudget = 10 * time.Second
)

func cacheKey(kind, value string) string {
	return "empresa:" + kind + ":" + value
}

// GetCompanies handles GET /api/empresas. Lookup by id wins over slug, which
// wins over a filtered listing.
func GetCompanies(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	col, err := db.Collection(ctx, db.CompaniesCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	q := r.URL.Query()
	admin := utils.IsAdminView(r)

	if id := q.Get("id"); id != "" {
		oid, err := utils.ParseObjectID(id)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "ID inválido")
			return
		}
		filter := VisibilityFilter(admin)
		filter["_id"] = oid
		findOne(ctx, w, r, col, filter, cacheKey("id", id), admin)
		return
	}

	if slug := q.Get("slug"); slug != "" {
		filter := VisibilityFilter(admin)
		filter["slug"] = slug
		findOne(ctx, w, r, col, filter, cacheKey("slug", slug), admin)
		return
	}

	opts := options.Find().SetLimit(utils.ParseLimit(r, "limit", defaultLimit))
	cursor, err := col.Find(ctx, ListFilter(q, admin), opts)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	defer cursor.Close(ctx)

	var empresas []bson.M
	if err := cursor.All(ctx, &empresas); err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.NormalizeAll(empresas))
}

// findOne serves a single company, going through the cache for public reads.
func findOne(ctx context.Context, w http.ResponseWriter, r *http.Request, col *mongo.Collection, filter bson.M, key string, admin bool) {
	if !admin {
		var cached bson.M
		if rdx.GetJSON(ctx, key, &cached) {
			utils.RespondWithJSON(w, http.StatusOK, cached)
			return
		}
	}

	var empresa bson.M
	if err := col.FindOne(ctx, filter).Decode(&empresa); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, msgNotFound)
			return
		}
		utils.RespondWithServerError(w, r, err)
		return
	}

	empresa = utils.NormalizeID(empresa)
	if !admin {
		rdx.SetJSON(ctx, key, empresa, cacheTTL)
	}
	utils.RespondWithJSON(w, http.StatusOK, empresa)
}

// CreateCompany handles POST /api/empresas.
func CreateCompany(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	empresa, err := utils.DecodeDocument(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	utils.StripFields(empresa, "id", "_id")

	nome := strings.TrimSpace(utils.StringField(empresa, "nome"))
	slug := strings.TrimSpace(utils.StringField(empresa, "slug"))
	if nome == "" && slug == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Nome é obrigatório")
		return
	}
	if slug == "" {
		slug = utils.Slugify(nome)
	}

	now := time.Now().UTC()
	empresa["_id"] = primitive.NewObjectID()
	empresa["slug"] = slug
	empresa["visualizacoes"] = 0
	if utils.StringField(empresa, "status") == "" {
		empresa["status"] = models.StatusPending
	}
	empresa["created_at"] = now
	empresa["updated_at"] = now

	col, err := db.Collection(ctx, db.CompaniesCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	if _, err := col.InsertOne(ctx, empresa); err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	empresa = utils.NormalizeID(empresa)
	go mq.Emit(context.WithoutCancel(ctx), models.Event{
		Type:       models.EventCompanyCreated,
		EntityType: "empresa",
		EntityID:   empresa["id"].(string),
		Summary:    nome,
	})

	utils.RespondWithJSON(w, http.StatusCreated, empresa)
}

// UpdateCompany handles PATCH /api/empresas?id=[&action=increment_views].
func UpdateCompany(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	q := r.URL.Query()
	id := q.Get("id")
	if id == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "ID é obrigatório para atualização")
		return
	}
	oid, err := utils.ParseObjectID(id)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	col, err := db.Collection(ctx, db.CompaniesCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	if q.Get("action") == "increment_views" {
		opts := options.FindOneAndUpdate().SetProjection(bson.M{"slug": 1})
		var viewed bson.M
		err := col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"visualizacoes": 1}}, opts).Decode(&viewed)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				utils.RespondWithError(w, http.StatusNotFound, msgNotFound)
				return
			}
			utils.RespondWithServerError(w, r, err)
			return
		}
		invalidate(ctx, id, utils.StringField(viewed, "slug"))
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Visualização incrementada"})
		return
	}

	updateData, err := utils.DecodeDocument(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	utils.StripFields(updateData, "id", "_id")
	updateData["updated_at"] = time.Now().UTC()

	var before bson.M
	err = col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": updateData},
		options.FindOneAndUpdate().SetProjection(bson.M{"slug": 1}),
	).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, msgNotFound)
			return
		}
		utils.RespondWithServerError(w, r, err)
		return
	}

	invalidate(ctx, id, utils.StringField(before, "slug"), utils.StringField(updateData, "slug"))
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Atualizado com sucesso"})
}

// DeleteCompany handles DELETE /api/empresas?id=.
func DeleteCompany(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	id := r.URL.Query().Get("id")
	if id == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "ID é obrigatório para exclusão")
		return
	}
	oid, err := utils.ParseObjectID(id)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	col, err := db.Collection(ctx, db.CompaniesCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	var removed bson.M
	err = col.FindOneAndDelete(ctx, bson.M{"_id": oid},
		options.FindOneAndDelete().SetProjection(bson.M{"slug": 1}),
	).Decode(&removed)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, msgNotFound)
			return
		}
		utils.RespondWithServerError(w, r, err)
		return
	}

	invalidate(ctx, id, utils.StringField(removed, "slug"))
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Excluído com sucesso"})
}

func invalidate(ctx context.Context, id string, slugs ...string) {
	keys := []string{cacheKey("id", id)}
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, cacheKey("slug", s))
		}
	}
	rdx.Del(ctx, keys...)
}
