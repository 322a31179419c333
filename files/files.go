package files

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"aquiguaira/db"
	"aquiguaira/models"
	"aquiguaira/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// maxUploadBytes matches the BSON document limit.
var maxUploadBytes int64 = 16 << 20

// Upload handles POST /api/upload with a JSON {name, type, data} body.
func Upload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var req models.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondWithError(w, http.StatusRequestEntityTooLarge, "Arquivo muito grande")
			return
		}
		utils.RespondWithError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.Data == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Dados da imagem são obrigatórios")
		return
	}
	if _, err := DecodeData(req.Data); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Dados da imagem inválidos")
		return
	}

	file := models.StoredFile{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Type:      req.Type,
		Data:      req.Data,
		CreatedAt: time.Now().UTC(),
	}
	if file.Name == "" {
		file.Name = defaultName
	}
	if file.Type == "" {
		file.Type = defaultType
	}

	col, err := db.Collection(ctx, db.FilesCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	if _, err := col.InsertOne(ctx, file); err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	id := file.ID.Hex()
	utils.RespondWithJSON(w, http.StatusOK, models.UploadResponse{
		URL: "/api/files?id=" + id,
		ID:  id,
	})
}

// ServeFile handles GET /api/files?id=[&w=].
func ServeFile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	q := r.URL.Query()
	oid, err := utils.ParseObjectID(q.Get("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	col, err := db.Collection(ctx, db.FilesCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	var file models.StoredFile
	if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&file); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, "Arquivo não encontrado")
			return
		}
		utils.RespondWithServerError(w, r, err)
		return
	}

	buf, err := DecodeData(file.Data)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	contentType := file.Type
	if contentType == "" {
		contentType = defaultType
	}

	if width, err := strconv.Atoi(q.Get("w")); err == nil && width > 0 && width <= maxWidth {
		if resized, outType, err := Resize(buf, contentType, width); err == nil {
			buf, contentType = resized, outType
		} else {
			log.Printf("resize %s: %v", oid.Hex(), err)
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf)
}
