package companies

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"aquiguaira/db"
	"aquiguaira/globals"
	"aquiguaira/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const qrSize = 256

// ProfileURL is the public page a company's QR code points to.
func ProfileURL(slug string) string {
	return strings.TrimRight(globals.PublicBaseURL, "/") + "/empresa/" + slug
}

// CompanyQRCode handles GET /api/empresas/qrcode/:id and returns a PNG.
func CompanyQRCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	oid, err := utils.ParseObjectID(ps.ByName("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	col, err := db.Collection(ctx, db.CompaniesCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	filter := VisibilityFilter(utils.IsAdminView(r))
	filter["_id"] = oid

	var empresa bson.M
	err = col.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"slug": 1})).Decode(&empresa)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, msgNotFound)
			return
		}
		utils.RespondWithServerError(w, r, err)
		return
	}

	slug := utils.StringField(empresa, "slug")
	if slug == "" {
		slug = oid.Hex()
	}

	png, err := qrcode.Encode(ProfileURL(slug), qrcode.Medium, qrSize)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
