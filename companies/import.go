package companies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aquiguaira/models"
	"aquiguaira/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SeedCompany is one entry of the legacy company export.
type SeedCompany struct {
	Nome      string   `json:"nome"`
	Descricao string   `json:"descricao"`
	Categoria string   `json:"categoria"`
	Endereco  string   `json:"endereco"`
	Bairro    string   `json:"bairro"`
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Telefone  string   `json:"telefone"`
	Whatsapp  string   `json:"whatsapp"`
	Email     string   `json:"email"`
	Site      string   `json:"site"`
	Imagens   []string `json:"imagens"`
}

// ImportDocument maps an export entry to a stored company. Imported
// companies are approved and verified.
func ImportDocument(c SeedCompany, categoriaID any) bson.M {
	doc := bson.M{
		"nome":       c.Nome,
		"slug":       utils.Slugify(c.Nome),
		"descricao":  c.Descricao,
		"endereco":   c.Endereco,
		"bairro":     c.Bairro,
		"cidade":     "Guaíra",
		"estado":     "SP",
		"latitude":   c.Lat,
		"longitude":  c.Lng,
		"telefone":   c.Telefone,
		"whatsapp":   c.Whatsapp,
		"email":      c.Email,
		"site":       c.Site,
		"imagens":    c.Imagens,
		"status":     models.StatusApproved,
		"verificado": true,
		"destaque":   false,
		"ativa":      true,
		"updated_at": time.Now().UTC(),
	}
	if categoriaID != nil {
		doc["categoria_id"] = categoriaID
	}
	return doc
}

// Importer upserts export entries keyed by slug.
type Importer struct {
	Companies  *mongo.Collection
	Categories *mongo.Collection

	categoryIDs map[string]any
}

func (im *Importer) categoryID(ctx context.Context, nome string) (any, error) {
	if nome == "" {
		return nil, nil
	}
	if id, ok := im.categoryIDs[nome]; ok {
		return id, nil
	}
	if im.categoryIDs == nil {
		im.categoryIDs = make(map[string]any)
	}

	var cat bson.M
	err := im.Categories.FindOne(ctx, bson.M{"nome": nome}, options.FindOne().SetProjection(bson.M{"_id": 1})).Decode(&cat)
	if errors.Is(err, mongo.ErrNoDocuments) {
		im.categoryIDs[nome] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup categoria %q: %w", nome, err)
	}
	im.categoryIDs[nome] = cat["_id"]
	return cat["_id"], nil
}

// Import writes one company and reports whether it was newly inserted.
func (im *Importer) Import(ctx context.Context, c SeedCompany) (bool, error) {
	if c.Nome == "" {
		return false, errors.New("empresa sem nome")
	}
	catID, err := im.categoryID(ctx, c.Categoria)
	if err != nil {
		return false, err
	}

	doc := ImportDocument(c, catID)
	res, err := im.Companies.UpdateOne(ctx,
		bson.M{"slug": doc["slug"]},
		bson.M{
			"$set":         doc,
			"$setOnInsert": bson.M{"created_at": time.Now().UTC(), "visualizacoes": 0},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("upsert %s: %w", c.Nome, err)
	}
	return res.UpsertedCount > 0, nil
}
