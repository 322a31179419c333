package companies

import (
	"net/url"
	"regexp"
	"strings"

	"aquiguaira/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VisibilityFilter is the base of every directory read. Non-admin callers
// only ever see approved companies that were not deactivated.
func VisibilityFilter(admin bool) bson.M {
	if admin {
		return bson.M{}
	}
	return bson.M{
		"status": models.StatusApproved,
		"ativa":  bson.M{"$ne": false},
	}
}

// ListFilter turns listing query parameters into a Mongo filter.
func ListFilter(q url.Values, admin bool) bson.M {
	filter := VisibilityFilter(admin)

	if tel := q.Get("responsavel_telefone"); tel != "" {
		filter["responsavel_telefone"] = tel
	}

	if categoria := q.Get("categoria"); categoria != "" {
		if categoria == "destaque" {
			filter["destaque"] = true
		} else {
			filter["categoria_id"] = categoria
		}
	}

	if bairro := q.Get("bairro"); bairro != "" {
		filter["bairro"] = bairro
	}

	if q.Get("destaque") == "true" {
		filter["destaque"] = true
	}

	if busca := strings.TrimSpace(q.Get("busca")); busca != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(busca), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"nome": rx},
			bson.M{"descricao": rx},
			bson.M{"tags": rx},
		}
	}

	return filter
}
