package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidID = errors.New("invalid object id")

func GetUUID() string {
	return uuid.New().String()
}

// --- Request bodies ---

var ErrNotObject = errors.New("body is not a JSON object")

// DecodeDocument reads a JSON object body as a loose document. An empty body
// yields an empty document; null, arrays and scalars are rejected.
func DecodeDocument(r *http.Request) (bson.M, error) {
	doc := bson.M{}
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return bson.M{}, nil
		}
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if doc == nil {
		return nil, ErrNotObject
	}
	return doc, nil
}

// StripFields removes client-supplied keys that must never reach an update.
func StripFields(doc bson.M, keys ...string) bson.M {
	for _, k := range keys {
		delete(doc, k)
	}
	return doc
}

// --- Identifiers ---

// ParseObjectID validates a hex id taken from the query string.
func ParseObjectID(hex string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, hex)
	}
	return oid, nil
}

// NormalizeID replaces the raw _id with a string id.
func NormalizeID(doc bson.M) bson.M {
	if doc == nil {
		return nil
	}
	if raw, ok := doc["_id"]; ok {
		switch v := raw.(type) {
		case primitive.ObjectID:
			doc["id"] = v.Hex()
		case nil:
		default:
			doc["id"] = fmt.Sprint(v)
		}
		delete(doc, "_id")
	}
	return doc
}

// NormalizeAll normalises a result set and never returns nil, so an empty
// result encodes as [] rather than null.
func NormalizeAll(docs []bson.M) []bson.M {
	out := make([]bson.M, 0, len(docs))
	for _, d := range docs {
		out = append(out, NormalizeID(d))
	}
	return out
}

// StringField returns a string-valued field or "".
func StringField(doc bson.M, key string) string {
	s, _ := doc[key].(string)
	return s
}
