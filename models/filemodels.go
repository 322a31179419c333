package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoredFile is an uploaded blob kept inline as base64.
type StoredFile struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Type      string             `json:"type" bson:"type"`
	Data      string             `json:"-" bson:"data"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

type UploadRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

type UploadResponse struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}
