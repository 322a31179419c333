package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Nome      string             `json:"nome" bson:"nome"`
	Senha     string             `json:"-" bson:"senha"`
	IsAdmin   bool               `json:"is_admin" bson:"is_admin,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// UserResponse is what auth endpoints return; it never carries the hash.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Nome      string    `json:"nome"`
	IsAdmin   bool      `json:"is_admin,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Token     string    `json:"token,omitempty"`
}

func (u User) Response() UserResponse {
	return UserResponse{
		ID:        u.ID.Hex(),
		Email:     u.Email,
		Nome:      u.Nome,
		CreatedAt: u.CreatedAt,
	}
}
