package models

import "time"

// Event is a domain notification fanned out to admin dashboards.
type Event struct {
	Type       string    `json:"type"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Summary    string    `json:"summary,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	EventCompanyCreated = "empresa.criada"
	EventPostCreated    = "post.criado"
	EventCommentCreated = "comentario.criado"
	EventJobCreated     = "vaga.criada"
	EventUserRegistered = "usuario.registrado"
)
