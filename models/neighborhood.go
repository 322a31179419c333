package models

import "time"

// Bairro is a neighbourhood row from the Supabase (Postgres) reference tables.
type Bairro struct {
	ID                 string         `json:"id" db:"id"`
	Slug               string         `json:"slug" db:"slug"`
	NomeExibicao       string         `json:"nome_exibicao" db:"nome_exibicao"`
	GrupoColeta        *string        `json:"grupo_coleta" db:"grupo_coleta"`
	SetorColeta        *int32         `json:"setor_coleta" db:"setor_coleta"`
	ServicosEssenciais map[string]any `json:"servicos_essenciais,omitempty" db:"servicos_essenciais"`
	Agenda             map[string]any `json:"agenda,omitempty" db:"agenda"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"`
}

// SetorColeta is a waste-collection sector.
type SetorColeta struct {
	ID             string           `json:"id" db:"id"`
	Numero         int32            `json:"numero" db:"numero"`
	Semana         int32            `json:"semana" db:"semana"`
	Bairros        []string         `json:"bairros" db:"bairros"`
	Calendario2026 map[string][]int `json:"calendario_2026,omitempty" db:"calendario_2026"`
}
