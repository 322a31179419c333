package bairros

import (
	"context"
	"errors"
	"fmt"

	"aquiguaira/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("bairro not found")

// Store reads and writes the neighbourhood reference tables.
type Store interface {
	List(ctx context.Context) ([]models.Bairro, error)
	BySlug(ctx context.Context, slug string) (models.Bairro, error)
	Setores(ctx context.Context) ([]models.SetorColeta, error)
	Upsert(ctx context.Context, bairros []models.Bairro) (int, error)
}

const bairroColumns = `id::text AS id, slug, nome_exibicao, grupo_coleta::text AS grupo_coleta,
	setor_coleta, servicos_essenciais, agenda, created_at, updated_at`

// PGStore is the Store backed by Supabase Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) List(ctx context.Context) ([]models.Bairro, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+bairroColumns+` FROM bairros ORDER BY nome_exibicao`)
	if err != nil {
		return nil, fmt.Errorf("query bairros: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Bairro])
	if err != nil {
		return nil, fmt.Errorf("scan bairros: %w", err)
	}
	return out, nil
}

func (s *PGStore) BySlug(ctx context.Context, slug string) (models.Bairro, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+bairroColumns+` FROM bairros WHERE slug = $1`, slug)
	if err != nil {
		return models.Bairro{}, fmt.Errorf("query bairro: %w", err)
	}
	b, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Bairro])
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Bairro{}, ErrNotFound
	}
	if err != nil {
		return models.Bairro{}, fmt.Errorf("scan bairro: %w", err)
	}
	return b, nil
}

func (s *PGStore) Setores(ctx context.Context) ([]models.SetorColeta, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text AS id, numero, semana, bairros, calendario_2026 FROM setores_coleta ORDER BY numero`)
	if err != nil {
		return nil, fmt.Errorf("query setores: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.SetorColeta])
	if err != nil {
		return nil, fmt.Errorf("scan setores: %w", err)
	}
	return out, nil
}

// Upsert writes bairros keyed by slug in a single batch round trip.
func (s *PGStore) Upsert(ctx context.Context, bairros []models.Bairro) (int, error) {
	batch := &pgx.Batch{}
	for _, b := range bairros {
		batch.Queue(`INSERT INTO bairros (slug, nome_exibicao, grupo_coleta, setor_coleta, servicos_essenciais, agenda)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (slug) DO UPDATE SET
				nome_exibicao = EXCLUDED.nome_exibicao,
				grupo_coleta = EXCLUDED.grupo_coleta,
				setor_coleta = EXCLUDED.setor_coleta,
				servicos_essenciais = EXCLUDED.servicos_essenciais,
				agenda = EXCLUDED.agenda,
				updated_at = now()`,
			b.Slug, b.NomeExibicao, b.GrupoColeta, b.SetorColeta, b.ServicosEssenciais, b.Agenda)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range bairros {
		if _, err := br.Exec(); err != nil {
			return i, fmt.Errorf("upsert %s: %w", bairros[i].Slug, err)
		}
	}
	return len(bairros), nil
}
