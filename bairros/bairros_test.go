package bairros

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"aquiguaira/models"
)

type fakeStore struct {
	bairros []models.Bairro
	setores []models.SetorColeta
	err     error
}

func (f *fakeStore) List(context.Context) ([]models.Bairro, error) { return f.bairros, f.err }

func (f *fakeStore) BySlug(_ context.Context, slug string) (models.Bairro, error) {
	for _, b := range f.bairros {
		if b.Slug == slug {
			return b, nil
		}
	}
	return models.Bairro{}, ErrNotFound
}

func (f *fakeStore) Setores(context.Context) ([]models.SetorColeta, error) { return f.setores, f.err }

func (f *fakeStore) Upsert(_ context.Context, b []models.Bairro) (int, error) {
	f.bairros = append(f.bairros, b...)
	return len(b), nil
}

func TestHandlerUnconfigured(t *testing.T) {
	h := NewHandler(nil)
	for _, fn := range []func(http.ResponseWriter, *http.Request){
		func(w http.ResponseWriter, r *http.Request) { h.Get(w, r, nil) },
		func(w http.ResponseWriter, r *http.Request) { h.Setores(w, r, nil) },
	} {
		rec := httptest.NewRecorder()
		fn(rec, httptest.NewRequest(http.MethodGet, "/api/bairros", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	}
}

func TestHandlerGet(t *testing.T) {
	store := &fakeStore{bairros: []models.Bairro{
		{ID: "1", Slug: "centro", NomeExibicao: "Centro"},
		{ID: "2", Slug: "jardim-paulista", NomeExibicao: "Jardim Paulista"},
	}}
	h := NewHandler(store)

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/bairros", nil), nil)
	var list []models.Bairro
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 bairros, got %d", len(list))
	}

	rec = httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/bairros?slug=centro", nil), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/bairros?slug=nenhum", nil), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandlerStoreError(t *testing.T) {
	h := NewHandler(&fakeStore{err: errors.New("connection refused")})
	rec := httptest.NewRecorder()
	h.Setores(rec, httptest.NewRequest(http.MethodGet, "/api/bairros/setores", nil), nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHandlerEmptyListIsArray(t *testing.T) {
	h := NewHandler(&fakeStore{})
	rec := httptest.NewRecorder()
	h.Setores(rec, httptest.NewRequest(http.MethodGet, "/api/bairros/setores", nil), nil)
	if got := rec.Body.String(); got != "[]\n" {
		t.Fatalf("expected [], got %q", got)
	}
}

func TestPrepare(t *testing.T) {
	var coleta ColetaFile
	if err := json.Unmarshal([]byte(`{"setores":{
		"1":{"bairros":["Centro","Res. Jardim América"]},
		"2":{"bairros":["Parque dos Lagos"]}
	}}`), &coleta); err != nil {
		t.Fatal(err)
	}
	idx, err := SectorIndex(coleta)
	if err != nil {
		t.Fatal(err)
	}

	seed := SeedFile{Bairros: []SeedBairro{
		{Slug: "centro", NomeExibicao: "Centro ", GrupoColeta: float64(3)},
		{Slug: "centro", NomeExibicao: "Centro duplicado"},
		{Slug: "residencial-jardim-america", NomeExibicao: "Residencial Jardim América"},
		{Slug: "pq-dos-lagos", NomeExibicao: "Pq. dos Lagos"},
		{Slug: "vila-nova", NomeExibicao: "Vila Nova"},
	}}

	rows, unmatched := Prepare(seed, idx)
	if len(rows) != 4 {
		t.Fatalf("expected 4 unique bairros, got %d", len(rows))
	}
	want := map[string]int32{"centro": 1, "residencial-jardim-america": 1, "pq-dos-lagos": 2}
	for _, r := range rows {
		n, ok := want[r.Slug]
		if !ok {
			if r.SetorColeta != nil {
				t.Errorf("%s: unexpected sector %d", r.Slug, *r.SetorColeta)
			}
			continue
		}
		if r.SetorColeta == nil || *r.SetorColeta != n {
			t.Errorf("%s: sector = %v, want %d", r.Slug, r.SetorColeta, n)
		}
	}
	if rows[0].Slug != "centro" || rows[0].NomeExibicao != "Centro " {
		t.Errorf("first occurrence should win, got %+v", rows[0])
	}
	if rows[0].GrupoColeta == nil || *rows[0].GrupoColeta != "3" {
		t.Errorf("grupo_coleta = %v", rows[0].GrupoColeta)
	}
	if len(unmatched) != 1 || unmatched[0] != "Vila Nova" {
		t.Errorf("unmatched = %v", unmatched)
	}
}
