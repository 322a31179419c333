package bairros

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"aquiguaira/models"
)

// SeedFile is the bairros JSON export.
type SeedFile struct {
	Bairros []SeedBairro `json:"bairros"`
}

type SeedBairro struct {
	Slug               string         `json:"slug"`
	NomeExibicao       string         `json:"nome_exibicao"`
	GrupoColeta        any            `json:"grupo_coleta"`
	ServicosEssenciais map[string]any `json:"servicos_essenciais"`
	Agenda             map[string]any `json:"agenda"`
}

// ColetaFile is the waste-collection schedule keyed by sector number.
type ColetaFile struct {
	Setores map[string]struct {
		Bairros []string `json:"bairros"`
	} `json:"setores"`
}

// abbreviations are tried in both directions when a name has no exact match.
var abbreviations = [][2]string{
	{"residencial", "res."},
	{"desmembramento", "desm."},
	{"conjunto habitacional", "c. hab."},
	{"distrito industrial", "dist. ind."},
	{"parque", "pq."},
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SectorIndex maps a normalised bairro name to its collection sector.
func SectorIndex(c ColetaFile) (map[string]int32, error) {
	idx := make(map[string]int32)
	for num, setor := range c.Setores {
		n, err := strconv.ParseInt(num, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("setor %q: %w", num, err)
		}
		for _, nome := range setor.Bairros {
			idx[normalizeName(nome)] = int32(n)
		}
	}
	return idx, nil
}

// FindSector looks a display name up in idx, trying common abbreviations.
func FindSector(idx map[string]int32, nome string) (int32, bool) {
	key := normalizeName(nome)
	if n, ok := idx[key]; ok {
		return n, true
	}
	for _, ab := range abbreviations {
		for _, v := range []string{
			strings.TrimSpace(strings.ReplaceAll(key, ab[0], ab[1])),
			strings.TrimSpace(strings.ReplaceAll(key, ab[1], ab[0])),
		} {
			if n, ok := idx[v]; ok {
				return n, true
			}
		}
	}
	return 0, false
}

// Prepare keeps the first bairro of each slug, resolves its sector and
// returns the rows sorted by slug along with the names left without a sector.
func Prepare(seed SeedFile, idx map[string]int32) (rows []models.Bairro, unmatched []string) {
	seen := make(map[string]bool, len(seed.Bairros))
	for _, b := range seed.Bairros {
		if b.Slug == "" || seen[b.Slug] {
			continue
		}
		seen[b.Slug] = true

		row := models.Bairro{
			Slug:               b.Slug,
			NomeExibicao:       b.NomeExibicao,
			ServicosEssenciais: b.ServicosEssenciais,
			Agenda:             b.Agenda,
		}
		if b.GrupoColeta != nil {
			g := fmt.Sprint(b.GrupoColeta)
			row.GrupoColeta = &g
		}
		if n, ok := FindSector(idx, b.NomeExibicao); ok {
			row.SetorColeta = &n
		} else {
			unmatched = append(unmatched, b.NomeExibicao)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Slug < rows[j].Slug })
	return rows, unmatched
}
