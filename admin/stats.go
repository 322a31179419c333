package admin

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"aquiguaira/db"
	"aquiguaira/models"
	"aquiguaira/rdx"
	"aquiguaira/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	statsCacheKey = "admin:stats"
	statsCacheTTL = 30 * time.Second
)

type counter struct {
	collection string
	filter     bson.M
	dst        *int64
}

// CollectStats runs the dashboard counts. Results are cached briefly.
func CollectStats(ctx context.Context) (models.AdminStats, error) {
	var s models.AdminStats
	if rdx.GetJSON(ctx, statsCacheKey, &s) {
		return s, nil
	}

	counters := []counter{
		{db.CompaniesCollection, bson.M{}, &s.TotalEmpresas},
		{db.CompaniesCollection, bson.M{"status": models.StatusApproved, "ativa": true}, &s.EmpresasAtivas},
		{db.CompaniesCollection, bson.M{"ativa": false}, &s.EmpresasBloqueadas},
		{db.PostsCollection, bson.M{}, &s.TotalPosts},
		{db.PostsCollection, bson.M{"status": models.StatusApproved}, &s.PostsAprovados},
		{db.PostsCollection, bson.M{"status": models.StatusPending}, &s.PostsPendentes},
		{db.UserCollection, bson.M{}, &s.TotalUsuarios},
		{db.UserCollection, bson.M{"is_admin": true}, &s.TotalAdmins},
	}

	for _, c := range counters {
		col, err := db.Collection(ctx, c.collection)
		if err != nil {
			return s, err
		}
		n, err := col.CountDocuments(ctx, c.filter)
		if err != nil {
			return s, fmt.Errorf("count %s: %w", c.collection, err)
		}
		*c.dst = n
	}

	rdx.SetJSON(ctx, statsCacheKey, s, statsCacheTTL)
	return s, nil
}

// GetStats handles GET /api/admin?action=stats[&format=pdf].
func GetStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	stats, err := CollectStats(ctx)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") != "pdf" {
		utils.RespondWithJSON(w, http.StatusOK, stats)
		return
	}

	report, err := StatsPDF(stats, time.Now())
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="relatorio-admin.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(report)))
	w.WriteHeader(http.StatusOK)
	w.Write(report)
}

// StatsPDF renders the dashboard numbers as a one-page report.
func StatsPDF(s models.AdminStats, at time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr("Relatório administrativo"))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, tr("Gerado em "+at.Format("02/01/2006 15:04")))
	pdf.Ln(12)

	rows := []struct {
		label string
		value int64
	}{
		{"Total de empresas", s.TotalEmpresas},
		{"Empresas ativas", s.EmpresasAtivas},
		{"Empresas bloqueadas", s.EmpresasBloqueadas},
		{"Total de posts", s.TotalPosts},
		{"Posts aprovados", s.PostsAprovados},
		{"Posts pendentes", s.PostsPendentes},
		{"Total de usuários", s.TotalUsuarios},
		{"Administradores", s.TotalAdmins},
	}

	pdf.SetFont("Arial", "", 12)
	for _, row := range rows {
		pdf.CellFormat(120, 9, tr(row.label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 9, strconv.FormatInt(row.value, 10), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
