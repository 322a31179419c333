package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aquiguaira/db"
	"aquiguaira/middleware"
	"aquiguaira/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func countResponses(counts ...int64) []bson.D {
	out := make([]bson.D, 0, len(counts))
	for _, n := range counts {
		out = append(out, mtest.CreateCursorResponse(0, "empresas.x", mtest.FirstBatch, bson.D{{Key: "n", Value: n}}))
	}
	return out
}

func TestGetStats(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("json", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		mt.AddMockResponses(countResponses(10, 7, 1, 20, 15, 5, 30, 2)...)

		rec := httptest.NewRecorder()
		Get(rec, httptest.NewRequest(http.MethodGet, "/api/admin?action=stats", nil), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var got models.AdminStats
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		want := models.AdminStats{
			TotalEmpresas: 10, EmpresasAtivas: 7, EmpresasBloqueadas: 1,
			TotalPosts: 20, PostsAprovados: 15, PostsPendentes: 5,
			TotalUsuarios: 30, TotalAdmins: 2,
		}
		if got != want {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	})

	mt.Run("pdf", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		mt.AddMockResponses(countResponses(1, 1, 0, 2, 1, 1, 3, 1)...)

		rec := httptest.NewRecorder()
		Get(rec, httptest.NewRequest(http.MethodGet, "/api/admin?action=stats&format=pdf", nil), nil)
		if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
			t.Fatalf("Content-Type = %s", ct)
		}
		if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
			t.Fatal("body is not a PDF")
		}
	})
}

func TestStatsPDF(t *testing.T) {
	out, err := StatsPDF(models.AdminStats{TotalEmpresas: 3}, time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("missing PDF header")
	}
}

func TestToggleAdmin(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID()

	mt.Run("flips flag", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "is_admin", Value: true},
		}}))

		rec := httptest.NewRecorder()
		Patch(rec, httptest.NewRequest(http.MethodPatch, "/api/admin?action=toggle_admin&id="+id.Hex(), nil), nil)
		var got map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusOK || got["is_admin"] != true {
			t.Fatalf("unexpected %d %v", rec.Code, got)
		}
	})

	mt.Run("unknown user", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		rec := httptest.NewRecorder()
		Patch(rec, httptest.NewRequest(http.MethodPatch, "/api/admin?action=toggle_admin&id="+id.Hex(), nil), nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestDeleteUserNotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("404", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		rec := httptest.NewRecorder()
		Delete(rec, httptest.NewRequest(http.MethodDelete, "/api/admin?action=usuario&id="+primitive.NewObjectID().Hex(), nil), nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestGetUsersHidesPassword(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "empresas.usuarios", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "email", Value: "a@b.c"}},
		))

		rec := httptest.NewRecorder()
		Get(rec, httptest.NewRequest(http.MethodGet, "/api/admin?action=usuarios", nil), nil)
		var got []map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0]["email"] != "a@b.c" || got[0]["id"] == nil {
			t.Fatalf("unexpected %v", got)
		}
	})
}

func TestGetLogsPagination(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("page 3 skips 200", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "empresas.admin_logs", mtest.FirstBatch))

		rec := httptest.NewRecorder()
		Get(rec, httptest.NewRequest(http.MethodGet, "/api/admin?action=logs&page=3", nil), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		started := mt.GetStartedEvent()
		if started == nil {
			t.Fatal("no find issued")
		}
		if skip, ok := started.Command.Lookup("skip").AsInt64OK(); !ok || skip != 200 {
			t.Fatalf("skip = %v: %s", skip, started.Command)
		}
	})

	mt.Run("overflowing page is 400", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)

		rec := httptest.NewRecorder()
		Get(rec, httptest.NewRequest(http.MethodGet, "/api/admin?action=logs&page=9223372036854775807", nil), nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		if started := mt.GetStartedEvent(); started != nil {
			t.Fatalf("no query expected, got %s", started.CommandName)
		}
	})
}

func TestRoutesRequireAdmin(t *testing.T) {
	h := middleware.RequireAdmin(Get)
	user, err := middleware.IssueToken("u1", "u@example.com", nil, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"non-admin", "Bearer " + user, http.StatusForbidden},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin?action=stats", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h(rec, req, nil)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
