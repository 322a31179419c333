package companies

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"aquiguaira/db"
	"aquiguaira/middleware"
	"aquiguaira/models"
	"aquiguaira/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const ns = "empresas.empresas"

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestListFilterHidesUnapprovedForPublic(t *testing.T) {
	queries := []url.Values{
		{},
		{"categoria": {"alimentacao-bebidas"}},
		{"responsavel_telefone": {"17999990000"}},
		{"busca": {"pizza"}, "bairro": {"Centro"}},
		{"admin": {"true"}},
	}
	for _, q := range queries {
		filter := ListFilter(q, false)
		if filter["status"] != models.StatusApproved {
			t.Fatalf("query %v: expected status=%s, got %v", q, models.StatusApproved, filter["status"])
		}
		ativa, ok := filter["ativa"].(bson.M)
		if !ok || ativa["$ne"] != false {
			t.Fatalf("query %v: expected ativa $ne false, got %v", q, filter["ativa"])
		}
	}

	if f := ListFilter(url.Values{}, true); len(f) != 0 {
		t.Fatalf("admin filter should be empty, got %v", f)
	}
}

func TestListFilterCategoryAndSearch(t *testing.T) {
	f := ListFilter(url.Values{"categoria": {"destaque"}}, true)
	if f["destaque"] != true {
		t.Fatalf("categoria=destaque should filter on destaque, got %v", f)
	}
	if _, ok := f["categoria_id"]; ok {
		t.Fatal("categoria=destaque must not set categoria_id")
	}

	f = ListFilter(url.Values{"busca": {"a+b"}}, true)
	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 3 {
		t.Fatalf("expected 3 $or clauses, got %v", f["$or"])
	}
	rx := or[0].(bson.M)["nome"].(primitive.Regex)
	if rx.Pattern != `a\+b` || rx.Options != "i" {
		t.Fatalf("search input should be quoted and case-insensitive, got %+v", rx)
	}
}

func TestCreateCompany(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("derives slug from name", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		req := httptest.NewRequest(http.MethodPost, "/api/empresas",
			strings.NewReader(`{"nome":"Padaria São João","status":"aprovado","visualizacoes":99}`))
		rec := httptest.NewRecorder()
		CreateCompany(rec, req, nil)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["slug"] != "padaria-sao-joao" {
			t.Fatalf("unexpected slug %v", body["slug"])
		}
		if body["visualizacoes"] != float64(0) {
			t.Fatalf("views should start at 0, got %v", body["visualizacoes"])
		}
		if body["status"] != "aprovado" {
			t.Fatalf("explicit status should be kept, got %v", body["status"])
		}
		if id, _ := body["id"].(string); len(id) != 24 {
			t.Fatalf("expected hex id, got %v", body["id"])
		}
		if _, ok := body["_id"]; ok {
			t.Fatal("raw _id must not be returned")
		}
	})

	mt.Run("keeps explicit slug and defaults status", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		req := httptest.NewRequest(http.MethodPost, "/api/empresas",
			strings.NewReader(`{"nome":"Mercado Bom Preço","slug":"bom-preco"}`))
		rec := httptest.NewRecorder()
		CreateCompany(rec, req, nil)

		body := decodeBody(t, rec)
		if body["slug"] != "bom-preco" {
			t.Fatalf("unexpected slug %v", body["slug"])
		}
		if body["status"] != models.StatusPending {
			t.Fatalf("expected pending status, got %v", body["status"])
		}
	})

	mt.Run("rejects missing name", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/empresas", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		CreateCompany(rec, req, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestIncrementViews(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID().Hex()

	mt.Run("nonexistent id is 404", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		req := httptest.NewRequest(http.MethodPatch, "/api/empresas?action=increment_views&id="+id, nil)
		rec := httptest.NewRecorder()
		UpdateCompany(rec, req, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	mt.Run("existing id is 200", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: primitive.NewObjectID()}, {Key: "slug", Value: "padaria"},
		}}))

		req := httptest.NewRequest(http.MethodPatch, "/api/empresas?action=increment_views&id="+id, nil)
		rec := httptest.NewRecorder()
		UpdateCompany(rec, req, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		started := mt.GetStartedEvent()
		if started == nil || started.CommandName != "findAndModify" {
			t.Fatalf("expected findAndModify, got %+v", started)
		}
		if _, err := started.Command.LookupErr("update", "$inc", "visualizacoes"); err != nil {
			t.Fatalf("update does not increment visualizacoes: %s", started.Command)
		}
		if _, err := started.Command.LookupErr("fields", "slug"); err != nil {
			t.Fatalf("slug not fetched for cache invalidation: %s", started.Command)
		}
	})

	mt.Run("missing id is 400", func(mt *mtest.T) {
		req := httptest.NewRequest(http.MethodPatch, "/api/empresas?action=increment_views", nil)
		rec := httptest.NewRecorder()
		UpdateCompany(rec, req, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestUpdateAndDeleteNotFound(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID().Hex()

	mt.Run("patch", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		req := httptest.NewRequest(http.MethodPatch, "/api/empresas?id="+id, strings.NewReader(`{"nome":"X"}`))
		rec := httptest.NewRecorder()
		UpdateCompany(rec, req, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	mt.Run("delete", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		req := httptest.NewRequest(http.MethodDelete, "/api/empresas?id="+id, nil)
		rec := httptest.NewRecorder()
		DeleteCompany(rec, req, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	mt.Run("delete existing", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		oid, _ := primitive.ObjectIDFromHex(id)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{
			Key:   "value",
			Value: bson.D{{Key: "_id", Value: oid}, {Key: "slug", Value: "x"}},
		}))

		req := httptest.NewRequest(http.MethodDelete, "/api/empresas?id="+id, nil)
		rec := httptest.NewRecorder()
		DeleteCompany(rec, req, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestGetCompanies(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list normalizes ids", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: oid}, {Key: "nome", Value: "Padaria"}, {Key: "status", Value: "aprovado"}},
		))

		req := httptest.NewRequest(http.MethodGet, "/api/empresas?busca=pad", nil)
		rec := httptest.NewRecorder()
		GetCompanies(rec, req, nil)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var list []map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || list[0]["id"] != oid.Hex() {
			t.Fatalf("unexpected list %v", list)
		}
		if _, ok := list[0]["_id"]; ok {
			t.Fatal("raw _id leaked")
		}
	})

	mt.Run("empty list encodes as array", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		req := httptest.NewRequest(http.MethodGet, "/api/empresas", nil)
		rec := httptest.NewRecorder()
		GetCompanies(rec, req, nil)
		if strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Fatalf("expected [], got %s", rec.Body.String())
		}
	})

	mt.Run("unknown id is 404", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		req := httptest.NewRequest(http.MethodGet, "/api/empresas?id="+primitive.NewObjectID().Hex(), nil)
		rec := httptest.NewRecorder()
		GetCompanies(rec, req, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	mt.Run("malformed id is 400", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)

		req := httptest.NewRequest(http.MethodGet, "/api/empresas?id=nope", nil)
		rec := httptest.NewRecorder()
		GetCompanies(rec, req, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestSingleReadsApplyVisibility(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	oid := primitive.NewObjectID()

	for name, query := range map[string]string{
		"by id":   "id=" + oid.Hex(),
		"by slug": "slug=padaria",
	} {
		mt.Run(name, func(mt *mtest.T) {
			db.Use(mt.DB)
			defer db.Use(nil)
			mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: oid}, {Key: "slug", Value: "padaria"}}))

			rec := httptest.NewRecorder()
			GetCompanies(rec, httptest.NewRequest(http.MethodGet, "/api/empresas?"+query, nil), nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}

			started := mt.GetStartedEvent()
			if started == nil || started.CommandName != "find" {
				t.Fatalf("expected find, got %+v", started)
			}
			filter := started.Command.Lookup("filter").Document()
			if status, ok := filter.Lookup("status").StringValueOK(); !ok || status != models.StatusApproved {
				t.Fatalf("filter misses status=%s: %s", models.StatusApproved, filter)
			}
			if ativa, ok := filter.Lookup("ativa", "$ne").BooleanOK(); !ok || ativa {
				t.Fatalf("filter misses ativa != false: %s", filter)
			}
		})
	}
}

func TestAdminViewNeedsToken(t *testing.T) {
	token, err := middleware.IssueToken("a1", "admin@example.com", []string{middleware.RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	var sawAdmin bool
	h := middleware.OptionalAuth(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		sawAdmin = ListFilter(r.URL.Query(), utils.IsAdminView(r))["status"] == nil
	})

	req := httptest.NewRequest(http.MethodGet, "/api/empresas?admin=true", nil)
	h(httptest.NewRecorder(), req, nil)
	if sawAdmin {
		t.Fatal("admin=true without a token must not lift the visibility filter")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/empresas?admin=true", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h(httptest.NewRecorder(), req, nil)
	if !sawAdmin {
		t.Fatal("admin=true with an admin token should lift the visibility filter")
	}
}

func TestImportDocument(t *testing.T) {
	doc := ImportDocument(SeedCompany{Nome: "Açougue Boi Gordo", Lat: -20.3, Lng: -48.3}, "cat1")
	if doc["slug"] != "acougue-boi-gordo" {
		t.Errorf("slug = %v", doc["slug"])
	}
	if doc["status"] != models.StatusApproved || doc["verificado"] != true || doc["destaque"] != false {
		t.Errorf("import flags wrong: %v", doc)
	}
	if doc["cidade"] != "Guaíra" || doc["estado"] != "SP" {
		t.Errorf("location defaults wrong: %v", doc)
	}
	if doc["categoria_id"] != "cat1" {
		t.Errorf("categoria_id = %v", doc["categoria_id"])
	}
	if _, ok := ImportDocument(SeedCompany{Nome: "x"}, nil)["categoria_id"]; ok {
		t.Error("unknown category must not set categoria_id")
	}
}

func TestCompanyQRCode(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("png", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)

		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: oid}, {Key: "slug", Value: "padaria"}}))

		rec := httptest.NewRecorder()
		CompanyQRCode(rec, httptest.NewRequest("GET", "/api/empresas/qrcode/"+oid.Hex(), nil),
			httprouter.Params{{Key: "id", Value: oid.Hex()}})
		if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
			t.Fatalf("code = %d type = %q", rec.Code, rec.Header().Get("Content-Type"))
		}
		if !strings.HasPrefix(rec.Body.String(), "\x89PNG") {
			t.Error("body is not a PNG")
		}
	})

	mt.Run("bad id", func(mt *mtest.T) {
		rec := httptest.NewRecorder()
		CompanyQRCode(rec, httptest.NewRequest("GET", "/", nil), httprouter.Params{{Key: "id", Value: "zz"}})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %d", rec.Code)
		}
	})
}

func TestProfileURL(t *testing.T) {
	if got := ProfileURL("padaria"); !strings.HasSuffix(got, "/empresa/padaria") {
		t.Errorf("ProfileURL = %q", got)
	}
}
