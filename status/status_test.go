package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"aquiguaira/db"

	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("ok", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		rec := httptest.NewRecorder()
		Status(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil), nil)
		var got map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusOK || got["status"] != "ok" {
			t.Fatalf("unexpected %d %v", rec.Code, got)
		}
	})

	mt.Run("ping fails", func(mt *mtest.T) {
		db.Use(mt.DB)
		defer db.Use(nil)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized",
		}))

		rec := httptest.NewRecorder()
		Status(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil), nil)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}
