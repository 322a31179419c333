package admin

import (
	"net/http"
	"time"

	"aquiguaira/utils"

	"github.com/julienschmidt/httprouter"
)

const requestBudget = 15 * time.Second

// Get dispatches GET /api/admin?action=stats|logs|usuarios.
func Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	switch r.URL.Query().Get("action") {
	case "stats":
		GetStats(w, r, ps)
	case "logs":
		GetLogs(w, r, ps)
	case "usuarios":
		GetUsers(w, r, ps)
	default:
		utils.RespondWithError(w, http.StatusBadRequest, "Ação inválida")
	}
}

// Patch dispatches PATCH /api/admin?action=toggle_admin&id=.
func Patch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if r.URL.Query().Get("action") != "toggle_admin" {
		utils.RespondWithError(w, http.StatusBadRequest, "Ação inválida")
		return
	}
	ToggleAdmin(w, r, ps)
}

// Delete dispatches DELETE /api/admin?action=usuario&id=.
func Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if r.URL.Query().Get("action") != "usuario" {
		utils.RespondWithError(w, http.StatusBadRequest, "Ação inválida")
		return
	}
	DeleteUser(w, r, ps)
}
