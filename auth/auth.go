package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"aquiguaira/db"
	"aquiguaira/middleware"
	"aquiguaira/models"
	"aquiguaira/mq"
	"aquiguaira/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL      = 12 * time.Hour
	bcryptCost    = 10
	requestBudget = 10 * time.Second

	msgBadCredentials = "Email ou senha incorretos"
)

type credentials struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
	Nome  string `json:"nome"`
}

// Auth handles POST /api/auth?action=register|login|admin_login.
func Auth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), requestBudget)
	defer cancel()

	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Senha == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email e senha são obrigatórios")
		return
	}

	switch r.URL.Query().Get("action") {
	case "register":
		register(ctx, w, r, in)
	case "login":
		login(ctx, w, r, in, false)
	case "admin_login":
		login(ctx, w, r, in, true)
	default:
		utils.RespondWithError(w, http.StatusBadRequest, "Ação inválida")
	}
}

func register(ctx context.Context, w http.ResponseWriter, r *http.Request, in credentials) {
	in.Nome = strings.TrimSpace(in.Nome)
	if in.Nome == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Nome é obrigatório para registro")
		return
	}

	col, err := db.Collection(ctx, db.UserCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	err = col.FindOne(ctx, bson.M{"email": in.Email}).Err()
	switch {
	case err == nil:
		utils.RespondWithError(w, http.StatusBadRequest, "Este email já está cadastrado")
		return
	case !errors.Is(err, mongo.ErrNoDocuments):
		utils.RespondWithServerError(w, r, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Senha), bcryptCost)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Email:     in.Email,
		Nome:      in.Nome,
		Senha:     string(hash),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := col.InsertOne(ctx, user); err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	resp, err := withToken(user)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	go mq.Emit(context.WithoutCancel(ctx), models.Event{
		Type:       models.EventUserRegistered,
		EntityType: "usuario",
		EntityID:   resp.ID,
		Summary:    user.Nome,
	})

	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// login verifies the password; with adminOnly set a valid non-admin user is
// refused with 403.
func login(ctx context.Context, w http.ResponseWriter, r *http.Request, in credentials, adminOnly bool) {
	col, err := db.Collection(ctx, db.UserCollection)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}

	var user models.User
	if err := col.FindOne(ctx, bson.M{"email": in.Email}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusUnauthorized, msgBadCredentials)
			return
		}
		utils.RespondWithServerError(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Senha), []byte(in.Senha)); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	if adminOnly && !user.IsAdmin {
		utils.RespondWithError(w, http.StatusForbidden, "Acesso restrito a administradores")
		return
	}

	resp, err := withToken(user)
	if err != nil {
		utils.RespondWithServerError(w, r, err)
		return
	}
	if adminOnly {
		resp.IsAdmin = true
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func withToken(user models.User) (models.UserResponse, error) {
	var roles []string
	if user.IsAdmin {
		roles = append(roles, middleware.RoleAdmin)
	}
	resp := user.Response()
	token, err := middleware.IssueToken(resp.ID, user.Email, roles, tokenTTL)
	if err != nil {
		return resp, err
	}
	resp.Token = token
	return resp, nil
}
