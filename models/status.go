package models

// Status values as stored by the frontend.
const (
	StatusPending  = "pendente"
	StatusApproved = "aprovado"
	StatusActive   = "ativo"

	JobOpen   = "aberta"
	JobClosed = "fechada"
)

// AdminStats backs GET /api/admin?action=stats.
type AdminStats struct {
	TotalEmpresas      int64 `json:"total_empresas"`
	EmpresasAtivas     int64 `json:"empresas_ativas"`
	EmpresasBloqueadas int64 `json:"empresas_bloqueadas"`
	TotalPosts         int64 `json:"total_posts"`
	PostsAprovados     int64 `json:"posts_aprovados"`
	PostsPendentes     int64 `json:"posts_pendentes"`
	TotalUsuarios      int64 `json:"total_usuarios"`
	TotalAdmins        int64 `json:"total_admins"`
}
