package routes

import (
	"aquiguaira/admin"
	"aquiguaira/auth"
	"aquiguaira/bairros"
	"aquiguaira/companies"
	"aquiguaira/favorites"
	"aquiguaira/files"
	"aquiguaira/history"
	"aquiguaira/jobs"
	"aquiguaira/livefeed"
	"aquiguaira/location"
	"aquiguaira/middleware"
	"aquiguaira/places"
	"aquiguaira/posts"
	"aquiguaira/ratelim"
	"aquiguaira/status"

	"github.com/julienschmidt/httprouter"
)

func AddStatusRoutes(router *httprouter.Router) {
	router.GET("/health", status.Status)
	router.GET("/api/status", status.Status)
}

func AddCompanyRoutes(router *httprouter.Router) {
	router.GET("/api/empresas", middleware.OptionalAuth(companies.GetCompanies))
	router.POST("/api/empresas", companies.CreateCompany)
	router.PATCH("/api/empresas", companies.UpdateCompany)
	router.DELETE("/api/empresas", companies.DeleteCompany)
	router.GET("/api/empresas/qrcode/:id", middleware.OptionalAuth(companies.CompanyQRCode))
}

func AddPostRoutes(router *httprouter.Router) {
	router.GET("/api/posts", middleware.OptionalAuth(posts.GetPosts))
	router.POST("/api/posts", posts.CreatePost)
	router.PATCH("/api/posts", posts.UpdatePost)
	router.DELETE("/api/posts", posts.DeletePost)
}

func AddJobRoutes(router *httprouter.Router) {
	router.GET("/api/vagas", jobs.GetJobs)
	router.POST("/api/vagas", jobs.CreateJob)
	router.PATCH("/api/vagas", jobs.UpdateJob)
	router.DELETE("/api/vagas", jobs.DeleteJob)
}

func AddFavoriteRoutes(router *httprouter.Router) {
	router.GET("/api/favoritos", favorites.GetFavorites)
	router.POST("/api/favoritos", favorites.AddFavorite)
	router.DELETE("/api/favoritos", favorites.RemoveFavorite)
}

func AddHistoryRoutes(router *httprouter.Router) {
	router.GET("/api/historico", history.GetHistory)
	router.POST("/api/historico", history.AddHistory)
}

func AddFileRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/upload", rl.Limit(files.Upload))
	router.GET("/api/files", files.ServeFile)
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth", rl.Limit(auth.Auth))
	router.PATCH("/api/auth", auth.UpdateProfile)
}

func AddAdminRoutes(router *httprouter.Router, hub *livefeed.Hub) {
	router.GET("/api/admin", middleware.RequireAdmin(admin.Get))
	router.POST("/api/admin", middleware.RequireAdmin(admin.CreateLog))
	router.PATCH("/api/admin", middleware.RequireAdmin(admin.Patch))
	router.DELETE("/api/admin", middleware.RequireAdmin(admin.Delete))
	router.GET("/api/admin/live", livefeed.WebSocketHandler(hub))
}

func AddPlaceRoutes(router *httprouter.Router) {
	router.GET("/api/locais", places.GetPlaces)
}

func AddBairroRoutes(router *httprouter.Router, h *bairros.Handler) {
	router.GET("/api/bairros", h.Get)
	router.GET("/api/bairros/setores", h.Setores)
}

func AddLocationRoutes(router *httprouter.Router, h *location.Handler, rl *ratelim.RateLimiter) {
	router.GET("/api/location/search", rl.Limit(h.Search))
}
