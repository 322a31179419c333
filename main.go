package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"aquiguaira/bairros"
	"aquiguaira/db"
	"aquiguaira/globals"
	"aquiguaira/livefeed"
	"aquiguaira/location"
	"aquiguaira/mq"
	"aquiguaira/pg"
	"aquiguaira/ratelim"
	"aquiguaira/rdx"
	"aquiguaira/routes"
	"aquiguaira/utils"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Permissions-Policy", "microphone=(), camera=()")
		// handlers that serve immutable content override this
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware tags each request with an id and logs method, path,
// remote address and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = utils.GetUUID()
		}
		w.Header().Set("X-Request-ID", reqID)
		r = r.WithContext(context.WithValue(r.Context(), globals.RequestIDKey, reqID))

		next.ServeHTTP(w, r)
		log.Printf("%s %s from %s – %v [%s]", r.Method, r.RequestURI, r.RemoteAddr, time.Since(start), reqID)
	})
}

func panicHandler(w http.ResponseWriter, r *http.Request, rec interface{}) {
	log.Printf("❌ panic in %s %s [%s]: %v\n%s", r.Method, r.URL.Path, utils.RequestID(r), rec, debug.Stack())
	utils.RespondWithServerError(w, r, fmt.Errorf("%v", rec))
}

func setupRouter(hub *livefeed.Hub, pool *pgxpool.Pool, authLimiter, searchLimiter *ratelim.RateLimiter) *httprouter.Router {
	router := httprouter.New()
	router.PanicHandler = panicHandler

	var store bairros.Store
	if pool != nil {
		store = bairros.NewPGStore(pool)
	}

	routes.AddStatusRoutes(router)
	routes.AddCompanyRoutes(router)
	routes.AddPostRoutes(router)
	routes.AddJobRoutes(router)
	routes.AddFavoriteRoutes(router)
	routes.AddHistoryRoutes(router)
	routes.AddFileRoutes(router, authLimiter)
	routes.AddAuthRoutes(router, authLimiter)
	routes.AddAdminRoutes(router, hub)
	routes.AddPlaceRoutes(router)
	routes.AddBairroRoutes(router, bairros.NewHandler(store))
	routes.AddLocationRoutes(router, location.NewHandler(location.NewClient(globals.NominatimURL)), searchLimiter)

	return router
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}
	globals.Load()
	if err := globals.CheckSecrets(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if globals.RedisURL != "" {
		if err := rdx.Connect(ctx, globals.RedisURL); err != nil {
			log.Printf("⚠️ Redis unavailable, running without cache: %v", err)
		} else {
			log.Println("✅ Redis connected")
		}
	}

	var pool *pgxpool.Pool
	if globals.DatabaseURL != "" {
		p, err := pg.Connect(ctx, globals.DatabaseURL)
		if err != nil {
			log.Printf("⚠️ Postgres unavailable, /api/bairros disabled: %v", err)
		} else {
			pool = p
			log.Println("✅ Postgres connected")
		}
	}

	hub := livefeed.NewHub()
	go hub.Run()
	mq.Subscribe(hub.Publish)
	go mq.StartWorker(ctx)

	authLimiter := ratelim.NewRateLimiter(30, 10)
	searchLimiter := ratelim.NewRateLimiter(60, 20)

	router := setupRouter(hub, pool, authLimiter, searchLimiter)

	// CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:       []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "X-Request-ID"},
		AllowCredentials:     true,
		OptionsSuccessStatus: http.StatusOK,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              globals.Port,
		Handler:           handler,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Println("🛑 Shutting down live feed hub...")
		hub.Stop()
	})

	go func() {
		log.Printf("🚀 Server listening on %s", globals.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("🛑 Shutdown signal received; shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Graceful shutdown failed: %v", err)
	}

	stop()
	authLimiter.Stop()
	searchLimiter.Stop()
	if pool != nil {
		pool.Close()
	}
	if err := rdx.Close(); err != nil {
		log.Printf("redis close: %v", err)
	}
	if err := db.Disconnect(shutdownCtx); err != nil {
		log.Printf("mongo disconnect: %v", err)
	}

	log.Println("✅ Server stopped cleanly")
}
