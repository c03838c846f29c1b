package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"smartbin-backend/internal/database"
	"smartbin-backend/internal/handlers"
	"smartbin-backend/internal/services"
	"smartbin-backend/internal/store"
	"smartbin-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 SMARTBIN BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Pick the store backend. DATABASE_URL selects Postgres; otherwise
	// everything lives in process memory, which is the reference behavior.
	var st store.Store
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		db, err := database.Connect(dbURL)
		if err != nil {
			log.Println("❌ FATAL ERROR: Database connection failed")
			log.Fatal(err)
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			log.Println("❌ FATAL ERROR: Database migrations failed")
			log.Fatal(err)
		}
		if err := database.SeedSettings(db); err != nil {
			log.Println("❌ FATAL ERROR: Settings seeding failed")
			log.Fatal(err)
		}

		st = store.NewPostgresStore(db)
		log.Println("✅ Using Postgres store")
	} else {
		st = store.NewMemStore()
		log.Println("✅ Using in-memory store (set DATABASE_URL for durability)")
	}

	// Notification dispatcher
	mailer := services.NewMailerFromEnv()

	// WebSocket hub for the dashboard live feed
	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("✅ WebSocket hub started")

	// Bin lifecycle engine: loads thresholds and runs the periodic simulation
	engine := services.NewEngine(st, mailer, wsHub)
	engine.Start(context.Background())

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// WebSocket dashboard feed
	r.Get("/ws", websocket.HandleWebSocket(wsHub))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/users/register", handlers.Register(st, mailer))
		r.Get("/users", handlers.GetUsers(st))

		r.Get("/bins", handlers.GetBins(st))
		r.Get("/bins/{id}/status", handlers.GetBinStatus(engine))
		r.Put("/bins/{id}/level", handlers.UpdateBinLevel(engine))
		r.Delete("/bins/{id}", handlers.DeleteBin(st))
		r.Post("/bins/{id}/optimize", handlers.OptimizeBin(st))

		r.Get("/alerts", handlers.GetAlerts(st))
		r.Post("/alerts/{id}/resolve", handlers.ResolveAlert(st))

		r.Get("/settings", handlers.GetSettings(st))
		r.Put("/settings", handlers.UpdateSettings(st, engine))
	})

	// Get port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		log.Printf("⚠️  PORT not set, using default: %s", port)
	}

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚀 Server starting on http://localhost:%s", port)
	log.Println("═══════════════════════════════════════════════════════════════════")

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Println("❌ FATAL ERROR: Server failed to start")
		log.Fatal(err)
	}
}
