package router

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	"pet-food-advisor/internal/adapters/advisor/memory"
	"pet-food-advisor/internal/adapters/advisor/nutriapi"
	memstore "pet-food-advisor/internal/adapters/storage/memory"
	pg "pet-food-advisor/internal/adapters/storage/postgres"
	"pet-food-advisor/internal/domain/analysis"
	"pet-food-advisor/internal/domain/catalog"
	"pet-food-advisor/internal/domain/profile"
	"pet-food-advisor/internal/domain/workflow"
	"pet-food-advisor/internal/middleware"
	"pet-food-advisor/internal/platform/logger"
	"pet-food-advisor/internal/ports/advisor"

	_ "pet-food-advisor/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Backend del asesor. Si viene nil se resuelve por env:
	// ADVISOR_API_URL seteada => cliente HTTP; vacía => backend in-memory (dev).
	Backend advisor.Backend

	// Opcional: si viene, usa Postgres para el cache de catálogo.
	// Si no, intenta DB_DSN por env y cae a in-memory.
	DB *sql.DB

	Log logger.Logger
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.SessionContext())
	r.Use(middleware.RequestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	backend := opts.Backend
	if backend == nil {
		backend = backendFromEnv(log)
	}

	store := catalogStore(opts.DB, log)

	deps := workflow.Deps{
		Profiles: profile.NewService(backend),
		Catalog:  catalog.NewService(backend, store, log),
		Analysis: analysis.NewManager(backend, log),
		Log:      log,
	}
	workflow.RegisterRoutes(r, workflow.NewRegistry(deps))

	return r
}

// backendFromEnv arma el cliente HTTP si hay ADVISOR_API_URL; si no,
// backend in-memory para desarrollo.
func backendFromEnv(log logger.Logger) advisor.Backend {
	baseURL := os.Getenv("ADVISOR_API_URL")
	if baseURL == "" {
		log.Info("advisor backend: in-memory (dev)", nil)
		return memory.New()
	}

	client, err := nutriapi.New(nutriapi.Config{
		BaseURL:      baseURL,
		APIKey:       os.Getenv("ADVISOR_API_KEY"),
		APIKeyHeader: os.Getenv("ADVISOR_API_KEY_HEADER"),
		Timeout:      15 * time.Second,
	})
	if err != nil {
		log.Error("advisor backend: bad ADVISOR_API_URL, falling back to in-memory", map[string]any{"error": err.Error()})
		return memory.New()
	}
	log.Info("advisor backend: nutriapi", map[string]any{"base_url": baseURL})
	return client
}

func catalogStore(db *sql.DB, log logger.Logger) catalog.Store {
	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err != nil {
				log.Error("catalog cache: postgres unavailable, using in-memory", map[string]any{"error": err.Error()})
			} else {
				db = opened
			}
		}
	}

	if db != nil {
		return pg.NewCatalogCache(db, catalog.DefaultTTL)
	}
	return memstore.NewCatalogCache(catalog.DefaultTTL)
}
