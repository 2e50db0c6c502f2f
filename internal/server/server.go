package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopmonkeyus/go-common/logger"

	"er_diagram/internal/config"
	"er_diagram/internal/database"
	"er_diagram/internal/handlers"
	"er_diagram/internal/middlewares"
	"er_diagram/internal/repositories"
	"er_diagram/internal/routes"
	"er_diagram/internal/services"
)

type Server struct {
	HTTP    *http.Server
	closers []func()
}

// Close releases the storage and apply-target connections.
func (s *Server) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func NewServer(ctx context.Context, cfg *config.Config, log logger.Logger) (*Server, error) {
	s := &Server{}

	repo, err := s.openRepository(ctx, cfg, log)
	if err != nil {
		s.Close()
		return nil, err
	}

	var applier *services.SchemaApplier
	if cfg.MySQLURL != "" {
		db, err := database.ConnectMySQL(ctx, cfg.MySQLURL)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to connect to apply target: %w", err)
		}
		s.closers = append(s.closers, func() { db.Close() })
		applier = services.NewSchemaApplier(db, log)
		log.Info("schema apply target configured")
	}

	// Dependency injection
	diagramService := services.NewDiagramService(repo, applier, log, cfg.SchemaDatabase)
	diagramHandler := handlers.NewDiagramHandler(diagramService)

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middlewares.RequestID, middlewares.RequestLogger(log))
	router.Use(cors.New(corsConfig(cfg)))
	routes.RegisterRoutes(router, diagramHandler)

	s.HTTP = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s, nil
}

func (s *Server) openRepository(ctx context.Context, cfg *config.Config, log logger.Logger) (repositories.DiagramRepository, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := database.Connect(ctx, log, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		if err := database.RunMigrations(ctx, log, pool); err != nil {
			return nil, err
		}
		return repositories.NewPostgresDiagramRepository(pool), nil
	case config.StorageSQLite:
		db, err := database.ConnectSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { db.Close() })
		if err := database.RunSQLiteMigrations(ctx, log, db); err != nil {
			return nil, err
		}
		log.Info("using sqlite diagram store at %s", cfg.SQLitePath)
		return repositories.NewSQLiteDiagramRepository(db), nil
	default:
		log.Info("using file diagram store in %s", cfg.DiagramsDir)
		return repositories.NewFileDiagramRepository(cfg.DiagramsDir), nil
	}
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "If-None-Match", middlewares.RequestIDHeader},
		ExposeHeaders: []string{"ETag", "Content-Disposition", middlewares.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if cfg.AllowAllOrigins() {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return c
}
