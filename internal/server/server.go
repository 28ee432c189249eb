package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/techmaa/portal/config"
	"github.com/techmaa/portal/internal/auth"
	"github.com/techmaa/portal/internal/db"
	"github.com/techmaa/portal/internal/handlers"
	"github.com/techmaa/portal/internal/mq"
	"github.com/techmaa/portal/internal/notify"
	"github.com/techmaa/portal/internal/services"
	"github.com/techmaa/portal/internal/storage"
	"github.com/techmaa/portal/internal/store"
)

// Services groups everything the router dispatches to.
type Services struct {
	Tokens  *auth.TokenService
	Auth    *services.AuthService
	Admin   *services.AdminService
	Staff   *services.StaffService
	Student *services.StudentService
	Course  *services.CourseService
}

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	redis      *redis.Client
	broker     mq.Backend
}

// New connects the backing services and constructs a Server.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	s := &Server{db: dbConn}

	cache, err := s.openCache(ctx, cfg.Redis)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}

	s.broker, err = mq.Open(ctx, cfg)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("open notify backend: %w", err)
	}
	notifier, err := newNotifier(cfg, s.broker)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}

	archive, err := storage.Open(ctx, cfg)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("open export storage: %w", err)
	}

	userRepo := store.NewUserRepository(dbConn)
	adminRepo := store.NewAdminRepository(dbConn)
	staffRepo := store.NewStaffRepository(dbConn)
	studentRepo := store.NewStudentRepository(dbConn)
	courseRepo := store.NewCourseRepository(dbConn)

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	otp := auth.NewOTPStore(cache, cfg.Auth.OTPTTL)

	s.router = NewRouter(cfg, Services{
		Tokens:  tokens,
		Auth:    services.NewAuthService(userRepo, hasher, tokens, otp, notifier),
		Admin:   services.NewAdminService(userRepo, adminRepo, studentRepo, hasher, services.NewExporter(archive)),
		Staff:   services.NewStaffService(userRepo, staffRepo, studentRepo, courseRepo, hasher),
		Student: services.NewStudentService(userRepo, studentRepo, courseRepo, hasher),
		Course:  services.NewCourseService(courseRepo),
	})

	s.httpServer = &http.Server{
		Addr:         listenAddr(cfg.ServerPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// NewRouter builds the HTTP routes with basic middleware.
func NewRouter(cfg config.Config, svc Services) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
		cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition", "X-Export-Location"},
			AllowCredentials: true,
		}).Handler,
	)

	router.Get("/healthz", handlers.Healthz)
	router.Handle("/metrics", promhttp.Handler())
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, handlers.NewAuthHandler(svc.Auth, svc.Admin, svc.Staff, svc.Student, svc.Tokens))
	})
	router.Route("/admin", func(r chi.Router) {
		handlers.AdminRouter(r, handlers.NewAdminHandler(svc.Admin, svc.Staff, svc.Student, svc.Course), svc.Tokens)
	})
	router.Route("/staff", func(r chi.Router) {
		handlers.StaffRouter(r, handlers.NewStaffHandler(svc.Staff), svc.Tokens)
	})
	router.Route("/student", func(r chi.Router) {
		handlers.StudentRouter(r, handlers.NewStudentHandler(svc.Student), svc.Tokens)
	})
	return router
}

// Addr is the address the server listens on.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

func listenAddr(port int) string {
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf(":%d", port)
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown closes the listener and the backing connections.
func (s *Server) Shutdown() error {
	var errs []error
	if s.httpServer != nil {
		errs = append(errs, s.httpServer.Close())
	}
	if s.broker != nil {
		errs = append(errs, s.broker.Close())
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}

// openCache returns a Redis-backed cache when REDIS_ADDR is set and an
// in-process one otherwise. Codes in the in-process cache do not survive a
// restart and are not shared between replicas.
func (s *Server) openCache(ctx context.Context, cfg config.RedisConfig) (auth.Cache, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		log.Printf("REDIS_ADDR not set, keeping login codes in process memory")
		return auth.NewMemoryCache(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	s.redis = client
	return auth.NewRedisCache(client), nil
}

func newNotifier(cfg config.Config, broker mq.Backend) (notify.Notifier, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Notify.Backend)) {
	case "", "log":
		return notify.NewLogNotifier(nil), nil
	case "smtp":
		sender, err := notify.NewSMTPSender(cfg.SMTP)
		if err != nil {
			return nil, fmt.Errorf("configure smtp: %w", err)
		}
		return sender, nil
	default:
		if broker == nil {
			return nil, fmt.Errorf("notify backend %q has no broker", cfg.Notify.Backend)
		}
		return notify.NewQueueNotifier(broker, cfg.Notify.Channel), nil
	}
}
