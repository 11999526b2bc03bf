package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tourdesk/accessor"
	"tourdesk/admin"
	"tourdesk/auth"
	"tourdesk/blob"
	"tourdesk/collections"
	"tourdesk/config"
	"tourdesk/db"
	"tourdesk/dedup"
	"tourdesk/docstore"
	"tourdesk/inquiry"
	"tourdesk/logger"
	"tourdesk/middleware"
	"tourdesk/mq"
	"tourdesk/pages"
	"tourdesk/prefetch"
	"tourdesk/ratelim"
	"tourdesk/rdx"
	"tourdesk/routes"
	"tourdesk/utils"
)

const tokenTTL = 12 * time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (overrides config)")
}

// backends holds the long-lived connections shared by the server and the
// one-shot commands.
type backends struct {
	redis *redis.Client
	store docstore.Store
	blobs blob.Store
}

func (b *backends) close(log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if b.store != nil {
		if err := b.store.Close(ctx); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			log.Warn("close redis", zap.Error(err))
		}
	}
}

// openBackends connects Redis, the document store and blob storage. Redis is
// optional unless it also backs the document store.
func openBackends(ctx context.Context, cfg config.Config, log *zap.Logger) (*backends, error) {
	b := &backends{}

	rctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	rc, err := rdx.Connect(rctx, cfg)
	cancel()
	switch {
	case err == nil:
		b.redis = rc
	case cfg.StoreDriver == "redis":
		return nil, fmt.Errorf("%w: %w", docstore.ErrStoreUnavailable, err)
	default:
		log.Warn("redis unavailable; events disabled and dedup kept in memory", zap.Error(err))
	}

	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	b.store, err = db.Open(sctx, cfg, b.redis)
	cancel()
	if err != nil {
		b.close(log)
		return nil, err
	}

	b.blobs, err = blob.Open(ctx, cfg)
	if err != nil {
		b.close(log)
		return nil, fmt.Errorf("open blob storage: %w", err)
	}
	return b, nil
}

func (b *backends) publisher() mq.Publisher {
	if b.redis == nil {
		return mq.Nop{}
	}
	return mq.NewRedis(b.redis, mq.Channel)
}

func (b *backends) guard() dedup.Guard {
	if b.redis == nil {
		return dedup.NewMemory()
	}
	return dedup.NewRedis(b.redis, "tourdesk:dedup:")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		if port[0] != ':' {
			port = ":" + port
		}
		cfg.Port = port
	}

	b, err := openBackends(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer b.close(log)

	handler, pf, err := buildHandler(cfg, b, log)
	if err != nil {
		return err
	}

	// Boot-time prefetch runs detached from any request so a client going
	// away cannot fail the shared batch.
	go func() {
		if err := pf.Load(context.Background()); err != nil {
			log.Warn("prefetch failed", zap.Error(err))
		}
	}()

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped cleanly")
	return nil
}

// buildHandler wires services, routes and the outer middleware chain.
func buildHandler(cfg config.Config, b *backends, log *zap.Logger) (http.Handler, *prefetch.Store, error) {
	jwtAuth, err := middleware.NewAuth(cfg.JWTSecret, tokenTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("admin auth: %w", err)
	}
	if cfg.AdminPasswordHash == "" {
		log.Warn("ADMIN_PASSWORD_HASH not set; admin login disabled")
	}

	acc := accessor.New(b.store, log.Named("accessor"))
	reg := collections.NewRegistry(cfg.Collections)
	pub := b.publisher()
	pf := prefetch.New(acc, reg, log.Named("prefetch"))

	proxies, err := utils.ParseProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, nil, err
	}

	staticDir := ""
	if cfg.BlobDriver == "fs" {
		staticDir = cfg.BlobDir
	}

	router := routes.RoutesWrapper(routes.Deps{
		Pages:        pages.New(acc, reg, pf, cfg.PublicBaseURL, log.Named("pages")),
		Admin:        admin.New(acc, reg, pub, log.Named("admin")),
		Inquiry:      inquiry.NewService(acc, reg.Name(collections.Inquiries), pub, log.Named("inquiry")),
		Login:        auth.NewHandler(cfg.AdminUser, cfg.AdminPasswordHash, jwtAuth, log.Named("auth")),
		Auth:         jwtAuth,
		Guard:        dedup.Middleware(b.guard(), dedup.DefaultTTL, log.Named("dedup")),
		FormLimiter:  ratelim.NewRateLimiter(5, 5).TrustProxies(proxies),
		LoginLimiter: ratelim.NewRateLimiter(10, 5).TrustProxies(proxies),
		StaticDir:    staticDir,
	})

	// CORS -> security headers -> logging -> router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Idempotency-Key"},
		AllowCredentials: true,
	}).Handler(router)

	return middleware.Logging(log.Named("http"))(middleware.SecurityHeaders(corsHandler)), pf, nil
}
