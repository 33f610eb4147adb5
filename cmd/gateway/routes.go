package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"stockbook/config"
	"stockbook/internal/gateway"
	"stockbook/internal/health"
	"stockbook/internal/kv"
	"stockbook/internal/services/inventory"
	"stockbook/internal/services/pos"
	"stockbook/internal/services/reports"
	"stockbook/internal/services/user"
	"stockbook/internal/store"
)

func main() {
	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := kv.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store.Backend, err)
	}
	s := store.New(backend, cfg.Store.Namespace)
	defer s.Close()
	log.Printf("Store ready (backend=%s, namespace=%s)", cfg.Store.Backend, cfg.Store.Namespace)

	ledger := inventory.NewLedger(s)
	publisher, closePublisher := newPublisher(cfg)
	defer closePublisher()
	posService := pos.NewService(s, ledger, publisher)

	users, err := user.NewService(cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to init user service: %v", err)
	}

	go serveHealth(ctx, s, cfg.Server.GRPCPort)

	gin.SetMode(gin.ReleaseMode)
	r, err := gateway.NewRouter(gateway.Services{
		Store:   s,
		Ledger:  ledger,
		POS:     posService,
		Reports: reports.NewAggregator(s),
		Users:   users,
	}, cfg.Server.RateLimit)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	srv := &http.Server{Addr: ":" + cfg.Server.HTTPPort, Handler: r}
	go func() {
		log.Printf("Starting server on port %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}

// newPublisher returns a redis publisher when redis answers, and a no-op
// publisher otherwise, along with the func that releases it.
func newPublisher(cfg config.Config) (pos.Publisher, func()) {
	client, err := config.NewUniversalClient(cfg.Redis)
	if err != nil {
		log.Printf("Warning: events disabled, redis unavailable: %v", err)
		return pos.NopPublisher{}, func() {}
	}
	log.Println("Publishing events to redis")
	return pos.NewRedisPublisher(client), func() {
		if err := client.Close(); err != nil {
			log.Printf("Warning: failed to close redis client: %v", err)
		}
	}
}

func serveHealth(ctx context.Context, s *store.Store, port string) {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		log.Printf("Warning: health server disabled: %v", err)
		return
	}

	hs := health.NewServer(s, 0)
	go hs.Run(ctx)
	go func() {
		<-ctx.Done()
		hs.Stop()
	}()

	log.Printf("gRPC health listening on :%s", port)
	if err := hs.Serve(lis); err != nil {
		log.Printf("Health server stopped: %v", err)
	}
}
