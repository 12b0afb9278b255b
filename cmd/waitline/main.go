package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"waitline/internal/config"
	"waitline/internal/httpapi"
	"waitline/internal/hub"
	"waitline/internal/notify"
	"waitline/internal/store/postgres"
	"waitline/internal/telemetry"

	"github.com/google/uuid"
	"github.com/igm/sockjs-go/sockjs"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := config.Load()

	shutdownTelemetry := telemetry.Setup("waitline")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	st := postgres.NewStore(pool, postgres.Options{
		TokenBase:            cfg.TokenBase,
		TokenScopePerService: cfg.TokenScopePerService,
		RequireCheckIn:       cfg.RequireCheckIn,
	})
	handler := httpapi.NewHandler(st, httpapi.Options{AdminToken: cfg.AdminToken})
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		PerMinute: cfg.RateLimitPerMinute,
		Burst:     cfg.RateLimitBurst,
	})

	h := hub.New()
	worker := notify.New(st, h, notify.LogProvider{}, notify.Config{BatchSize: cfg.NotifyBatchSize})

	mux := http.NewServeMux()
	mux.Handle("/", handler.Routes())
	mux.Handle("/realtime/", sockjs.NewHandler("/realtime", sockjs.DefaultOptions, func(session sockjs.Session) {
		client := &hub.Client{ID: uuid.NewString(), Send: make(chan []byte, 16)}
		h.Register(client)
		defer h.Unregister(client)

		go func() {
			for msg := range client.Send {
				_ = session.Send(string(msg))
			}
		}()

		for {
			msg, err := session.Recv()
			if err != nil {
				return
			}
			parsed, ok := hub.ParseSubscribe([]byte(msg))
			if !ok {
				continue
			}
			if parsed.Action == "unsubscribe" {
				h.UpdateSubscription(client, hub.Subscription{})
				continue
			}
			h.UpdateSubscription(client, hub.Subscription{ServiceID: parsed.ServiceID})
		}
	}))

	otelHandler := otelhttp.NewHandler(httpapi.LoggingMiddleware(limiter.Middleware(mux)), "waitline")
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("waitline listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	pollCtx, cancelPoll := context.WithCancel(context.Background())
	defer cancelPoll()
	go func() {
		if cfg.NotifyPollInterval <= 0 {
			return
		}
		ticker := time.NewTicker(cfg.NotifyPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(pollCtx, 10*time.Second)
				if err := worker.Run(ctx); err != nil {
					log.Printf("notify poll error: %v", err)
				}
				cancel()
			}
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancelPoll()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
