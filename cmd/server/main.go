package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hiway-api/internal/applications"
	"hiway-api/internal/auth"
	"hiway-api/internal/config"
	"hiway-api/internal/handler"
	"hiway-api/internal/mailer"
	"hiway-api/internal/meeting"
	"hiway-api/internal/middleware"
	"hiway-api/internal/notify"
	"hiway-api/internal/profile"
	"hiway-api/internal/queue"
	"hiway-api/internal/resume"
	"hiway-api/internal/rpc"
	"hiway-api/internal/store"
	"hiway-api/internal/zoom"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()
	st := store.New(pool)
	if err := st.Ping(ctx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	log.Println("connected to postgres")

	// run migrations
	if migration, err := os.ReadFile(cfg.MigrationsPath); err != nil {
		log.Printf("migration file not found, skipping: %v", err)
	} else if err := st.Migrate(ctx, string(migration)); err != nil {
		log.Printf("migration warning: %v", err)
	} else {
		log.Println("migration applied")
	}

	// optional integrations
	var pub notify.Publisher
	if cfg.RabbitMQURL != "" {
		q, err := queue.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("rabbitmq: %v (outbox rows only)", err)
		} else {
			defer q.Close()
			pub = q
		}
	}

	var links applications.Linker
	presigner, err := resume.New(ctx, resume.Config{
		Bucket:    cfg.ResumeBucket,
		Endpoint:  cfg.ResumeEndpoint,
		Region:    cfg.ResumeRegion,
		AccessKey: cfg.ResumeAccessKey,
		SecretKey: cfg.ResumeSecretKey,
	})
	switch {
	case errors.Is(err, resume.ErrNotConfigured):
	case err != nil:
		log.Printf("resume storage: %v", err)
	default:
		links = presigner
	}

	callback := cfg.BaseURL + "/auth/callback"
	providers := auth.Providers{
		"google":   auth.Google(cfg.GoogleClientID, cfg.GoogleClientSecret, callback),
		"facebook": auth.Facebook(cfg.FacebookClientID, cfg.FacebookClientSecret, callback),
	}

	zc := zoom.New(zoom.Config{
		ClientID:     cfg.ZoomClientID,
		ClientSecret: cfg.ZoomClientSecret,
		AccountID:    cfg.ZoomAccountID,
	})
	mail := mailer.New(mailer.Config{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	})

	notifier := notify.New(st, st, pub)
	rl := middleware.NewRateLimiter(ctx, 5, 10)

	// grpc health
	rs := rpc.New(rl)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	go func() {
		log.Printf("grpc on :%s", cfg.GRPCPort)
		if err := rs.Serve(lis); err != nil {
			log.Printf("grpc: %v", err)
		}
	}()
	if err := rs.Check(ctx, st); err != nil {
		log.Printf("health: %v", err)
	}
	probe, err := rpc.Dial("localhost:" + cfg.GRPCPort)
	if err != nil {
		log.Fatalf("probe: %v", err)
	}
	defer probe.Close()

	h := handler.New(handler.Deps{
		Store:        st,
		Sessions:     auth.NewSessions(st, cfg.JWTSecret, cfg.CookieSecure),
		Providers:    providers,
		Profiles:     profile.NewChecker(st),
		Applications: applications.NewService(st, links),
		Dashboard:    applications.NewDashboard(st, st),
		Scheduler:    meeting.NewScheduler(zc, st, notifier),
		Outbox:       notifier,
		Mailer:       mail,
		Limiter:      rl,
		Health:       probe,
		BaseURL:      cfg.BaseURL,
		SecureCookie: cfg.CookieSecure,
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("http on :%s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	log.Println("shutting down")

	sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer scancel()
	if err := httpSrv.Shutdown(sctx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	rs.Stop()
}
