package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/manageyou/manageyou/internal/api"
	"github.com/manageyou/manageyou/internal/auth"
	"github.com/manageyou/manageyou/internal/billing"
	"github.com/manageyou/manageyou/internal/config"
	"github.com/manageyou/manageyou/internal/db"
	"github.com/manageyou/manageyou/internal/document"
	"github.com/manageyou/manageyou/internal/gate"
	"github.com/manageyou/manageyou/internal/invite"
	"github.com/manageyou/manageyou/internal/user"
)

func main() {
	cfg := config.Load()

	bunDB := db.NewBunPostgresClient(cfg.DatabaseURL)
	defer bunDB.Close()

	userRepo := user.NewUserRepository(bunDB)
	if err := userRepo.InitializeDatabase(context.Background()); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	billingClient := billing.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	users := user.NewService(userRepo, billingClient)
	invites := invite.NewService(invite.NewInviteRepository(bunDB))

	docRepo := document.NewDocumentRepository(bunDB)
	docStorage, err := document.NewStorage(cfg.DocumentsBucket)
	if err != nil {
		log.Fatalf("Failed to create document storage: %v", err)
	}
	defer docStorage.Close()

	autoSave := document.NewAutoSave(
		time.Duration(cfg.DraftSaveDelayMS)*time.Millisecond,
		docRepo.UpdateContent,
	)
	defer autoSave.Close()

	issuer := auth.NewIssuer(cfg.JWTSecret)
	verifier := auth.NewVerifier(cfg.JWTSecret)
	if cfg.JWKSURL != "" {
		verifier, err = auth.NewVerifierWithJWKS(cfg.JWTSecret, cfg.JWKSURL)
		if err != nil {
			log.Fatalf("Failed to create JWKS verifier: %v", err)
		}
	}
	defer verifier.Close()

	var pages http.Handler
	if cfg.StaticDir != "" {
		pages = api.NewPagesHandler(cfg.StaticDir)
	}

	router := api.SetupRoutes(api.RouterDeps{
		Auth:          api.NewAuthHandler(users, invites, issuer, cfg.IsProduction()),
		Checkout:      api.NewCheckoutHandler(billingClient, users, userRepo),
		Invites:       api.NewInviteHandler(invites),
		Documents:     api.NewDocumentHandler(docRepo, docStorage, autoSave, userRepo, cfg.IndividualDocLimit),
		Verifier:      verifier,
		UserRepo:      userRepo,
		Gate:          gate.New(cfg.IsProduction()),
		Pages:         pages,
		AllowedOrigin: cfg.FEBaseURL,
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on %s", cfg.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed to start: %v", err)
	}

	log.Println("Server stopped")
}
