package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/campus-engage/engage-api/internal/auth"
	"github.com/campus-engage/engage-api/internal/config"
	"github.com/campus-engage/engage-api/internal/database"
	"github.com/campus-engage/engage-api/internal/handlers"
	"github.com/campus-engage/engage-api/internal/mailer"
	"github.com/campus-engage/engage-api/internal/notifier"
	"github.com/campus-engage/engage-api/internal/reward"
	"github.com/campus-engage/engage-api/internal/signup"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "engage-api",
		Short: "Quiz-and-gift engagement backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	if err := root.Execute(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}

func runServer(ctx context.Context) error {
	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)

	// Initialize Auth Handler
	authHandler := auth.NewAuthHandler(cfg, db)

	if err := database.EnsureRootUser(db, cfg, authHandler); err != nil {
		return fmt.Errorf("ensure root user: %w", err)
	}

	// Connect to Redis (pending signups)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	signupStore := signup.NewStore(redisClient, cfg.SignupTTL)

	// Initialize Mailer
	smtpMailer, err := mailer.NewSMTPMailer(cfg)
	if err != nil {
		log.Printf("Mailer not initialized: %v", err)
	}

	// Initialize Notifier
	var redemptionNotifier notifier.Notifier
	if cfg.DiscordBotToken != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			log.Printf("Discord notifier not initialized: %v", err)
		} else {
			defer session.Close()
			redemptionNotifier = notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID)
		}
	}

	// Initialize Handlers
	rewardService := reward.NewService(db)
	tokenHandler := handlers.NewTokenHandler(authHandler)
	userHandler := handlers.NewUserHandler(db, authHandler, signupStore, smtpMailer)
	quizHandler := handlers.NewQuizHandler(db, authHandler, rewardService)
	giftHandler := handlers.NewGiftHandler(db, authHandler, rewardService, redemptionNotifier)

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, cfg, tokenHandler, userHandler, quizHandler, giftHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
