package handlers

import (
	"net/http"

	"github.com/campus-engage/engage-api/internal/config"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func RegisterRoutes(r *chi.Mux, cfg *config.Config, tokenHandler *TokenHandler, userHandler *UserHandler, quizHandler *QuizHandler, giftHandler *GiftHandler) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
		}))
	}

	// Initialize Huma API
	apiConfig := huma.DefaultConfig("Engage API", "1.0.0")
	apiConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearerAuth": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	api := humachi.New(r, apiConfig)

	secured := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"bearerAuth": {}}}
	}
	noContent := func(o *huma.Operation) {
		o.DefaultStatus = http.StatusNoContent
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Token issuance
	huma.Post(api, "/tokens", tokenHandler.HandleCreateToken)

	// Signup flow
	huma.Post(api, "/users/creation-requests", userHandler.HandleRequestCreation, func(o *huma.Operation) {
		o.DefaultStatus = http.StatusAccepted
	})
	huma.Post(api, "/users", userHandler.HandleFinalizeCreation, func(o *huma.Operation) {
		o.DefaultStatus = http.StatusCreated
	})

	// Users
	huma.Get(api, "/users/me", userHandler.HandleMe, secured)
	huma.Get(api, "/users", userHandler.HandleListUsers, secured)
	huma.Get(api, "/users/{id}", userHandler.HandleGetUser, secured)
	huma.Patch(api, "/users/me", userHandler.HandleUpdateMe, secured)
	huma.Patch(api, "/users/{id}", userHandler.HandleUpdateUser, secured)
	huma.Delete(api, "/users/me", userHandler.HandleDeleteMe, secured, noContent)
	huma.Delete(api, "/users/{id}", userHandler.HandleDeleteUser, secured, noContent)

	// Quizzes
	huma.Get(api, "/quizzes", quizHandler.HandleListQuizzes, secured)
	huma.Get(api, "/quizzes/{id}", quizHandler.HandleGetQuiz, secured)
	huma.Post(api, "/quizzes", quizHandler.HandleCreateQuiz, secured, func(o *huma.Operation) {
		o.DefaultStatus = http.StatusCreated
	})
	huma.Patch(api, "/quizzes/{id}", quizHandler.HandleUpdateQuiz, secured)
	huma.Delete(api, "/quizzes/{id}", quizHandler.HandleDeleteQuiz, secured, noContent)
	huma.Post(api, "/quizzes/{id}/completions", quizHandler.HandleCompleteQuiz, secured)

	// Gifts
	huma.Get(api, "/gifts", giftHandler.HandleListGifts, secured)
	huma.Get(api, "/gifts/{id}", giftHandler.HandleGetGift, secured)
	huma.Post(api, "/gifts", giftHandler.HandleCreateGift, secured, func(o *huma.Operation) {
		o.DefaultStatus = http.StatusCreated
	})
	huma.Patch(api, "/gifts/{id}", giftHandler.HandleUpdateGift, secured)
	huma.Delete(api, "/gifts/{id}", giftHandler.HandleDeleteGift, secured, noContent)
	huma.Post(api, "/gifts/{id}/receipts", giftHandler.HandleRedeemGift, secured)

	// Gift images are opaque blobs, kept off the JSON API surface.
	r.Put("/gifts/{id}/image", giftHandler.HandleUploadImage)
	r.Get("/gifts/{id}/image", giftHandler.HandleFetchImage)
}
