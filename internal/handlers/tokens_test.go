package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/campus-engage/engage-api/internal/models"
)

func TestHandleCreateToken(t *testing.T) {
	env := setupEnv(t)
	handler := NewTokenHandler(env.authHandler)
	ctx := context.Background()

	hashed, _ := env.authHandler.HashPassword("open sesame")
	user := models.User{Email: "login@example.com", FullName: "Login User", Role: models.RoleUser, HashedPassword: hashed}
	env.db.Create(&user)

	t.Run("ValidCredentials", func(t *testing.T) {
		input := &CreateTokenInput{}
		input.Body.Email = "login@example.com"
		input.Body.Password = "open sesame"

		res, err := handler.HandleCreateToken(ctx, input)
		if err != nil {
			t.Fatalf("HandleCreateToken returned error: %v", err)
		}

		identity, err := env.authHandler.ParseToken(res.Body.AccessToken)
		if err != nil {
			t.Fatalf("issued token did not parse: %v", err)
		}
		if identity.UserID != user.ID {
			t.Errorf("expected user id %s, got %s", user.ID, identity.UserID)
		}
		if identity.Role != models.RoleUser {
			t.Errorf("expected role user, got %s", identity.Role)
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		input := &CreateTokenInput{}
		input.Body.Email = "login@example.com"
		input.Body.Password = "close sesame"

		if _, err := handler.HandleCreateToken(ctx, input); statusOf(err) != http.StatusUnauthorized {
			t.Fatalf("expected 401 for wrong password, got %v", err)
		}
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		input := &CreateTokenInput{}
		input.Body.Email = "ghost@example.com"
		input.Body.Password = "open sesame"

		if _, err := handler.HandleCreateToken(ctx, input); statusOf(err) != http.StatusUnauthorized {
			t.Fatalf("expected 401 for unknown email, got %v", err)
		}
	})
}
