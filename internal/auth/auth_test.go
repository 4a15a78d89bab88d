package auth

import (
	"errors"
	"testing"

	"github.com/campus-engage/engage-api/internal/config"
	"github.com/campus-engage/engage-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuth(t *testing.T) (*AuthHandler, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.AutoMigrate(&models.User{})

	cfg := &config.Config{JWTSecret: "test-secret"}
	return NewAuthHandler(cfg, db), db
}

func TestPasswordRoundTrip(t *testing.T) {
	handler, _ := setupAuth(t)

	hashed, err := handler.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hashed == "hunter2" {
		t.Fatal("expected hash to differ from plaintext")
	}

	if !handler.CheckPassword(hashed, "hunter2") {
		t.Error("expected same plaintext to verify")
	}
	if handler.CheckPassword(hashed, "hunter3") {
		t.Error("expected different plaintext to fail verification")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	handler, _ := setupAuth(t)

	user := models.User{
		ID:       "11111111-1111-1111-1111-111111111111",
		Email:    "test@example.com",
		FullName: "Test User",
		Role:     models.RoleUser,
	}

	token, err := handler.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	identity, err := handler.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}

	if identity.UserID != user.ID {
		t.Errorf("expected user id %s, got %s", user.ID, identity.UserID)
	}
	if identity.Email != user.Email {
		t.Errorf("expected email %s, got %s", user.Email, identity.Email)
	}
	if identity.FullName != user.FullName {
		t.Errorf("expected full name %s, got %s", user.FullName, identity.FullName)
	}
	if identity.Role != user.Role {
		t.Errorf("expected role %s, got %s", user.Role, identity.Role)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	handler, _ := setupAuth(t)

	other := NewAuthHandler(&config.Config{JWTSecret: "another-secret"}, nil)
	token, err := other.GenerateToken(models.User{ID: "id", Email: "a@b.c", FullName: "A", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	if _, err := handler.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseTokenGarbage(t *testing.T) {
	handler, _ := setupAuth(t)

	if _, err := handler.ParseToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	handler, db := setupAuth(t)

	hashed, _ := handler.HashPassword("correct horse")
	user := models.User{Email: "user@example.com", FullName: "User", Role: models.RoleUser, HashedPassword: hashed}
	db.Create(&user)

	t.Run("ValidCredentials", func(t *testing.T) {
		got, err := handler.Authenticate("user@example.com", "correct horse")
		if err != nil {
			t.Fatalf("Authenticate returned error: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("expected user %s, got %s", user.ID, got.ID)
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		if _, err := handler.Authenticate("user@example.com", "battery staple"); !errors.Is(err, ErrBadCredentials) {
			t.Fatalf("expected ErrBadCredentials, got %v", err)
		}
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		if _, err := handler.Authenticate("nobody@example.com", "correct horse"); !errors.Is(err, ErrBadCredentials) {
			t.Fatalf("expected ErrBadCredentials, got %v", err)
		}
	})
}

func TestAuthorize(t *testing.T) {
	handler, _ := setupAuth(t)

	token, _ := handler.GenerateToken(models.User{ID: "id-1", Email: "a@b.c", FullName: "A", Role: models.RoleUser})

	t.Run("BearerToken", func(t *testing.T) {
		identity, err := handler.Authorize("Bearer " + token)
		if err != nil {
			t.Fatalf("Authorize returned error: %v", err)
		}
		if identity.UserID != "id-1" {
			t.Errorf("expected user id id-1, got %s", identity.UserID)
		}
	})

	t.Run("MissingHeader", func(t *testing.T) {
		if _, err := handler.Authorize(""); err == nil {
			t.Fatal("expected error for missing header, got nil")
		}
	})

	t.Run("NonAdminIsForbidden", func(t *testing.T) {
		if _, err := handler.AuthorizeAdmin("Bearer " + token); err == nil {
			t.Fatal("expected error for non-admin, got nil")
		}
	})

	t.Run("AdminPasses", func(t *testing.T) {
		adminToken, _ := handler.GenerateToken(models.User{ID: "id-2", Email: "x@y.z", FullName: "X", Role: models.RoleAdmin})
		identity, err := handler.AuthorizeAdmin("Bearer " + adminToken)
		if err != nil {
			t.Fatalf("AuthorizeAdmin returned error: %v", err)
		}
		if identity.Role != models.RoleAdmin {
			t.Errorf("expected admin role, got %s", identity.Role)
		}
	})
}
