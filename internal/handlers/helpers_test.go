package handlers

import (
	"errors"
	"testing"

	"github.com/campus-engage/engage-api/internal/auth"
	"github.com/campus-engage/engage-api/internal/config"
	"github.com/campus-engage/engage-api/internal/models"
	"github.com/campus-engage/engage-api/internal/reward"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	reward      *reward.Service

	admin      models.User
	adminAuth  string
	player     models.User
	playerAuth string
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.AutoMigrate(&models.User{}, &models.Quiz{}, &models.Question{}, &models.Completion{}, &models.Gift{}, &models.Receipt{})

	cfg := &config.Config{JWTSecret: "test-secret"}
	authHandler := auth.NewAuthHandler(cfg, db)

	admin := models.User{Email: "admin@example.com", FullName: "Admin", Role: models.RoleAdmin}
	db.Create(&admin)
	player := models.User{Email: "player@example.com", FullName: "Player", Role: models.RoleUser}
	db.Create(&player)

	adminToken, err := authHandler.GenerateToken(admin)
	if err != nil {
		t.Fatalf("failed to generate admin token: %v", err)
	}
	playerToken, err := authHandler.GenerateToken(player)
	if err != nil {
		t.Fatalf("failed to generate player token: %v", err)
	}

	return &testEnv{
		db:          db,
		authHandler: authHandler,
		reward:      reward.NewService(db),
		admin:       admin,
		adminAuth:   "Bearer " + adminToken,
		player:      player,
		playerAuth:  "Bearer " + playerToken,
	}
}

func statusOf(err error) int {
	var statusErr huma.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.GetStatus()
	}
	return 0
}
