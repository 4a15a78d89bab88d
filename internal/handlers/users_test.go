package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/campus-engage/engage-api/internal/models"
	"github.com/campus-engage/engage-api/internal/signup"
	"github.com/redis/go-redis/v9"
)

type fakeMailer struct {
	to       string
	fullName string
	token    string
	calls    int
}

func (f *fakeMailer) SendValidationMail(to, fullName, validationToken string) error {
	f.to = to
	f.fullName = fullName
	f.token = validationToken
	f.calls++
	return nil
}

func setupUserHandler(t *testing.T) (*UserHandler, *testEnv, *fakeMailer) {
	t.Helper()

	env := setupEnv(t)

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := signup.NewStore(client, time.Hour)
	mail := &fakeMailer{}

	return NewUserHandler(env.db, env.authHandler, store, mail), env, mail
}

func TestSignupFlow(t *testing.T) {
	handler, env, mail := setupUserHandler(t)
	ctx := context.Background()

	request := &RequestCreationInput{}
	request.Body.Email = "new@example.com"
	request.Body.FullName = "New User"
	request.Body.Password = "s3cret"

	if _, err := handler.HandleRequestCreation(ctx, request); err != nil {
		t.Fatalf("HandleRequestCreation returned error: %v", err)
	}

	if mail.calls != 1 {
		t.Fatalf("expected 1 validation mail, got %d", mail.calls)
	}
	if mail.to != "new@example.com" {
		t.Errorf("expected mail to new@example.com, got %s", mail.to)
	}
	if len(mail.token) != 32 {
		t.Fatalf("expected 32-character validation token, got %d characters", len(mail.token))
	}

	finalize := &FinalizeCreationInput{}
	finalize.Body.ValidationToken = mail.token

	created, err := handler.HandleFinalizeCreation(ctx, finalize)
	if err != nil {
		t.Fatalf("HandleFinalizeCreation returned error: %v", err)
	}
	if created.Body.Email != "new@example.com" {
		t.Errorf("expected created email new@example.com, got %s", created.Body.Email)
	}
	if created.Body.Role != models.RoleUser {
		t.Errorf("expected role user, got %s", created.Body.Role)
	}
	if !env.authHandler.CheckPassword(created.Body.HashedPassword, "s3cret") {
		t.Error("expected stored hash to verify the signup password")
	}

	// The validation token is single use.
	if _, err := handler.HandleFinalizeCreation(ctx, finalize); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for reused token, got %v", err)
	}
}

func TestRequestCreationExistingEmail(t *testing.T) {
	handler, env, mail := setupUserHandler(t)

	request := &RequestCreationInput{}
	request.Body.Email = env.player.Email
	request.Body.FullName = "Impostor"
	request.Body.Password = "whatever"

	_, err := handler.HandleRequestCreation(context.Background(), request)
	if statusOf(err) != http.StatusConflict {
		t.Fatalf("expected 409 for existing email, got %v", err)
	}
	if mail.calls != 0 {
		t.Errorf("expected no validation mail, got %d", mail.calls)
	}
}

func TestFinalizeCreationMalformedToken(t *testing.T) {
	handler, _, _ := setupUserHandler(t)

	finalize := &FinalizeCreationInput{}
	finalize.Body.ValidationToken = "too-short!"

	if _, err := handler.HandleFinalizeCreation(context.Background(), finalize); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed token, got %v", err)
	}
}

func TestHandleMe(t *testing.T) {
	handler, env, _ := setupUserHandler(t)

	input := &MeInput{}
	input.Authorization = env.playerAuth

	res, err := handler.HandleMe(context.Background(), input)
	if err != nil {
		t.Fatalf("HandleMe returned error: %v", err)
	}
	if res.Body.ID != env.player.ID {
		t.Errorf("expected id %s, got %s", env.player.ID, res.Body.ID)
	}
	if res.Body.Email != env.player.Email {
		t.Errorf("expected email %s, got %s", env.player.Email, res.Body.Email)
	}

	t.Run("Unauthenticated", func(t *testing.T) {
		if _, err := handler.HandleMe(context.Background(), &MeInput{}); statusOf(err) != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %v", err)
		}
	})
}

func TestUserAdminGate(t *testing.T) {
	handler, env, _ := setupUserHandler(t)
	ctx := context.Background()

	list := &ListUsersInput{}
	list.Authorization = env.playerAuth
	if _, err := handler.HandleListUsers(ctx, list); statusOf(err) != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin list, got %v", err)
	}

	list.Authorization = env.adminAuth
	res, err := handler.HandleListUsers(ctx, list)
	if err != nil {
		t.Fatalf("HandleListUsers returned error: %v", err)
	}
	if len(res.Body) != 2 {
		t.Errorf("expected 2 users, got %d", len(res.Body))
	}
}

func TestUpdateMe(t *testing.T) {
	handler, env, _ := setupUserHandler(t)
	ctx := context.Background()

	newName := "Renamed Player"
	newPassword := "new-pass"
	input := &UpdateMeInput{}
	input.Authorization = env.playerAuth
	input.Body.FullName = &newName
	input.Body.Password = &newPassword

	res, err := handler.HandleUpdateMe(ctx, input)
	if err != nil {
		t.Fatalf("HandleUpdateMe returned error: %v", err)
	}
	if res.Body.FullName != newName {
		t.Errorf("expected full name %q, got %q", newName, res.Body.FullName)
	}
	if !env.authHandler.CheckPassword(res.Body.HashedPassword, newPassword) {
		t.Error("expected updated hash to verify the new password")
	}
}

func TestGetUser(t *testing.T) {
	handler, env, _ := setupUserHandler(t)
	ctx := context.Background()

	t.Run("MalformedID", func(t *testing.T) {
		input := &GetUserInput{ID: "not-a-uuid"}
		input.Authorization = env.adminAuth
		if _, err := handler.HandleGetUser(ctx, input); statusOf(err) != http.StatusBadRequest {
			t.Fatalf("expected 400 for malformed id, got %v", err)
		}
	})

	t.Run("UnknownID", func(t *testing.T) {
		input := &GetUserInput{ID: "2c7f3a80-0000-0000-0000-000000000000"}
		input.Authorization = env.adminAuth
		if _, err := handler.HandleGetUser(ctx, input); statusOf(err) != http.StatusNotFound {
			t.Fatalf("expected 404 for unknown id, got %v", err)
		}
	})

	t.Run("Found", func(t *testing.T) {
		input := &GetUserInput{ID: env.player.ID}
		input.Authorization = env.adminAuth
		res, err := handler.HandleGetUser(ctx, input)
		if err != nil {
			t.Fatalf("HandleGetUser returned error: %v", err)
		}
		if res.Body.Email != env.player.Email {
			t.Errorf("expected email %s, got %s", env.player.Email, res.Body.Email)
		}
	})
}

func TestDeleteUser(t *testing.T) {
	handler, env, _ := setupUserHandler(t)
	ctx := context.Background()

	input := &DeleteUserInput{ID: env.player.ID}
	input.Authorization = env.adminAuth
	if _, err := handler.HandleDeleteUser(ctx, input); err != nil {
		t.Fatalf("HandleDeleteUser returned error: %v", err)
	}

	var count int64
	env.db.Model(&models.User{}).Where("id = ?", env.player.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected user to be deleted, found %d", count)
	}

	if _, err := handler.HandleDeleteUser(ctx, input); statusOf(err) != http.StatusNotFound {
		t.Fatalf("expected 404 for second delete, got %v", err)
	}
}
