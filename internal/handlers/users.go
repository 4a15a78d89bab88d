package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/campus-engage/engage-api/internal/auth"
	"github.com/campus-engage/engage-api/internal/mailer"
	"github.com/campus-engage/engage-api/internal/models"
	"github.com/campus-engage/engage-api/internal/signup"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	signups     *signup.Store
	mailer      mailer.Mailer
}

func NewUserHandler(db *gorm.DB, authHandler *auth.AuthHandler, signups *signup.Store, mail mailer.Mailer) *UserHandler {
	return &UserHandler{db: db, authHandler: authHandler, signups: signups, mailer: mail}
}

type RequestCreationInput struct {
	Body struct {
		Email    string `json:"email" format:"email" doc:"Email to validate" required:"true"`
		FullName string `json:"full_name" doc:"Display name" required:"true"`
		Password string `json:"password" doc:"Account password" required:"true" minLength:"1"`
	}
}

type RequestCreationOutput struct{}

func (h *UserHandler) HandleRequestCreation(ctx context.Context, input *RequestCreationInput) (*RequestCreationOutput, error) {
	var existing models.User
	err := h.db.WithContext(ctx).Where("email = ?", input.Body.Email).First(&existing).Error
	if err == nil {
		return nil, huma.Error409Conflict("Email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, huma.Error500InternalServerError("Failed to check email: " + err.Error())
	}

	validationToken, err := signup.NewValidationToken()
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate validation token")
	}

	if err := h.mailer.SendValidationMail(input.Body.Email, input.Body.FullName, validationToken); err != nil {
		log.Printf("Failed to send validation mail: %v", err)
		return nil, huma.Error500InternalServerError("Failed to send validation mail")
	}

	hashed, err := h.authHandler.HashPassword(input.Body.Password)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to hash password")
	}

	pending := signup.PendingSignup{
		Email:           input.Body.Email,
		FullName:        input.Body.FullName,
		HashedPassword:  hashed,
		ValidationToken: validationToken,
	}
	if err := h.signups.Put(ctx, pending); err != nil {
		return nil, huma.Error500InternalServerError("Failed to store signup request: " + err.Error())
	}

	return &RequestCreationOutput{}, nil
}

type FinalizeCreationInput struct {
	Body struct {
		ValidationToken string `json:"validation_token" doc:"Token from the validation mail" required:"true"`
	}
}

type FinalizeCreationOutput struct {
	Body models.User
}

func (h *UserHandler) HandleFinalizeCreation(ctx context.Context, input *FinalizeCreationInput) (*FinalizeCreationOutput, error) {
	if !validTokenFormat(input.Body.ValidationToken) {
		return nil, huma.Error400BadRequest("Malformed validation token")
	}

	pending, ok, err := h.signups.Take(ctx, input.Body.ValidationToken)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load signup request: " + err.Error())
	}
	if !ok {
		return nil, huma.Error400BadRequest("Invalid or expired validation token")
	}

	var existing models.User
	err = h.db.WithContext(ctx).Where("email = ?", pending.Email).First(&existing).Error
	if err == nil {
		return nil, huma.Error409Conflict("Email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, huma.Error500InternalServerError("Failed to check email: " + err.Error())
	}

	user := models.User{
		Email:          pending.Email,
		FullName:       pending.FullName,
		Role:           models.RoleUser,
		HashedPassword: pending.HashedPassword,
	}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create user: " + err.Error())
	}

	return &FinalizeCreationOutput{Body: user}, nil
}

func validTokenFormat(token string) bool {
	if len(token) != 32 {
		return false
	}
	for _, r := range token {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

type MeInput struct {
	auth.AuthInput
}

type MeOutput struct {
	Body struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Role     string `json:"role"`
	}
}

// HandleMe answers purely from token claims, without a database read.
func (h *UserHandler) HandleMe(ctx context.Context, input *MeInput) (*MeOutput, error) {
	identity, err := h.authHandler.Authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	res := &MeOutput{}
	res.Body.ID = identity.UserID
	res.Body.Email = identity.Email
	res.Body.FullName = identity.FullName
	res.Body.Role = identity.Role
	return res, nil
}

type ListUsersInput struct {
	auth.AuthInput
}

type ListUsersOutput struct {
	Body []models.User
}

func (h *UserHandler) HandleListUsers(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
	if _, err := h.authHandler.AuthorizeAdmin(input.Authorization); err != nil {
		return nil, err
	}

	var users []models.User
	if err := h.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list users: " + err.Error())
	}

	return &ListUsersOutput{Body: users}, nil
}

type GetUserInput struct {
	auth.AuthInput
	ID string `path:"id" doc:"User identifier"`
}

type GetUserOutput struct {
	Body models.User
}

func (h *UserHandler) HandleGetUser(ctx context.Context, input *GetUserInput) (*GetUserOutput, error) {
	if _, err := h.authHandler.AuthorizeAdmin(input.Authorization); err != nil {
		return nil, err
	}
	if err := validateID(input.ID); err != nil {
		return nil, err
	}

	var user models.User
	if err := h.db.WithContext(ctx).First(&user, "id = ?", input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("User not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load user: " + err.Error())
	}

	return &GetUserOutput{Body: user}, nil
}

type UserUpdateFields struct {
	Email    *string `json:"email,omitempty" format:"email" doc:"New email"`
	FullName *string `json:"full_name,omitempty" doc:"New display name"`
	Password *string `json:"password,omitempty" doc:"New password"`
}

type UpdateMeInput struct {
	auth.AuthInput
	Body UserUpdateFields
}

type UpdateUserInput struct {
	auth.AuthInput
	ID   string `path:"id" doc:"User identifier"`
	Body struct {
		UserUpdateFields
		Role   *string `json:"role,omitempty" enum:"admin,user" doc:"New role"`
		Points *int    `json:"points,omitempty" minimum:"0" doc:"New point balance"`
	}
}

type UpdateUserOutput struct {
	Body models.User
}

func (h *UserHandler) HandleUpdateMe(ctx context.Context, input *UpdateMeInput) (*UpdateUserOutput, error) {
	identity, err := h.authHandler.Authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	updates, err := h.buildUserUpdates(input.Body)
	if err != nil {
		return nil, err
	}
	return h.applyUserUpdate(ctx, identity.UserID, updates)
}

func (h *UserHandler) HandleUpdateUser(ctx context.Context, input *UpdateUserInput) (*UpdateUserOutput, error) {
	if _, err := h.authHandler.AuthorizeAdmin(input.Authorization); err != nil {
		return nil, err
	}
	if err := validateID(input.ID); err != nil {
		return nil, err
	}

	updates, err := h.buildUserUpdates(input.Body.UserUpdateFields)
	if err != nil {
		return nil, err
	}
	if input.Body.Role != nil {
		updates["role"] = *input.Body.Role
	}
	if input.Body.Points != nil {
		updates["points"] = *input.Body.Points
	}
	return h.applyUserUpdate(ctx, input.ID, updates)
}

func (h *UserHandler) buildUserUpdates(fields UserUpdateFields) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if fields.Email != nil {
		updates["email"] = *fields.Email
	}
	if fields.FullName != nil {
		updates["full_name"] = *fields.FullName
	}
	if fields.Password != nil {
		hashed, err := h.authHandler.HashPassword(*fields.Password)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to hash password")
		}
		updates["hashed_password"] = hashed
	}
	return updates, nil
}

func (h *UserHandler) applyUserUpdate(ctx context.Context, id string, updates map[string]interface{}) (*UpdateUserOutput, error) {
	if len(updates) > 0 {
		result := h.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, huma.Error500InternalServerError("Failed to update user: " + result.Error.Error())
		}
		if result.RowsAffected == 0 {
			return nil, huma.Error404NotFound("User not found")
		}
	}

	var user models.User
	if err := h.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("User not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load user: " + err.Error())
	}

	return &UpdateUserOutput{Body: user}, nil
}

type DeleteMeInput struct {
	auth.AuthInput
}

type DeleteUserInput struct {
	auth.AuthInput
	ID string `path:"id" doc:"User identifier"`
}

type DeleteUserOutput struct{}

func (h *UserHandler) HandleDeleteMe(ctx context.Context, input *DeleteMeInput) (*DeleteUserOutput, error) {
	identity, err := h.authHandler.Authorize(input.Authorization)
	if err != nil {
		return nil, err
	}
	return h.deleteUser(ctx, identity.UserID)
}

func (h *UserHandler) HandleDeleteUser(ctx context.Context, input *DeleteUserInput) (*DeleteUserOutput, error) {
	if _, err := h.authHandler.AuthorizeAdmin(input.Authorization); err != nil {
		return nil, err
	}
	if err := validateID(input.ID); err != nil {
		return nil, err
	}
	return h.deleteUser(ctx, input.ID)
}

func (h *UserHandler) deleteUser(ctx context.Context, id string) (*DeleteUserOutput, error) {
	result := h.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return nil, huma.Error500InternalServerError("Failed to delete user: " + result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return nil, huma.Error404NotFound("User not found")
	}
	return &DeleteUserOutput{}, nil
}

// validateID rejects malformed identifiers before any lookup happens.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return huma.Error400BadRequest("Malformed identifier")
	}
	return nil
}
