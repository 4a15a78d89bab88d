package handlers

import (
	"context"
	"errors"

	"github.com/campus-engage/engage-api/internal/auth"
	"github.com/danielgtaylor/huma/v2"
)

type TokenHandler struct {
	authHandler *auth.AuthHandler
}

func NewTokenHandler(authHandler *auth.AuthHandler) *TokenHandler {
	return &TokenHandler{authHandler: authHandler}
}

type CreateTokenInput struct {
	Body struct {
		Email    string `json:"email" doc:"Account email" required:"true"`
		Password string `json:"password" doc:"Account password" required:"true"`
	}
}

type CreateTokenOutput struct {
	Body struct {
		AccessToken string `json:"access_token"`
	}
}

func (h *TokenHandler) HandleCreateToken(ctx context.Context, input *CreateTokenInput) (*CreateTokenOutput, error) {
	user, err := h.authHandler.Authenticate(input.Body.Email, input.Body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			return nil, huma.Error401Unauthorized(auth.ErrBadCredentials.Error())
		}
		return nil, huma.Error500InternalServerError("Failed to authenticate: " + err.Error())
	}

	token, err := h.authHandler.GenerateToken(user)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token: " + err.Error())
	}

	res := &CreateTokenOutput{}
	res.Body.AccessToken = token
	return res, nil
}
