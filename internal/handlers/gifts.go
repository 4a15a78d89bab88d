package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/campus-engage/engage-api/internal/auth"
	"github.com/campus-engage/engage-api/internal/models"
	"github.com/campus-engage/engage-api/internal/notifier"
	"github.com/campus-engage/engage-api/internal/reward"
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GiftHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	reward      *reward.Service
	notifier    notifier.Notifier
}

func NewGiftHandler(db *gorm.DB, authHandler *auth.AuthHandler, rewardService *reward.Service, n notifier.Notifier) *GiftHandler {
	return &GiftHandler{db: db, authHandler: authHandler, reward: rewardService, notifier: n}
}

func (h *GiftHandler) loadGift(ctx context.Context, id string) (models.Gift, error) {
	var gift models.Gift
	err := h.db.WithContext(ctx).
		Preload("Receipts", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&gift, "id = ?", id).Error
	return gift, err
}

type ListGiftsInput struct {
	auth.AuthInput
}

type ListGiftsOutput struct {
	Body []models.GiftView
}

func (h *GiftHandler) HandleListGifts(ctx context.Context, input *ListGiftsInput) (*ListGiftsOutput, error) {
	identity, err := h.authHandler.Authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	var gifts []models.Gift
	err = h.db.WithContext(ctx).
		Preload("Receipts", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at ASC").
		Find(&gifts).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list gifts: " + err.Error())
	}

	views := make([]models.GiftView, 0, len(gifts))
	for _, gift := range gifts {
		views = append(views, models.ProjectGift(gift, identity.Role, identity.UserID))
	}
	return &ListGiftsOutput{Body: views}, nil
}

type GetGiftInput struct {
	auth.AuthInput
	ID string `path:"id" doc:"Gift identifier"`
}

type GetGiftOutput struct {
	Body models.GiftView
}

func (h *GiftHandler) HandleGetGift(ctx context.Context, input *GetGiftInput) (*GetGiftOutput, error) {
	identity, err := h.authHandler.Authorize(input.Authorization)
	if err != nil {
		return nil, err
	}
	if err := validateID(input.ID); err != nil {
		return nil, err
	}

	gift, err := h.loadGift(ctx, input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound(reward.ErrGiftNotFound.Error())
		}
		return nil, huma.Error500InternalServerError("Failed to load gift: " + err.Error())
	}

	return &GetGiftOutput{Body: models.ProjectGift(gift, identity.Role, identity.UserID)}, nil
}

type CreateGiftInput struct {
	auth.AuthInput
	Body struct {
		Name        string `json:"name" doc:"Gift name" required:"true"`
		Category    string `json:"category" doc:"Category label" required:"true"`
		PricePoints int    `json:"price_points" minimum:"0" doc:"Point cost"`
	}
}

type GiftOutput struct {
	Body models.Gift
}

func (h *GiftHandler) HandleCreateGift(ctx context.Context, input *CreateGiftInput) (*GiftOutput, error) {
	if _, err := h.authHandler.AuthorizeAdmin(input.Authorization); err != nil {
		return nil, err
	}

	gift := models.Gift{
		Name:        input.Body.Name,
		Category:    input.Body.Category,
		PricePoints: input.Body.PricePoints,
		Receipts:    []models.Receipt{},
	}
	if err := h.db.WithContext(ctx).Create(&gift).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create gift: " + err.Error())
	}

	return &GiftOutput{Body: gift}, nil
}

type UpdateGiftInput struct {
	auth.AuthInput
	ID   string `path:"id" doc:"Gift identifier"`
	Body struct {
		Name        *string `json:"name,omitempty" doc:"New name"`
		Category    *string `json:"category,omitempty" doc:"New category label"`
		PricePoints *int    `json:"price_points,omitempty" minimum:"0" doc:"New point cost"`
	}
}

func (h *GiftHandler) HandleUpdateGift(ctx context.Context, input *UpdateGiftInput) (*GiftOutput, error) {
	if _, err := h.authHandler.AuthorizeAdmin(input.Authorization); err != nil {
		return nil, err
	}
	if err := validateID(input.ID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Body.Name != nil {
		updates["name"] = *input.Body.Name
	}
	if input.Body.Category != nil {
		updates["category"] = *input.Body.Category
	}
	if input.Body.PricePoints != nil {
		updates["price_points"] = *input.Body.PricePoints
	}

	if len(updates) > 0 {
		result := h.db.WithContext(ctx).Model(&models.Gift{}).Where("id = ?", input.ID).Updates(updates)
		if result.Error != nil {
			return nil, huma.Error500InternalServerError("Failed to update gift: " + result.Error.Error())
		}
		if result.RowsAffected == 0 {
			return nil, huma.Error404NotFound(reward.ErrGiftNotFound.Error())
		}
	}

	gift, err := h.loadGift(ctx, input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound(reward.ErrGiftNotFound.Error())
		}
		return nil, huma.Error500InternalServerError("Failed to load gift: " + err.Error())
	}
	return &GiftOutput{Body: gift}, nil
}

type DeleteGiftInput struct {
	auth.AuthInput
	ID string `path:"id" doc:"Gift identifier"`
}

type DeleteGiftOutput struct{}

func (h *GiftHandler) HandleDeleteGift(ctx context.Context, input *DeleteGiftInput) (*DeleteGiftOutput, error) {
	if _, err := h.authHandler.AuthorizeAdmin(input.Authorization); err != nil {
		return nil, err
	}
	if err := validateID(input.ID); err != nil {
		return nil, err
	}

	db := h.db.WithContext(ctx)
	result := db.Delete(&models.Gift{}, "id = ?", input.ID)
	if result.Error != nil {
		return nil, huma.Error500InternalServerError("Failed to delete gift: " + result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return nil, huma.Error404NotFound(reward.ErrGiftNotFound.Error())
	}

	db.Where("gift_id = ?", input.ID).Delete(&models.Receipt{})

	return &DeleteGiftOutput{}, nil
}

type RedeemGiftInput struct {
	auth.AuthInput
	ID   string `path:"id" doc:"Gift identifier"`
	Body struct {
		ReceiverID string `json:"receiver_id" doc:"User receiving the gift" required:"true"`
	}
}

type RedeemGiftOutput struct {
	Body models.Receipt
}

// HandleRedeemGift records an operator-verified handoff: the admin confirms
// the gift physically changed hands, then the receiver's balance is debited.
func (h *GiftHandler) HandleRedeemGift(ctx context.Context, input *RedeemGiftInput) (*RedeemGiftOutput, error) {
	if _, err := h.authHandler.AuthorizeAdmin(input.Authorization); err != nil {
		return nil, err
	}
	if err := validateID(input.ID); err != nil {
		return nil, err
	}
	if err := validateID(input.Body.ReceiverID); err != nil {
		return nil, err
	}

	receipt, err := h.reward.RedeemGift(ctx, input.ID, input.Body.ReceiverID)
	if err != nil {
		switch {
		case errors.Is(err, reward.ErrGiftNotFound):
			return nil, huma.Error404NotFound(err.Error())
		case errors.Is(err, reward.ErrUserNotFound):
			return nil, huma.Error404NotFound(err.Error())
		case errors.Is(err, reward.ErrAlreadyReceived):
			return nil, huma.Error409Conflict(err.Error())
		case errors.Is(err, reward.ErrInsufficientPoints):
			return nil, huma.Error412PreconditionFailed(err.Error())
		default:
			return nil, huma.Error500InternalServerError("Failed to settle redemption: " + err.Error())
		}
	}

	h.announceRedemption(ctx, input.ID, input.Body.ReceiverID)

	return &RedeemGiftOutput{Body: receipt}, nil
}

func (h *GiftHandler) announceRedemption(ctx context.Context, giftID, receiverID string) {
	if h.notifier == nil {
		return
	}

	var user models.User
	var gift models.Gift
	if err := h.db.WithContext(ctx).First(&user, "id = ?", receiverID).Error; err != nil {
		log.Printf("Failed to load receiver for notification: %v", err)
		return
	}
	if err := h.db.WithContext(ctx).First(&gift, "id = ?", giftID).Error; err != nil {
		log.Printf("Failed to load gift for notification: %v", err)
		return
	}
	if err := h.notifier.NotifyRedemption(user, gift); err != nil {
		log.Printf("Failed to send notification: %v", err)
		// The settlement already happened; notification failures stay local.
	}
}

// Image endpoints carry opaque binary payloads, so they are registered
// directly on chi instead of going through huma's content negotiation.

func (h *GiftHandler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "Malformed identifier", http.StatusBadRequest)
		return
	}

	image, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read image", http.StatusBadRequest)
		return
	}
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result := h.db.WithContext(r.Context()).Model(&models.Gift{}).Where("id = ?", id).Updates(map[string]interface{}{
		"image":              image,
		"image_content_type": contentType,
	})
	if result.Error != nil {
		http.Error(w, "Failed to store image", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, reward.ErrGiftNotFound.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *GiftHandler) HandleFetchImage(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "Malformed identifier", http.StatusBadRequest)
		return
	}

	var gift models.Gift
	err := h.db.WithContext(r.Context()).
		Select("id", "image", "image_content_type").
		First(&gift, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, reward.ErrGiftNotFound.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load image", http.StatusInternalServerError)
		return
	}

	contentType := gift.ImageContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(gift.Image)
}

func (h *GiftHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	_, err := h.authHandler.AuthorizeAdmin(r.Header.Get("Authorization"))
	if err != nil {
		status := http.StatusUnauthorized
		var statusErr huma.StatusError
		if errors.As(err, &statusErr) {
			status = statusErr.GetStatus()
		}
		http.Error(w, err.Error(), status)
		return false
	}
	return true
}
