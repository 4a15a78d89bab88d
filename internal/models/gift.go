package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Gift struct {
	ID               string    `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Name             string    `json:"name"`
	Category         string    `json:"category"`
	PricePoints      int       `json:"price_points"`
	Image            []byte    `json:"-"`
	ImageContentType string    `json:"-"`
	Receipts         []Receipt `gorm:"constraint:OnDelete:CASCADE" json:"receipts"`
}

func (g *Gift) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// Receipt records that an operator verified handing a gift to a user.
type Receipt struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	GiftID     string    `gorm:"index" json:"-"`
	ReceiverID string    `gorm:"index" json:"receiver_id"`
	ReceivedAt time.Time `json:"received_at"`
}
