// Package reward implements the settlement workflows: quiz completion and
// gift redemption. Each settlement is an idempotency check, a derived-value
// computation, a balance mutation and a receipt append. The balance write and
// the receipt append are two sequential single-row updates with no wrapping
// transaction; the balance moves first so a crash in between can at worst
// leave points credited without a receipt, never a receipt without points.
package reward

import (
	"context"
	"errors"
	"time"

	"github.com/campus-engage/engage-api/internal/models"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// NewServiceWithClock is test-only for deterministic timestamps.
func NewServiceWithClock(db *gorm.DB, now func() time.Time) *Service {
	return &Service{db: db, now: now}
}

// CompleteQuiz settles a user's answer submission for a quiz. Answers are
// chosen option indexes, one per question position; out-of-range, missing and
// extra positions count as incorrect.
func (s *Service) CompleteQuiz(ctx context.Context, quizID, userID string, answers []int) (models.Completion, error) {
	db := s.db.WithContext(ctx)

	var quiz models.Quiz
	err := db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&quiz, "id = ?", quizID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Completion{}, ErrQuizNotFound
		}
		return models.Completion{}, err
	}

	var existing int64
	if err := db.Model(&models.Completion{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Count(&existing).Error; err != nil {
		return models.Completion{}, err
	}
	if existing > 0 {
		return models.Completion{}, ErrAlreadyCompleted
	}

	correct := scoreAnswers(quiz.Questions, answers)
	earned := correct * quiz.PointsPerAnswer

	result := db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", earned))
	if result.Error != nil {
		return models.Completion{}, result.Error
	}
	if result.RowsAffected == 0 {
		// No balance was credited, so no receipt may be appended.
		return models.Completion{}, ErrUserNotFound
	}

	completion := models.Completion{
		QuizID:         quiz.ID,
		UserID:         userID,
		CorrectAnswers: correct,
		TotalQuestions: len(quiz.Questions),
		EarnedPoints:   earned,
		CompletedAt:    s.now(),
	}
	if err := db.Create(&completion).Error; err != nil {
		return models.Completion{}, err
	}

	return completion, nil
}

// RedeemGift settles an operator-verified gift handoff: it debits the
// receiver's balance by the gift's price and appends the receipt.
func (s *Service) RedeemGift(ctx context.Context, giftID, receiverID string) (models.Receipt, error) {
	db := s.db.WithContext(ctx)

	var gift models.Gift
	err := db.Preload("Receipts").First(&gift, "id = ?", giftID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Receipt{}, ErrGiftNotFound
		}
		return models.Receipt{}, err
	}

	for _, receipt := range gift.Receipts {
		if receipt.ReceiverID == receiverID {
			return models.Receipt{}, ErrAlreadyReceived
		}
	}

	var receiver models.User
	if err := db.First(&receiver, "id = ?", receiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Receipt{}, ErrUserNotFound
		}
		return models.Receipt{}, err
	}

	if receiver.Points < gift.PricePoints {
		return models.Receipt{}, ErrInsufficientPoints
	}

	result := db.Model(&models.User{}).
		Where("id = ?", receiver.ID).
		UpdateColumn("points", gorm.Expr("points - ?", gift.PricePoints))
	if result.Error != nil {
		return models.Receipt{}, result.Error
	}

	receipt := models.Receipt{
		GiftID:     gift.ID,
		ReceiverID: receiverID,
		ReceivedAt: s.now(),
	}
	if err := db.Create(&receipt).Error; err != nil {
		return models.Receipt{}, err
	}

	return receipt, nil
}

func scoreAnswers(questions []models.Question, answers []int) int {
	correct := 0
	for position, answer := range answers {
		if position >= len(questions) {
			break
		}
		if answer == questions[position].CorrectAnswerIndex {
			correct++
		}
	}
	return correct
}
