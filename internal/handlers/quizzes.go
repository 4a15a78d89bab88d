package handlers

import (
	"context"
	"errors"

	"github.com/campus-engage/engage-api/internal/auth"
	"github.com/campus-engage/engage-api/internal/models"
	"github.com/campus-engage/engage-api/internal/reward"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

type QuizHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	reward      *reward.Service
}

func NewQuizHandler(db *gorm.DB, authHandler *auth.AuthHandler, rewardService *reward.Service) *QuizHandler {
	return &QuizHandler{db: db, authHandler: authHandler, reward: rewardService}
}

func (h *QuizHandler) loadQuiz(ctx context.Context, id string) (models.Quiz, error) {
	var quiz models.Quiz
	err := h.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Completions", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&quiz, "id = ?", id).Error
	return quiz, err
}

type ListQuizzesInput struct {
	auth.AuthInput
}

type ListQuizzesOutput struct {
	Body []models.QuizView
}

func (h *QuizHandler) HandleListQuizzes(ctx context.Context, input *ListQuizzesInput) (*ListQuizzesOutput, error) {
	identity, err := h.authHandler.Authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	var quizzes []models.Quiz
	err = h.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Completions", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at ASC").
		Find(&quizzes).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list quizzes: " + err.Error())
	}

	views := make([]models.QuizView, 0, len(quizzes))
	for _, quiz := range quizzes {
		views = append(views, models.ProjectQuiz(quiz, identity.Role, identity.UserID))
	}
	return &ListQuizzesOutput{Body: views}, nil
}

type GetQuizInput struct {
	auth.AuthInput
	ID string `path:"id" doc:"Quiz identifier"`
}

type GetQuizOutput struct {
	Body models.QuizView
}

func (h *QuizHandler) HandleGetQuiz(ctx context.Context, input *GetQuizInput) (*GetQuizOutput, error) {
	identity, err := h.authHandler.Authorize(input.Authorization)
	if err != nil {
		return nil, err
	}
	if err := validateID(input.ID); err != nil {
		return nil, err
	}

	quiz, err := h.loadQuiz(ctx, input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound(reward.ErrQuizNotFound.Error())
		}
		return nil, huma.Error500InternalServerError("Failed to load quiz: " + err.Error())
	}

	return &GetQuizOutput{Body: models.ProjectQuiz(quiz, identity.Role, identity.UserID)}, nil
}

type QuestionFields struct {
	Prompt             string   `json:"prompt" doc:"Question text" required:"true"`
	AnswerOptions      []string `json:"answer_options" doc:"Ordered answer options" required:"true"`
	CorrectAnswerIndex int      `json:"correct_answer_index" minimum:"0" doc:"Index of the correct option"`
}

type CreateQuizInput struct {
	auth.AuthInput
	Body struct {
		Title           string           `json:"title" doc:"Quiz title" required:"true"`
		Description     string           `json:"description,omitempty" doc:"Optional description"`
		PointsPerAnswer int              `json:"points_per_answer" minimum:"0" doc:"Points per correct answer"`
		Questions       []QuestionFields `json:"questions" doc:"Ordered questions" required:"true"`
	}
}

type QuizOutput struct {
	Body models.Quiz
}

func (h *QuizHandler) HandleCreateQuiz(ctx context.Context, input *CreateQuizInput) (*QuizOutput, error) {
	if _, err := h.authHandler.AuthorizeAdmin(input.Authorization); err != nil {
		return nil, err
	}

	quiz := models.Quiz{
		Title:           input.Body.Title,
		Description:     input.Body.Description,
		PointsPerAnswer: input.Body.PointsPerAnswer,
		Questions:       buildQuestions(input.Body.Questions),
		Completions:     []models.Completion{},
	}
	if err := h.db.WithContext(ctx).Create(&quiz).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create quiz: " + err.Error())
	}

	return &QuizOutput{Body: quiz}, nil
}

type UpdateQuizInput struct {
	auth.AuthInput
	ID   string `path:"id" doc:"Quiz identifier"`
	Body struct {
		Title           *string          `json:"title,omitempty" doc:"New title"`
		Description     *string          `json:"description,omitempty" doc:"New description"`
		PointsPerAnswer *int             `json:"points_per_answer,omitempty" minimum:"0" doc:"New points per correct answer"`
		Questions       []QuestionFields `json:"questions,omitempty" doc:"Replacement question list"`
	}
}

func (h *QuizHandler) HandleUpdateQuiz(ctx context.Context, input *UpdateQuizInput) (*QuizOutput, error) {
	if _, err := h.authHandler.AuthorizeAdmin(input.Authorization); err != nil {
		return nil, err
	}
	if err := validateID(input.ID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Body.Title != nil {
		updates["title"] = *input.Body.Title
	}
	if input.Body.Description != nil {
		updates["description"] = *input.Body.Description
	}
	if input.Body.PointsPerAnswer != nil {
		updates["points_per_answer"] = *input.Body.PointsPerAnswer
	}

	db := h.db.WithContext(ctx)

	if len(updates) > 0 {
		result := db.Model(&models.Quiz{}).Where("id = ?", input.ID).Updates(updates)
		if result.Error != nil {
			return nil, huma.Error500InternalServerError("Failed to update quiz: " + result.Error.Error())
		}
		if result.RowsAffected == 0 {
			return nil, huma.Error404NotFound(reward.ErrQuizNotFound.Error())
		}
	}

	if input.Body.Questions != nil {
		var count int64
		if err := db.Model(&models.Quiz{}).Where("id = ?", input.ID).Count(&count).Error; err != nil {
			return nil, huma.Error500InternalServerError("Failed to update quiz: " + err.Error())
		}
		if count == 0 {
			return nil, huma.Error404NotFound(reward.ErrQuizNotFound.Error())
		}

		if err := db.Where("quiz_id = ?", input.ID).Delete(&models.Question{}).Error; err != nil {
			return nil, huma.Error500InternalServerError("Failed to replace questions: " + err.Error())
		}
		questions := buildQuestions(input.Body.Questions)
		for i := range questions {
			questions[i].QuizID = input.ID
		}
		if len(questions) > 0 {
			if err := db.Create(&questions).Error; err != nil {
				return nil, huma.Error500InternalServerError("Failed to replace questions: " + err.Error())
			}
		}
	}

	quiz, err := h.loadQuiz(ctx, input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound(reward.ErrQuizNotFound.Error())
		}
		return nil, huma.Error500InternalServerError("Failed to load quiz: " + err.Error())
	}
	return &QuizOutput{Body: quiz}, nil
}

type DeleteQuizInput struct {
	auth.AuthInput
	ID string `path:"id" doc:"Quiz identifier"`
}

type DeleteQuizOutput struct{}

func (h *QuizHandler) HandleDeleteQuiz(ctx context.Context, input *DeleteQuizInput) (*DeleteQuizOutput, error) {
	if _, err := h.authHandler.AuthorizeAdmin(input.Authorization); err != nil {
		return nil, err
	}
	if err := validateID(input.ID); err != nil {
		return nil, err
	}

	db := h.db.WithContext(ctx)
	result := db.Delete(&models.Quiz{}, "id = ?", input.ID)
	if result.Error != nil {
		return nil, huma.Error500InternalServerError("Failed to delete quiz: " + result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return nil, huma.Error404NotFound(reward.ErrQuizNotFound.Error())
	}

	// Questions and receipts never outlive their quiz.
	db.Where("quiz_id = ?", input.ID).Delete(&models.Question{})
	db.Where("quiz_id = ?", input.ID).Delete(&models.Completion{})

	return &DeleteQuizOutput{}, nil
}

type CompleteQuizInput struct {
	auth.AuthInput
	ID   string `path:"id" doc:"Quiz identifier"`
	Body struct {
		Answers []int `json:"answers" doc:"Chosen option index per question position" required:"true"`
	}
}

type CompleteQuizOutput struct {
	Body models.Completion
}

func (h *QuizHandler) HandleCompleteQuiz(ctx context.Context, input *CompleteQuizInput) (*CompleteQuizOutput, error) {
	identity, err := h.authHandler.Authorize(input.Authorization)
	if err != nil {
		return nil, err
	}
	if err := validateID(input.ID); err != nil {
		return nil, err
	}

	completion, err := h.reward.CompleteQuiz(ctx, input.ID, identity.UserID, input.Body.Answers)
	if err != nil {
		switch {
		case errors.Is(err, reward.ErrQuizNotFound):
			return nil, huma.Error404NotFound(err.Error())
		case errors.Is(err, reward.ErrUserNotFound):
			return nil, huma.Error404NotFound(err.Error())
		case errors.Is(err, reward.ErrAlreadyCompleted):
			return nil, huma.Error409Conflict(err.Error())
		default:
			return nil, huma.Error500InternalServerError("Failed to settle completion: " + err.Error())
		}
	}

	return &CompleteQuizOutput{Body: completion}, nil
}

func buildQuestions(fields []QuestionFields) []models.Question {
	questions := make([]models.Question, 0, len(fields))
	for position, field := range fields {
		questions = append(questions, models.Question{
			Position:           position,
			Prompt:             field.Prompt,
			AnswerOptions:      field.AnswerOptions,
			CorrectAnswerIndex: field.CorrectAnswerIndex,
		})
	}
	return questions
}
