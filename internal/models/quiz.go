package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Quiz struct {
	ID              string       `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	Title           string       `json:"title"`
	Description     string       `json:"description,omitempty"`
	PointsPerAnswer int          `json:"points_per_answer"`
	Questions       []Question   `gorm:"constraint:OnDelete:CASCADE" json:"questions"`
	Completions     []Completion `gorm:"constraint:OnDelete:CASCADE" json:"completions"`
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

type Question struct {
	ID                 uint       `gorm:"primaryKey" json:"-"`
	QuizID             string     `gorm:"index" json:"-"`
	Position           int        `json:"-"`
	Prompt             string     `json:"prompt"`
	AnswerOptions      StringList `gorm:"type:text" json:"answer_options"`
	CorrectAnswerIndex int        `json:"correct_answer_index"`
}

// Completion records that a user finished a quiz and what it paid out.
type Completion struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	QuizID         string    `gorm:"index" json:"-"`
	UserID         string    `gorm:"index" json:"user_id"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	EarnedPoints   int       `json:"earned_points"`
	CompletedAt    time.Time `json:"completed_at"`
}

// StringList stores a []string as a JSON text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	default:
		return fmt.Errorf("unsupported column type %T for StringList", value)
	}
}
