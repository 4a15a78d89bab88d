package models

// Role-projected views. Admins see correct answer indexes and the full
// receipt lists; everyone else sees redacted questions plus a single flag
// telling them whether they already completed/received the item.

type QuestionView struct {
	Prompt             string   `json:"prompt"`
	AnswerOptions      []string `json:"answer_options"`
	CorrectAnswerIndex *int     `json:"correct_answer_index,omitempty"`
}

type QuizView struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	PointsPerAnswer int            `json:"points_per_answer"`
	Questions       []QuestionView `json:"questions"`
	Completions     *[]Completion  `json:"completions,omitempty"`
	Completed       *bool          `json:"completed,omitempty"`
}

type GiftView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	PricePoints int        `json:"price_points"`
	Receipts    *[]Receipt `json:"receipts,omitempty"`
	Received    *bool      `json:"received,omitempty"`
}

func ProjectQuiz(quiz Quiz, role, userID string) QuizView {
	view := QuizView{
		ID:              quiz.ID,
		Title:           quiz.Title,
		Description:     quiz.Description,
		PointsPerAnswer: quiz.PointsPerAnswer,
		Questions:       make([]QuestionView, 0, len(quiz.Questions)),
	}

	admin := role == RoleAdmin
	for _, question := range quiz.Questions {
		qv := QuestionView{
			Prompt:        question.Prompt,
			AnswerOptions: question.AnswerOptions,
		}
		if admin {
			index := question.CorrectAnswerIndex
			qv.CorrectAnswerIndex = &index
		}
		view.Questions = append(view.Questions, qv)
	}

	if admin {
		completions := quiz.Completions
		if completions == nil {
			completions = []Completion{}
		}
		view.Completions = &completions
		return view
	}

	completed := false
	for _, completion := range quiz.Completions {
		if completion.UserID == userID {
			completed = true
			break
		}
	}
	view.Completed = &completed
	return view
}

func ProjectGift(gift Gift, role, userID string) GiftView {
	view := GiftView{
		ID:          gift.ID,
		Name:        gift.Name,
		Category:    gift.Category,
		PricePoints: gift.PricePoints,
	}

	if role == RoleAdmin {
		receipts := gift.Receipts
		if receipts == nil {
			receipts = []Receipt{}
		}
		view.Receipts = &receipts
		return view
	}

	received := false
	for _, receipt := range gift.Receipts {
		if receipt.ReceiverID == userID {
			received = true
			break
		}
	}
	view.Received = &received
	return view
}
