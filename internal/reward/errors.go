package reward

import "errors"

var (
	// ErrQuizNotFound indicates the quiz id resolved to nothing.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrGiftNotFound indicates the gift id resolved to nothing.
	ErrGiftNotFound = errors.New("gift not found")
	// ErrUserNotFound indicates the balance side of a settlement had no target.
	ErrUserNotFound = errors.New("user not found")
	// ErrAlreadyCompleted rejects a second completion of the same quiz.
	ErrAlreadyCompleted = errors.New("quiz is already completed")
	// ErrAlreadyReceived rejects a second receipt of the same gift.
	ErrAlreadyReceived = errors.New("gift has already been received")
	// ErrInsufficientPoints rejects a redemption the balance cannot cover.
	ErrInsufficientPoints = errors.New("user does not have enough points to verify receipt")
)
