package usecase

import "errors"

var (
	ErrNoteRequired     = errors.New("a rejection note is required")
	ErrForbidden        = errors.New("you are not allowed to do that")
	ErrAlreadySubmitted = errors.New("this form has already been submitted")
	ErrInvalidCategory  = errors.New("unknown category")
)
