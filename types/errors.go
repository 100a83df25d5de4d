package types

import "errors"

// Every failure the service reports to callers wraps one of these.
var (
	ErrNoContractLoaded = errors.New("no contract uploaded")
	ErrMissingQuestion  = errors.New("question is empty")
	ErrEmptySelection   = errors.New("no messages selected")
	ErrEmptyHistory     = errors.New("conversation history is empty")
	ErrUnreadablePdf    = errors.New("unreadable pdf")
	ErrOcrFailed        = errors.New("ocr failed")
	ErrEmbeddingFailed  = errors.New("embedding failed")
	ErrGenerationFailed = errors.New("text generation failed")
	ErrRateLimited      = errors.New("text generation rate limited")
	ErrTimeout          = errors.New("external service timed out")
)
