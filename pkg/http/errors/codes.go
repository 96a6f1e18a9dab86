package errors

// Error codes for standardized error responses
const (
	// Request errors
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeMissingField   = "missing_field"

	// Resource errors
	ErrCodeQuizNotFound    = "quiz_not_found"
	ErrCodeSessionNotFound = "session_not_found"
	ErrCodeDraftNotFound   = "draft_not_found"

	// Quiz lifecycle errors
	ErrCodeConfirmationRequired = "confirmation_required"
	ErrCodeSaveDisabled         = "save_disabled"
	ErrCodeNoQuestions          = "no_questions"

	// Editor and taker state errors
	ErrCodeInvalidState     = "invalid_state"
	ErrCodeReuseUnavailable = "reuse_unavailable"
	ErrCodeUnknownCandidate = "unknown_candidate"
	ErrCodeNothingSelected  = "nothing_selected"
	ErrCodeAnswerHidden     = "answer_hidden"
	ErrCodeUnknownAction    = "unknown_action"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeStorageFailed      = "storage_failed"
)
