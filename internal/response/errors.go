package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation       ErrCode = "VALIDATION_ERROR"
	ErrInvalidID        ErrCode = "INVALID_ID"
	ErrNoFieldsToUpdate ErrCode = "NO_FIELDS_TO_UPDATE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "validation failed, check the fields for details"
	case ErrInvalidID:
		return "course id must be a positive integer"
	case ErrNoFieldsToUpdate:
		return "no fields to update"
	case ErrNotFound:
		return "course not found"
	case ErrConflict:
		return "CourseID already exists"
	case ErrRateLimitExceeded:
		return "too many requests, try again later"
	case ErrInternal:
		return "internal server error"
	default:
		return "unexpected error"
	}
}
