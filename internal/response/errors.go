package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrAccountInactive    ErrCode = "ACCOUNT_INACTIVE"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden           ErrCode = "FORBIDDEN"
	ErrCandidateAccessOnly ErrCode = "CANDIDATE_ACCESS_ONLY"
	ErrStaffAccessOnly     ErrCode = "STAFF_ACCESS_ONLY"
	ErrAdminAccessOnly     ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Applications ──────────────────────────────────────────────────
	ErrEmailRegistered ErrCode = "EMAIL_ALREADY_REGISTERED"

	// ─── Assessment ────────────────────────────────────────────────────
	ErrQuestionsUnavailable ErrCode = "QUESTIONS_UNAVAILABLE"
	ErrNoActiveAssessment   ErrCode = "NO_ACTIVE_ASSESSMENT"
	ErrAssessmentFinished   ErrCode = "ASSESSMENT_FINISHED"
	ErrAssessmentNotStarted ErrCode = "ASSESSMENT_NOT_STARTED"
	ErrInvalidAnswer        ErrCode = "INVALID_ANSWER"
	ErrAttemptNotSaved      ErrCode = "ATTEMPT_NOT_SAVED"
	ErrAttemptStore         ErrCode = "ATTEMPT_STORE_UNAVAILABLE"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid email, password or role."
	case ErrSessionInvalidated:
		return "Your session has ended. Please log in again."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."
	case ErrAccountInactive:
		return "This account has been deactivated."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrCandidateAccessOnly:
		return "This resource is restricted to candidates."
	case ErrStaffAccessOnly:
		return "This resource is restricted to staff."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Applications ──────────────────────────────────────────────────
	case ErrEmailRegistered:
		return "User with this email already exists"

	// ─── Assessment ────────────────────────────────────────────────────
	case ErrQuestionsUnavailable:
		return "Failed to load questions. Please try again."
	case ErrNoActiveAssessment:
		return "No aptitude test in progress."
	case ErrAssessmentFinished:
		return "This aptitude test has already been submitted."
	case ErrAssessmentNotStarted:
		return "This aptitude test has not started."
	case ErrInvalidAnswer:
		return "The selected answer is not valid for this question."
	case ErrAttemptNotSaved:
		return "Your result was scored but could not be saved."
	case ErrAttemptStore:
		return "Test results are temporarily unavailable."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "Resume is required"
	case ErrUnsupportedFile:
		return "Resume must be PDF, DOC, or DOCX"
	case ErrFileTooLarge:
		return "File size exceeds the limit."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
