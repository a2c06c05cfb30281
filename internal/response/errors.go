package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden ErrCode = "FORBIDDEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"
	ErrInvalidID  ErrCode = "INVALID_ID"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Import ────────────────────────────────────────────────────────
	ErrUnknownSheetVariant  ErrCode = "UNKNOWN_SHEET_VARIANT"
	ErrImportFormatMismatch ErrCode = "IMPORT_FORMAT_MISMATCH"
	ErrInvalidWorkbook      ErrCode = "INVALID_WORKBOOK"
	ErrImportQueueDown      ErrCode = "IMPORT_QUEUE_UNAVAILABLE"

	// ─── Upload ────────────────────────────────────────────────────────
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
		return "E-mailadres of wachtwoord is onjuist."
	case ErrTokenRequired:
		return "Authenticatietoken is vereist."
	case ErrTokenInvalid:
		return "Authenticatietoken is ongeldig."
	case ErrTokenExpired:
		return "Authenticatietoken is verlopen."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "U heeft geen toestemming voor deze actie."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validatie mislukt. Controleer uw invoer."
	case ErrInvalidID:
		return "Ongeldig ID-formaat."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Niet gevonden."

	// ─── Import ────────────────────────────────────────────────────────
	case ErrUnknownSheetVariant:
		return "Onbekend tabblad."
	case ErrImportFormatMismatch:
		return "Het bestand is geen bezem- en conversieregeling."
	case ErrInvalidWorkbook:
		return "Het bestand kan niet als Excel-werkmap worden gelezen."
	case ErrImportQueueDown:
		return "De importwachtrij is niet beschikbaar."

	// ─── Upload ────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "Een bestand is vereist."
	case ErrUnsupportedFile:
		return "Bestandstype wordt niet ondersteund, alleen .xlsx."
	case ErrFileTooLarge:
		return "Bestand is te groot."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Te veel verzoeken. Probeer het later opnieuw."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Er is een interne serverfout opgetreden."
	default:
		return "Er is een onverwachte fout opgetreden."
	}
}
