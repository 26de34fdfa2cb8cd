package httputil

// Machine-readable error codes returned alongside error messages.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeInvalidAuthHeader  = "invalid_auth_header"
	CodeMissingAuth        = "missing_auth"
	CodeInvalidToken       = "invalid_token"

	CodeEmailRequired      = "email_required"
	CodeInvalidEmailFormat = "invalid_email_format"
	CodeEmailAlreadyExists = "email_already_exists"
	CodePasswordRequired   = "password_required"
	CodePasswordTooShort   = "password_too_short"
	CodeNameRequired       = "name_required"
	CodeInvalidCredentials = "invalid_credentials"

	CodeValidationFailed = "validation_failed"
	CodeOwnerReadOnly    = "owner_read_only"
	CodeNotFound         = "not_found"

	CodeMethodNotAllowed = "method_not_allowed"
	CodeTooManyRequests  = "too_many_requests"
	CodeInternalError    = "internal_error"
)
