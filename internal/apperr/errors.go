// Package apperr defines the closed error taxonomy shared by every entry
// point. Each error carries a stable code, a fixed human message and optional
// structured meta; the HTTP layer converts them to the error envelope.
package apperr

// Code identifies one error kind of the taxonomy. Codes are part of the API
// contract consumed by the mobile app.
type Code string

const (
	CodeGeneric                   Code = "GenericError"
	CodeMissingQueryParams        Code = "MissingQueryParams"
	CodeMissingBodyError          Code = "MissingBodyError"
	CodeMissingTokenError         Code = "MissingTokenError"
	CodeUnauthorizedAction        Code = "UnauthorizedAction"
	CodeInvalidHttpMethod         Code = "InvalidHttpMethod"
	CodeUserNotFound              Code = "UserNotFound"
	CodeDealerNotFound            Code = "DealerNotFound"
	CodeDealerAlreadyExists       Code = "DealerAlreadyExists"
	CodeStationDoesNotExist       Code = "StationDoesNotExist"
	CodeStationHasNoCurrentPrices Code = "StationHasNoCurrentPrices"
	CodeFuelTypeAlreadyExists     Code = "FuelTypeAlreadyExists"
	CodeRuleNameDoesNotExist      Code = "RuleNameDoesNotExist"
	CodeLockDoesNotExist          Code = "LockDoesNotExist"
	CodeLockCannotBeClaimed       Code = "LockCannotBeClaimed"
	CodeLockIsStillOpen           Code = "LockIsStillOpen"
	CodeUserAlreadyHaveALock      Code = "UserAlreadyHaveALock"
)

// Error is the single error type of the taxonomy.
type Error struct {
	Code    Code           `json:"errorCode"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta,omitempty"`
	// StatusCode overrides the default HTTP 400 when non-zero.
	StatusCode int `json:"-"`
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Is makes errors.Is match on the code, so callers can compare against the
// bare constructors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMeta attaches structured context to a copy of the error.
func (e *Error) WithMeta(meta map[string]any) *Error {
	clone := *e
	clone.Meta = meta
	return &clone
}

func Generic() *Error {
	return newError(CodeGeneric, "Unknown error occurred")
}

func MissingQueryParams(params ...string) *Error {
	err := newError(CodeMissingQueryParams, "Some HTTP query parameters are missing.")
	if len(params) > 0 {
		err.Meta = map[string]any{"missingParams": params}
	}
	return err
}

func MissingBody(props ...string) *Error {
	err := newError(CodeMissingBodyError, "HTTP body is missing required properties.")
	if len(props) > 0 {
		err.Meta = map[string]any{"missingProps": props}
	}
	return err
}

func MissingToken() *Error {
	return newError(CodeMissingTokenError, "There is no token sent.")
}

func UnauthorizedAction() *Error {
	return newError(CodeUnauthorizedAction, "You are not authorized to do this action")
}

func InvalidHttpMethod(method string) *Error {
	err := newError(CodeInvalidHttpMethod, "An invalid HTTP method was received.")
	if method != "" {
		err.Meta = map[string]any{"httpMethod": method}
	}
	return err
}

func UserNotFound() *Error {
	return newError(CodeUserNotFound, "User does not have an existing profile.")
}

func DealerNotFound() *Error {
	return newError(CodeDealerNotFound, "Dealer not found")
}

func DealerAlreadyExists() *Error {
	return newError(CodeDealerAlreadyExists, "Dealer Already Exists")
}

func StationDoesNotExist() *Error {
	return newError(CodeStationDoesNotExist, "Station does not exist")
}

func StationHasNoCurrentPrices() *Error {
	return newError(CodeStationHasNoCurrentPrices, "Station has no current prices")
}

func FuelTypeAlreadyExists() *Error {
	return newError(CodeFuelTypeAlreadyExists,
		"Fuel type already exists. Edit price of the given fuel type to update the price.")
}

func RuleNameDoesNotExist() *Error {
	return newError(CodeRuleNameDoesNotExist, "Rule name does not exist")
}

func LockDoesNotExist() *Error {
	return newError(CodeLockDoesNotExist, "Lock does not exist")
}

func LockCannotBeClaimed() *Error {
	return newError(CodeLockCannotBeClaimed, "Lock is already expired or cancelled.")
}

func LockIsStillOpen() *Error {
	return newError(CodeLockIsStillOpen, "Lock status is still open. Lock cannot be deleted")
}

func UserAlreadyHaveALock() *Error {
	return newError(CodeUserAlreadyHaveALock, "User already has a lock for this station")
}
