package errors

import "fmt"

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeAuth          ErrorType = "AUTH"
	TypeTransport     ErrorType = "TRANSPORT"
	TypeProtocol      ErrorType = "PROTOCOL"
	TypeHTTP          ErrorType = "HTTP"
	TypeMetadata      ErrorType = "METADATA"
	TypeTracking      ErrorType = "TRACKING"
	TypeValidation    ErrorType = "VALIDATION"
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeGit           ErrorType = "GIT"
	TypeInternal      ErrorType = "INTERNAL"
)

// Context keys shared by the REST layer and its callers.
const (
	CtxMethod  = "method"
	CtxTarget  = "target"
	CtxHeaders = "headers"
	CtxBody    = "body"
	CtxStatus  = "status"
	CtxStderr  = "stderr"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if status, ok := e.Context[CtxStatus].(int); ok {
			msg += fmt.Sprintf(" [status %d]", status)
		}
		if stderr, ok := e.Context[CtxStderr].(string); ok && stderr != "" {
			msg += fmt.Sprintf(" - %s", stderr)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same type and message, so
// sentinels keep matching after WithError/WithContext produced a copy.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// ContextString returns a string context value, or "" when absent.
func (e *AppError) ContextString(key string) string {
	if e.Context == nil {
		return ""
	}
	s, _ := e.Context[key].(string)
	return s
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// Auth errors
var (
	ErrNoCredentials = NewAppError(TypeAuth, "No credentials found for host", nil).
				WithSuggestion("Add an entry to your netrc file:\n   machine <host> login <user> password <http-password>")

	ErrCredentialStore = NewAppError(TypeAuth, "Failed to read credential store", nil).
				WithSuggestion("Check the auth_file setting: mate-review config show")
)

// REST session errors
var (
	ErrTransport = NewAppError(TypeTransport, "Request to review server failed", nil).
			WithSuggestion("Check your network connection and the configured host")

	ErrBuildRequest = NewAppError(TypeTransport, "Failed to build request", nil)

	ErrMalformedResponse = NewAppError(TypeProtocol, "Response is missing the JSON framing marker", nil).
				WithSuggestion("Verify endpoint_prefix points at the REST API (usually /a)")

	ErrDecodeResponse = NewAppError(TypeProtocol, "Failed to decode JSON response", nil)

	ErrEncodeRequest = NewAppError(TypeProtocol, "Failed to encode request body", nil)

	ErrDecodePatch = NewAppError(TypeProtocol, "Failed to decode base64 patch", nil)

	ErrHTTPStatus = NewAppError(TypeHTTP, "Review server returned an error status", nil)

	ErrUnauthorized = NewAppError(TypeHTTP, "Review server rejected the credentials", nil).
			WithSuggestion("Generate a new HTTP password in the review server settings and update your netrc file")

	ErrNotFound = NewAppError(TypeHTTP, "Resource not found on review server", nil).
			WithSuggestion("Check the change number or triplet id")
)

// Change metadata errors
var (
	ErrMissingCurrentRevision = NewAppError(TypeMetadata, "Change has no current revision", nil).
					WithSuggestion("Request the change with the CURRENT_REVISION option")

	ErrUnknownRevision = NewAppError(TypeMetadata, "Current revision is not listed in revisions", nil)

	ErrMissingRef = NewAppError(TypeMetadata, "Revision has no fetch ref", nil)

	ErrMissingOwner = NewAppError(TypeMetadata, "Change owner has no username", nil).
			WithSuggestion("Request the change with the DETAILED_ACCOUNTS option")

	ErrInvalidMetadata = NewAppError(TypeMetadata, "Change metadata failed validation", nil)
)

// Reconciliation errors
var (
	ErrTrackingConflict = NewAppError(TypeTracking, "Local branch tracks a different upstream", nil).
		WithSuggestion("Rename or delete the existing branch, then download the change again")
)

// Validation errors
var (
	ErrInvalidChangeID = NewAppError(TypeValidation, "Invalid change identifier", nil).
				WithSuggestion("Use a change number or project~branch~Change-Id")

	ErrInvalidArgument = NewAppError(TypeValidation, "Invalid argument", nil)

	ErrEmptyTopic = NewAppError(TypeValidation, "Topic name is empty", nil)
)

// Configuration errors
var (
	ErrConfigMissing = NewAppError(TypeConfiguration, "Configuration is missing", nil).
				WithSuggestion("Initialize configuration: mate-review config set host <review.example.com>")

	ErrHostMissing = NewAppError(TypeConfiguration, "Review server host is not configured", nil).
			WithSuggestion("Run: mate-review config set host <review.example.com>")

	ErrInvalidConfig = NewAppError(TypeConfiguration, "Configuration is invalid", nil)
)

// Git errors
var (
	ErrFetch = NewAppError(TypeGit, "Failed to fetch from remote", nil).
			WithSuggestion("Check your remote connection: git remote -v")

	ErrGetBranch = NewAppError(TypeGit, "Failed to inspect branch", nil).
			WithSuggestion("Make sure you are in a git repository: git status")

	ErrCreateBranch = NewAppError(TypeGit, "Failed to create branch", nil)

	ErrCheckout = NewAppError(TypeGit, "Failed to check out branch", nil).
			WithSuggestion("Commit or stash local changes first: git stash")

	ErrResetBranch = NewAppError(TypeGit, "Failed to move branch", nil)

	ErrSetUpstream = NewAppError(TypeGit, "Failed to set branch upstream", nil)

	ErrPush = NewAppError(TypeGit, "Failed to push to remote", nil).
		WithSuggestion("Verify remote is configured: git remote -v")

	ErrGetCommits = NewAppError(TypeGit, "Failed to get commits", nil).
			WithSuggestion("Make sure you have commits in your repository: git log")

	ErrNotInGitRepo = NewAppError(TypeGit, "Not in a git repository", nil).
			WithSuggestion("Run the command from inside your working copy")
)
