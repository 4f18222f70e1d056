package domain

import "fmt"

// EngineError is the unified error type for the engine.
// Each error has a numeric code and human-readable message.
type EngineError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error %d: %s", e.Code, e.Message)
}

// NewEngineError creates a new EngineError.
func NewEngineError(code int, msg string) *EngineError {
	return &EngineError{Code: code, Message: msg}
}

// WrapEngineError creates an EngineError that includes a cause.
func WrapEngineError(code int, msg string, cause error) *EngineError {
	return &EngineError{Code: code, Message: fmt.Sprintf("%s: %v", msg, cause)}
}

// ---- Corpus / Session errors (-32010 to -32039) ----

var (
	ErrCorpusOpen       = &EngineError{Code: -32010, Message: "cannot open corpus file"}
	ErrCorpusLine       = &EngineError{Code: -32011, Message: "corpus line is not valid JSON"}
	ErrCorpusEmpty      = &EngineError{Code: -32012, Message: "corpus contains no conversations"}
	ErrIndexOutOfRange  = &EngineError{Code: -32013, Message: "conversation index out of range"}
	ErrRatingInvalid    = &EngineError{Code: -32014, Message: "rating is not a known Likert value"}
	ErrRatingKeyInvalid = &EngineError{Code: -32015, Message: "rating key is malformed"}
)

// ---- Record / Validation errors (-32040 to -32069) ----

var (
	ErrRecordInvalid = &EngineError{Code: -32040, Message: "annotation record validation failed"}
)

// ---- Store / Config errors (-32130 to -32159) ----

var (
	ErrStoreInit     = &EngineError{Code: -32130, Message: "failed to initialize store"}
	ErrStoreQuery    = &EngineError{Code: -32131, Message: "store query failed"}
	ErrStoreWrite    = &EngineError{Code: -32132, Message: "store write failed"}
	ErrConfigInvalid = &EngineError{Code: -32136, Message: "invalid configuration"}
)

// ---- Export errors (-32160 to -32189) ----

var (
	ErrLogEmpty = &EngineError{Code: -32160, Message: "annotation log is empty, nothing to export"}
)
