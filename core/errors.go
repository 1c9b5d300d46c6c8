package core

import (
	"fmt"

	"github.com/samber/oops"
)

// Stage identifies which step of the handshake produced an error
type Stage string

const (
	StagePipeline Stage = "pipeline"
	StageAddress  Stage = "address"
	StageMessage  Stage = "message"
	StageSigning  Stage = "signing"
	StageSession  Stage = "session"
)

// Error codes of the handshake taxonomy
const (
	CodeHostUnavailable       = "HOST_INTEGRATION_UNAVAILABLE"
	CodeNoAddress             = "NO_ADDRESS_AVAILABLE"
	CodeAddressRetrieval      = "ADDRESS_RETRIEVAL_FAILURE"
	CodeWrongContext          = "WRONG_EXECUTION_CONTEXT"
	CodeMissingSessionContext = "MISSING_SESSION_CONTEXT"
	CodeInvalidAddress        = "INVALID_ADDRESS_FORMAT"
	CodeMessageGeneration     = "MESSAGE_GENERATION_FAILURE"
	CodeSigningRejected       = "SIGNING_REJECTED"
	CodeSigningFailure        = "SIGNING_FAILURE"
	CodeSessionInit           = "SESSION_INITIALIZATION_FAILURE"
	CodePipelineFailure       = "PIPELINE_FAILURE"
)

var knownCodes = map[string]struct{}{
	CodeHostUnavailable:       {},
	CodeNoAddress:             {},
	CodeAddressRetrieval:      {},
	CodeWrongContext:          {},
	CodeMissingSessionContext: {},
	CodeInvalidAddress:        {},
	CodeMessageGeneration:     {},
	CodeSigningRejected:       {},
	CodeSigningFailure:        {},
	CodeSessionInit:           {},
	CodePipelineFailure:       {},
}

// Fail creates a classified error with no underlying cause
func Fail(code string, stage Stage, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return oops.Code(code).In(string(stage)).Public(msg).Errorf("%s", msg)
}

// Classify wraps err with code and stage. An error that is already classified is
// returned unchanged so its original code, stage and message survive. A nil
// err yields nil. Only msg is public; the cause stays in Error() for logs.
func Classify(code string, stage Stage, err error, msg string) error {
	if err == nil {
		return nil
	}
	if IsClassified(err) {
		return err
	}
	return oops.Code(code).In(string(stage)).Public(msg).Wrapf(err, "%s", msg)
}

// IsClassified reports whether err carries one of the handshake error codes
func IsClassified(err error) bool {
	_, ok := knownCodes[CodeOf(err)]
	return ok
}

// CodeOf returns the handshake error code of err, or "" when it has none
func CodeOf(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}

// StageOf returns the stage recorded on a classified error
func StageOf(err error) Stage {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	return Stage(oopsErr.Domain())
}

// PublicMessage returns the message of a classified error without its causes
func PublicMessage(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	return oopsErr.Public()
}
