package commands

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to command failures so hosts can route them without
// matching on message strings.
const (
	codeValidationFailed = "BLOCKS_CMD_VALIDATION_FAILED"
	codeCanceled         = "BLOCKS_CMD_CANCELED"
	codeDeadlineExceeded = "BLOCKS_CMD_DEADLINE_EXCEEDED"
	codeContextFailed    = "BLOCKS_CMD_CONTEXT_FAILED"
	codeExecutionFailed  = "BLOCKS_CMD_EXECUTION_FAILED"
)

// wrapValidationError tags message validation failures. An error already
// carrying go-errors metadata passes through untouched.
func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "block command rejected").
		WithTextCode(codeValidationFailed)
}

// wrapContextError distinguishes cancellation from deadline expiry so the
// caller can tell a shutdown apart from a slow sync.
func wrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	msg, code := "block command context failed", codeContextFailed
	switch err {
	case context.Canceled:
		msg, code = "block command canceled", codeCanceled
	case context.DeadlineExceeded:
		msg, code = "block command deadline exceeded", codeDeadlineExceeded
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, msg).WithTextCode(code)
}

func wrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "block command failed").
		WithTextCode(codeExecutionFailed)
}
