package apperror

import (
	"context"
	"errors"
)

// Result is what a mutation caller sees: either a field map or one message.
type Result struct {
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
	ServerError      string            `json:"serverError,omitempty"`
	Code             string            `json:"code,omitempty"`
}

// genericServerError is shown for anything that is not a known AppError.
const genericServerError = "Something went wrong. Please try again."

// Surface translates err into the caller-facing Result.
// Driver and SQL text never leave this function: only AppError messages
// that were written for users are passed through.
func Surface(err error) *Result {
	if err == nil {
		return nil
	}

	appErr, ok := AsAppError(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) {
			return &Result{ServerError: genericServerError, Code: CodeTimeout}
		}
		return &Result{ServerError: genericServerError, Code: CodeInternal}
	}

	switch appErr.Code {
	case CodeValidation:
		if len(appErr.Fields) > 0 {
			fields := make(map[string]string, len(appErr.Fields))
			for k, v := range appErr.Fields {
				fields[k] = v
			}
			return &Result{ValidationErrors: fields, Code: appErr.Code}
		}
		return &Result{ServerError: appErr.Message, Code: appErr.Code}
	case CodeInternal, CodeDatabase, CodeTimeout:
		return &Result{ServerError: genericServerError, Code: appErr.Code}
	default:
		return &Result{ServerError: appErr.Message, Code: appErr.Code}
	}
}
