package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	Status   string `json:"status"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Message categories shown to the user, one of four severities used
// consistently across all flows.
const (
	CategorySuccess = "success"
	CategoryDanger  = "danger"
	CategoryInfo    = "info"
	CategoryWarning = "warning"
)

func OK() Response {
	return Response{Status: StatusOK}
}

func Success(msg string) Response {
	return Response{
		Status:   StatusOK,
		Category: CategorySuccess,
		Message:  msg,
	}
}

func Info(msg string) Response {
	return Response{
		Status:   StatusOK,
		Category: CategoryInfo,
		Message:  msg,
	}
}

func Error(msg string) Response {
	return Response{
		Status:   StatusError,
		Category: CategoryDanger,
		Error:    msg,
	}
}

func Warning(msg string) Response {
	return Response{
		Status:   StatusError,
		Category: CategoryWarning,
		Error:    msg,
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is not a valid email", err.Field()))
		case "min":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is too short", err.Field()))
		case "max":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is too long", err.Field()))
		default:
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}

	return Response{
		Status:   StatusError,
		Category: CategoryDanger,
		Error:    strings.Join(errMsgs, ", "),
	}
}
