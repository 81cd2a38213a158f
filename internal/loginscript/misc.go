package loginscript

import "errors"

const (
	PREPARE_CALLBACK = "prepareLogin"
	EXTRACT_CALLBACK = "extractFormData"
)

var (
	ErrPrepareNotDefined = errors.New("prepareLogin function not defined")
	ErrInvalidReturnType = errors.New("invalid return type")
	ErrScriptNotFound    = errors.New("login script not found")
)
