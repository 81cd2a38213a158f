package sessman

import "errors"

var (
	ErrPersistence   = errors.New("session record could not be persisted")
	ErrNotFound      = errors.New("session record not found")
	ErrCorruptRecord = errors.New("session record is corrupt")

	ErrLoginExhausted     = errors.New("login attempts exhausted")
	ErrNoFormCollaborator = errors.New("no login form collaborator configured")
	ErrFormNotFound       = errors.New("login form not found")

	ErrInvalidProxyURL = errors.New("invalid proxy url")
	ErrEmptyProxyURL   = errors.New("proxy url is empty")

	ErrInvalidTarget         = errors.New("download target is not an existing directory")
	ErrNotDownloadable       = errors.New("resource is not downloadable")
	ErrTransfer              = errors.New("transfer failed")
	ErrInsufficientDiskSpace = errors.New("insufficient disk space")
)
