package core

import "errors"

var (
	// ErrDuplicateCommand is returned when a command name is registered twice.
	ErrDuplicateCommand = errors.New("duplicate command")
	// ErrInvalidCommand is returned for malformed command declarations.
	ErrInvalidCommand = errors.New("invalid command")
	// ErrUnknownCommand is returned when a name matches no registered command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrBlocked is returned by the guard middleware when a stage rejects the
	// invocation. The caller has already been notified where appropriate.
	ErrBlocked = errors.New("command blocked")
)
