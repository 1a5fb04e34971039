package domain

import "errors"

// Ошибки файлового репозитория.
var (
	ErrPathTraversal        = errors.New("path traversal is not allowed")
	ErrPathTooLong          = errors.New("path too long")
	ErrInvalidName          = errors.New("invalid file or folder name")
	ErrFileNotFound         = errors.New("file or folder not found")
	ErrAlreadyExists        = errors.New("file or folder already exists")
	ErrMissingFile          = errors.New("request carries no file field")
	ErrMalformedRequest     = errors.New("malformed request")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrIO                   = errors.New("i/o failure")
)

// Ошибки изменения настроек.
var (
	ErrUnknownSetting   = errors.New("unknown config")
	ErrImmutableSetting = errors.New("setting cannot be changed at runtime")
	ErrInvalidLogLevel  = errors.New("invalid log level provided (Trace, Debug, Info, Warn, Error)")
	ErrPersistence      = errors.New("failed to save config")
)
