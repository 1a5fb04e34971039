package server

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"repo-manager/internal/config"
	"repo-manager/internal/domain"
)

type errorType int

const (
	errorTypeBadRequest errorType = iota
	errorTypeForbidden
	errorTypeNotFound
	errorTypeInternal
)

var badRequestErrors = []error{
	domain.ErrPathTraversal,
	domain.ErrInvalidName,
	domain.ErrPathTooLong,
	domain.ErrMissingFile,
	domain.ErrMalformedRequest,
	domain.ErrUnknownSetting,
	domain.ErrImmutableSetting,
	domain.ErrInvalidLogLevel,
}

// responder общий для всех обработчиков перевод доменных ошибок в HTTP-ответ.
type responder struct {
	messages config.Messages
}

// getErrorType сопоставляет доменные ошибки с HTTP-кодами статуса.
// Всё, что не распознано (ErrIO, ErrPersistence, ErrAlreadyExists), уходит в 500.
func getErrorType(err error) errorType {
	switch {
	case matchError(err, badRequestErrors) != nil:
		return errorTypeBadRequest
	case errors.Is(err, domain.ErrUnsupportedOperation):
		return errorTypeForbidden
	case errors.Is(err, domain.ErrFileNotFound):
		return errorTypeNotFound
	default:
		return errorTypeInternal
	}
}

func matchError(err error, targets []error) error {
	for _, target := range targets {
		if errors.Is(err, target) {
			return target
		}
	}
	return nil
}

// handleError клиенту уходит короткое сообщение, полная ошибка только в лог.
// Для 400 к сообщению добавляется текст доменной ошибки: он не содержит путей сервера.
func (h responder) handleError(w http.ResponseWriter, err error, message string) {
	var httpStatus int
	var clientMessage string

	switch getErrorType(err) {
	case errorTypeBadRequest:
		httpStatus = http.StatusBadRequest
		clientMessage = h.messages.BadRequest + ": " + matchError(err, badRequestErrors).Error()
	case errorTypeForbidden:
		httpStatus = http.StatusForbidden
		clientMessage = h.messages.ForbiddenFile
	case errorTypeNotFound:
		httpStatus = http.StatusNotFound
		clientMessage = h.messages.NotFound
	case errorTypeInternal:
		httpStatus = http.StatusInternalServerError
		clientMessage = message
	}

	entry := logrus.WithError(err).WithField("status", httpStatus)
	if httpStatus == http.StatusInternalServerError {
		entry.Error(clientMessage)
	} else {
		entry.Warn(clientMessage)
	}
	http.Error(w, clientMessage, httpStatus)
}
