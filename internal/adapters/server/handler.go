package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"repo-manager/internal/config"
	"repo-manager/internal/domain"
	"repo-manager/internal/metrics"
)

// Handler обработчики файлового репозитория.
type Handler struct {
	responder
	uc            domain.FileManagement
	maxUploadSize int64
	forbiddenExt  []string
}

func NewHandler(
	uc domain.FileManagement,
	forbidden []string,
	maxUploadSize int64,
	messages config.Messages,
) *Handler {
	return &Handler{
		responder:     responder{messages: messages},
		uc:            uc,
		maxUploadSize: maxUploadSize,
		forbiddenExt:  forbidden,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get(QueryParamPath)

	entries, err := h.uc.List(path)
	metrics.RecordRepositoryOperation(OperationList, err)
	if err != nil {
		h.handleError(w, err, h.messages.CannotListDirectory)
		return
	}

	if entries == nil {
		entries = []domain.Entry{}
	}
	writeJSON(w, entries)
}

func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	path := r.FormValue(FormParamPath)
	h.mutate(w, OperationCreateFolder, LogFolderCreated, h.messages.InternalError,
		logrus.Fields{"path": path},
		func() error { return h.uc.CreateFolder(path) })
}

func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	path := r.FormValue(QueryParamPath)
	h.mutate(w, OperationDeleteFile, LogFileDeleted, h.messages.CannotDelete,
		logrus.Fields{"path": path},
		func() error { return h.uc.DeleteFile(path) })
}

func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	path := r.FormValue(QueryParamPath)
	h.mutate(w, OperationDeleteFolder, LogFolderDeleted, h.messages.CannotDelete,
		logrus.Fields{"path": path},
		func() error { return h.uc.DeleteFolder(path) })
}

func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	path := r.FormValue(FormParamPath)
	name := r.FormValue(FormParamName)
	h.mutate(w, OperationRename, LogEntryRenamed, h.messages.InternalError,
		logrus.Fields{"path": path, "name": name},
		func() error { return h.uc.Rename(path, name) })
}

func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	path := r.FormValue(FormParamPath)
	destination := r.FormValue(FormParamDest)
	h.mutate(w, OperationMove, LogEntryMoved, h.messages.InternalError,
		logrus.Fields{"path": path, "destination": destination},
		func() error { return h.uc.Move(path, destination) })
}

// Upload path в форме это путь итогового файла, существующий файл перезаписывается.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	fields := logrus.Fields{}

	h.mutate(w, OperationUpload, LogFileUploaded, h.messages.InternalError, fields, func() error {
		// ContentLength может быть -1 при chunked-передаче, тогда сработает MaxBytesReader.
		if r.ContentLength > h.maxUploadSize {
			return fmt.Errorf("upload size %d exceeds maximum %d: %w",
				r.ContentLength, h.maxUploadSize, domain.ErrUnsupportedOperation)
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

		file, header, err := r.FormFile(FormParamFile)
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				return fmt.Errorf("upload exceeds maximum %d: %w", h.maxUploadSize, domain.ErrUnsupportedOperation)
			}
			return fmt.Errorf("%w: %v", domain.ErrMissingFile, err)
		}
		defer file.Close()

		target := r.FormValue(FormParamPath)
		fields["path"] = target
		fields["size"] = header.Size

		if h.isForbidden(filepath.Base(target)) || h.isForbidden(header.Filename) {
			return fmt.Errorf("upload of '%s': %w", target, domain.ErrUnsupportedOperation)
		}

		if err := h.uc.UploadFile(target, file); err != nil {
			return err
		}
		metrics.RecordUpload(header.Size)
		return nil
	})
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, r.URL.Query().Get(QueryParamPath), false)
}

func (h *Handler) DownloadFolder(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, r.URL.Query().Get(QueryParamPath), true)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, path string, isFolder bool) {
	if h.isForbidden(filepath.Base(path)) {
		http.Error(w, h.messages.ForbiddenFile, http.StatusForbidden)
		return
	}

	operation := OperationDownload
	var err error
	if isFolder {
		operation = OperationDownloadFolder
		err = h.uc.ServeFolderAsZip(w, path)
	} else {
		err = h.uc.ServeFile(w, r, path)
	}

	metrics.RecordRepositoryOperation(operation, err)
	if err != nil {
		h.handleError(w, err, h.messages.CannotServe)
	}
}

// mutate общий хвост для изменяющих операций: метрика, лог и 204 при успехе.
func (h *Handler) mutate(
	w http.ResponseWriter,
	operation, logMessage, errMessage string,
	fields logrus.Fields,
	action func() error,
) {
	err := action()
	metrics.RecordRepositoryOperation(operation, err)
	if err != nil {
		h.handleError(w, err, errMessage)
		return
	}

	fields["operation"] = operation
	logrus.WithFields(fields).Info(logMessage)
	w.WriteHeader(http.StatusNoContent)
}

// isForbidden проверяет расширение файла и запрещённые имена вида ".env".
func (h *Handler) isForbidden(fileName string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, forbidden := range h.forbiddenExt {
		if ext == forbidden || strings.HasPrefix(fileName, forbidden) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", domain.MIMEJSON)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("Failed to encode response")
	}
}
