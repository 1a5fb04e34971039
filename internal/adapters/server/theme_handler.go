package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"repo-manager/internal/config"
	"repo-manager/internal/domain"
	"repo-manager/internal/settings"
)

type GeneralSource interface {
	General() settings.GeneralConfig
}

// ThemeHandler название компании и иконка, оба читаются из живых настроек.
type ThemeHandler struct {
	responder
	store GeneralSource
}

func NewThemeHandler(store GeneralSource, messages config.Messages) *ThemeHandler {
	return &ThemeHandler{
		responder: responder{messages: messages},
		store:     store,
	}
}

func (h *ThemeHandler) CompanyName(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", domain.MIMEText)
	_, _ = w.Write([]byte(h.store.General().Theme.CompanyName))
}

func (h *ThemeHandler) Icon(w http.ResponseWriter, r *http.Request) {
	iconPath := h.store.General().Theme.IconPath

	info, err := os.Stat(iconPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		h.handleError(w, fmt.Errorf("icon '%s': %w", iconPath, domain.ErrFileNotFound), h.messages.CannotServe)
		return
	case err != nil:
		h.handleError(w, fmt.Errorf("icon '%s': %w: %v", iconPath, domain.ErrIO, err), h.messages.CannotServe)
		return
	case !info.Mode().IsRegular():
		h.handleError(w, fmt.Errorf("icon '%s' is not a file: %w", iconPath, domain.ErrFileNotFound), h.messages.CannotServe)
		return
	}

	http.ServeFile(w, r, iconPath)
}
