package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"repo-manager/internal/config"
	"repo-manager/internal/domain"
	"repo-manager/internal/metrics"
	"repo-manager/internal/settings"
)

// maxChangeBody тело запроса на изменение: один путь и одно значение.
const maxChangeBody = 64 << 10

const unknownSettingLabel = "unknown"

// SettingsStore то, что нужно обработчикам от общего состояния настроек.
type SettingsStore interface {
	General() settings.GeneralConfig
	Admin() settings.AdminConfig
	CheckAdminHash(hash string) bool
	Change(path, value string) error
}

type ConfigHandler struct {
	responder
	store SettingsStore
}

func NewConfigHandler(store SettingsStore, messages config.Messages) *ConfigHandler {
	return &ConfigHandler{
		responder: responder{messages: messages},
		store:     store,
	}
}

type changeRequest struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

func (h *ConfigHandler) General(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.store.General())
}

func (h *ConfigHandler) Admin(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.store.Admin())
}

func (h *ConfigHandler) CheckAdmin(w http.ResponseWriter, r *http.Request) {
	ok := h.store.CheckAdminHash(r.URL.Query().Get(QueryParamAdminHash))
	w.Header().Set("Content-Type", domain.MIMEText)
	_, _ = w.Write([]byte(strconv.FormatBool(ok)))
}

// Change значение в логи не пишется: это может быть пароль.
func (h *ConfigHandler) Change(w http.ResponseWriter, r *http.Request) {
	var req changeRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChangeBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.handleError(w, fmt.Errorf("%w: %v", domain.ErrMalformedRequest, err), h.messages.BadRequest)
		return
	}

	setting := settings.KnownSetting(req.Path)
	if setting == "" {
		setting = unknownSettingLabel
	}

	err := h.store.Change(req.Path, req.Value)
	metrics.RecordConfigChange(setting, err == nil)
	if err != nil {
		h.handleError(w, err, h.messages.SaveFailed)
		return
	}

	logrus.WithFields(logrus.Fields{
		"operation": OperationChangeConfig,
		"setting":   setting,
	}).Info(LogConfigChanged)
	w.WriteHeader(http.StatusNoContent)
}
