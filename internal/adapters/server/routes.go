package server

import (
	"net/http"

	"repo-manager/internal/config"
	"repo-manager/internal/domain"
	"repo-manager/internal/metrics"
)

// NewRouter регистрация всех маршрутов, они все настроены через config.yaml.
// Метод задаётся в шаблоне, на чужой метод ServeMux сам ответит 405.
func NewRouter(cfg *config.Config, files *Handler, settings *ConfigHandler, theme *ThemeHandler) http.Handler {
	mux := http.NewServeMux()
	get := func(route string, h http.HandlerFunc) { mux.HandleFunc(http.MethodGet+" "+route, h) }
	post := func(route string, h http.HandlerFunc) { mux.HandleFunc(http.MethodPost+" "+route, h) }

	routes := cfg.Routes

	get(routes.List, files.List)
	post(routes.CreateFolder, files.CreateFolder)
	post(routes.DeleteFile, files.DeleteFile)
	post(routes.DeleteFolder, files.DeleteFolder)
	post(routes.Rename, files.Rename)
	post(routes.Move, files.Move)
	post(routes.Upload, files.Upload)
	get(routes.Download, files.Download)
	get(routes.DownloadFolder, files.DownloadFolder)

	get(routes.GeneralConfig, settings.General)
	get(routes.AdminConfig, settings.Admin)
	get(routes.CheckAdmin, settings.CheckAdmin)
	post(routes.ChangeConfig, settings.Change)

	get(routes.CompanyName, theme.CompanyName)
	get(routes.Icon, theme.Icon)

	if routes.Health != "" {
		get(routes.Health, Health)
	}
	if cfg.Metrics.Enabled {
		mux.Handle(http.MethodGet+" "+cfg.Metrics.Path, metrics.Handler())
	}

	return RequestLogger(CORS(mux))
}

func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", domain.MIMEText)
	_, _ = w.Write([]byte(HealthResponse))
}
