package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repo-manager/internal/settings"
)

func themeStore(companyName, iconPath string) *mockSettingsStore {
	return &mockSettingsStore{
		generalFunc: func() settings.GeneralConfig {
			return settings.GeneralConfig{
				Theme: settings.ThemeConfig{CompanyName: companyName, IconPath: iconPath},
			}
		},
	}
}

func TestThemeHandler_CompanyName(t *testing.T) {
	handler := NewThemeHandler(themeStore("Acme", ""), testMessages())

	w := httptest.NewRecorder()
	handler.CompanyName(w, httptest.NewRequest(http.MethodGet, "/theme/company_name", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Acme", w.Body.String())
}

func TestThemeHandler_Icon(t *testing.T) {
	dir := t.TempDir()
	iconPath := filepath.Join(dir, "icon.svg")
	require.NoError(t, os.WriteFile(iconPath, []byte("<svg/>"), 0o644))

	tests := []struct {
		name       string
		iconPath   string
		wantStatus int
		wantBody   string
	}{
		{name: "success", iconPath: iconPath, wantStatus: http.StatusOK, wantBody: "<svg/>"},
		{name: "missing", iconPath: filepath.Join(dir, "none.png"), wantStatus: http.StatusNotFound},
		{name: "directory", iconPath: dir, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewThemeHandler(themeStore("Acme", tt.iconPath), testMessages())

			w := httptest.NewRecorder()
			handler.Icon(w, httptest.NewRequest(http.MethodGet, "/theme/icon", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}
