package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repo-manager/internal/domain"
)

func writeSettings(t *testing.T, general, admin string) string {
	t.Helper()
	dir := t.TempDir()
	if general != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, GeneralFile), []byte(general), 0o644))
	}
	if admin != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, AdminFile), []byte(admin), 0o600))
	}
	return dir
}

const (
	validGeneral = `
[server]
port = 8080

[theme]
company_name = 'Acme'
icon_path = 'icon.png'

[logging]
max_level = 'Info'
`
	validAdmin = `
[credentials]
password = 'secret'
`
)

func TestFilePersister_Load(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		dir := writeSettings(t, validGeneral, validAdmin)

		general, admin, err := NewFilePersister(dir).Load()
		require.NoError(t, err)

		assert.Equal(t, uint16(8080), general.Server.Port)
		assert.Equal(t, "Acme", general.Theme.CompanyName)
		assert.Equal(t, "icon.png", general.Theme.IconPath)
		assert.Equal(t, LevelInfo, general.Logging.Level())
		assert.Equal(t, "secret", admin.Credentials.Password())
		assert.Equal(t, Digest("secret"), admin.Credentials.Hash())
	})

	t.Run("max level is optional", func(t *testing.T) {
		dir := writeSettings(t, "[server]\nport = 8080\n", validAdmin)

		general, _, err := NewFilePersister(dir).Load()
		require.NoError(t, err)
		assert.Nil(t, general.Logging.MaxLevel)
		assert.Equal(t, LevelWarn, general.Logging.Level())
	})

	t.Run("hash in file is ignored", func(t *testing.T) {
		dir := writeSettings(t, validGeneral, "[credentials]\npassword = 'secret'\nhash = 'forged'\n")

		_, admin, err := NewFilePersister(dir).Load()
		require.NoError(t, err)
		assert.Equal(t, Digest("secret"), admin.Credentials.Hash())
	})

	tests := []struct {
		name    string
		general string
		admin   string
		errMsg  string
	}{
		{name: "missing general", admin: validAdmin, errMsg: GeneralFile},
		{name: "missing admin", general: validGeneral, errMsg: AdminFile},
		{name: "malformed toml", general: "[server\nport = 1", admin: validAdmin, errMsg: "failed to parse"},
		{name: "zero port", general: "[server]\nport = 0\n", admin: validAdmin, errMsg: "Port"},
		{name: "unknown log level", general: "[server]\nport = 1\n[logging]\nmax_level = 'Loud'\n", admin: validAdmin, errMsg: "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeSettings(t, tt.general, tt.admin)

			_, _, err := NewFilePersister(dir).Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestFilePersister_SaveRoundTrip(t *testing.T) {
	dir := writeSettings(t, validGeneral, validAdmin)
	persister := NewFilePersister(dir)

	general, admin, err := persister.Load()
	require.NoError(t, err)

	level := LevelError
	general.Logging.MaxLevel = &level
	general.Theme.CompanyName = "Globex"
	admin.Credentials.SetPassword("rotated")

	require.NoError(t, persister.SaveGeneral(general))
	require.NoError(t, persister.SaveAdmin(admin))

	reloaded, reloadedAdmin, err := persister.Load()
	require.NoError(t, err)
	assert.Equal(t, general, reloaded)
	assert.Equal(t, "rotated", reloadedAdmin.Credentials.Password())
	assert.Equal(t, Digest("rotated"), reloadedAdmin.Credentials.Hash())

	data, err := os.ReadFile(filepath.Join(dir, AdminFile))
	require.NoError(t, err)
	assert.NotContains(t, string(data), Digest("rotated"), "hash must not be written to disk")

	info, err := os.Stat(filepath.Join(dir, AdminFile))
	require.NoError(t, err)
	assert.Equal(t, adminPerm, info.Mode().Perm())

	leftovers, err := filepath.Glob(filepath.Join(dir, tempPattern))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFilePersister_SaveFailureKeepsFiles(t *testing.T) {
	dir := writeSettings(t, validGeneral, validAdmin)
	persister := NewFilePersister(filepath.Join(dir, "missing"))

	require.Error(t, persister.SaveGeneral(GeneralConfig{Server: ServerConfig{Port: 1}}))
	require.Error(t, persister.SaveAdmin(AdminConfig{Credentials: NewCredentials("x")}))

	general, admin, loadErr := NewFilePersister(dir).Load()
	require.NoError(t, loadErr)
	assert.Equal(t, uint16(8080), general.Server.Port)
	assert.Equal(t, "secret", admin.Credentials.Password())
}

func TestFilePersister_SaveTouchesOneRecord(t *testing.T) {
	dir := writeSettings(t, validGeneral, validAdmin)
	persister := NewFilePersister(dir)
	general, admin, err := persister.Load()
	require.NoError(t, err)

	readFile := func(name string) string {
		data, readErr := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, readErr)
		return string(data)
	}

	admin.Credentials.SetPassword("rotated")
	require.NoError(t, persister.SaveAdmin(admin))
	assert.Equal(t, validGeneral, readFile(GeneralFile), "general.toml must stay byte-for-byte")

	general.Theme.CompanyName = "Globex"
	require.NoError(t, persister.SaveGeneral(general))
	adminAfter := readFile(AdminFile)

	_, reloadedAdmin, err := persister.Load()
	require.NoError(t, err)
	assert.Equal(t, "rotated", reloadedAdmin.Credentials.Password())
	assert.Equal(t, adminAfter, readFile(AdminFile))
}

func TestStore_PasswordChangeLeavesGeneralFileAlone(t *testing.T) {
	dir := writeSettings(t, validGeneral, validAdmin)
	persister := NewFilePersister(dir)
	general, admin, err := persister.Load()
	require.NoError(t, err)

	// general.toml недоступен для замены: смена пароля его трогать не должна.
	generalPath := filepath.Join(dir, GeneralFile)
	require.NoError(t, os.Remove(generalPath))
	require.NoError(t, os.Mkdir(generalPath, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(generalPath, "keep"), nil, 0o644))

	store := NewStore(general, admin, persister, &recordingLevels{})
	require.NoError(t, store.Change("admin.credentials.password", "rotated"))
	assert.True(t, store.CheckAdminHash(Digest("rotated")))

	err = store.Change("general.theme.company_name", "Globex")
	assert.True(t, errors.Is(err, domain.ErrPersistence))
	assert.Equal(t, "Acme", store.General().Theme.CompanyName)
	assert.True(t, store.CheckAdminHash(Digest("rotated")))
}

func TestStore_WithFilePersister(t *testing.T) {
	dir := writeSettings(t, validGeneral, validAdmin)
	persister := NewFilePersister(dir)
	general, admin, err := persister.Load()
	require.NoError(t, err)

	store := NewStore(general, admin, persister, &recordingLevels{})
	require.NoError(t, store.Change("general.theme.company_name", "Umbrella"))

	reloaded, _, err := persister.Load()
	require.NoError(t, err)
	assert.Equal(t, "Umbrella", reloaded.Theme.CompanyName)

	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	err = store.Change("general.theme.company_name", "Lost")
	assert.True(t, errors.Is(err, domain.ErrPersistence))
	assert.Equal(t, "Umbrella", store.General().Theme.CompanyName)
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{input: "Trace", want: LevelTrace},
		{input: "debug", want: LevelDebug},
		{input: "INFO", want: LevelInfo},
		{input: "Warn", want: LevelWarn},
		{input: "error", want: LevelError},
		{input: "Warning", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLogLevel(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, domain.ErrInvalidLogLevel))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}
}
