package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

const (
	GeneralFile = "general.toml"
	AdminFile   = "admin.toml"

	generalPerm os.FileMode = 0o644
	// в admin.toml пароль лежит открытым текстом.
	adminPerm os.FileMode = 0o600

	tempPattern = ".settings-*.tmp"
)

var validate = validator.New()

// adminRecord форма admin.toml на диске: только пароль.
type adminRecord struct {
	Credentials credentialsRecord `toml:"credentials"`
}

type credentialsRecord struct {
	Password string `toml:"password"`
}

// FilePersister читает и перезаписывает general.toml и admin.toml целиком.
type FilePersister struct {
	dir string
}

func NewFilePersister(dir string) *FilePersister {
	return &FilePersister{dir: dir}
}

func (p *FilePersister) generalPath() string { return filepath.Join(p.dir, GeneralFile) }
func (p *FilePersister) adminPath() string   { return filepath.Join(p.dir, AdminFile) }

func (p *FilePersister) Load() (GeneralConfig, AdminConfig, error) {
	var general GeneralConfig
	if err := readRecord(p.generalPath(), &general); err != nil {
		return GeneralConfig{}, AdminConfig{}, err
	}
	if err := validate.Struct(&general); err != nil {
		return GeneralConfig{}, AdminConfig{}, fmt.Errorf("%s: %w", GeneralFile, formatValidationError(err))
	}

	var record adminRecord
	if err := readRecord(p.adminPath(), &record); err != nil {
		return GeneralConfig{}, AdminConfig{}, err
	}

	admin := AdminConfig{Credentials: NewCredentials(record.Credentials.Password)}
	return general, admin, nil
}

func readRecord(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// SaveGeneral перезаписывает general.toml целиком: временный файл и переименование,
// так что на диске всегда либо старая запись, либо новая.
func (p *FilePersister) SaveGeneral(general GeneralConfig) error {
	data, err := toml.Marshal(general)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", GeneralFile, err)
	}
	return p.replace(GeneralFile, p.generalPath(), data, generalPerm)
}

// SaveAdmin пишет только пароль, хеш на диск не попадает.
func (p *FilePersister) SaveAdmin(admin AdminConfig) error {
	data, err := toml.Marshal(adminRecord{
		Credentials: credentialsRecord{Password: admin.Credentials.Password()},
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", AdminFile, err)
	}
	return p.replace(AdminFile, p.adminPath(), data, adminPerm)
}

func (p *FilePersister) replace(name, path string, data []byte, perm os.FileMode) error {
	tmp, err := p.writeTemp(data, perm)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		removeTemp(tmp)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

func (p *FilePersister) writeTemp(data []byte, perm os.FileMode) (string, error) {
	tmp, err := os.CreateTemp(p.dir, tempPattern)
	if err != nil {
		return "", err
	}
	name := tmp.Name()

	_, writeErr := tmp.Write(data)
	if writeErr == nil {
		writeErr = tmp.Chmod(perm)
	}
	if writeErr == nil {
		writeErr = tmp.Sync()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}

	if writeErr != nil {
		removeTemp(name)
		return "", writeErr
	}
	return name, nil
}

func removeTemp(name string) {
	if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Failed to remove temp file %s: %v", name, err)
	}
}

// formatValidationError превращает ошибки validator в короткое сообщение.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
