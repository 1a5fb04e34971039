package settings

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"repo-manager/internal/domain"
)

// Persister долговременное хранилище записей настроек. Каждая запись
// пишется отдельно: изменение затрагивает ровно одну из них.
type Persister interface {
	SaveGeneral(general GeneralConfig) error
	SaveAdmin(admin AdminConfig) error
}

// LevelSetter живой регулятор порога логирования.
type LevelSetter interface {
	SetLevel(level logrus.Level)
}

// Store общее состояние процесса: general и admin под одним RWMutex.
// Создаётся один раз при старте и передаётся обработчикам явно.
type Store struct {
	mu        sync.RWMutex
	general   GeneralConfig
	admin     AdminConfig
	persister Persister
	levels    LevelSetter
}

func NewStore(general GeneralConfig, admin AdminConfig, persister Persister, levels LevelSetter) *Store {
	return &Store{
		general:   general.Clone(),
		admin:     admin,
		persister: persister,
		levels:    levels,
	}
}

// General снимок general-настроек, безопасный для использования без блокировки.
func (s *Store) General() GeneralConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.general.Clone()
}

func (s *Store) Admin() AdminConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin
}

func (s *Store) CheckAdminHash(hash string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin.CheckAdminHash(hash)
}

type record int

const (
	recordGeneral record = iota
	recordAdmin
)

// mutation меняет копии настроек, живое состояние она не трогает.
type mutation struct {
	record record
	apply  func(general *GeneralConfig, admin *AdminConfig)
}

// Change меняет одно поле по пути вида category.section.field и сохраняет
// затронутую запись.
//
// Изменение применяется к копии, копия пишется на диск, и только после успешной
// записи подменяет состояние в памяти и (для logging.max_level) порог логирования.
// Всё это происходит под одной блокировкой на запись, так что при ошибке
// сохранения память остаётся прежней и совпадает с диском.
func (s *Store) Change(path, value string) error {
	change, err := parseChange(path, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	general, admin := s.general.Clone(), s.admin
	change.apply(&general, &admin)

	var saveErr error
	switch change.record {
	case recordAdmin:
		saveErr = s.persister.SaveAdmin(admin)
	default:
		saveErr = s.persister.SaveGeneral(general)
	}
	if saveErr != nil {
		return fmt.Errorf("could not change '%s': %w: %v", path, domain.ErrPersistence, saveErr)
	}

	previous := s.general.Logging.Level()
	s.general, s.admin = general, admin

	if current := general.Logging.Level(); current != previous {
		s.levels.SetLevel(current.Logrus())
	}
	return nil
}

const (
	SettingAdminPassword    = "admin.credentials.password"
	SettingServerPort       = "general.server.port"
	SettingThemeIconPath    = "general.theme.icon_path"
	SettingThemeCompanyName = "general.theme.company_name"
	SettingLoggingMaxLevel  = "general.logging.max_level"
)

// KnownSetting нормализованное имя настройки или "", если путь ни на что не указывает.
// Порт здесь тоже известен, хотя менять его нельзя.
func KnownSetting(path string) string {
	switch key := strings.ToLower(path); key {
	case SettingAdminPassword, SettingServerPort, SettingThemeIconPath,
		SettingThemeCompanyName, SettingLoggingMaxLevel:
		return key
	default:
		return ""
	}
}

var pathParts = []string{"category", "part", "param"}

// parseChange разбирает путь и значение до захвата блокировки.
func parseChange(path, value string) (mutation, error) {
	segments := strings.Split(path, ".")
	if len(segments) < len(pathParts) {
		return mutation{}, fmt.Errorf("no %s provided in '%s': %w", pathParts[len(segments)], path, domain.ErrUnknownSetting)
	}
	if len(segments) > len(pathParts) {
		return mutation{}, fmt.Errorf("'%s' is deeper than category.part.param: %w", path, domain.ErrUnknownSetting)
	}

	switch strings.ToLower(path) {
	case SettingAdminPassword:
		return mutation{recordAdmin, func(_ *GeneralConfig, admin *AdminConfig) {
			admin.Credentials.SetPassword(value)
		}}, nil
	case SettingServerPort:
		return mutation{}, fmt.Errorf("cannot change port via api: %w", domain.ErrImmutableSetting)
	case SettingThemeIconPath:
		return mutation{recordGeneral, func(general *GeneralConfig, _ *AdminConfig) {
			general.Theme.IconPath = value
		}}, nil
	case SettingThemeCompanyName:
		return mutation{recordGeneral, func(general *GeneralConfig, _ *AdminConfig) {
			general.Theme.CompanyName = value
		}}, nil
	case SettingLoggingMaxLevel:
		level, err := ParseLogLevel(value)
		if err != nil {
			return mutation{}, err
		}
		return mutation{recordGeneral, func(general *GeneralConfig, _ *AdminConfig) {
			general.Logging.MaxLevel = &level
		}}, nil
	default:
		return mutation{}, fmt.Errorf("'%s': %w", path, domain.ErrUnknownSetting)
	}
}
