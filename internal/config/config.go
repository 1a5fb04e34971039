package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultRepositoryPath  = "data/repository"
	defaultConfigDir       = "data/config"
	defaultShutdownTimeout = 5 * time.Second
	defaultLogFormat       = "text"
	defaultLogOutput       = "stdout"
	defaultMetricsPath     = "/metrics"
)

type ServerConfig struct {
	MaxUploadSize   int64         `yaml:"max_upload_size"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig корни на постоянном томе: дерево репозитория и директория
// с general.toml / admin.toml.
type StorageConfig struct {
	RepositoryPath string `yaml:"repository_path"`
	ConfigDir      string `yaml:"config_dir"`
}

type FileConfig struct {
	MaxNameLength       int         `yaml:"max_name_length"`
	DirPermissions      os.FileMode `yaml:"dir_permissions"`
	FilePermissions     os.FileMode `yaml:"file_permissions"`
	ForbiddenExtensions []string    `yaml:"forbidden_extensions"`
	ValidNameRegex      string      `yaml:"valid_name_regex"`
}

type LoggingConfig struct {
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type RoutesConfig struct {
	List           string `yaml:"list"`
	CreateFolder   string `yaml:"create_folder"`
	DeleteFile     string `yaml:"delete_file"`
	DeleteFolder   string `yaml:"delete_folder"`
	Rename         string `yaml:"rename"`
	Move           string `yaml:"move"`
	Upload         string `yaml:"upload"`
	Download       string `yaml:"download"`
	DownloadFolder string `yaml:"download_folder"`
	GeneralConfig  string `yaml:"general_config"`
	AdminConfig    string `yaml:"admin_config"`
	CheckAdmin     string `yaml:"check_admin"`
	ChangeConfig   string `yaml:"change_config"`
	CompanyName    string `yaml:"company_name"`
	Icon           string `yaml:"icon"`
	Health         string `yaml:"health"`
}

type Messages struct {
	CannotListDirectory string `yaml:"cannot_list_directory"`
	ForbiddenFile       string `yaml:"forbidden_file"`
	CannotServe         string `yaml:"cannot_serve"`
	CannotDelete        string `yaml:"cannot_delete"`
	BadRequest          string `yaml:"bad_request"`
	NotFound            string `yaml:"not_found"`
	SaveFailed          string `yaml:"save_failed"`
	InternalError       string `yaml:"internal_error"`
}

type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Storage  StorageConfig `yaml:"storage"`
	File     FileConfig    `yaml:"file"`
	Logging  LoggingConfig `yaml:"logging"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Routes   RoutesConfig  `yaml:"routes"`
	Messages Messages      `yaml:"messages"`
}

func LoadConfig(filename string) *Config {
	cfg, err := LoadConfigWithError(filename)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func LoadConfigWithError(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	applyDefaults(&cfg)

	// пути делаю абсолютными, чтобы не зависеть от рабочего каталога.
	paths := map[string]*string{
		"storage repository path": &cfg.Storage.RepositoryPath,
		"storage config dir":      &cfg.Storage.ConfigDir,
	}

	for name, path := range paths {
		absPath, absErr := filepath.Abs(*path)
		if absErr != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", name, absErr)
		}
		*path = absPath
	}

	if validationErr := validateConfig(&cfg); validationErr != nil {
		return nil, validationErr
	}

	return &cfg, nil
}

// applyDefaults заполняет только то, без чего сервер точно не стартует.
func applyDefaults(cfg *Config) {
	if cfg.Storage.RepositoryPath == "" {
		cfg.Storage.RepositoryPath = defaultRepositoryPath
	}
	if cfg.Storage.ConfigDir == "" {
		cfg.Storage.ConfigDir = defaultConfigDir
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.File.FilePermissions == 0 {
		cfg.File.FilePermissions = 0o644
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaultLogFormat
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = defaultLogOutput
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = defaultMetricsPath
	}
}

type validationError struct {
	field string
	msg   string
}

func (e validationError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.msg)
}

func validateConfig(cfg *Config) error {
	type validator func() error

	validators := []validator{
		func() error { return validateRequiredString("file.valid_name_regex", cfg.File.ValidNameRegex) },
		func() error { return validateRegex("file.valid_name_regex", cfg.File.ValidNameRegex) },
		func() error { return validatePositiveInt64("server.max_upload_size", cfg.Server.MaxUploadSize) },
		func() error { return validatePositiveInt("file.max_name_length", cfg.File.MaxNameLength) },
		func() error { return validatePermissions("file.dir_permissions", cfg.File.DirPermissions) },
		func() error { return validateOneOf("logging.format", cfg.Logging.Format, "text", "json") },
		func() error { return validateRoutes(&cfg.Routes, cfg.Metrics) },
	}

	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}

	return nil
}

func validateRequiredString(field, value string) error {
	if value == "" {
		return validationError{field: field, msg: "is required"}
	}
	return nil
}

func validateRegex(field, value string) error {
	if _, err := regexp.Compile(value); err != nil {
		return validationError{field: field, msg: fmt.Sprintf("does not compile: %v", err)}
	}
	return nil
}

func validatePositiveInt(field string, value int) error {
	if value <= 0 {
		return validationError{field: field, msg: "must be greater than 0"}
	}
	return nil
}

func validatePositiveInt64(field string, value int64) error {
	if value <= 0 {
		return validationError{field: field, msg: "must be greater than 0"}
	}
	return nil
}

func validatePermissions(field string, perm os.FileMode) error {
	if perm == 0 || perm&^os.ModePerm != 0 {
		return validationError{field: field, msg: fmt.Sprintf("must be a permission mode, got %o", perm)}
	}
	return nil
}

func validateOneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return validationError{field: field, msg: fmt.Sprintf("must be one of %v, got %q", allowed, value)}
}

// validateRoutes маршруты для файловых операций и настроек обязательны,
// health может быть пустым - тогда он просто не регистрируется.
func validateRoutes(r *RoutesConfig, metrics MetricsConfig) error {
	routes := map[string]string{
		"routes.list":            r.List,
		"routes.create_folder":   r.CreateFolder,
		"routes.delete_file":     r.DeleteFile,
		"routes.delete_folder":   r.DeleteFolder,
		"routes.rename":          r.Rename,
		"routes.move":            r.Move,
		"routes.upload":          r.Upload,
		"routes.download":        r.Download,
		"routes.download_folder": r.DownloadFolder,
		"routes.general_config":  r.GeneralConfig,
		"routes.admin_config":    r.AdminConfig,
		"routes.check_admin":     r.CheckAdmin,
		"routes.change_config":   r.ChangeConfig,
		"routes.company_name":    r.CompanyName,
		"routes.icon":            r.Icon,
	}

	if r.Health != "" {
		routes["routes.health"] = r.Health
	}
	if metrics.Enabled {
		routes["metrics.path"] = metrics.Path
	}

	// ServeMux паникует на повторной регистрации, поэтому дубликаты ловим здесь.
	seen := make(map[string]string, len(routes))
	for field, value := range routes {
		if err := validateRequiredString(field, value); err != nil {
			return err
		}
		if !strings.HasPrefix(value, "/") {
			return validationError{field: field, msg: fmt.Sprintf("must start with '/', got %q", value)}
		}
		if other, ok := seen[value]; ok {
			return validationError{field: field, msg: fmt.Sprintf("duplicates %s (%s)", other, value)}
		}
		seen[value] = field
	}
	return nil
}
