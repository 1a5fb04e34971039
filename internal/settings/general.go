package settings

// GeneralConfig содержимое general.toml.
type GeneralConfig struct {
	Server  ServerConfig  `toml:"server" json:"server"`
	Theme   ThemeConfig   `toml:"theme" json:"theme"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

type ServerConfig struct {
	Port uint16 `toml:"port" json:"port" validate:"required"`
}

type ThemeConfig struct {
	CompanyName string `toml:"company_name" json:"company_name"`
	IconPath    string `toml:"icon_path" json:"icon_path"`
}

type LoggingConfig struct {
	MaxLevel *LogLevel `toml:"max_level,omitempty" json:"max_level" validate:"omitempty,oneof=Trace Debug Info Warn Error"`
}

// Level действующий порог с учётом значения по умолчанию.
func (c LoggingConfig) Level() LogLevel {
	if c.MaxLevel == nil {
		return DefaultLogLevel
	}
	return *c.MaxLevel
}

// Clone глубокая копия: снимок не должен делить указатели с живым состоянием.
func (c GeneralConfig) Clone() GeneralConfig {
	clone := c
	if c.Logging.MaxLevel != nil {
		level := *c.Logging.MaxLevel
		clone.Logging.MaxLevel = &level
	}
	return clone
}
