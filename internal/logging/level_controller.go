package logging

import "github.com/sirupsen/logrus"

// LevelController хэндл порога уже работающего логгера.
//
// Создаётся один раз при старте через NewLevelController (состояние "установлен")
// и передаётся в хранилище настроек. Нулевое значение и nil - "не установлен":
// любое обращение к такому хэндлу - ошибка порядка инициализации, и процесс падает.
type LevelController struct {
	logger *logrus.Logger
}

// NewLevelController устанавливает хэндл и сразу применяет начальный порог.
func NewLevelController(logger *logrus.Logger, initial logrus.Level) *LevelController {
	if logger == nil {
		panic("logging: level controller needs a logger")
	}
	logger.SetLevel(initial)
	return &LevelController{logger: logger}
}

func (c *LevelController) mustBeInstalled() *logrus.Logger {
	if c == nil || c.logger == nil {
		panic("logging: level controller used before installation")
	}
	return c.logger
}

// SetLevel меняет порог без перезапуска; безопасно из любых горутин.
func (c *LevelController) SetLevel(level logrus.Level) {
	c.mustBeInstalled().SetLevel(level)
}

func (c *LevelController) Level() logrus.Level {
	return c.mustBeInstalled().GetLevel()
}
