package logging

import (
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevelController(t *testing.T) {
	logger, _ := test.NewNullLogger()

	controller := NewLevelController(logger, logrus.WarnLevel)

	require.NotNil(t, controller)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.Equal(t, logrus.WarnLevel, controller.Level())
}

func TestLevelController_SetLevel(t *testing.T) {
	logger, hook := test.NewNullLogger()
	controller := NewLevelController(logger, logrus.InfoLevel)

	logger.Info("before")
	require.Len(t, hook.AllEntries(), 1)

	controller.SetLevel(logrus.ErrorLevel)
	hook.Reset()

	logger.Info("suppressed info")
	logger.Warn("suppressed warn")
	assert.Empty(t, hook.AllEntries())

	logger.Error("kept")
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "kept", hook.LastEntry().Message)
}

func TestLevelController_Uninstalled(t *testing.T) {
	t.Run("nil handle", func(t *testing.T) {
		var controller *LevelController
		assert.PanicsWithValue(t, "logging: level controller used before installation", func() {
			controller.SetLevel(logrus.DebugLevel)
		})
	})

	t.Run("zero value", func(t *testing.T) {
		controller := &LevelController{}
		assert.Panics(t, func() { _ = controller.Level() })
	})

	t.Run("no logger", func(t *testing.T) {
		assert.Panics(t, func() { NewLevelController(nil, logrus.InfoLevel) })
	})
}

func TestLevelController_ConcurrentSetLevel(t *testing.T) {
	logger, _ := test.NewNullLogger()
	controller := NewLevelController(logger, logrus.WarnLevel)

	levels := []logrus.Level{logrus.TraceLevel, logrus.DebugLevel, logrus.InfoLevel, logrus.WarnLevel, logrus.ErrorLevel}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			controller.SetLevel(levels[i%len(levels)])
			logger.Debug("noise")
		}(i)
	}
	wg.Wait()

	assert.Contains(t, levels, controller.Level())
}
