//go:build !windows

package persistent_test

import (
	"testing"

	"github.com/methodstudio/statengine"
	"github.com/methodstudio/statengine/enginetest"
)

func TestCompliance(t *testing.T) {
	enginetest.Run(t, enginetest.Config{
		New: func(t *testing.T) statengine.Engine {
			eng, _ := startEngine(t, "")
			return eng
		},
		HangScript: "import time; time.sleep(3600)",
	})
}
