package lang

import (
	"testing"

	"github.com/ardnew/aexpr/log"
)

// testLogger returns a Logger writing every level to the test log.
func testLogger(t *testing.T) log.Logger {
	t.Helper()

	return log.Make(t.Output(), log.WithLevel(log.LevelTrace))
}
