package testutils

import (
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/pior/binproto/internal/logging"
)

// StartLog installs the test logging profile and marks the start of t in
// the log.
func StartLog(t testing.TB) {
	t.Helper()
	logging.ConfigureTests()
	log.Debug().Str("test", t.Name()).Msg("start")
}
