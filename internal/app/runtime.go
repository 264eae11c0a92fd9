package app

import (
	"os"
	"strconv"
)

const testModeEnv = "PULSE_TEST_MODE"

// InTestMode reports whether PULSE_TEST_MODE is set to a true value, in which
// case the binary exits before touching Redis or Postgres.
func InTestMode() bool {
	on, err := strconv.ParseBool(os.Getenv(testModeEnv))
	return err == nil && on
}
