package app

import (
	"os"
	"strconv"
	"sync"
)

// TestModeEnv makes the binaries exit before touching Postgres or Redis, so
// packages that import cmd wiring can be exercised without infrastructure.
const TestModeEnv = "TK2_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	on, _ := strconv.ParseBool(os.Getenv(TestModeEnv))
	return on
})

// InTestMode reports whether TK2_TEST_MODE was set to a true value when it
// was first consulted.
func InTestMode() bool {
	return testMode()
}
