package fsmeta

import (
	"os"
)

// DebugEnabled controls whether or not debug-level logging is forced on. It is
// set automatically based on the FSMETA_DEBUG environment variable.
var DebugEnabled bool

func init() {
	DebugEnabled = os.Getenv("FSMETA_DEBUG") == "1"
}
