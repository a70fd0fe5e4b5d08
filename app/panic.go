package app

import (
	"fmt"
	"runtime/debug"
	"strings"

	"backdrop/hal"
)

// recoverFrame turns a panic inside a frame into log lines and reports it.
// The caller tears the engine down and renders nothing afterwards.
func recoverFrame(l hal.Logger, v any) error {
	stack := debug.Stack()
	if l != nil {
		l.WriteLineString(fmt.Sprintf("backdrop: engine: error: panic: %v", v))
		for _, line := range strings.Split(string(stack), "\n") {
			if line == "" {
				continue
			}
			l.WriteLineString(line)
		}
	}
	return fmt.Errorf("app: frame panic: %v", v)
}
