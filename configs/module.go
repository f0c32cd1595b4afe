package configs

import (
	"github.com/reusee/dscope"

	"github.com/Urethramancer/asm14/logs"
)

// Module provides Loader and Settings.
type Module struct {
	dscope.Module
	Logs logs.Module
}
