package logs

import "github.com/reusee/dscope"

// Module provides Logger and Writer.
type Module struct {
	dscope.Module
}
