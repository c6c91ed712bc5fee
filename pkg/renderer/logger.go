package renderer

import (
	"log"
	"os"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stderr, leaving stdout free for image data
type DefaultLogger struct {
	out *log.Logger
}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	dl.out.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{out: log.New(os.Stderr, "", 0)}
}
