package hooks

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

type contextHook struct {
}

// NewContextHook returns a logrus hook that tags each entry with the
// file:line of the logging callsite.
func NewContextHook() contextHook {
	return contextHook{}
}

func (hook contextHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook contextHook) Fire(entry *logrus.Entry) error {
	// Skip over the logrus frames to the first caller frame.
	for i := 4; i < 16; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if strings.Contains(runtime.FuncForPC(pc).Name(), "sirupsen/logrus") {
			continue
		}
		parts := strings.Split(file, "reshard/")
		entry.Data["file:line"] = fmt.Sprintf("%s:%d", parts[len(parts)-1], line)
		break
	}
	return nil
}
