package model

import (
	"fmt"
	"io"
)

// logWriter is the destination for log output.
var logWriter io.Writer

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

// logRunSummary logs the final run state.
func (m *Model) logRunSummary() {
	inWater, offMaps := m.countStatus()
	Logf("=== Run complete @ step %d (%s) ===", m.step, m.now.Format("2006-01-02 15:04"))
	Logf("  released: %d", m.released)
	Logf("  in water: %d", inWater)
	Logf("  off map:  %d", offMaps)
	if dir := m.output.Dir(); dir != "" {
		Logf("  output:   %s", dir)
	}
}
