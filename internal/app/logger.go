package app

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Logger is the component-tagged logger threaded through the whole program.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

// FileLogger writes one timestamped line per message.
type FileLogger struct{ w io.Writer }

func NewFileLogger(w io.Writer) FileLogger { return FileLogger{w: w} }
func (l FileLogger) Infof(component string, format string, args ...interface{}) {
	writeLog(l.w, "INFO", component, format, args...)
}
func (l FileLogger) Errorf(component string, format string, args ...interface{}) {
	writeLog(l.w, "ERROR", component, format, args...)
}

func writeLog(w io.Writer, level, component, format string, args ...interface{}) {
	timestamp := time.Now().Format(time.RFC3339)
	msg := fmt.Sprintf(format, args...)
	_, _ = io.WriteString(w, timestamp+" ["+level+"] "+component+": "+msg+"\n")
}

// SlogLogger forwards to a slog.Logger with the component as an attribute.
type SlogLogger struct{ L *slog.Logger }

// NewConsoleLogger returns a text-handler logger on w.
func NewConsoleLogger(w io.Writer) SlogLogger {
	return SlogLogger{L: slog.New(slog.NewTextHandler(w, nil))}
}

func (l SlogLogger) Infof(component string, format string, args ...interface{}) {
	l.L.Info(fmt.Sprintf(format, args...), "component", component)
}
func (l SlogLogger) Errorf(component string, format string, args ...interface{}) {
	l.L.Error(fmt.Sprintf(format, args...), "component", component)
}

// Tee sends every message to all loggers.
type Tee []Logger

func (t Tee) Infof(component string, format string, args ...interface{}) {
	for _, l := range t {
		l.Infof(component, format, args...)
	}
}
func (t Tee) Errorf(component string, format string, args ...interface{}) {
	for _, l := range t {
		l.Errorf(component, format, args...)
	}
}
