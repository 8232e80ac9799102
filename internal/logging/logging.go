// Package logging provides the leveled, tagged line logger used across the
// presentation layer. Each line has the shape
//
//	LEVEL(TAG) <TypeName> message
//
// where TAG is the upper-cased call-site tag or "-" when omitted, and
// TypeName names the logical caller category the logger was created for.
package logging

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
)

// Logger formats and writes log lines for one caller category.
type Logger struct {
	typeName string
	out      io.Writer
}

// New returns a logger whose lines carry the name of T, writing to stdout.
func New[T any]() *Logger {
	return NewWithWriter[T](os.Stdout)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter[T any](w io.Writer) *Logger {
	return &Logger{typeName: typeName[T](), out: w}
}

func typeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if n := t.Name(); n != "" {
		return n
	}
	return t.String()
}

// Debug writes a DEBUG line. An empty tag renders as "-".
func (l *Logger) Debug(tag, msg string) { l.write("DEBUG", tag, msg) }

// Warn writes a WARN line.
func (l *Logger) Warn(tag, msg string) { l.write("WARN", tag, msg) }

// Error writes an ERROR line.
func (l *Logger) Error(tag, msg string) { l.write("ERROR", tag, msg) }

// DebugIf writes a DEBUG line only when cond is true.
func (l *Logger) DebugIf(cond bool, tag, msg string) {
	if cond {
		l.Debug(tag, msg)
	}
}

// WarnIf writes a WARN line only when cond is true.
func (l *Logger) WarnIf(cond bool, tag, msg string) {
	if cond {
		l.Warn(tag, msg)
	}
}

// ErrorIf writes an ERROR line only when cond is true.
func (l *Logger) ErrorIf(cond bool, tag, msg string) {
	if cond {
		l.Error(tag, msg)
	}
}

func (l *Logger) write(level, tag, msg string) {
	if tag == "" {
		tag = "-"
	} else {
		tag = strings.ToUpper(tag)
	}
	fmt.Fprintf(l.out, "%s(%s) <%s> %s\n", level, tag, l.typeName, msg)
}
