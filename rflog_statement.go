//  Copyright 2024 Google LLC
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package rflog

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/petermattis/goid"
)

// inertStatement is handed out for every statement below the global
// threshold. It's never written to, so sharing it is safe.
var inertStatement = &Statement{}

// Statement accumulates the text of a single log entry. It's created active
// only when its level passes the global threshold at creation time, an inert
// statement ignores writes and Done is a no-op. A Statement is meant to be
// used by a single goroutine:
//
//	st := rflog.Stmt(rflog.InfoLevel, "RX")
//	defer st.Done()
//	st.Printf("tuned to %d Hz", freq)
type Statement struct {
	lg     *Logger
	entry  LogEntry
	buf    strings.Builder
	active bool
	done   bool
}

// NewStatement creates a statement with explicit caller information.
func (lg *Logger) NewStatement(level Level, file string, line int, component string, threadID int64) *Statement {
	if !lg.enabled(level) {
		return inertStatement
	}

	return &Statement{
		lg: lg,
		entry: LogEntry{
			When:      time.Now(),
			Level:     level,
			File:      file,
			Line:      line,
			Component: component,
			ThreadID:  threadID,
		},
		active: true,
	}
}

// Stmt creates a statement tagged with the calling site and goroutine.
func (lg *Logger) Stmt(level Level, component string) *Statement {
	return lg.callerStatement(level, component, 2)
}

// callerStatement creates a statement for the caller skip frames up the
// stack. The threshold is checked first so filtered statements never pay for
// the stack walk.
func (lg *Logger) callerStatement(level Level, component string, skip int) *Statement {
	if !lg.enabled(level) {
		return inertStatement
	}

	pc, file, line, _ := runtime.Caller(skip)
	st := lg.NewStatement(level, file, line, component, goid.Get())
	if fn := runtime.FuncForPC(pc); fn != nil {
		st.entry.Function = fn.Name()
	}
	return st
}

// Active reports whether the statement will produce an entry.
func (st *Statement) Active() bool {
	return st.active
}

// Print appends args to the message in the manner of fmt.Print.
func (st *Statement) Print(args ...any) *Statement {
	if st.active && !st.done {
		fmt.Fprint(&st.buf, args...)
	}
	return st
}

// Printf appends to the message in the manner of fmt.Printf.
func (st *Statement) Printf(format string, args ...any) *Statement {
	if st.active && !st.done {
		fmt.Fprintf(&st.buf, format, args...)
	}
	return st
}

// Write implements io.Writer, p is appended to the message.
func (st *Statement) Write(p []byte) (int, error) {
	if st.active && !st.done {
		st.buf.Write(p)
	}
	return len(p), nil
}

// Done finalizes the message and hands the entry to the logger. Only the
// first call has an effect.
func (st *Statement) Done() {
	if !st.active || st.done {
		return
	}
	st.done = true
	st.entry.Message = st.buf.String()
	st.lg.push(st.entry)
}

// emit logs a one-shot message, the caller is three frames up: emit's caller
// is a Logger method or a package function called by user code.
func (lg *Logger) emit(level Level, component string, msg func() string) {
	st := lg.callerStatement(level, component, 3)
	if !st.active {
		return
	}
	st.buf.WriteString(msg())
	st.Done()
}

// Stmt creates a statement on the default logger tagged with the calling
// site and goroutine.
func Stmt(level Level, component string) *Statement {
	return Default().callerStatement(level, component, 2)
}

// NewStatement creates a statement on the default logger with explicit
// caller information.
func NewStatement(level Level, file string, line int, component string, threadID int64) *Statement {
	return Default().NewStatement(level, file, line, component, threadID)
}

// Trace logs to the TRACE log. Arguments are handled in the manner of
// fmt.Print.
func (lg *Logger) Trace(component string, args ...any) {
	lg.emit(TraceLevel, component, func() string { return fmt.Sprint(args...) })
}

// Tracef logs to the TRACE log. Arguments are handled in the manner of
// fmt.Printf.
func (lg *Logger) Tracef(component string, format string, args ...any) {
	lg.emit(TraceLevel, component, func() string { return fmt.Sprintf(format, args...) })
}

// Debug logs to the DEBUG log. Arguments are handled in the manner of
// fmt.Print.
func (lg *Logger) Debug(component string, args ...any) {
	lg.emit(DebugLevel, component, func() string { return fmt.Sprint(args...) })
}

// Debugf logs to the DEBUG log. Arguments are handled in the manner of
// fmt.Printf.
func (lg *Logger) Debugf(component string, format string, args ...any) {
	lg.emit(DebugLevel, component, func() string { return fmt.Sprintf(format, args...) })
}

// Info logs to the INFO log. Arguments are handled in the manner of
// fmt.Print.
func (lg *Logger) Info(component string, args ...any) {
	lg.emit(InfoLevel, component, func() string { return fmt.Sprint(args...) })
}

// Infof logs to the INFO log. Arguments are handled in the manner of
// fmt.Printf.
func (lg *Logger) Infof(component string, format string, args ...any) {
	lg.emit(InfoLevel, component, func() string { return fmt.Sprintf(format, args...) })
}

// Warn logs to the WARNING log. Arguments are handled in the manner of
// fmt.Print.
func (lg *Logger) Warn(component string, args ...any) {
	lg.emit(WarningLevel, component, func() string { return fmt.Sprint(args...) })
}

// Warnf logs to the WARNING log. Arguments are handled in the manner of
// fmt.Printf.
func (lg *Logger) Warnf(component string, format string, args ...any) {
	lg.emit(WarningLevel, component, func() string { return fmt.Sprintf(format, args...) })
}

// Error logs to the ERROR log. Arguments are handled in the manner of
// fmt.Print.
func (lg *Logger) Error(component string, args ...any) {
	lg.emit(ErrorLevel, component, func() string { return fmt.Sprint(args...) })
}

// Errorf logs to the ERROR log. Arguments are handled in the manner of
// fmt.Printf.
func (lg *Logger) Errorf(component string, format string, args ...any) {
	lg.emit(ErrorLevel, component, func() string { return fmt.Sprintf(format, args...) })
}

// Fatal logs to the FATAL log. Arguments are handled in the manner of
// fmt.Print. Unlike the standard library it doesn't exit the program, the
// caller decides what a fatal condition means.
func (lg *Logger) Fatal(component string, args ...any) {
	lg.emit(FatalLevel, component, func() string { return fmt.Sprint(args...) })
}

// Fatalf logs to the FATAL log. Arguments are handled in the manner of
// fmt.Printf. It doesn't exit the program.
func (lg *Logger) Fatalf(component string, format string, args ...any) {
	lg.emit(FatalLevel, component, func() string { return fmt.Sprintf(format, args...) })
}

// Trace logs to the default logger's TRACE log.
func Trace(component string, args ...any) {
	Default().emit(TraceLevel, component, func() string { return fmt.Sprint(args...) })
}

// Tracef logs to the default logger's TRACE log.
func Tracef(component string, format string, args ...any) {
	Default().emit(TraceLevel, component, func() string { return fmt.Sprintf(format, args...) })
}

// Debug logs to the default logger's DEBUG log.
func Debug(component string, args ...any) {
	Default().emit(DebugLevel, component, func() string { return fmt.Sprint(args...) })
}

// Debugf logs to the default logger's DEBUG log.
func Debugf(component string, format string, args ...any) {
	Default().emit(DebugLevel, component, func() string { return fmt.Sprintf(format, args...) })
}

// Info logs to the default logger's INFO log.
func Info(component string, args ...any) {
	Default().emit(InfoLevel, component, func() string { return fmt.Sprint(args...) })
}

// Infof logs to the default logger's INFO log.
func Infof(component string, format string, args ...any) {
	Default().emit(InfoLevel, component, func() string { return fmt.Sprintf(format, args...) })
}

// Warn logs to the default logger's WARNING log.
func Warn(component string, args ...any) {
	Default().emit(WarningLevel, component, func() string { return fmt.Sprint(args...) })
}

// Warnf logs to the default logger's WARNING log.
func Warnf(component string, format string, args ...any) {
	Default().emit(WarningLevel, component, func() string { return fmt.Sprintf(format, args...) })
}

// Error logs to the default logger's ERROR log.
func Error(component string, args ...any) {
	Default().emit(ErrorLevel, component, func() string { return fmt.Sprint(args...) })
}

// Errorf logs to the default logger's ERROR log.
func Errorf(component string, format string, args ...any) {
	Default().emit(ErrorLevel, component, func() string { return fmt.Sprintf(format, args...) })
}

// Fatal logs to the default logger's FATAL log. It doesn't exit the program.
func Fatal(component string, args ...any) {
	Default().emit(FatalLevel, component, func() string { return fmt.Sprint(args...) })
}

// Fatalf logs to the default logger's FATAL log. It doesn't exit the program.
func Fatalf(component string, format string, args ...any) {
	Default().emit(FatalLevel, component, func() string { return fmt.Sprintf(format, args...) })
}
