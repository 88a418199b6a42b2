// Package util's logger wraps the standard logger with an atomically
// adjustable level so callers never need a mutex to change verbosity.
package util

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
)

var Logger = NewLogger(DefaultLogFlags)

type Log struct {
	logger *log.Logger
	_level int32
}

const DefaultLogFlags = log.Ldate | log.Ltime | log.Lmicroseconds

const (
	LDebug = iota
	LInfo
	LWaring
	LError
	LOff
)

var levelTags = map[int]string{
	LDebug:  "DEBUG: ",
	LInfo:   "INFO: ",
	LWaring: "WARNING: ",
	LError:  "ERROR: ",
}

func (l *Log) SetLevel(level int) {
	atomic.StoreInt32(&l._level, int32(level))
}

func (l *Log) GetLevel() int {
	return int(atomic.LoadInt32(&l._level))
}

func (l *Log) Debug(format string, v ...interface{})   { l.emit(LDebug, format, v) }
func (l *Log) Info(format string, v ...interface{})    { l.emit(LInfo, format, v) }
func (l *Log) Warning(format string, v ...interface{}) { l.emit(LWaring, format, v) }
func (l *Log) Error(format string, v ...interface{})   { l.emit(LError, format, v) }

// emit is the single gate all leveled methods go through: it drops the
// message below the current level, then renders and writes it at the
// appropriate call depth so the logger's own frame never shows up in the
// (disabled-by-default) long-file-name output.
func (l *Log) emit(level int, format string, v []interface{}) {
	if l.GetLevel() > level {
		return
	}
	if len(v) > 0 {
		format = fmt.Sprintf(format, v...)
	}
	l.logger.SetPrefix(levelTags[level])
	_ = l.logger.Output(3, format)
}

func NewLogger(flags int) *Log {
	return &Log{
		logger: log.New(os.Stderr, "", flags),
		_level: LInfo,
	}
}
