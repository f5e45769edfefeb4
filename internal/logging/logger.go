package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	errMu sync.Mutex
	errW  io.WriteCloser
}

// New logs info and warnings to stdout and errors to both stdout and errorsPath.
// The errors file is truncated on startup.
func New(errorsPath string) (*Logger, error) {
	if err := os.Truncate(errorsPath, 0); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	f, err := os.OpenFile(errorsPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	l := NewWriter(os.Stdout, io.MultiWriter(os.Stdout, f))
	l.errW = f
	return l, nil
}

// NewWriter builds a logger without an errors file. Used by tools and tests.
func NewWriter(out io.Writer, errOut io.Writer) *Logger {
	return &Logger{
		info: log.New(out, "INFO ", log.LstdFlags|log.Lmicroseconds),
		warn: log.New(out, "WARN ", log.LstdFlags|log.Lmicroseconds),
		err:  log.New(errOut, "ERROR ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWriter(io.Discard, io.Discard)
}

func (l *Logger) Close() error {
	l.errMu.Lock()
	defer l.errMu.Unlock()
	if l.errW != nil {
		return l.errW.Close()
	}
	return nil
}

func (l *Logger) Infof(format string, args ...any) {
	l.info.Printf(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.warn.Printf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.errMu.Lock()
	defer l.errMu.Unlock()
	_ = l.err.Output(2, fmt.Sprintf(format, args...))
}

func (l *Logger) Error(err error) {
	if err == nil {
		return
	}
	l.Errorf("%v", err)
}
