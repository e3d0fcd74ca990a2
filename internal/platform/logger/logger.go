// Package logger provides leveled logging for the simulator server.
// Everything the engine does to the simulated world should be traceable
// through this.
package logger

import (
	"log"
	"os"
)

// Logger wraps the stdlib log package with level prefixes and a dedicated
// channel for simulation events.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// New creates a logger writing INFO/WARN to stdout and ERROR to stderr.
func New() *Logger {
	return &Logger{
		infoLogger:  log.New(os.Stdout, "[KONS-INFO] ", log.Ldate|log.Ltime|log.Lshortfile),
		warnLogger:  log.New(os.Stdout, "[KONS-WARN] ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger: log.New(os.Stderr, "[KONS-ERROR] ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// Info logs informational messages.
func (l *Logger) Info(format string, args ...any) {
	l.infoLogger.Printf(format, args...)
}

// Warn logs warning messages.
func (l *Logger) Warn(format string, args ...any) {
	l.warnLogger.Printf(format, args...)
}

// Error logs error messages.
func (l *Logger) Error(format string, args ...any) {
	l.errorLogger.Printf(format, args...)
}

// Event logs a simulation event with its type and subject.
func (l *Logger) Event(eventType, subjectID, details string) {
	l.infoLogger.Printf("[EVENT:%s] Subject:%s | %s", eventType, subjectID, details)
}
