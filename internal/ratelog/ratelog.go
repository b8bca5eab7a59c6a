// Package ratelog wraps a *log.Logger with per-key suppression, so a noisy
// condition (a bad NID arriving every few symbols, an assembler pinned full)
// logs a handful of times and then goes quiet instead of flooding output.
package ratelog

import (
	"fmt"
	"log"
	"sync"
)

// DefaultSuppressAfter is how many occurrences of a given key are logged
// before suppression kicks in.
const DefaultSuppressAfter = 5

// Logger rate-limits Debugf calls by key: the first SuppressAfter
// occurrences of a key are logged, and every tenth occurrence after that is
// logged again (so a still-ongoing condition resurfaces periodically rather
// than disappearing for good).
type Logger struct {
	out           *log.Logger
	suppressAfter int

	mu     sync.Mutex
	counts map[string]int
}

// New wraps out, logging each distinct key up to suppressAfter times before
// suppressing it (resurfacing every 10th occurrence thereafter).
func New(out *log.Logger, suppressAfter int) *Logger {
	if suppressAfter <= 0 {
		suppressAfter = DefaultSuppressAfter
	}
	return &Logger{
		out:           out,
		suppressAfter: suppressAfter,
		counts:        make(map[string]int),
	}
}

// Debugf logs format/args under key, subject to suppression. The key
// distinguishes independent noisy conditions (e.g. "nid-invalid" vs
// "assembler-full") so one never counts against the other's budget.
func (l *Logger) Debugf(key, format string, args ...interface{}) {
	if l == nil || l.out == nil {
		return
	}

	l.mu.Lock()
	l.counts[key]++
	n := l.counts[key]
	l.mu.Unlock()

	if n <= l.suppressAfter {
		l.out.Printf(format, args...)
		if n == l.suppressAfter {
			l.out.Printf("ratelog: suppressing further %q messages", key)
		}
		return
	}

	if n%10 == 0 {
		l.out.Printf(format+fmt.Sprintf(" (suppressed, occurrence %d)", n), args...)
	}
}

// Keyed returns a view of this Logger that always logs under a single fixed
// key, satisfying an interface that only expects Debugf(format, args...)
// (symbol.DebugLogger, framer.Framer's logger field).
func (l *Logger) Keyed(key string) *KeyedLogger {
	return &KeyedLogger{logger: l, key: key}
}

// KeyedLogger adapts Logger to the single-key Debugf(format, args...) shape
// used by symbol.DebugLogger and framer.Framer.
type KeyedLogger struct {
	logger *Logger
	key    string
}

func (k *KeyedLogger) Debugf(format string, args ...interface{}) {
	k.logger.Debugf(k.key, format, args...)
}
