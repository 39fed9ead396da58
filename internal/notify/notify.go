// Package notify holds the transient, user-visible notification banner.
package notify

import (
	"sync"
	"time"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
)

type Notification struct {
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Notifier is how operations surface results to the user.
type Notifier interface {
	Error(message string)
	Success(message string)
	Info(message string)
}

// Banner keeps at most one live notification; a new one replaces the
// previous and each expires after ttl.
type Banner struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	current *Notification
}

func NewBanner(ttl time.Duration) *Banner {
	return &Banner{ttl: ttl, now: time.Now}
}

func (b *Banner) Error(message string)   { b.show(SeverityError, message) }
func (b *Banner) Success(message string) { b.show(SeveritySuccess, message) }
func (b *Banner) Info(message string)    { b.show(SeverityInfo, message) }

func (b *Banner) show(severity Severity, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = &Notification{
		Severity:  severity,
		Message:   message,
		ExpiresAt: b.now().Add(b.ttl),
	}
}

// Current returns the live notification, or nil once it expired or was
// dismissed.
func (b *Banner) Current() *Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return nil
	}
	if !b.now().Before(b.current.ExpiresAt) {
		b.current = nil
		return nil
	}
	n := *b.current
	return &n
}

func (b *Banner) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = nil
}
