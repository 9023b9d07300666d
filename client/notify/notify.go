// Package notify defines the fire-and-forget notification surface and the navigation surface the
// authenticated pipeline reports terminal failures to.
package notify

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
)

type (
	// Notifier surfaces messages to the user
	Notifier interface {
		Warn(ctx context.Context, message string)
		Info(ctx context.Context, message string)
	}

	// Navigator moves the user to another destination
	Navigator interface {
		Redirect(ctx context.Context, path string, query url.Values)
	}
)

// LogNotifier writes notifications to a structured logger
type LogNotifier struct {
	Logger *slog.Logger
}

func (l *LogNotifier) Warn(ctx context.Context, message string) {
	l.logger().WarnContext(ctx, message)
}

func (l *LogNotifier) Info(ctx context.Context, message string) {
	l.logger().InfoContext(ctx, message)
}

func (l *LogNotifier) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

// LogNavigator logs redirects; it suits headless clients with nowhere to navigate
type LogNavigator struct {
	Logger *slog.Logger
}

func (l *LogNavigator) Redirect(ctx context.Context, path string, query url.Values) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "redirect", "path", path, "query", query.Encode())
}

// Redirection represents a recorded redirect
type Redirection struct {
	Path  string
	Query url.Values
}

// Recorder records notifications and redirects
type Recorder struct {
	mu        sync.Mutex
	warnings  []string
	infos     []string
	redirects []Redirection
}

func (r *Recorder) Warn(_ context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, message)
}

func (r *Recorder) Info(_ context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, message)
}

func (r *Recorder) Redirect(_ context.Context, path string, query url.Values) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirects = append(r.redirects, Redirection{Path: path, Query: query})
}

// Warnings returns recorded warnings
func (r *Recorder) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.warnings...)
}

// Infos returns recorded info messages
func (r *Recorder) Infos() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.infos...)
}

// Redirects returns recorded redirects
func (r *Recorder) Redirects() []Redirection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Redirection{}, r.redirects...)
}
