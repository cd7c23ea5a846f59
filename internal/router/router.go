// package router tracks the active route for the terminal front end.
package router

import (
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

// Known routes.
const (
	Home      = "/"
	Liked     = "/liked"
	Schedules = "/schedules"
	Locations = "/locations"
)

// Route is a navigable view with a display title.
type Route struct {
	Path  string
	Title string
}

// Routes lists the known routes in menu order.
var Routes = []Route{
	{Path: Home, Title: "Places"},
	{Path: Liked, Title: "Liked"},
	{Path: Schedules, Title: "Schedules"},
	{Path: Locations, Title: "Locations"},
}

// Known reports whether path is a registered route.
func Known(path string) bool {
	return slices.ContainsFunc(Routes, func(r Route) bool { return r.Path == path })
}

// Title returns the display title for path, or path itself when unknown.
func Title(path string) string {
	for _, r := range Routes {
		if r.Path == path {
			return r.Title
		}
	}
	return path
}

// Router records navigation and notifies a listener. Unknown paths fall back to [Home].
type Router struct {
	mu       sync.Mutex
	current  string
	history  []string
	listener func(string)
	logger   *log.Logger
}

// New creates a router positioned at [Home].
func New(logger *log.Logger) *Router {
	if logger == nil {
		logger = log.Default()
	}
	return &Router{current: Home, logger: logger}
}

// Navigate moves to path. It is fire-and-forget: the listener runs synchronously after the move.
func (r *Router) Navigate(path string) {
	if !Known(path) {
		r.logger.Warn("unknown route, navigating home", "path", path)
		path = Home
	}

	r.mu.Lock()
	r.history = append(r.history, r.current)
	r.current = path
	listener := r.listener
	r.mu.Unlock()

	r.logger.Debug("navigate", "path", path)
	if listener != nil {
		listener(path)
	}
}

// Back returns to the previous route, if any, and reports whether it moved.
func (r *Router) Back() bool {
	r.mu.Lock()
	if len(r.history) == 0 {
		r.mu.Unlock()
		return false
	}
	r.current = r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	path, listener := r.current, r.listener
	r.mu.Unlock()

	if listener != nil {
		listener(path)
	}
	return true
}

// Current returns the active route.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns the routes visited before the current one, oldest first.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.history)
}

// OnChange sets the listener called after every navigation. nil removes it.
func (r *Router) OnChange(fn func(path string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listener = fn
}
