package platform

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dtroode/quicklogin/internal/model"
)

var ErrInvalidURL = errors.New("page url must start with /")

// Router keeps the page stack. The top of the stack is the current page.
type Router struct {
	mu    sync.RWMutex
	pages []string
}

// NewRouter returns a router showing entry.
func NewRouter(entry string) *Router {
	return &Router{pages: []string{entry}}
}

// Navigate opens url with mode.
func (r *Router) Navigate(url string, mode model.NavigateMode) error {
	if !strings.HasPrefix(url, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch mode {
	case model.NavigatePush:
		r.pages = append(r.pages, url)
	case model.NavigateReplace:
		r.pages[len(r.pages)-1] = url
	default:
		return fmt.Errorf("unsupported navigate mode %d", mode)
	}
	return nil
}

// Current returns the page on top of the stack.
func (r *Router) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pages[len(r.pages)-1]
}

// Pages returns a copy of the stack, bottom first.
func (r *Router) Pages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.pages...)
}
