// Package platform provides a terminal rendition of the host platform: the
// login code is read from an input stream, toasts are printed, and
// navigation updates a page stack.
package platform

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dtroode/quicklogin/internal/logger"
	"github.com/dtroode/quicklogin/internal/model"
)

// ErrLoginCancelled is returned when no platform code was entered.
var ErrLoginCancelled = errors.New("platform login cancelled")

var _ model.Platform = (*Console)(nil)

// Console implements model.Platform over a pair of streams.
type Console struct {
	in     *bufio.Reader
	router *Router
	logger *logger.Logger

	readMu  sync.Mutex
	pending chan readResult

	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a console platform.
func NewConsole(in io.Reader, out io.Writer, router *Router, logger *logger.Logger) *Console {
	return &Console{
		in:     bufio.NewReader(in),
		out:    out,
		router: router,
		logger: logger,
	}
}

type readResult struct {
	line string
	err  error
}

// Login prompts for the provider's one-time code. An empty line or end of
// input means the user cancelled.
func (c *Console) Login(ctx context.Context, provider model.Provider) (model.LoginResult, error) {
	c.print(fmt.Sprintf("Enter %s login code: ", provider))

	result := c.readLine()

	select {
	case <-ctx.Done():
		return model.LoginResult{}, fmt.Errorf("%w: %w", ErrLoginCancelled, ctx.Err())
	case r := <-result:
		c.readMu.Lock()
		c.pending = nil
		c.readMu.Unlock()

		code := strings.TrimSpace(r.line)
		if r.err != nil && !errors.Is(r.err, io.EOF) {
			return model.LoginResult{}, fmt.Errorf("failed to read login code: %w", r.err)
		}
		if code == "" {
			return model.LoginResult{}, ErrLoginCancelled
		}
		c.logger.Debug("Console platform: login code entered",
			"provider", string(provider),
			"code", logger.MaskCode(code))
		return model.LoginResult{Code: code}, nil
	}
}

// readLine returns the channel of the read in progress, starting one if
// none is. A read abandoned by a cancelled caller is handed to the next.
func (c *Console) readLine() chan readResult {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	if c.pending != nil {
		return c.pending
	}
	result := make(chan readResult, 1)
	c.pending = result
	go func() {
		line, err := c.in.ReadString('\n')
		result <- readResult{line: line, err: err}
	}()
	return result
}

// ShowToast prints the toast on its own line.
func (c *Console) ShowToast(ctx context.Context, toast model.Toast) error {
	line := toast.Title
	switch toast.Icon {
	case model.ToastIconSuccess:
		line = "✔ " + line
	case model.ToastIconError:
		line = "✘ " + line
	}
	return c.print(line + "\n")
}

// Navigate updates the page stack and prints it, bottom first.
func (c *Console) Navigate(ctx context.Context, url string, mode model.NavigateMode) error {
	if err := c.router.Navigate(url, mode); err != nil {
		return fmt.Errorf("failed to navigate: %w", err)
	}
	pages := c.router.Pages()
	c.logger.Info("Console platform: navigated",
		"url", url,
		"mode", mode.String(),
		"depth", len(pages))
	return c.print("→ " + strings.Join(pages, " › ") + "\n")
}

func (c *Console) print(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := io.WriteString(c.out, s); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}
