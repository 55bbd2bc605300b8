package model

import (
	"context"
	"time"
)

// Provider names a social login provider known to the host platform.
type Provider string

const (
	// ProviderWeixin is the WeChat login provider.
	ProviderWeixin Provider = "weixin"
)

// LoginResult carries the one-time platform code.
type LoginResult struct {
	Code string
}

// ToastIcon enumerates toast icons.
type ToastIcon string

const (
	ToastIconNone    ToastIcon = "none"
	ToastIconSuccess ToastIcon = "success"
	ToastIconError   ToastIcon = "error"
)

// DefaultToastDuration is used when a toast does not specify one.
const DefaultToastDuration = 1500 * time.Millisecond

// Toast is a non-blocking user message.
type Toast struct {
	Title    string
	Icon     ToastIcon
	Duration time.Duration
}

// NavigateMode selects how a navigation affects the page stack.
type NavigateMode int

const (
	// NavigatePush adds a page on top of the stack.
	NavigatePush NavigateMode = iota
	// NavigateReplace swaps the current page so back cannot return to it.
	NavigateReplace
)

func (m NavigateMode) String() string {
	switch m {
	case NavigatePush:
		return "push"
	case NavigateReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Platform exposes host platform capabilities.
type Platform interface {
	Login(ctx context.Context, provider Provider) (LoginResult, error)
	ShowToast(ctx context.Context, toast Toast) error
	Navigate(ctx context.Context, url string, mode NavigateMode) error
}

// PhoneGrantEvent is delivered by the phone number consent button.
// Detail.Code is empty when the user declined.
type PhoneGrantEvent struct {
	Detail PhoneGrantDetail
}

// PhoneGrantDetail holds the consent outcome.
type PhoneGrantDetail struct {
	Code   string
	ErrMsg string
}
