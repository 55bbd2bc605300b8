package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dtroode/quicklogin/internal/logger"
	"github.com/dtroode/quicklogin/internal/model"
)

// DefaultLandingURL is the authenticated landing page.
const DefaultLandingURL = "/pages/index/index"

const (
	msgConsentMissing    = "请先勾选用户协议和隐私政策"
	msgPhoneGrantMissing = "需要授权手机号才能登录"
	msgLoginFailed       = "登录失败，请重试"
)

// LoginOption configures Login.
type LoginOption func(*Login)

// WithLandingURL sets the page opened after a successful login.
func WithLandingURL(url string) LoginOption {
	return func(l *Login) {
		l.landingURL = url
	}
}

// WithProvider sets the social login provider.
func WithProvider(provider model.Provider) LoginOption {
	return func(l *Login) {
		l.provider = provider
	}
}

// WithStateListener registers fn to observe every state transition.
func WithStateListener(fn func(model.LoginState)) LoginOption {
	return func(l *Login) {
		l.onState = fn
	}
}

// Login drives one-tap login: consent gate, platform code, phone grant,
// session exchange, then navigation or user feedback.
type Login struct {
	platform   model.Platform
	userStore  model.UserStore
	logger     *logger.Logger
	provider   model.Provider
	landingURL string
	onState    func(model.LoginState)

	mu                sync.Mutex
	agreementAccepted bool
	inFlight          bool
	state             model.LoginState
}

// NewLogin creates a login orchestrator.
func NewLogin(platform model.Platform, userStore model.UserStore, logger *logger.Logger, opts ...LoginOption) *Login {
	l := &Login{
		platform:   platform,
		userStore:  userStore,
		logger:     logger,
		provider:   model.ProviderWeixin,
		landingURL: DefaultLandingURL,
		state:      model.LoginStateIdle,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetAgreementAccepted records the agreement checkbox.
func (l *Login) SetAgreementAccepted(accepted bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.agreementAccepted = accepted
}

// AgreementAccepted reports the agreement checkbox.
func (l *Login) AgreementAccepted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.agreementAccepted
}

// InFlight reports whether an attempt is running.
func (l *Login) InFlight() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight
}

// State returns the current state.
func (l *Login) State() model.LoginState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// HandlePhoneGrant runs one login attempt for the phone number consent
// gesture. Every failure is terminal for the attempt: both codes are
// single-use, so nothing is retried.
//
// Once the session exchange starts it runs to completion even if ctx is
// cancelled.
func (l *Login) HandlePhoneGrant(ctx context.Context, event model.PhoneGrantEvent) error {
	log := l.logger.With("attempt_id", uuid.NewString())

	l.mu.Lock()
	if !l.agreementAccepted {
		// an attempt already past the consent check owns the state
		if !l.inFlight {
			l.setStateLocked(model.LoginStateAwaitingConsent)
		}
		l.mu.Unlock()

		log.Info("Login service: agreement not accepted")
		l.toast(ctx, log, model.Toast{Title: msgConsentMissing, Icon: model.ToastIconNone})
		return model.ErrConsentMissing
	}
	if l.inFlight {
		l.mu.Unlock()
		log.Debug("Login service: attempt already in flight, gesture ignored")
		return model.ErrLoginInFlight
	}
	l.inFlight = true
	l.setStateLocked(model.LoginStateRequestingPhoneGrant)
	l.mu.Unlock()

	phoneCode := event.Detail.Code
	if phoneCode == "" {
		log.Info("Login service: phone number grant declined",
			"err_msg", event.Detail.ErrMsg)
		l.fail(ctx, log, msgPhoneGrantMissing)
		return model.ErrPhoneGrantMissing
	}

	l.setState(model.LoginStateRequestingPlatformCode)
	result, err := l.platform.Login(ctx, l.provider)
	if err == nil && result.Code == "" {
		err = fmt.Errorf("platform returned an empty code")
	}
	if err != nil {
		log.Error("Login service: failed to get platform code",
			"provider", string(l.provider),
			"error", err.Error())
		l.fail(ctx, log, msgLoginFailed)
		return fmt.Errorf("%w: %w", model.ErrPlatformCodeDenied, err)
	}

	log.Debug("Login service: exchanging codes",
		"login_code", logger.MaskCode(result.Code),
		"phone_code", logger.MaskCode(phoneCode))

	l.setState(model.LoginStateExchangingSession)
	exchangeCtx := context.WithoutCancel(ctx)
	if err := l.userStore.WechatQuickLogin(exchangeCtx, result.Code, phoneCode); err != nil {
		log.Error("Login service: session exchange failed",
			"error", err.Error())
		l.fail(exchangeCtx, log, msgLoginFailed)
		return fmt.Errorf("%w: %w", model.ErrExchangeRejected, err)
	}

	l.mu.Lock()
	l.inFlight = false
	l.setStateLocked(model.LoginStateSuccess)
	l.mu.Unlock()

	log.Info("Login service: login succeeded")

	if err := l.platform.Navigate(exchangeCtx, l.landingURL, model.NavigateReplace); err != nil {
		log.Error("Login service: failed to open landing page",
			"url", l.landingURL,
			"error", err.Error())
		return fmt.Errorf("failed to navigate to landing page: %w", err)
	}

	return nil
}

// fail settles a failed attempt: clears inFlight, passes through Failed back
// to Idle, and shows msg.
func (l *Login) fail(ctx context.Context, log *logger.Logger, msg string) {
	l.mu.Lock()
	l.inFlight = false
	l.setStateLocked(model.LoginStateFailed)
	l.setStateLocked(model.LoginStateIdle)
	l.mu.Unlock()

	l.toast(ctx, log, model.Toast{Title: msg, Icon: model.ToastIconNone})
}

func (l *Login) toast(ctx context.Context, log *logger.Logger, toast model.Toast) {
	if toast.Duration == 0 {
		toast.Duration = model.DefaultToastDuration
	}
	if err := l.platform.ShowToast(ctx, toast); err != nil {
		log.Warn("Login service: failed to show toast",
			"title", toast.Title,
			"error", err.Error())
	}
}

func (l *Login) setState(state model.LoginState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setStateLocked(state)
}

// setStateLocked records state. Callers hold l.mu; the listener must not
// call back into Login.
func (l *Login) setStateLocked(state model.LoginState) {
	l.state = state
	if l.onState != nil {
		l.onState(state)
	}
}
