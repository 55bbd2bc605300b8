package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/dtroode/quicklogin/internal/countdown"
	"github.com/dtroode/quicklogin/internal/logger"
	"github.com/dtroode/quicklogin/internal/model"
)

// DefaultSMSCooldown is the resend cooldown in seconds.
const DefaultSMSCooldown = 60

const (
	msgInvalidPhone = "请输入正确的手机号"
	msgCodeSent     = "验证码已发送"
	msgSendFailed   = "验证码发送失败"
)

type phoneInput struct {
	Phone string `validate:"required,numeric,len=11,startswith=1"`
}

// Verification sends SMS verification codes behind a persistent resend
// cooldown.
type Verification struct {
	sender   model.SMSSender
	platform model.Platform
	timer    *countdown.Timer
	logger   *logger.Logger
	cooldown int

	mu      sync.Mutex
	scope   context.Context
	sending bool
}

// NewVerification creates the verification flow. cooldown is in seconds;
// a non-positive value uses DefaultSMSCooldown.
func NewVerification(sender model.SMSSender, platform model.Platform, timer *countdown.Timer, logger *logger.Logger, cooldown int) *Verification {
	if cooldown <= 0 {
		cooldown = DefaultSMSCooldown
	}
	return &Verification{
		sender:   sender,
		platform: platform,
		timer:    timer,
		logger:   logger,
		cooldown: cooldown,
	}
}

// Mount binds the flow to the page scope ctx and restores a running
// cooldown. Cancelling ctx tears the countdown down.
func (v *Verification) Mount(ctx context.Context) {
	v.mu.Lock()
	v.scope = ctx
	v.mu.Unlock()

	v.timer.Restore(ctx)
}

// Unmount stops the countdown tick. The persisted deadline survives.
func (v *Verification) Unmount() {
	v.timer.Close()
}

// Remaining returns the seconds left before a code may be resent.
func (v *Verification) Remaining() int {
	return v.timer.Remaining()
}

// SendCode requests a verification code for phone and starts the cooldown.
func (v *Verification) SendCode(ctx context.Context, phone string) error {
	if err := validate.Struct(phoneInput{Phone: phone}); err != nil {
		v.toast(ctx, model.Toast{Title: msgInvalidPhone, Icon: model.ToastIconNone})
		return fmt.Errorf("%w: %s", model.ErrInvalidPhone, logger.MaskPhone(phone))
	}

	if remaining := v.timer.Remaining(); remaining > 0 {
		v.toast(ctx, model.Toast{Title: fmt.Sprintf("请%d秒后再试", remaining), Icon: model.ToastIconNone})
		return fmt.Errorf("%w: %d seconds left", model.ErrCooldownActive, remaining)
	}

	v.mu.Lock()
	if v.sending {
		v.mu.Unlock()
		return fmt.Errorf("%w: request in flight", model.ErrCooldownActive)
	}
	v.sending = true
	scope := v.scope
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.sending = false
		v.mu.Unlock()
	}()

	if err := v.sender.SendSMSCode(ctx, phone); err != nil {
		v.logger.Error("Verification service: failed to send code",
			"phone", logger.MaskPhone(phone),
			"error", err.Error())
		v.toast(ctx, model.Toast{Title: msgSendFailed, Icon: model.ToastIconNone})
		return err
	}

	if scope == nil {
		scope = ctx
	}
	if err := v.timer.Start(scope, v.cooldown); err != nil {
		return fmt.Errorf("failed to start cooldown: %w", err)
	}

	v.logger.Info("Verification service: code sent",
		"phone", logger.MaskPhone(phone),
		"cooldown", v.cooldown)
	v.toast(ctx, model.Toast{Title: msgCodeSent, Icon: model.ToastIconSuccess})

	return nil
}

func (v *Verification) toast(ctx context.Context, toast model.Toast) {
	if toast.Duration == 0 {
		toast.Duration = model.DefaultToastDuration
	}
	if err := v.platform.ShowToast(ctx, toast); err != nil {
		v.logger.Warn("Verification service: failed to show toast",
			"title", toast.Title,
			"error", err.Error())
	}
}
