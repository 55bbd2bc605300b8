package main

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dtroode/quicklogin/internal/config"
	"github.com/dtroode/quicklogin/internal/countdown"
	"github.com/dtroode/quicklogin/internal/logger"
	"github.com/dtroode/quicklogin/internal/model"
)

// newRootCmd builds the command tree. The app is created before any
// command that needs it runs and stored in *a for the caller to close.
func newRootCmd(a **app) *cobra.Command {
	root := &cobra.Command{
		Use:          "quicklogin",
		Short:        "One-tap login client with a persistent SMS resend cooldown",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["skipApp"] == "true" {
				return nil
			}
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}
			*a, err = newApp(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		},
	}

	appRef := func() *app { return *a }

	root.AddCommand(
		newLoginCmd(appRef),
		newSMSCmd(appRef),
		newCountdownCmd(appRef),
		newSessionCmd(appRef),
		newVersionCmd(),
	)
	return root
}

func newLoginCmd(appRef func() *app) *cobra.Command {
	var (
		agree     bool
		phoneCode string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with the platform code and a phone number grant code",
		Long: `Runs one login attempt. The platform login code is read from stdin;
the phone number grant code comes from --phone-code. An empty grant code
means the user declined to share the phone number.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appRef()
			login := a.newLogin()
			login.SetAgreementAccepted(agree)

			err := login.HandlePhoneGrant(cmd.Context(), model.PhoneGrantEvent{
				Detail: model.PhoneGrantDetail{Code: phoneCode},
			})
			if err != nil {
				return err
			}

			session, err := a.user.Current(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read session after login: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n",
				session.UserID, logger.MaskPhone(session.Phone))
			return nil
		},
	}

	cmd.Flags().BoolVar(&agree, "agree", false, "accept the user agreement and privacy policy")
	cmd.Flags().StringVar(&phoneCode, "phone-code", "", "phone number grant code")
	return cmd
}

func newSMSCmd(appRef func() *app) *cobra.Command {
	sms := &cobra.Command{
		Use:   "sms",
		Short: "SMS verification codes",
	}

	var phone string
	send := &cobra.Command{
		Use:   "send",
		Short: "Send a verification code unless the resend cooldown is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appRef()
			v := a.newVerification()
			v.Mount(cmd.Context())
			defer v.Unmount()

			if err := v.SendCode(cmd.Context(), phone); err != nil {
				if errors.Is(err, model.ErrCooldownActive) {
					fmt.Fprintf(cmd.OutOrStdout(), "Resend available in %ds\n", v.Remaining())
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resend available in %ds\n", v.Remaining())
			return nil
		},
	}
	send.Flags().StringVar(&phone, "phone", "", "mainland China mobile number")
	_ = send.MarkFlagRequired("phone")

	sms.AddCommand(send)
	return sms
}

func newCountdownCmd(appRef func() *app) *cobra.Command {
	cd := &cobra.Command{
		Use:   "countdown",
		Short: "Inspect persisted countdowns",
	}

	var (
		key   string
		watch bool
	)
	status := &cobra.Command{
		Use:   "status",
		Short: "Show the seconds left on a countdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appRef()
			out := cmd.OutOrStdout()

			if !watch {
				timer := a.newTimer(key)
				timer.Restore(cmd.Context())
				defer timer.Close()
				printRemaining(cmd, timer.Key(), timer.Remaining())
				return nil
			}

			var (
				once    sync.Once
				expired = make(chan struct{})
			)
			timer := a.newTimer(key, countdown.WithOnChange(func(remaining int) {
				if remaining == 0 {
					once.Do(func() { close(expired) })
					return
				}
				fmt.Fprintf(out, "%d\n", remaining)
			}))
			defer timer.Close()

			timer.Restore(cmd.Context())
			if !timer.Running() {
				printRemaining(cmd, timer.Key(), 0)
				return nil
			}

			select {
			case <-expired:
				printRemaining(cmd, timer.Key(), 0)
			case <-cmd.Context().Done():
			}
			return nil
		},
	}
	status.Flags().StringVar(&key, "key", "", "countdown storage key (defaults to COUNTDOWN_KEY)")
	status.Flags().BoolVar(&watch, "watch", false, "print every second until the countdown ends")

	cd.AddCommand(status)
	return cd
}

func printRemaining(cmd *cobra.Command, key string, remaining int) {
	if remaining == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: not running\n", key)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %ds remaining\n", key, remaining)
}

func newSessionCmd(appRef func() *app) *cobra.Command {
	session := &cobra.Command{
		Use:   "session",
		Short: "Inspect or drop the stored session",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := appRef().user.Current(cmd.Context())
			if errors.Is(err, model.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User:     %s\n", s.UserID)
			fmt.Fprintf(out, "Phone:    %s\n", logger.MaskPhone(s.Phone))
			if s.Nickname != "" {
				fmt.Fprintf(out, "Nickname: %s\n", s.Nickname)
			}
			if !s.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "Expires:  %s\n", s.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
			}
			return nil
		},
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Confirm the session with the backend and refresh the profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := appRef().user.Refresh(cmd.Context())
			if errors.Is(err, model.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session valid for %s (%s)\n", s.UserID, s.Nickname)
			return nil
		},
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appRef().user.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}

	session.AddCommand(show, check, logout)
	return session
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Annotations: map[string]string{"skipApp": "true"},
		Run: func(cmd *cobra.Command, args []string) {
			printAppVersion(cmd.OutOrStdout())
		},
	}
}
