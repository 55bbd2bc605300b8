package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	apiclient "github.com/dtroode/quicklogin/internal/api/http/client"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	var a *app
	defer func() {
		if a != nil {
			_ = a.Close()
		}
	}()

	root := newRootCmd(&a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if a != nil && apiclient.IsUnauthorized(err) {
		if logoutErr := a.user.Logout(ctx); logoutErr == nil {
			fmt.Fprintln(errOut, "Session rejected by the backend, log in again")
		}
	}
	return err
}

func printAppVersion(w io.Writer) {
	tmpl := `Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Fprintf(w, tmpl, buildVersion, buildDate, buildCommit)
}
