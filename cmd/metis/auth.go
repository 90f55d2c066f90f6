package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fwojciec/metis"
	"github.com/fwojciec/metis/rod"
)

// AuthMaxAge is the age after which a saved login state is reported stale.
const AuthMaxAge = 7 * 24 * time.Hour

// Run executes the auth-login command.
func (c *AuthLoginCmd) Run(deps *Dependencies) error {
	if deps.Login == nil {
		return printError(deps, metis.Errorf(metis.EINVALID, "browser login not available"))
	}

	fmt.Fprintf(deps.Stdout, "Opening %s\n", rod.WeChatLoginURL)
	fmt.Fprintf(deps.Stdout, "Scan the QR code to log in. Waiting up to %s...\n", c.Wait)

	cookies, err := deps.Login(deps.Ctx, rod.WeChatLoginURL, rod.WeChatLoginSelector, c.Wait)
	if err != nil {
		return printError(deps, err)
	}
	if err := rod.SaveCookies(deps.Config.StatePath, cookies); err != nil {
		return printError(deps, err)
	}

	fmt.Fprintf(deps.Stdout, "Saved %d cookies to %s\n", len(cookies), deps.Config.StatePath)
	return nil
}

// Run executes the auth-status command.
func (c *AuthStatusCmd) Run(deps *Dependencies) error {
	path := deps.Config.StatePath

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(deps.Stdout, "No saved login state at %s\n", path)
		fmt.Fprintln(deps.Stdout, "Run 'metis auth-login' to log in and save it.")
		return nil
	} else if err != nil {
		return printError(deps, err)
	}

	cookies, err := rod.LoadCookies(path)
	if err != nil {
		return printError(deps, err)
	}

	age := deps.now().Sub(info.ModTime())
	fmt.Fprintf(deps.Stdout, "Login state found: %s\n", path)
	fmt.Fprintf(deps.Stdout, "  Cookies: %d\n", len(cookies))
	fmt.Fprintf(deps.Stdout, "  Saved:   %s\n", info.ModTime().Format(time.DateTime))
	fmt.Fprintf(deps.Stdout, "  Age:     %d days %d hours\n", int(age.Hours())/24, int(age.Hours())%24)
	if age > AuthMaxAge {
		fmt.Fprintln(deps.Stdout, "Login state may have expired. Run 'metis auth-login' again.")
	}
	return nil
}
