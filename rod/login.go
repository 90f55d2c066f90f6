package rod

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/metis"
	"github.com/go-rod/rod/lib/proto"
)

// WeChat login page and the element that renders once an account is logged in.
const (
	WeChatLoginURL      = "https://mp.weixin.qq.com/"
	WeChatLoginSelector = ".weui-desktop-account__nickname"
)

// LoginFunc performs an interactive login and returns the session cookies.
type LoginFunc func(ctx context.Context, url, selector string, wait time.Duration) ([]*proto.NetworkCookie, error)

// Ensure InteractiveLogin satisfies LoginFunc at compile time.
var _ LoginFunc = InteractiveLogin

// InteractiveLogin opens a visible browser window at url and waits up to
// wait for an element matching selector, which the user makes appear by
// logging in. It returns every cookie of the browser once it does.
func InteractiveLogin(ctx context.Context, url, selector string, wait time.Duration) ([]*proto.NetworkCookie, error) {
	browser, lnchr, err := launch(false)
	if err != nil {
		return nil, err
	}
	defer lnchr.Kill()
	defer func() { _ = browser.Close() }()

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", url, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	if _, err := page.Context(waitCtx).Element(selector); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, metis.Errorf(metis.EINVALID, "login not completed within %s", wait)
	}

	cookies, err := browser.GetCookies()
	if err != nil {
		return nil, fmt.Errorf("reading cookies: %w", err)
	}
	return cookies, nil
}
