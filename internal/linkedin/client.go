// Package linkedin implements the external automation capability against the
// LinkedIn web UI: session handling, people search, connection requests and
// messaging. The core never sees rod; it consumes this package through the
// outreach.Automator interface.
package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/browser"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/config"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/logging"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/outreach"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/stealth"
)

type Client struct {
	br  *browser.Browser
	cfg *config.Config
	log *logging.Logger
}

func New(br *browser.Browser, cfg *config.Config, log *logging.Logger) *Client {
	return &Client{br: br, cfg: cfg, log: log.With("module", "linkedin")}
}

// Login ensures an authenticated session, reusing saved cookies when they
// still validate and falling back to a credential login. Credential failures
// and security checkpoints surface as *outreach.AuthError.
func (c *Client) Login(ctx context.Context) error {
	p, err := c.br.NewPage(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := c.loadCookies(p); err == nil {
		if c.validateSession(p) {
			c.log.Info("session validated using cookies")
			return nil
		}
	}
	if err := c.credentialLogin(ctx, p); err != nil {
		return err
	}
	if err := c.saveCookies(p); err != nil {
		c.log.Warn("save cookies failed", "err", err)
	}
	return nil
}

func (c *Client) credentialLogin(ctx context.Context, p *rod.Page) error {
	email, pass, err := config.Credentials()
	if err != nil {
		return &outreach.AuthError{Reason: "missing credentials", Err: err}
	}

	c.log.Info("attempting login", "email", email)
	if err := p.Navigate(c.cfg.LinkedIn.BaseURL + "login"); err != nil {
		return fmt.Errorf("navigate to login page: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("login page load: %w", err)
	}

	user, err := p.Timeout(10 * time.Second).Element("input#username")
	if err != nil {
		return browser.ScreenshotOnError(p, "login_page_fail",
			&outreach.AuthError{Reason: "login form not found", Err: err})
	}
	if err := stealth.Type(user, email); err != nil {
		return fmt.Errorf("input email: %w", err)
	}
	pwd, err := p.Timeout(5 * time.Second).Element("input#password")
	if err != nil {
		return fmt.Errorf("password input not found: %w", err)
	}
	if err := stealth.Type(pwd, pass); err != nil {
		return fmt.Errorf("input password: %w", err)
	}
	submit, err := p.Timeout(5 * time.Second).Element("button[type='submit']")
	if err != nil {
		return fmt.Errorf("submit button not found: %w", err)
	}
	if err := stealth.Click(p, submit); err != nil {
		return fmt.Errorf("click submit: %w", err)
	}
	wait(ctx, 5*time.Second)

	info, err := p.Info()
	if err != nil {
		return fmt.Errorf("page info after login: %w", err)
	}
	current := info.URL

	// Checkpoint pages mean the platform wants a human; retrying hurts.
	if strings.Contains(current, "checkpoint") || strings.Contains(current, "challenge") ||
		browser.HasElement(p, "[data-test-id='checkpoint'], .challenge-dialog") {
		_ = browser.ScreenshotOnError(p, "login_checkpoint", errors.New("checkpoint"))
		return &outreach.AuthError{Reason: "security challenge detected, complete login manually"}
	}

	if strings.Contains(current, "/feed") ||
		browser.HasElement(p, "[class*='global-nav']") ||
		browser.HasElement(p, "a[href*='/feed']") {
		c.log.Info("login successful", "url", current)
		return nil
	}

	if el, err := p.Timeout(2 * time.Second).Element(".alert--error, .form__label--error, .error"); err == nil {
		if msg, _ := el.Text(); msg != "" {
			_ = browser.ScreenshotOnError(p, "login_error", errors.New("login failed"))
			return &outreach.AuthError{Reason: msg}
		}
	}
	_ = browser.ScreenshotOnError(p, "login_unknown_fail", errors.New("unknown login failure"))
	return &outreach.AuthError{Reason: "could not verify successful login"}
}

func (c *Client) validateSession(p *rod.Page) bool {
	if err := p.Navigate(c.cfg.LinkedIn.BaseURL + "feed/"); err != nil {
		return false
	}
	if err := p.WaitLoad(); err != nil {
		return false
	}
	return browser.HasElement(p, "a[href*='/feed/']")
}

// wait sleeps for d but wakes immediately on cancellation, so the settle
// pauses between page interactions never delay an aborted run. The rod call
// after a cancelled wait fails through the page's context.
func wait(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// guardSession fails fast when a navigation landed on a login or checkpoint
// page: the session died mid-run and every further action would fail too.
func guardSession(p *rod.Page) error {
	info, err := p.Info()
	if err != nil {
		return nil
	}
	if strings.Contains(info.URL, "/login") || strings.Contains(info.URL, "checkpoint") {
		return &outreach.AuthError{Reason: "session expired or challenged mid-run"}
	}
	return nil
}

func cookiesPath() string {
	return filepath.Join(".cache", "cookies.json")
}

func (c *Client) loadCookies(p *rod.Page) error {
	b, err := os.ReadFile(cookiesPath())
	if err != nil {
		return err
	}
	var cookies []*proto.NetworkCookie
	if err := json.Unmarshal(b, &cookies); err != nil {
		return err
	}
	for _, ck := range cookies {
		_, _ = proto.NetworkSetCookie{
			Domain: ck.Domain, Name: ck.Name, Value: ck.Value, Path: ck.Path,
			Expires: ck.Expires, HTTPOnly: ck.HTTPOnly, Secure: ck.Secure,
		}.Call(p)
	}
	return nil
}

func (c *Client) saveCookies(p *rod.Page) error {
	pp := p.Timeout(20 * time.Second)
	cookies, err := proto.StorageGetCookies{}.Call(pp)
	if err != nil {
		time.Sleep(500 * time.Millisecond)
		cookies, err = proto.StorageGetCookies{}.Call(pp)
		if err != nil {
			return err
		}
	}
	b, _ := json.MarshalIndent(cookies.Cookies, "", "  ")
	_ = os.MkdirAll(filepath.Dir(cookiesPath()), 0o755)
	return os.WriteFile(cookiesPath(), b, 0644)
}

// warnOutsideActiveWindow logs once when a run starts outside the configured
// active hours. The run is not blocked; the operator decides.
func (c *Client) warnOutsideActiveWindow() {
	if !stealth.InActiveWindow(c.cfg.Browser.ActiveStart, c.cfg.Browser.ActiveEnd) {
		c.log.Warn("outside configured active window",
			"active_hours", fmt.Sprintf("%s-%s", c.cfg.Browser.ActiveStart, c.cfg.Browser.ActiveEnd),
			"current_time", time.Now().Format("15:04"))
	}
}
