package linkedin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/browser"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/stealth"
)

// SendConnectionRequest opens the profile and drives the invite flow: find
// the Connect button, attach the note when a note box is offered, send.
func (c *Client) SendConnectionRequest(ctx context.Context, profileURL, note string) error {
	p, err := c.br.NewPage(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := c.openProfile(ctx, p, profileURL); err != nil {
		return err
	}

	connectBtn, err := findConnectButton(ctx, p)
	if err != nil {
		return browser.ScreenshotOnError(p, "connect_button_fail",
			fmt.Errorf("connect button not found: %w", err))
	}
	if err := stealth.Click(p, connectBtn); err != nil {
		return fmt.Errorf("click connect: %w", err)
	}
	wait(ctx, 1*time.Second)

	if note != "" {
		// The invite dialog only shows the note box after "Add a note".
		if addNote, err := p.Timeout(5*time.Second).ElementR("button", "Add a note"); err == nil {
			_ = stealth.Click(p, addNote)
			wait(ctx, 800*time.Millisecond)
		}
		if len(note) > 280 {
			note = note[:280] // platform caps invite notes
		}
		if box, err := p.Timeout(5 * time.Second).Element(`textarea[name="message"]`); err == nil {
			if err := stealth.Type(box, note); err != nil {
				return fmt.Errorf("type note: %w", err)
			}
		} else {
			c.log.Info("note box not offered, sending without note", "url", profileURL)
		}
	}
	wait(ctx, 1*time.Second)

	sendBtn, err := findSendButton(p, "Send invitation")
	if err != nil {
		return browser.ScreenshotOnError(p, "send_button_fail",
			fmt.Errorf("send button not found: %w", err))
	}
	stealth.Pause(300, 700)
	if err := stealth.Click(p, sendBtn); err != nil {
		return fmt.Errorf("click send: %w", err)
	}
	wait(ctx, 1*time.Second)
	c.log.Info("connection request sent", "url", profileURL)
	return nil
}

// SendMessage opens the profile's message composer and sends content.
func (c *Client) SendMessage(ctx context.Context, profileURL, content string) error {
	p, err := c.br.NewPage(ctx)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := c.openProfile(ctx, p, profileURL); err != nil {
		return err
	}

	msgBtn, err := p.Timeout(5*time.Second).ElementR("button", "^Message$")
	if err != nil {
		msgBtn, err = p.Timeout(5 * time.Second).Element(`button[aria-label*="Message"]`)
	}
	if err != nil {
		return fmt.Errorf("message button not found: %w", err)
	}
	if err := stealth.Click(p, msgBtn); err != nil {
		return fmt.Errorf("click message button: %w", err)
	}
	wait(ctx, 1500*time.Millisecond)

	box, err := p.Timeout(8 * time.Second).Element(`div.msg-form__contenteditable`)
	if err != nil {
		box, err = p.Timeout(5 * time.Second).Element(`div[contenteditable="true"]`)
	}
	if err != nil {
		return browser.ScreenshotOnError(p, "message_input_fail",
			fmt.Errorf("message input not found: %w", err))
	}
	if err := stealth.Type(box, content); err != nil {
		return fmt.Errorf("type message: %w", err)
	}
	wait(ctx, 1*time.Second)

	sendBtn, err := p.Timeout(10 * time.Second).Element(`button.msg-form__send-button`)
	if err != nil {
		sendBtn, err = findSendButton(p, "Send")
	}
	if err != nil {
		return browser.ScreenshotOnError(p, "send_message_fail",
			fmt.Errorf("send button not found: %w", err))
	}
	stealth.Pause(400, 800)
	if err := stealth.Click(p, sendBtn); err != nil {
		return fmt.Errorf("click send: %w", err)
	}
	wait(ctx, 1*time.Second)
	c.log.Info("message sent", "url", profileURL)
	return nil
}

// ConnectionCheck is the result of probing a pending request, including
// profile fields scraped while the page was open so callers can backfill.
type ConnectionCheck struct {
	Accepted bool
	FullName string
	Headline string
	Company  string
}

// CheckConnection reports whether a pending request was accepted: a Message
// button on the profile means we are connected.
func (c *Client) CheckConnection(ctx context.Context, profileURL string) (ConnectionCheck, error) {
	p, err := c.br.NewPage(ctx)
	if err != nil {
		return ConnectionCheck{}, err
	}
	defer p.Close()

	if err := p.Navigate(profileURL); err != nil {
		return ConnectionCheck{}, fmt.Errorf("navigate to %s: %w", profileURL, err)
	}
	_ = p.WaitLoad()
	if err := guardSession(p); err != nil {
		return ConnectionCheck{}, err
	}
	wait(ctx, 1*time.Second)

	check := ConnectionCheck{
		Accepted: browser.HasElementWithText(p, "^Message$") ||
			browser.HasElement(p, `button[aria-label*="Message"]`),
	}
	check.FullName, check.Headline, check.Company = extractProfile(p)
	return check, nil
}

// openProfile navigates to the profile with human warm-up gestures and fails
// fast when the session is gone.
func (c *Client) openProfile(ctx context.Context, p *rod.Page, profileURL string) error {
	if err := p.Navigate(profileURL); err != nil {
		return fmt.Errorf("navigate to %s: %w", profileURL, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("load %s: %w", profileURL, err)
	}
	if err := guardSession(p); err != nil {
		return err
	}
	stealth.Wander(p)
	stealth.ThinkTime()
	stealth.Scroll(p)
	wait(ctx, 1*time.Second)
	return nil
}

func findConnectButton(ctx context.Context, p *rod.Page) (*rod.Element, error) {
	if btn, err := p.Timeout(5 * time.Second).Element(`button[aria-label*="Invite"][aria-label*="connect"]`); err == nil {
		return btn, nil
	}
	if btn, err := p.Timeout(5*time.Second).ElementR("button", "^Connect$"); err == nil {
		return btn, nil
	}
	// Connect may be hidden behind the More dropdown.
	if more, err := p.Timeout(3*time.Second).ElementR("button", "More"); err == nil {
		_ = stealth.Click(p, more)
		wait(ctx, 800*time.Millisecond)
		if btn, err := p.Timeout(5*time.Second).ElementR("div", "^Connect$"); err == nil {
			return btn, nil
		}
	}
	return nil, fmt.Errorf("no connect control on page")
}

func findSendButton(p *rod.Page, alt string) (*rod.Element, error) {
	if btn, err := p.Timeout(10*time.Second).ElementR("button", "^Send$"); err == nil {
		return btn, nil
	}
	if btn, err := p.Timeout(5 * time.Second).Element(`button[aria-label*="Send"]`); err == nil {
		return btn, nil
	}
	buttons, _ := p.Elements("button")
	for _, btn := range buttons {
		if text, _ := btn.Text(); text == "Send" || text == alt {
			return btn, nil
		}
	}
	return nil, fmt.Errorf("no send control on page")
}

// extractProfile pulls name, headline and company off an open profile page.
// Best effort: missing fields come back empty.
func extractProfile(p *rod.Page) (name, headline, company string) {
	if el, err := p.Timeout(3 * time.Second).Element("h1"); err == nil {
		if t, err := el.Text(); err == nil {
			name = strings.TrimSpace(t)
		}
	}
	for _, sel := range []string{`div.text-body-medium`, `div[class*="headline"]`} {
		el, err := p.Timeout(2 * time.Second).Element(sel)
		if err != nil {
			continue
		}
		t, err := el.Text()
		if err != nil {
			continue
		}
		t = strings.TrimSpace(t)
		if t != "" && t != name {
			headline = t
			break
		}
	}
	if idx := strings.Index(strings.ToLower(headline), " at "); idx >= 0 {
		company = strings.TrimSpace(headline[idx+4:])
	}
	return name, headline, company
}
