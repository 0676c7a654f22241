// Package browser owns the rod browser lifecycle and the fingerprint setup
// applied to every page.
package browser

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/config"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/logging"
)

type Browser struct {
	rod      *rod.Browser
	cfg      *config.Config
	log      *logging.Logger
	ua       string
	platform string
}

func New(ctx context.Context, cfg *config.Config, log *logging.Logger) (*Browser, error) {
	// Leakless disabled to avoid antivirus false positives on Windows.
	l := launcher.New().Leakless(false).Headless(cfg.Browser.Headless)
	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	rb := rod.New().ControlURL(url)
	if err := rb.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	rb = rb.Context(ctx)

	ua := cfg.Browser.UserAgent
	if ua == "" {
		ua = userAgents[rand.Intn(len(userAgents))]
	}
	platform := "Win32"
	if strings.Contains(ua, "Macintosh") {
		platform = "MacIntel"
	} else if strings.Contains(ua, "Linux") {
		platform = "Linux x86_64"
	}

	b := &Browser{
		rod:      rb.MustIgnoreCertErrors(true),
		cfg:      cfg,
		log:      log.With("module", "browser"),
		ua:       ua,
		platform: platform,
	}
	b.log.Info("browser launched", "headless", cfg.Browser.Headless, "ua", ua)
	return b, nil
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
}

// NewPage opens a page with the fingerprint script installed for every
// navigation and a randomized viewport within the configured bounds.
func (b *Browser) NewPage(ctx context.Context) (*rod.Page, error) {
	p, err := b.rod.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	p = p.Context(ctx).Timeout(5 * time.Minute)

	w := randRange(b.cfg.Browser.ViewportWidthMin, b.cfg.Browser.ViewportWidthMax)
	h := randRange(b.cfg.Browser.ViewportHeightMin, b.cfg.Browser.ViewportHeightMax)

	_ = proto.EmulationSetUserAgentOverride{UserAgent: b.ua, Platform: b.platform}.Call(p)
	_ = p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             w,
		Height:            h,
		DeviceScaleFactor: 1,
		Mobile:            false,
	})
	p.EvalOnNewDocument(fingerprintScript(w, h, b.platform))
	return p, nil
}

func (b *Browser) Close() {
	if b.rod != nil {
		_ = b.rod.Close()
	}
}

// fingerprintScript masks the most common automation giveaways: the webdriver
// flag, an empty plugin list, and screen metrics that disagree with the
// viewport.
func fingerprintScript(width, height int, platform string) string {
	return fmt.Sprintf(`() => {
		Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
		window.chrome = window.chrome || { runtime: {}, loadTimes: function() {}, csi: function() {}, app: {} };
		Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
		Object.defineProperty(navigator, 'platform', { get: () => '%s' });
		Object.defineProperty(navigator, 'plugins', {
			get: () => [
				{ name: 'PDF Viewer', filename: 'internal-pdf-viewer', description: 'Portable Document Format' },
				{ name: 'Chrome PDF Viewer', filename: 'internal-pdf-viewer', description: 'Portable Document Format' }
			]
		});
		Object.defineProperty(navigator, 'hardwareConcurrency', { get: () => 8 });
		Object.defineProperty(navigator, 'deviceMemory', { get: () => 8 });
		Object.defineProperty(window.screen, 'width', { get: () => %d + 100 });
		Object.defineProperty(window.screen, 'height', { get: () => %d + 100 });
		Object.defineProperty(window.screen, 'availWidth', { get: () => %d + 100 });
		Object.defineProperty(window.screen, 'availHeight', { get: () => %d + 60 });
		const getParameter = WebGLRenderingContext.prototype.getParameter;
		WebGLRenderingContext.prototype.getParameter = function(parameter) {
			if (parameter === 37445) { return 'Intel Inc.'; }
			if (parameter === 37446) { return 'Intel Iris OpenGL Engine'; }
			return getParameter.apply(this, arguments);
		};
	}`, platform, width, height, width, height)
}

func randRange(min, max int) int {
	if min >= max {
		return min
	}
	return min + rand.Intn(max-min+1)
}

// HasElement reports whether sel resolves within a short timeout.
func HasElement(p *rod.Page, sel string) bool {
	_, err := p.Timeout(2 * time.Second).Element(sel)
	return err == nil
}

// HasElementWithText reports whether any element matching the regex text
// exists within a short timeout.
func HasElementWithText(p *rod.Page, text string) bool {
	_, err := p.Timeout(2*time.Second).ElementR("*", text)
	return err == nil
}

// ScreenshotOnError captures the page for post-mortem debugging and passes
// the original error through.
func ScreenshotOnError(p *rod.Page, prefix string, err error) error {
	if p == nil || err == nil {
		return err
	}
	path := fmt.Sprintf("%s-%d.png", prefix, time.Now().Unix())
	bts, serr := p.Screenshot(true, &proto.PageCaptureScreenshot{})
	if serr == nil {
		_ = os.WriteFile(path, bts, 0644)
	}
	return err
}
