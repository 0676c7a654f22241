package linkedin

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/browser"
	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/stealth"
)

// Query describes one people search.
type Query struct {
	Keywords string
	Location string
	Industry string
	Limit    int
}

// Candidate is a raw scraped search result. The core persists it as a
// prospect; platform-specific fields beyond these are not validated here.
type Candidate struct {
	LinkedInURL string
	FullName    string
	Headline    string
	Location    string
	Industry    string
}

// SearchProspects scrapes the people-search results for q, paging until the
// limit is reached or results run out.
func (c *Client) SearchProspects(ctx context.Context, q Query) ([]Candidate, error) {
	if q.Limit <= 0 {
		q.Limit = c.cfg.Search.MaxProfilesPerSearch
	}
	c.warnOutsideActiveWindow()

	p, err := c.br.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	parts := []string{}
	for _, s := range []string{q.Keywords, q.Location, q.Industry} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	kw := strings.Join(parts, " ")
	base := fmt.Sprintf("%ssearch/results/people/?keywords=%s&origin=GLOBAL_SEARCH_HEADER",
		c.cfg.LinkedIn.BaseURL, url.QueryEscape(kw))

	c.log.Info("starting search", "keywords", kw, "limit", q.Limit)
	var out []Candidate
	seen := map[string]bool{}
	for pageNum := 1; len(out) < q.Limit; pageNum++ {
		pageURL := fmt.Sprintf("%s&page=%d", base, pageNum)
		if err := p.Navigate(pageURL); err != nil {
			c.log.Warn("navigate failed", "page", pageNum, "err", err)
			break
		}
		if err := p.WaitLoad(); err != nil {
			c.log.Warn("page load failed", "page", pageNum, "err", err)
			break
		}
		if err := guardSession(p); err != nil {
			return out, err
		}

		if _, err := p.Timeout(10 * time.Second).Element(".search-results-container"); err != nil {
			if pageNum == 1 {
				return nil, browser.ScreenshotOnError(p, "search_fail",
					fmt.Errorf("search results container not found: %w", err))
			}
			break
		}

		stealth.Wander(p)
		stealth.Scroll(p)
		wait(ctx, 2*time.Second) // let lazy results render

		links := findProfileLinks(p)
		c.log.Info("links found on page", "page", pageNum, "count", len(links))
		if len(links) == 0 {
			break
		}

		added := 0
		for _, link := range links {
			if len(out) >= q.Limit {
				break
			}
			href, err := link.Attribute("href")
			if err != nil || href == nil {
				continue
			}
			profileURL := NormalizeProfileURL(*href)
			if !strings.Contains(profileURL, "/in/") || seen[profileURL] {
				continue
			}
			seen[profileURL] = true
			added++
			cand := Candidate{LinkedInURL: profileURL, Industry: q.Industry}
			if name, err := link.Text(); err == nil {
				cand.FullName = cleanResultText(name)
			}
			out = append(out, cand)
		}
		if added == 0 {
			break // same results again means the end
		}
		if len(out) < q.Limit {
			stealth.Pause(2000, 4000)
		}
	}
	c.log.Info("search completed", "collected", len(out))
	return out, nil
}

// findProfileLinks tries selector strategies from most to least specific; the
// markup changes often enough that a single selector is a liability.
func findProfileLinks(p *rod.Page) rod.Elements {
	if links, err := p.Elements(`a[href*="/in/"][data-test-app-aware-link]`); err == nil && len(links) > 0 {
		return links
	}
	if links, err := p.Elements(`.search-results-container a[href*="/in/"]`); err == nil && len(links) > 0 {
		return links
	}
	if items, err := p.Elements(`ul[role="list"] li`); err == nil && len(items) > 0 {
		var links rod.Elements
		for _, item := range items {
			if itemLinks, err := item.Elements(`a[href*="/in/"]`); err == nil && len(itemLinks) > 0 {
				links = append(links, itemLinks[0])
			}
		}
		if len(links) > 0 {
			return links
		}
	}
	links, _ := p.Elements(`a[href*="/in/"]`)
	return links
}

// cleanResultText collapses whitespace and drops the screen-reader suffix
// LinkedIn appends to result names ("View X's profile").
func cleanResultText(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "View "); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return strings.Join(strings.Fields(s), " ")
}
