package outreach

import (
	"strings"

	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/models"
)

// RenderTemplate fills {{Name}}, {{Company}} and {{Title}} placeholders from
// the prospect. Only the first name is used, and long headlines are trimmed to
// the job-title part so rendered notes stay within platform limits.
func RenderTemplate(t string, p models.Prospect) string {
	firstName := p.FullName
	if idx := strings.Index(firstName, " "); idx > 0 {
		firstName = firstName[:idx]
	}

	title := p.Headline
	if idx := strings.Index(title, "@"); idx > 0 {
		title = strings.TrimSpace(title[:idx])
	} else if idx := strings.Index(title, "|"); idx > 0 {
		title = strings.TrimSpace(title[:idx])
	} else if idx := strings.Index(title, " at "); idx > 0 {
		title = strings.TrimSpace(title[:idx])
	}
	if len(title) > 50 {
		title = title[:50]
		if idx := strings.LastIndex(title, " "); idx > 20 {
			title = title[:idx]
		}
	}

	r := strings.NewReplacer(
		"{{Name}}", firstName,
		"{{Company}}", p.Company,
		"{{Title}}", title,
	)
	return r.Replace(t)
}
