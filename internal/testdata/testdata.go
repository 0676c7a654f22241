// Package testdata builds plausible fake prospects for development and demos.
package testdata

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/AnandVadgama/Linkedin-Outreach-automation/internal/models"
)

var (
	firstNames = []string{
		"Aisha", "Carlos", "Diana", "Erik", "Fatima", "Gabriel", "Hannah",
		"Ivan", "Julia", "Kenji", "Laura", "Marcus", "Nadia", "Omar",
		"Priya", "Quentin", "Rosa", "Samuel", "Tara", "Victor", "Wei",
	}
	lastNames = []string{
		"Anderson", "Bauer", "Chen", "Diaz", "Eriksson", "Fischer", "Gupta",
		"Hoffman", "Ivanov", "Johnson", "Kim", "Lopez", "Martin", "Nguyen",
		"Okafor", "Patel", "Rossi", "Silva", "Tanaka", "Weber",
	}
	titles = []string{
		"Software Engineer", "Engineering Manager", "Product Manager",
		"Data Scientist", "Sales Director", "Marketing Lead", "CTO",
		"Founder", "Account Executive", "DevOps Engineer", "Head of Growth",
	}
	companies = []string{
		"Brightlane", "Cloudforge", "DataHarbor", "Evergreen Systems",
		"Fieldstone Labs", "Gridpoint", "Helios Analytics", "Ironwood Tech",
		"Juniper Works", "Keystone Digital", "Lumen Partners",
	}
	industries = []string{
		"Technology", "Finance", "Healthcare", "Marketing", "Sales",
		"Consulting", "Education", "Manufacturing", "Retail",
	}
	cities = []string{
		"San Francisco, CA", "New York, NY", "Austin, TX", "Seattle, WA",
		"London, UK", "Berlin, Germany", "Toronto, Canada", "Bangalore, India",
	}
)

// Prospect returns one fake prospect with a unique profile URL.
func Prospect() models.Prospect {
	first := firstNames[rand.Intn(len(firstNames))]
	last := lastNames[rand.Intn(len(lastNames))]
	title := titles[rand.Intn(len(titles))]
	company := companies[rand.Intn(len(companies))]
	slug := fmt.Sprintf("%s-%s-%s",
		strings.ToLower(first), strings.ToLower(last), uuid.NewString()[:8])
	return models.Prospect{
		LinkedInURL: "https://www.linkedin.com/in/" + slug,
		FullName:    first + " " + last,
		Headline:    fmt.Sprintf("%s at %s", title, company),
		Location:    cities[rand.Intn(len(cities))],
		Industry:    industries[rand.Intn(len(industries))],
		Company:     company,
		Status:      models.StatusNew,
		Source:      "test_data",
	}
}

// Prospects returns n fake prospects.
func Prospects(n int) []models.Prospect {
	out := make([]models.Prospect, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Prospect())
	}
	return out
}
