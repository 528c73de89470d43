package authn

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// generateAcademySlug creates a unique slug from an academy name.
// Format: <sanitized-name>-<random>
// Example: acme-driving-school -> acmedrivingschool-abc12345
func generateAcademySlug(name string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(name), "")
	if slug == "" {
		slug = "academy"
	}
	if len(slug) > 20 {
		slug = slug[:20]
	}

	random := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%s-%s", slug, random)
}
