package page

import (
	"os"
	"strings"
)

// Default is the page served when no pages file is configured.
const Default = "waitlist"

// Load reads landing page slugs from filename, one per line.
func Load(filename string) ([]string, error) {
	if filename == "" {
		return []string{Default}, nil
	}

	data, err := os.ReadFile(filename)

	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(data), "\n")

	var pages []string
	seen := make(map[string]bool)

	for _, line := range lines {
		slug := strings.Trim(strings.TrimSpace(line), "\"")

		if slug != "" && !seen[slug] {
			seen[slug] = true
			pages = append(pages, slug)
		}
	}

	if len(pages) == 0 {
		return []string{Default}, nil
	}

	return pages, nil
}

// Key is the store key holding the count for slug. The default page keeps
// the bare prefix.
func Key(prefix, slug string) string {
	if slug == Default {
		return prefix
	}
	return prefix + ":" + slug
}
