package insights

import (
	"regexp"
	"sort"
	"strings"
)

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// ExtractHashtags returns the unique lowercase hashtags of a caption without the leading '#',
// sorted alphabetically.
func ExtractHashtags(caption string) []string {
	if caption == "" {
		return []string{}
	}

	seen := make(map[string]struct{})
	for _, m := range hashtagPattern.FindAllStringSubmatch(strings.ToLower(caption), -1) {
		seen[m[1]] = struct{}{}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return tags
}
