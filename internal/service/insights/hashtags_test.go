package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name    string
		caption string
		want    []string
	}{
		{"case folded and deduplicated", "Great #Sunset vibes #sunset #NewPost", []string{"newpost", "sunset"}},
		{"empty caption", "", []string{}},
		{"no hashtags", "just a caption", []string{}},
		{"underscores and digits", "#summer_2026 #Top10!", []string{"summer_2026", "top10"}},
		{"bare hash is ignored", "# alone and ## twice", []string{}},
		{"adjacent tags", "#one#two", []string{"one", "two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractHashtags(tt.caption))
		})
	}
}
