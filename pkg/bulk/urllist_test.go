package bulk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/umputun/venuescope/pkg/domain"
)

func TestParseURLList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		valid   []string
		invalid []domain.InvalidURL
	}{
		{
			name:    "mixed list",
			input:   "https://a.com\n# comment\n,https://b.com,extra\nnot a url",
			valid:   []string{"https://a.com", "https://b.com"},
			invalid: []domain.InvalidURL{{URL: "not a url", Reason: "Invalid URL format"}},
		},
		{
			name:    "csv with quotes and blanks",
			input:   "\n  \"https://c.com\",Venue C\r\n\t\nhttps://d.com/events  \n",
			valid:   []string{"https://c.com", "https://d.com/events"},
			invalid: []domain.InvalidURL{},
		},
		{
			name:    "only separators",
			input:   ",,\n#https://skip.com",
			valid:   []string{},
			invalid: []domain.InvalidURL{},
		},
		{
			name:    "empty",
			input:   "",
			valid:   []string{},
			invalid: []domain.InvalidURL{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseURLList(tt.input)
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.invalid, res.Invalid)
		})
	}
}
