package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		url       string
		wantTitle string
		wantText  string
		wantErr   bool
	}{
		{
			name: "article page",
			html: `<!DOCTYPE html>
				<html>
				<head><title>Jazz Night at The Hall</title>
				<meta name="description" content="Live jazz every friday">
				<meta property="og:image" content="https://hall.example/jazz.jpg">
				</head>
				<body>
					<article>
						<h1>Jazz Night at The Hall</h1>
						<p>Join us for an evening of live jazz with the house quartet and special guests.</p>
						<p>Doors open at seven, music starts at eight. Tickets are available at the door.</p>
					</article>
				</body>
				</html>`,
			url:       "https://hall.example/jazz",
			wantTitle: "Jazz Night at The Hall",
			wantText:  "live jazz",
		},
		{
			name: "minimal content",
			html: `<!DOCTYPE html>
				<html>
				<body>
					<p>Short content</p>
				</body>
				</html>`,
			url:      "https://hall.example/short",
			wantText: "Short content",
		},
		{
			name:    "relative url",
			html:    "<html><body><p>text</p></body></html>",
			url:     "/events",
			wantErr: true,
		},
		{
			name:    "empty page",
			html:    "",
			url:     "https://hall.example/empty",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := Extract(tt.html, tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantTitle != "" {
				assert.Equal(t, tt.wantTitle, page.Title)
			}
			assert.Contains(t, page.Text, tt.wantText)
		})
	}
}
