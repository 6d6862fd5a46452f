// Package content reduces a fetched html page to its main text and page-level metadata.
package content

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
)

// Page is the readable part of a venue page
type Page struct {
	Title       string
	Description string
	Text        string
	Image       string
	Date        time.Time // zero when the page carries no date
}

// Extract pulls main text and metadata out of html with trafilatura,
// filling missing title, text, description and image from readability.
func Extract(html, pageURL string) (Page, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return Page{}, fmt.Errorf("parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return Page{}, fmt.Errorf("invalid URL: %s", pageURL)
	}

	res := Page{}
	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		ExcludeTables:   false,
		IncludeImages:   false,
		IncludeLinks:    false,
		Deduplicate:     true,
		OriginalURL:     parsedURL,
	}
	if result, terr := trafilatura.Extract(strings.NewReader(html), opts); terr == nil && result != nil {
		res.Text = strings.TrimSpace(result.ContentText)
		res.Title = strings.TrimSpace(result.Metadata.Title)
		res.Description = strings.TrimSpace(result.Metadata.Description)
		res.Image = strings.TrimSpace(result.Metadata.Image)
		res.Date = result.Metadata.Date
	}

	if res.Title == "" || res.Text == "" || res.Description == "" || res.Image == "" {
		if article, rerr := readability.FromReader(strings.NewReader(html), parsedURL); rerr == nil {
			res.Title = orElse(res.Title, article.Title)
			res.Text = orElse(res.Text, article.TextContent)
			res.Description = orElse(res.Description, article.Excerpt)
			res.Image = orElse(res.Image, article.Image)
		}
	}

	if res.Title == "" && res.Text == "" {
		return Page{}, fmt.Errorf("no content extracted from %s", pageURL)
	}
	return res, nil
}

func orElse(v, alt string) string {
	if v != "" {
		return v
	}
	return strings.TrimSpace(alt)
}
