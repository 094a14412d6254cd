package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// EntryPaths are tried in order until one responds.
var EntryPaths = []string{"/search/", "/search", "/start/", "/topics", "/", "/studies"}

// linkPatterns are matched in order against lowercased hrefs; links found by
// an earlier pattern come first in the result.
var linkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/study/`),
	regexp.MustCompile(`/search/`),
	regexp.MustCompile(`/research/`),
	regexp.MustCompile(`/publication/`),
	regexp.MustCompile(`/article/`),
	regexp.MustCompile(`/paper/`),
	regexp.MustCompile(`/hydrogen`),
	regexp.MustCompile(`/water`),
	regexp.MustCompile(`/[^"'\s]*study`),
}

// DiscoverStudyURLs returns the absolute, de-duplicated study links on a page.
// Relative links are resolved against base. Asset links under wp-content and
// the listing pages themselves are skipped.
func DiscoverStudyURLs(doc *goquery.Document, base string) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}

	anchors := doc.Find("a[href]")
	seen := make(map[string]bool)
	var urls []string

	for _, pattern := range linkPatterns {
		anchors.Each(func(_ int, a *goquery.Selection) {
			href := strings.TrimSpace(a.AttrOr("href", ""))
			if href == "" || !pattern.MatchString(strings.ToLower(href)) {
				return
			}
			abs, ok := resolveLink(baseURL, href)
			if !ok || seen[abs] {
				return
			}
			seen[abs] = true
			urls = append(urls, abs)
		})
	}

	return urls
}

func resolveLink(base *url.URL, href string) (string, bool) {
	if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
		return "", false
	}
	if strings.Contains(href, "wp-content") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	if abs.Host != base.Host {
		return "", false
	}
	if isListingPage(abs) {
		return "", false
	}
	abs.Fragment = ""
	return abs.String(), true
}

// isListingPage reports whether u is an entry or pagination page rather than
// a study.
func isListingPage(u *url.URL) bool {
	if u.Query().Has("pg") {
		return true
	}
	for _, p := range EntryPaths {
		if u.Path == p {
			return true
		}
	}
	return u.Path == ""
}
