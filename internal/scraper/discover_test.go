package scraper

import (
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestDiscoverStudyURLs(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<a href="/hydrogen-and-sleep/">Sleep</a>
		<a href="/study/h2-exercise/">Exercise</a>
		<a href="https://example.org/research/elsewhere/">Off site</a>
		<a href="/wp-content/uploads/study.pdf">PDF</a>
		<a href="/study/h2-exercise/#top">Exercise again</a>
		<a href="/search/?pg=2">Next</a>
		<a href="/search/">Search</a>
		<a href="mailto:info@hydrogenstudies.com">Mail</a>
		<a href="/about/">About</a>
		<a href="../article/h2-liver/">Liver</a>
		<a href="/case-study-renal/">Renal</a>
	</body></html>`)

	got := DiscoverStudyURLs(doc, "https://hydrogenstudies.com/search/")
	want := []string{
		"https://hydrogenstudies.com/study/h2-exercise/",
		"https://hydrogenstudies.com/article/h2-liver/",
		"https://hydrogenstudies.com/hydrogen-and-sleep/",
		"https://hydrogenstudies.com/case-study-renal/",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiscoverStudyURLs() =\n%v\nwant\n%v", got, want)
	}
}

func TestDiscoverStudyURLsNone(t *testing.T) {
	doc := parseDoc(t, `<html><body><a href="/about/">About</a></body></html>`)
	if got := DiscoverStudyURLs(doc, "https://hydrogenstudies.com/"); len(got) != 0 {
		t.Errorf("DiscoverStudyURLs() = %v, want none", got)
	}
}

func TestDiscoverStudyURLsBadBase(t *testing.T) {
	doc := parseDoc(t, `<a href="/study/x/">x</a>`)
	if got := DiscoverStudyURLs(doc, "://bad"); got != nil {
		t.Errorf("DiscoverStudyURLs() = %v, want nil", got)
	}
}
