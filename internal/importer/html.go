package importer

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selector groups for study detail pages. Each group is queried as one
// selector list, so the first match in document order wins.
const (
	titleSelector       = "h1, .study-title, .title"
	authorsSelector     = ".authors, .author-list, .study-authors"
	journalSelector     = ".journal, .publication, .study-journal"
	abstractSelector    = ".abstract, .summary, .study-abstract"
	topicSelector       = ".topic, .health-topic, .study-topic"
	organismSelector    = ".organism, .model, .study-organism"
	bodySystemSelector  = ".body-system, .system, .study-system"
	countrySelector     = ".country, .location, .study-country"
	outcomeSelector     = ".outcome, .result, .study-outcome"
	designationSelector = ".designation, .type, .study-type"
)

var (
	yearSelectors = []string{
		".year, .study-year, .publication-year",
		".date, .publication-date",
		"time[datetime]",
		".meta .year",
	}
	doiSelectors = []string{
		".doi, .study-doi, .publication-doi",
		`a[href*="doi.org"]`,
		".meta .doi",
	}

	pageDOIPattern = regexp.MustCompile(`(?i)10\.\d{4,}/[-._;()/:A-Z0-9]+`)
)

// FromHTML parses a study detail page into a row with canonical headers.
// Fields the page does not carry are left out of the row.
func FromHTML(r io.Reader, pageURL string) (Row, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return RowFromDocument(doc, pageURL), nil
}

// RowFromDocument extracts a row from an already parsed study page.
func RowFromDocument(doc *goquery.Document, pageURL string) Row {
	row := Row{}
	set := func(key, value string) {
		if value = cleanText(value); value != "" {
			row[key] = value
		}
	}

	title := firstText(doc, titleSelector)
	if title == "" {
		title = firstText(doc, "head > title")
	}
	set("Title", title)
	set("Authors", firstText(doc, authorsSelector))
	set("Year", pageYear(doc, pageURL))
	set("Journal", firstText(doc, journalSelector))
	set("Abstract", firstText(doc, abstractSelector))
	set("DOI", pageDOI(doc))
	set("URL", pageURL)
	set("Topic", firstText(doc, topicSelector))
	set("Organism", firstText(doc, organismSelector))
	set("Body System", firstText(doc, bodySystemSelector))
	set("Country", firstText(doc, countrySelector))
	set("Outcome", firstText(doc, outcomeSelector))
	set("Designation", firstText(doc, designationSelector))

	return row
}

func firstText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

// pageYear looks for a year in the dated elements, then in the page URL.
func pageYear(doc *goquery.Document, pageURL string) string {
	for _, sel := range yearSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if y := yearTokenPattern.FindString(node.Text()); y != "" {
			return y
		}
		if dt, ok := node.Attr("datetime"); ok {
			if y := yearTokenPattern.FindString(dt); y != "" {
				return y
			}
		}
	}
	return yearTokenPattern.FindString(pageURL)
}

// pageDOI looks for a DOI in the DOI elements and links, then anywhere in the
// page body.
func pageDOI(doc *goquery.Document) string {
	for _, sel := range doiSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if doi := matchDOI(node.Text()); doi != "" {
			return doi
		}
		if href, ok := node.Attr("href"); ok {
			if doi := matchDOI(href); doi != "" {
				return doi
			}
		}
	}
	return matchDOI(doc.Find("body").Text())
}

func matchDOI(s string) string {
	return strings.TrimRight(pageDOIPattern.FindString(s), ".,;:)")
}

func cleanText(s string) string {
	return strings.TrimSpace(spaceRunPattern.ReplaceAllString(s, " "))
}
