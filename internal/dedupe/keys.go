// Package dedupe detects duplicate studies between an incoming batch and an
// existing corpus.
//
// The existing corpus is indexed once by exact match keys (Build). Each incoming
// record is then classified by trying exact keys in priority order and falling
// back to fuzzy title and abstract similarity (Classify, ClassifyAll).
package dedupe

import (
	"strconv"
	"strings"

	"github.com/echowater/hydrodb/internal/study"
	"github.com/echowater/hydrodb/internal/textnorm"
)

// KeyKind is the namespace of a match key.
type KeyKind string

const (
	KindDOI               KeyKind = "doi"
	KindTitle             KeyKind = "title"
	KindAuthorYearJournal KeyKind = "author_year_journal"
	KindTitleYear         KeyKind = "title_year"
)

// Key is a namespaced exact-match key such as "doi:10.1000/abc".
type Key string

// Kind returns the namespace of the key, or "" for a malformed key.
func (k Key) Kind() KeyKind {
	kind, _, ok := strings.Cut(string(k), ":")
	if !ok {
		return ""
	}
	return KeyKind(kind)
}

func newKey(kind KeyKind, value string) Key {
	return Key(string(kind) + ":" + value)
}

// DOIKey returns the DOI key for a raw DOI string.
func DOIKey(doi string) Key {
	return newKey(KindDOI, textnorm.DOI(doi))
}

// TitleKey returns the title key for a raw title.
func TitleKey(title string) Key {
	return newKey(KindTitle, textnorm.Title(title))
}

// AuthorYearJournalKey returns the composite first-author/year/journal key.
// The journal may be empty.
func AuthorYearJournalKey(firstAuthor string, year int, journal string) Key {
	value := strings.ToLower(strings.TrimSpace(firstAuthor)) + "_" +
		strconv.Itoa(year) + "_" +
		strings.ToLower(strings.TrimSpace(journal))
	return newKey(KindAuthorYearJournal, value)
}

// TitleYearKey returns the normalized-title/year key.
func TitleYearKey(title string, year int) Key {
	return newKey(KindTitleYear, textnorm.Title(title)+"_"+strconv.Itoa(year))
}

// KeysFor returns the exact-match keys a record can be found under, in
// DOI, title, author/year/journal, title/year order. Records missing the
// relevant fields produce fewer keys, possibly none.
func KeysFor(rec *study.Record) []Key {
	var keys []Key

	if rec.HasDOI() {
		keys = append(keys, DOIKey(rec.DOI))
	}
	if rec.HasTitle() {
		keys = append(keys, TitleKey(rec.Title))
	}
	if rec.HasFirstAuthor() && rec.HasYear() && rec.HasJournal() {
		keys = append(keys, AuthorYearJournalKey(rec.FirstAuthor, *rec.Year, rec.Journal))
	}
	if rec.HasTitle() && rec.HasYear() {
		keys = append(keys, TitleYearKey(rec.Title, *rec.Year))
	}

	return keys
}
