package dedupe

import (
	"github.com/echowater/hydrodb/internal/similarity"
	"github.com/echowater/hydrodb/internal/study"
	"github.com/echowater/hydrodb/internal/textnorm"
)

// MatchType names the rule that produced a match.
type MatchType string

const (
	MatchNone               MatchType = ""
	MatchDOI                MatchType = "DOI"
	MatchAuthorYearJournal  MatchType = "Author_Year_Journal"
	MatchTitleSimilarity    MatchType = "Title_Similarity"
	MatchAbstractSimilarity MatchType = "Abstract_Similarity"
)

// Classification thresholds.
const (
	TitleDuplicateThreshold    = 0.85
	TitlePotentialThreshold    = 0.70
	AbstractPotentialThreshold = 0.80

	AuthorYearJournalConfidence = 0.95
	DOIConfidence               = 1.0
)

// Verdict is the outcome of classifying one incoming record.
// At most one of IsDuplicate and IsPotentialDuplicate is set.
type Verdict struct {
	IsDuplicate          bool          `json:"is_duplicate"`
	IsPotentialDuplicate bool          `json:"is_potential_duplicate"`
	Matched              *study.Record `json:"matched,omitempty"`
	MatchType            MatchType     `json:"match_type,omitempty"`
	Confidence           float64       `json:"confidence"`
}

// Unique reports whether the record matched nothing.
func (v Verdict) Unique() bool {
	return !v.IsDuplicate && !v.IsPotentialDuplicate
}

// Classify decides whether rec duplicates a record in idx. Rules are tried in
// priority order and the first confident hit wins:
//
//  1. exact DOI
//  2. exact first author, year and journal (title required)
//  3. title similarity: duplicate at TitleDuplicateThreshold, potential at
//     TitlePotentialThreshold
//  4. abstract similarity: potential at AbstractPotentialThreshold, only when
//     step 3 found nothing
//
// Classify never mutates rec or the index.
func Classify(rec *study.Record, idx *Index) (Verdict, error) {
	if rec == nil {
		return Verdict{}, ErrNilRecord
	}
	if idx == nil {
		return Verdict{}, ErrNilIndex
	}

	if rec.HasDOI() {
		if hit := idx.first(DOIKey(rec.DOI)); hit != nil {
			return Verdict{
				IsDuplicate: true,
				Matched:     hit,
				MatchType:   MatchDOI,
				Confidence:  DOIConfidence,
			}, nil
		}
	}

	// The journal is part of the key even when blank, so a record without a
	// journal only matches corpus records that were indexed without one.
	// Those never get an author/year/journal key, so in practice this rule
	// needs a journal on both sides.
	if rec.HasTitle() && rec.HasYear() && rec.HasFirstAuthor() {
		key := AuthorYearJournalKey(rec.FirstAuthor, *rec.Year, rec.Journal)
		if hit := idx.first(key); hit != nil {
			return Verdict{
				IsDuplicate: true,
				Matched:     hit,
				MatchType:   MatchAuthorYearJournal,
				Confidence:  AuthorYearJournalConfidence,
			}, nil
		}
	}

	var potential Verdict

	if rec.HasTitle() {
		if best, score := idx.bestTitle(textnorm.Title(rec.Title)); best != nil {
			switch {
			case score >= TitleDuplicateThreshold:
				return Verdict{
					IsDuplicate: true,
					Matched:     best,
					MatchType:   MatchTitleSimilarity,
					Confidence:  score,
				}, nil
			case score >= TitlePotentialThreshold:
				potential = Verdict{
					IsPotentialDuplicate: true,
					Matched:              best,
					MatchType:            MatchTitleSimilarity,
					Confidence:           score,
				}
			}
		}
	}

	if rec.HasAbstract() && !potential.IsPotentialDuplicate {
		if best, score := idx.bestAbstract(textnorm.Abstract(rec.Abstract)); best != nil && score >= AbstractPotentialThreshold {
			potential = Verdict{
				IsPotentialDuplicate: true,
				Matched:              best,
				MatchType:            MatchAbstractSimilarity,
				Confidence:           score,
			}
		}
	}

	return potential, nil
}

// bestTitle returns the indexed record whose normalized title scores highest
// against norm. Ties keep the earliest record. A blank norm carries no signal
// and matches nothing.
func (idx *Index) bestTitle(norm string) (*study.Record, float64) {
	return idx.best(norm, func(e entry) (string, bool) {
		return e.title, e.rec.HasTitle()
	})
}

// bestAbstract is bestTitle for abstracts.
func (idx *Index) bestAbstract(norm string) (*study.Record, float64) {
	return idx.best(norm, func(e entry) (string, bool) {
		return e.abstract, e.rec.HasAbstract()
	})
}

func (idx *Index) best(norm string, field func(entry) (string, bool)) (*study.Record, float64) {
	if norm == "" {
		return nil, 0
	}

	var (
		bestRec   *study.Record
		bestScore float64
	)
	for _, e := range idx.entries {
		text, ok := field(e)
		if !ok {
			continue
		}
		if score := similarity.Score(norm, text); score > bestScore {
			bestRec, bestScore = e.rec, score
		}
	}
	return bestRec, bestScore
}
