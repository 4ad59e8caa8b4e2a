package service

import (
	"sort"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/pdiview/internal/domain"
	"github.com/sahilm/fuzzy"
)

// SortOrder orders the study list
type SortOrder string

const (
	SortDateDesc  SortOrder = "date-desc"
	SortDateAsc   SortOrder = "date-asc"
	SortType      SortOrder = "type"
	SortAccession SortOrder = "accession"
)

// SortOrders lists every order in cycle order
var SortOrders = []SortOrder{SortDateDesc, SortDateAsc, SortType, SortAccession}

// Label returns a short display name
func (o SortOrder) Label() string {
	switch o {
	case SortDateAsc:
		return "Oldest first"
	case SortType:
		return "By type"
	case SortAccession:
		return "By accession"
	default:
		return "Newest first"
	}
}

// Next returns the following order, wrapping around
func (o SortOrder) Next() SortOrder {
	for i, s := range SortOrders {
		if s == o {
			return SortOrders[(i+1)%len(SortOrders)]
		}
	}
	return SortDateDesc
}

// StudyQuery describes the study list's filter state. An empty Type means all types.
type StudyQuery struct {
	Text  string
	Type  domain.StudyType
	Order SortOrder
}

// StudyMatch is a study that passed the filter
type StudyMatch struct {
	Study domain.Study

	// MatchedIndexes are rune positions in Study.Description that matched
	MatchedIndexes []int
}

// studySource implements sahilm/fuzzy.Source over descriptions and accessions
type studySource struct {
	studies []domain.Study
	keys    []string // Pre-computed lowercase "description accession"
}

func (s *studySource) String(i int) string { return s.keys[i] }
func (s *studySource) Len() int            { return len(s.studies) }

// FilterStudies applies text and type filters, then sorts by q.Order.
// Text matches the description or accession fuzzily.
func FilterStudies(studies []domain.Study, q StudyQuery) []StudyMatch {
	candidates := make([]domain.Study, 0, len(studies))
	for _, s := range studies {
		if q.Type == "" || s.Type == q.Type {
			candidates = append(candidates, s)
		}
	}

	var matches []StudyMatch
	text := strings.ToLower(strings.TrimSpace(q.Text))
	if text == "" {
		matches = make([]StudyMatch, len(candidates))
		for i, s := range candidates {
			matches[i] = StudyMatch{Study: s}
		}
	} else {
		src := &studySource{studies: candidates, keys: make([]string, len(candidates))}
		for i, s := range candidates {
			src.keys[i] = strings.ToLower(s.Description) + " " + s.Accession
		}
		for _, m := range fuzzy.FindFrom(text, src) {
			st := src.studies[m.Index]
			desc := strings.ToLower(st.Description)
			matches = append(matches, StudyMatch{
				Study:          st,
				MatchedIndexes: descriptionIndexes(m.Str, m.MatchedIndexes, len(desc)),
			})
		}
	}

	sortMatches(matches, q.Order)
	return matches
}

// descriptionIndexes converts the byte offsets sahilm/fuzzy reports into rune
// positions, keeping those inside the description. descLen is the byte length
// of the lower-cased description at the start of key.
func descriptionIndexes(key string, idx []int, descLen int) []int {
	runeAt := make(map[int]int, len(key))
	n := 0
	for b := range key {
		runeAt[b] = n
		n++
	}
	out := make([]int, 0, len(idx))
	for _, i := range idx {
		if r, ok := runeAt[i]; ok && i < descLen {
			out = append(out, r)
		}
	}
	return out
}

func sortMatches(matches []StudyMatch, order SortOrder) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].Study, matches[j].Study
		switch order {
		case SortDateAsc:
			return a.Time().Before(b.Time())
		case SortType:
			return a.Type < b.Type
		case SortAccession:
			return a.Accession < b.Accession
		default:
			return a.Time().After(b.Time())
		}
	})
}

// AvailableTypes returns the study types present, in canonical order
func AvailableTypes(studies []domain.Study) []domain.StudyType {
	present := make(map[domain.StudyType]bool)
	for _, s := range studies {
		present[s.Type] = true
	}
	var out []domain.StudyType
	for _, t := range domain.StudyTypes {
		if present[t] {
			out = append(out, t)
		}
	}
	return out
}

// NextType cycles "" (all) through the available types and back
func NextType(current domain.StudyType, available []domain.StudyType) domain.StudyType {
	if current == "" {
		if len(available) == 0 {
			return ""
		}
		return available[0]
	}
	for i, t := range available {
		if t == current && i+1 < len(available) {
			return available[i+1]
		}
	}
	return ""
}

// LabQuery describes the lab table's filter state
type LabQuery struct {
	Text         string
	AbnormalOnly bool
}

// FilterLabs matches test names fuzzily and keeps the input order
func FilterLabs(labs []domain.LabResult, q LabQuery) []domain.LabResult {
	text := strings.TrimSpace(q.Text)

	out := make([]domain.LabResult, 0, len(labs))
	for _, l := range labs {
		if q.AbnormalOnly && l.Status == domain.LabNormal {
			continue
		}
		if text != "" && !lfuzzy.MatchFold(text, l.TestName) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// RankLabTests returns distinct test names ranked by closeness to query
func RankLabTests(labs []domain.LabResult, query string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, l := range labs {
		if !seen[l.TestName] {
			seen[l.TestName] = true
			names = append(names, l.TestName)
		}
	}
	ranks := lfuzzy.RankFindFold(query, names)
	sort.Stable(ranks)

	out := make([]string, len(ranks))
	for i, r := range ranks {
		out[i] = r.Target
	}
	return out
}

// LabDateGroup is the set of results drawn on one date
type LabDateGroup struct {
	Date    string
	Results []domain.LabResult
}

// GroupLabsByDate groups results by date, newest date first
func GroupLabsByDate(labs []domain.LabResult) []LabDateGroup {
	var groups []LabDateGroup
	pos := make(map[string]int)
	for _, l := range labs {
		i, ok := pos[l.Date]
		if !ok {
			i = len(groups)
			pos[l.Date] = i
			groups = append(groups, LabDateGroup{Date: l.Date})
		}
		groups[i].Results = append(groups[i].Results, l)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return domain.ParseDisplayDate(groups[i].Date).After(domain.ParseDisplayDate(groups[j].Date))
	})
	return groups
}
