package core

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fastmakeup/final-ver/model"
)

var (
	dotDateRe    = regexp.MustCompile(`(\d{4})\.(\d{1,2})\.(\d{1,2})`)
	dashDateRe   = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)
	koreanDateRe = regexp.MustCompile(`(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일`)

	// Comma-grouped integers only. Bare digit runs are far too noisy in
	// scanned administrative documents.
	amountRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})+`)

	partyRes = []*regexp.Regexp{
		regexp.MustCompile(`\(주\)\s*[가-힣A-Za-z0-9]+`),
		regexp.MustCompile(`[가-힣A-Za-z0-9]+\(주\)`),
		regexp.MustCompile(`주식회사\s*[가-힣A-Za-z0-9]+`),
		regexp.MustCompile(`[가-힣A-Za-z0-9]+\s*주식회사`),
	}

	hangulWordRe = regexp.MustCompile(`[가-힣]{2,6}`)
)

// Counting units that disqualify a number as money: people, items,
// occurrences, lot numbers, cases, days, months, years.
var excludeUnits = []rune("명개회호건일월년")

var stopwords = map[string]struct{}{
	"있다": {}, "없다": {}, "하다": {}, "되다": {}, "이다": {}, "경우": {},
	"위해": {}, "대한": {}, "관련": {}, "따라": {}, "대하여": {}, "위하여": {},
	"있는": {}, "없는": {}, "하는": {}, "되는": {}, "같은": {}, "위한": {},
	"통해": {}, "에서": {}, "으로": {}, "부터": {},
}

const (
	maxParties  = 5
	maxKeywords = 10
)

// Extract pulls all typed facts from raw document text. The document
// type is left empty; Classify fills it. Malformed input never yields
// an error, only empty fact lists.
func Extract(filename, rawText string) model.ParsedDocument {
	return model.ParsedDocument{
		Filename: filename,
		Dates:    ExtractDates(rawText),
		Amounts:  ExtractAmounts(rawText),
		Parties:  ExtractParties(rawText),
		Keywords: ExtractKeywords(rawText),
		RawText:  rawText,
	}
}

// Process runs extraction and classification for one decoded file.
func Process(filename, rawText string) model.ParsedDocument {
	doc := Extract(filename, rawText)
	doc.DocType = Classify(filename, rawText, model.TypeOther)
	return doc
}

// ExtractDates finds dates in dot (2024.3.1), dash (2024-3-1) and
// Korean long (2024년 3월 1일) form and normalizes all of them to
// zero-padded YYYY.MM.DD. The result is deduplicated and sorted.
func ExtractDates(text string) []string {
	seen := make(map[string]struct{})
	dates := []string{}

	add := func(year, month, day string) {
		m, _ := strconv.Atoi(month)
		d, _ := strconv.Atoi(day)
		normalized := fmt.Sprintf("%s.%02d.%02d", year, m, d)
		if _, ok := seen[normalized]; ok {
			return
		}
		seen[normalized] = struct{}{}
		dates = append(dates, normalized)
	}

	for _, re := range []*regexp.Regexp{dotDateRe, dashDateRe, koreanDateRe} {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			add(match[1], match[2], match[3])
		}
	}

	sort.Strings(dates)
	return dates
}

// ExtractAmounts finds comma-grouped integers worth at least 1,000 and
// filters out quantities: a candidate immediately followed by a
// counting unit (2,500명, 80,000원×2명) is not money. Amounts are
// deduplicated by numeric value; the first surface form wins. The
// display text carries 원 only when it literally follows the number.
func ExtractAmounts(text string) []model.ExtractedAmount {
	amounts := []model.ExtractedAmount{}
	seen := make(map[int]struct{})

	for _, span := range amountRe.FindAllStringIndex(text, -1) {
		matched := text[span[0]:span[1]]
		value, err := strconv.Atoi(strings.ReplaceAll(matched, ",", ""))
		if err != nil || value < 1000 {
			continue
		}

		suffix := leadingRunes(text[span[1]:], 4)
		if containsAnyRune(suffix, excludeUnits) {
			continue
		}

		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}

		display := matched
		if strings.ContainsRune(leadingRunes(text[span[1]:], 3), '원') {
			display += "원"
		}
		amounts = append(amounts, model.ExtractedAmount{Text: display, Value: value})
	}

	return amounts
}

// ExtractParties finds company names marked by a corporate suffix on
// either side: (주)OO, OO(주), 주식회사 OO, OO 주식회사. Deduplicated
// in first-seen order, capped to keep OCR noise out.
func ExtractParties(text string) []string {
	seen := make(map[string]struct{})
	parties := []string{}

	for _, re := range partyRes {
		for _, match := range re.FindAllString(text, -1) {
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			parties = append(parties, match)
			if len(parties) >= maxParties {
				return parties
			}
		}
	}

	return parties
}

// ExtractKeywords ranks hangul words of 2-6 characters by frequency,
// stopwords removed. Ties keep first-occurrence order.
func ExtractKeywords(text string) []string {
	freq := make(map[string]int)
	order := []string{}

	for _, word := range hangulWordRe.FindAllString(text, -1) {
		if _, stop := stopwords[word]; stop {
			continue
		}
		if _, ok := freq[word]; !ok {
			order = append(order, word)
		}
		freq[word]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}

// DistinctAmountValues returns the distinct numeric values among the
// extracted amounts, sorted descending.
func DistinctAmountValues(amounts []model.ExtractedAmount) []int {
	seen := make(map[int]struct{})
	values := []int{}
	for _, a := range amounts {
		if _, ok := seen[a.Value]; ok {
			continue
		}
		seen[a.Value] = struct{}{}
		values = append(values, a.Value)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))
	return values
}

// HasAmountConflict reports whether a document carries more than one
// distinct amount value. A repeated identical value is not a conflict.
func HasAmountConflict(amounts []model.ExtractedAmount) bool {
	return len(DistinctAmountValues(amounts)) > 1
}

// ConflictMessage renders the conflicting values, largest first.
func ConflictMessage(amounts []model.ExtractedAmount) string {
	values := DistinctAmountValues(amounts)
	if len(values) <= 1 {
		return ""
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = humanize.Comma(int64(v)) + "원"
	}
	return fmt.Sprintf("[경고] 금액 불일치 (%s)", strings.Join(parts, " vs "))
}

func leadingRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

func containsAnyRune(s string, runes []rune) bool {
	for _, r := range runes {
		if strings.ContainsRune(s, r) {
			return true
		}
	}
	return false
}
