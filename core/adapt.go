package core

import (
	"fmt"
	"strings"

	"github.com/fastmakeup/final-ver/model"
)

const (
	noDateSentinel  = "날짜 없음"
	noTitleSentinel = "제목 없음"
	maxTitleRunes   = 50
)

// Adapt converts parsed documents into the externally-facing record
// shape, in ingestion order. The index becomes the local document id.
// Adapting the same input twice yields byte-identical records.
func Adapt(docs []model.ParsedDocument) []*model.DocumentRecord {
	records := make([]*model.DocumentRecord, 0, len(docs))
	for i, doc := range docs {
		records = append(records, adaptOne(doc, i))
	}
	return records
}

func adaptOne(doc model.ParsedDocument, index int) *model.DocumentRecord {
	status, message := model.RecordNormal, ""
	if HasAmountConflict(doc.Amounts) {
		status = model.RecordWarning
		message = ConflictMessage(doc.Amounts)
	}

	return &model.DocumentRecord{
		ID:         fmt.Sprintf("doc_%02d", index),
		Name:       doc.Filename,
		Date:       primaryDate(doc.Dates),
		AllDates:   doc.Dates,
		DocType:    doc.DocType,
		Phase:      Phase(doc.DocType),
		Summary:    extractTitle(doc.RawText),
		Amount:     primaryAmount(doc.Amounts),
		AllAmounts: doc.Amounts,
		Parties:    doc.Parties,
		Keywords:   doc.Keywords,
		Status:     status,
		Message:    message,
		RawText:    doc.RawText,
	}
}

// primaryDate picks the earliest date as the representative one.
func primaryDate(dates []string) string {
	if len(dates) == 0 {
		return noDateSentinel
	}
	min := dates[0]
	for _, d := range dates[1:] {
		if d < min {
			min = d
		}
	}
	return min
}

// primaryAmount picks the largest value as the representative one.
func primaryAmount(amounts []model.ExtractedAmount) int {
	max := 0
	for _, a := range amounts {
		if a.Value > max {
			max = a.Value
		}
	}
	return max
}

// extractTitle takes the first non-blank line, truncated to 50 runes.
func extractTitle(rawText string) string {
	for _, line := range strings.Split(rawText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		runes := []rune(line)
		if len(runes) > maxTitleRunes {
			return string(runes[:maxTitleRunes])
		}
		return line
	}
	return noTitleSentinel
}
