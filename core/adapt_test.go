package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fastmakeup/final-ver/model"
)

func TestAdaptAssignsSequentialIDs(t *testing.T) {
	docs := []model.ParsedDocument{
		{Filename: "a.hwp", DocType: model.TypeProposal},
		{Filename: "b.hwp", DocType: model.TypeContract},
		{Filename: "c.hwp", DocType: model.TypeOther},
	}

	records := Adapt(docs)

	expected := []string{"doc_00", "doc_01", "doc_02"}
	for i, id := range expected {
		if records[i].ID != id {
			t.Errorf("Expected id %s at index %d, got %s", id, i, records[i].ID)
		}
	}
}

func TestAdaptRepresentativeValues(t *testing.T) {
	doc := model.ParsedDocument{
		Filename: "기안.hwp",
		DocType:  model.TypeProposal,
		Dates:    []string{"2024.03.01", "2024.04.10"},
		Amounts: []model.ExtractedAmount{
			{Text: "5,000,000원", Value: 5000000},
			{Text: "50,000,000원", Value: 50000000},
		},
		RawText: "벚꽃축제 기본계획 수립\n본문 내용",
	}

	record := Adapt([]model.ParsedDocument{doc})[0]

	if record.Date != "2024.03.01" {
		t.Errorf("Expected earliest date, got %s", record.Date)
	}
	if record.Amount != 50000000 {
		t.Errorf("Expected largest amount, got %d", record.Amount)
	}
	if record.Summary != "벚꽃축제 기본계획 수립" {
		t.Errorf("Expected first line as summary, got %q", record.Summary)
	}
	if record.Phase != model.PhasePlan {
		t.Errorf("Expected plan phase, got %s", record.Phase)
	}
}

func TestAdaptSentinels(t *testing.T) {
	record := Adapt([]model.ParsedDocument{{Filename: "빈문서.txt"}})[0]

	if record.Date != "날짜 없음" {
		t.Errorf("Expected date sentinel, got %q", record.Date)
	}
	if record.Amount != 0 {
		t.Errorf("Expected zero amount, got %d", record.Amount)
	}
	if record.Summary != "제목 없음" {
		t.Errorf("Expected title sentinel, got %q", record.Summary)
	}
	if record.Status != model.RecordNormal {
		t.Errorf("Expected normal status, got %s", record.Status)
	}
}

func TestAdaptTitleTruncation(t *testing.T) {
	long := strings.Repeat("가", 80)
	record := Adapt([]model.ParsedDocument{{Filename: "x.txt", RawText: long}})[0]

	if got := len([]rune(record.Summary)); got != 50 {
		t.Errorf("Expected title truncated to 50 runes, got %d", got)
	}
}

func TestAdaptConflictSetsWarning(t *testing.T) {
	doc := model.ParsedDocument{
		Filename: "기안.hwp",
		Amounts: []model.ExtractedAmount{
			{Text: "50,000,000원", Value: 50000000},
			{Text: "30,000,000원", Value: 30000000},
		},
	}

	record := Adapt([]model.ParsedDocument{doc})[0]

	if record.Status != model.RecordWarning {
		t.Errorf("Expected warning status, got %s", record.Status)
	}
	if !strings.Contains(record.Message, "금액 불일치") {
		t.Errorf("Expected conflict message, got %q", record.Message)
	}

	single := Adapt([]model.ParsedDocument{{
		Filename: "계약.hwp",
		Amounts: []model.ExtractedAmount{
			{Text: "50,000,000원", Value: 50000000},
			{Text: "50,000,000", Value: 50000000},
		},
	}})[0]

	if single.Status != model.RecordNormal {
		t.Errorf("Expected normal status for repeated identical value, got %s", single.Status)
	}
}

// Adapting the same parsed documents twice must produce byte-identical
// output.
func TestAdaptIdempotent(t *testing.T) {
	raw := "벚꽃축제 기안\n일시: 2024.03.01\n예산: 50,000,000원 중 30,000,000원 선집행"
	docs := []model.ParsedDocument{Process("01_기안.hwp", raw)}

	first, err := json.Marshal(Adapt(docs))
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	second, err := json.Marshal(Adapt(docs))
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("Expected byte-identical records on repeated adapt")
	}
}
