package service

import (
	"reflect"
	"testing"

	"github.com/fastmakeup/final-ver/model"
)

func baseSnapshot() *model.ProjectSnapshot {
	return &model.ProjectSnapshot{
		ID:        "proj-1",
		Name:      "사업폴더",
		FileCount: 2,
		Files: []*model.DocumentRecord{
			{ID: "doc_00", Name: "01_plan.txt", Summary: "기안 제목"},
			{ID: "doc_01", Name: "02_contract.hwp", Summary: "계약 제목"},
		},
	}
}

func TestMergeRemapsFileIDs(t *testing.T) {
	remote := map[string]any{
		"files": []any{
			map[string]any{
				"name": "계약",
				"children": []any{
					map[string]any{"id": "file-7", "name": "02_contract.hwp"},
				},
			},
		},
		"summary": map[string]any{
			"timeline": []any{
				map[string]any{
					"fileId":         "file-7",
					"relatedFileIds": []any{"file-7"},
				},
			},
		},
	}

	merged := MergeRemoteResult(baseSnapshot(), remote)

	timeline := merged.Summary["timeline"].([]any)
	entry := timeline[0].(map[string]any)
	if entry["fileId"] != "doc_01" {
		t.Errorf("fileId = %v, want doc_01", entry["fileId"])
	}
	related := entry["relatedFileIds"].([]any)
	if !reflect.DeepEqual(related, []any{"doc_01"}) {
		t.Errorf("relatedFileIds = %v, want [doc_01]", related)
	}
}

func TestMergeUnmappedIDsPassThrough(t *testing.T) {
	remote := map[string]any{
		"files": []any{},
		"summary": map[string]any{
			"issues": []any{
				map[string]any{
					"fileId":         "file-99",
					"relatedFileIds": []any{"file-99", "file-100"},
				},
			},
		},
	}

	merged := MergeRemoteResult(baseSnapshot(), remote)

	issues := merged.Summary["issues"].([]any)
	entry := issues[0].(map[string]any)
	if entry["fileId"] != "file-99" {
		t.Errorf("unmapped fileId = %v, want file-99 untouched", entry["fileId"])
	}
	related := entry["relatedFileIds"].([]any)
	if !reflect.DeepEqual(related, []any{"file-99", "file-100"}) {
		t.Errorf("unmapped relatedFileIds = %v", related)
	}
}

func TestMergeEnrichesMatchedRecords(t *testing.T) {
	remote := map[string]any{
		"name": "한빛초등학교 증축공사",
		"files": []any{
			map[string]any{
				"id":       "file-1",
				"name":     "01_plan.txt",
				"summary":  "예산 기안 문서",
				"keywords": []any{"예산", "기안"},
				"parties":  []any{"한빛건설(주)"},
			},
		},
		"summary": map[string]any{},
	}

	original := baseSnapshot()
	merged := MergeRemoteResult(original, remote)

	if merged.Name != "한빛초등학교 증축공사" {
		t.Errorf("name = %q, remote name should win", merged.Name)
	}

	first := merged.Files[0]
	if first.Summary != "예산 기안 문서" {
		t.Errorf("summary = %q, remote enrichment should apply", first.Summary)
	}
	if !reflect.DeepEqual(first.Keywords, []string{"예산", "기안"}) {
		t.Errorf("keywords = %v", first.Keywords)
	}
	if !reflect.DeepEqual(first.Parties, []string{"한빛건설(주)"}) {
		t.Errorf("parties = %v", first.Parties)
	}

	// Unmatched records keep their local facts.
	if merged.Files[1].Summary != "계약 제목" {
		t.Errorf("unmatched record summary = %q, want local title", merged.Files[1].Summary)
	}

	// The input snapshot and its records stay untouched.
	if original.Name != "사업폴더" {
		t.Error("merge must not mutate the input snapshot")
	}
	if original.Files[0].Summary != "기안 제목" {
		t.Error("merge must not mutate the input records")
	}
}

func TestMergeMissingRemoteSummary(t *testing.T) {
	merged := MergeRemoteResult(baseSnapshot(), map[string]any{"files": []any{}})

	if merged.Summary == nil {
		t.Fatal("merged summary should default to an empty map")
	}
	if len(merged.Summary) != 0 {
		t.Errorf("merged summary = %v, want empty", merged.Summary)
	}
}

func TestMergeEmptyRemoteNameIgnored(t *testing.T) {
	merged := MergeRemoteResult(baseSnapshot(), map[string]any{"name": ""})
	if merged.Name != "사업폴더" {
		t.Errorf("name = %q, empty remote name should not overwrite", merged.Name)
	}
}

func TestMergeNestedSummaryRemap(t *testing.T) {
	remote := map[string]any{
		"files": []any{
			map[string]any{"id": "file-1", "name": "01_plan.txt"},
		},
		"summary": map[string]any{
			"overview": map[string]any{
				"sections": []any{
					map[string]any{
						"decisions": []any{
							map[string]any{"fileId": "file-1"},
						},
					},
				},
			},
		},
	}

	merged := MergeRemoteResult(baseSnapshot(), remote)

	overview := merged.Summary["overview"].(map[string]any)
	sections := overview["sections"].([]any)
	decisions := sections[0].(map[string]any)["decisions"].([]any)
	if got := decisions[0].(map[string]any)["fileId"]; got != "doc_00" {
		t.Errorf("deeply nested fileId = %v, want doc_00", got)
	}
}
