package core

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fastmakeup/final-ver/model"
)

// Validate runs the fixed battery of cross-document checks over one
// project's documents. Only the earliest-ingested document of each
// type participates in the pairwise checks. The validator is stateless
// and performs no I/O; documents with empty date or amount lists are
// tolerated.
func Validate(docs []model.ParsedDocument) model.ValidationResult {
	byType := groupByType(docs)
	warnings := []model.Finding{}
	errors := []model.Finding{}

	proposals, hasProposal := byType[model.TypeProposal]
	contracts, hasContract := byType[model.TypeContract]

	if hasProposal && !hasContract {
		warnings = append(warnings, model.Finding{
			Kind:         model.FindingMissingDocument,
			Severity:     model.SeverityWarning,
			Message:      "기안서는 있는데 계약서가 없습니다",
			RelatedFiles: []string{proposals[0].Filename},
		})
	}

	if hasProposal && hasContract {
		proposal, contract := proposals[0], contracts[0]
		related := []string{proposal.Filename, contract.Filename}

		if len(proposal.Amounts) > 0 && len(contract.Amounts) > 0 {
			pv, cv := proposal.Amounts[0].Value, contract.Amounts[0].Value
			if pv != cv {
				errors = append(errors, model.Finding{
					Kind:     model.FindingAmountMismatch,
					Severity: model.SeverityError,
					Message: fmt.Sprintf("기안서 금액(%s원)과 계약서 금액(%s원)이 다릅니다",
						humanize.Comma(int64(pv)), humanize.Comma(int64(cv))),
					RelatedFiles: related,
				})
			}
		}

		if len(proposal.Dates) > 0 && len(contract.Dates) > 0 {
			// Lexicographic comparison is correct for YYYY.MM.DD.
			pd, cd := proposal.Dates[0], contract.Dates[0]
			if pd > cd {
				warnings = append(warnings, model.Finding{
					Kind:         model.FindingDateOrder,
					Severity:     model.SeverityWarning,
					Message:      fmt.Sprintf("기안 날짜(%s)가 계약 날짜(%s)보다 늦습니다", pd, cd),
					RelatedFiles: related,
				})
			}
		}
	}

	if changes, ok := byType[model.TypeDesignChange]; ok {
		if _, paired := byType[model.TypeChangeContract]; !paired {
			warnings = append(warnings, model.Finding{
				Kind:         model.FindingMissingChangeContract,
				Severity:     model.SeverityWarning,
				Message:      "설계변경 기안은 있는데 변경계약서가 없습니다",
				RelatedFiles: []string{changes[0].Filename},
			})
		}
	}

	status := model.ValidationOK
	switch {
	case len(errors) > 0:
		status = model.ValidationError
	case len(warnings) > 0:
		status = model.ValidationWarning
	}

	return model.ValidationResult{
		Status:   status,
		Warnings: warnings,
		Errors:   errors,
		Summary:  summarize(len(docs), len(errors), len(warnings)),
	}
}

func groupByType(docs []model.ParsedDocument) map[string][]model.ParsedDocument {
	groups := make(map[string][]model.ParsedDocument)
	for _, doc := range docs {
		groups[doc.DocType] = append(groups[doc.DocType], doc)
	}
	return groups
}

func summarize(total, errs, warns int) string {
	switch {
	case errs > 0:
		return fmt.Sprintf("❌ %d개 문서 검증 완료: %d개 오류, %d개 경고", total, errs, warns)
	case warns > 0:
		return fmt.Sprintf("⚠️ %d개 문서 검증 완료: %d개 경고", total, warns)
	default:
		return fmt.Sprintf("✅ %d개 문서 검증 완료: 문제 없음", total)
	}
}
