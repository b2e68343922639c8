package core

import (
	"strings"

	"github.com/fastmakeup/final-ver/model"
)

type classifyRule struct {
	docType  string
	phase    string
	keywords []string
}

// Rule order is significant: the change-related types sit above the
// generic contract rule so a 변경계약서 never lands in 계약서, and
// 설계변경 is tried before the bare 변경 it contains.
var classifyRules = []classifyRule{
	{model.TypeDesignChange, model.PhasePlan, []string{"설계변경"}},
	{model.TypeChangeContract, model.PhaseContract, []string{"변경"}},
	{model.TypeContract, model.PhaseContract, []string{"계약", "용역", "입찰"}},
	{model.TypeProposal, model.PhasePlan, []string{"기안", "계획", "예산"}},
	{model.TypeCompletion, model.PhaseExecute, []string{"준공", "검수", "납품"}},
	{model.TypeExpenditure, model.PhaseExecute, []string{"지출", "집행"}},
	{model.TypeSettlement, model.PhaseClose, []string{"정산", "결산"}},
}

// Classify assigns a document type. A specific upstream type is
// trusted verbatim; otherwise the filename is matched against the rule
// table first (higher precision), then the full text. No match leaves
// the document uncategorized for good.
func Classify(filename, rawText, upstream string) string {
	if upstream != "" && upstream != model.TypeOther {
		return upstream
	}

	for _, rule := range classifyRules {
		if matchesAny(filename, rule.keywords) {
			return rule.docType
		}
	}
	for _, rule := range classifyRules {
		if matchesAny(rawText, rule.keywords) {
			return rule.docType
		}
	}

	return model.TypeOther
}

// Phase maps a document type to its workflow phase. The mapping is a
// static table, not inferred.
func Phase(docType string) string {
	for _, rule := range classifyRules {
		if rule.docType == docType {
			return rule.phase
		}
	}
	return model.PhaseEtc
}

func matchesAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
