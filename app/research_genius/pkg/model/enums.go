package model

import (
	"strings"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/apperr"
)

// Focus 研究侧重点，取值即界面上的显示文本
type Focus string

const (
	FocusComprehensive  Focus = "Comprehensive"
	FocusTechnical      Focus = "Technical"
	FocusBusinessImpact Focus = "Business Impact"
	FocusFutureTrends   Focus = "Future Trends"
	FocusAcademic       Focus = "Academic"
)

// Focuses 按界面顺序列出全部侧重点
var Focuses = []Focus{FocusComprehensive, FocusTechnical, FocusBusinessImpact, FocusFutureTrends, FocusAcademic}

// IsValid reports whether f is one of Focuses.
func (f Focus) IsValid() bool {
	for _, v := range Focuses {
		if v == f {
			return true
		}
	}
	return false
}

// ParseFocus 不区分大小写，同时接受 BusinessImpact / business_impact 这类紧凑写法
func ParseFocus(s string) (Focus, error) {
	key := compact(s)
	for _, f := range Focuses {
		if compact(string(f)) == key {
			return f, nil
		}
	}
	return "", apperr.InvalidRequest("unknown research focus %q", s)
}

// CitationStyle 引用格式
type CitationStyle string

const (
	CitationAPA     CitationStyle = "APA"
	CitationMLA     CitationStyle = "MLA"
	CitationChicago CitationStyle = "Chicago"
	CitationHarvard CitationStyle = "Harvard"
	CitationIEEE    CitationStyle = "IEEE"
)

var CitationStyles = []CitationStyle{CitationAPA, CitationMLA, CitationChicago, CitationHarvard, CitationIEEE}

func (c CitationStyle) IsValid() bool {
	for _, v := range CitationStyles {
		if v == c {
			return true
		}
	}
	return false
}

func ParseCitationStyle(s string) (CitationStyle, error) {
	key := compact(s)
	for _, c := range CitationStyles {
		if compact(string(c)) == key {
			return c, nil
		}
	}
	return "", apperr.InvalidRequest("unknown citation style %q", s)
}

func compact(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}
