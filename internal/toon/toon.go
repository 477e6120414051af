// Package toon implements TOON (Token-Oriented Object Notation) encoding
// of definition candidates and grouped reference results.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/refscope/internal/model"
	"github.com/phobologic/refscope/internal/ranking"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// EncodeCandidates converts a ranked candidate list into TOON format.
func EncodeCandidates(cands []model.DefinitionCandidate) string {
	rows := make([][]any, 0, len(cands))
	for i := range cands {
		c := &cands[i]
		s := &c.Symbol
		rows = append(rows, []any{
			s.Name,
			string(s.Kind),
			s.QualifiedName,
			s.Location.File,
			s.Location.Line,
			c.Confidence,
			c.IsTestCode,
			c.IsLibraryCode,
			c.DisambiguationHint,
			c.AccessibilityWarning,
		})
	}
	return formatTabular("candidates",
		[]string{"name", "kind", "qualified_name", "file", "line", "confidence", "test", "library", "hint", "warning"},
		rows)
}

// EncodeReferences converts a grouped reference result into TOON format:
// the summary, the usage groups in order of first appearance, the files by
// reference count, insights and every reference.
func EncodeReferences(res *model.GroupedReferenceResult) string {
	var parts []string

	s := res.Summary
	parts = append(parts, "summary:",
		fmt.Sprintf("  total: %d", s.TotalReferences),
		fmt.Sprintf("  files: %d", s.FileCount),
		fmt.Sprintf("  has_test_usages: %t", s.HasTestUsages),
		fmt.Sprintf("  primary_location: %s", encodeValue(s.PrimaryUsageLocation)),
		fmt.Sprintf("  deprecated_usages: %d", s.DeprecatedUsageCount))

	var groupRows [][]any
	for _, u := range res.GroupOrder() {
		groupRows = append(groupRows, []any{string(u), len(res.UsagesByType[u])})
	}
	parts = append(parts, formatTabular("groups", []string{"usage", "count"}, groupRows))

	var fileRows [][]any
	for _, f := range ranking.Files(res) {
		fileRows = append(fileRows, []any{f.Path, f.Count})
	}
	parts = append(parts, formatTabular("files", []string{"file", "count"}, fileRows))

	parts = append(parts, formatList("insights", res.Insights))

	var refRows [][]any
	for i := range res.AllReferences {
		r := &res.AllReferences[i]
		refRows = append(refRows, []any{
			string(r.UsageType),
			r.FilePath,
			r.LineNumber,
			r.ContainingClass,
			r.ContainingMethod,
			string(r.AccessModifier),
			string(r.DataFlowContext),
			r.IsInTestCode,
			r.IsInComment,
			r.IsInDeprecatedCode,
			r.Preview,
		})
	}
	parts = append(parts, formatTabular("references",
		[]string{"usage", "file", "line", "class", "method", "access", "flow", "test", "comment", "deprecated", "preview"},
		refRows))

	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeCell(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func formatList(name string, items []string) string {
	encoded := make([]string, len(items))
	for i, item := range items {
		encoded[i] = encodeValue(item)
	}
	if len(items) == 0 {
		return fmt.Sprintf("%s[0]:", name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]:", name, len(items))
	for _, e := range encoded {
		fmt.Fprintf(&b, "\n  - %s", e)
	}
	return b.String()
}

// encodeCell renders numbers and booleans bare and strings with the
// quoting rules of encodeValue.
func encodeCell(cell any) string {
	switch v := cell.(type) {
	case string:
		return encodeValue(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return encodeValue(fmt.Sprint(cell))
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
