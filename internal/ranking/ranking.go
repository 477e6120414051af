// Package ranking orders definition candidates and trims reference results.
package ranking

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	rerrors "github.com/phobologic/refscope/internal/errors"
	"github.com/phobologic/refscope/internal/model"
)

// SortCandidates orders candidates by confidence, highest first. Equal
// confidences keep discovery order. Duplicate symbols keep their first,
// highest-scored entry.
func SortCandidates(cands []model.DefinitionCandidate) []model.DefinitionCandidate {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Confidence > cands[j].Confidence
	})

	out := cands[:0]
	seen := make(map[string]struct{}, len(cands))
	for i := range cands {
		key := candidateKey(&cands[i].Symbol)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, cands[i])
	}
	return out
}

func candidateKey(s *model.Symbol) string {
	return s.Location.File + "\x00" + s.Name + "\x00" + strconv.Itoa(s.Location.Start)
}

// SelectCandidates returns at most maxCandidates candidates.
// If maxCandidates is <= 0 or >= len(cands), all candidates are returned.
func SelectCandidates(cands []model.DefinitionCandidate, maxCandidates int) []model.DefinitionCandidate {
	if maxCandidates <= 0 || maxCandidates >= len(cands) {
		return cands
	}
	return cands[:maxCandidates]
}

// SelectReferences returns a result holding only the first maxRefs
// references. Summary and insights describe the full set and are kept.
func SelectReferences(r *model.GroupedReferenceResult, maxRefs int) *model.GroupedReferenceResult {
	if maxRefs <= 0 || maxRefs >= len(r.AllReferences) {
		return r
	}
	return regroup(r, r.AllReferences[:maxRefs])
}

// ValidateUsageTypes rejects filter values that name neither a curated usage
// type nor a custom one.
func ValidateUsageTypes(types []string) error {
	for _, t := range types {
		u := model.UsageType(strings.ToLower(strings.TrimSpace(t)))
		if !u.IsKnown() && !u.IsCustom() {
			return rerrors.New(rerrors.InvalidInput, "filter usage types", fmt.Sprintf("unknown usage type %q", t))
		}
	}
	return nil
}

// FilterByUsage returns a result holding only references whose usage type is
// one of types. Types match case-insensitively; an empty list keeps everything.
func FilterByUsage(r *model.GroupedReferenceResult, types []string) *model.GroupedReferenceResult {
	if len(types) == 0 {
		return r
	}
	want := make(map[string]struct{}, len(types))
	for _, t := range types {
		want[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	var kept []model.ClassifiedReference
	for i := range r.AllReferences {
		if _, ok := want[strings.ToLower(string(r.AllReferences[i].UsageType))]; ok {
			kept = append(kept, r.AllReferences[i])
		}
	}
	return regroup(r, kept)
}

func regroup(r *model.GroupedReferenceResult, refs []model.ClassifiedReference) *model.GroupedReferenceResult {
	out := &model.GroupedReferenceResult{
		Summary:       r.Summary,
		Insights:      r.Insights,
		UsagesByType:  make(map[model.UsageType][]model.ClassifiedReference),
		AllReferences: make([]model.ClassifiedReference, 0, len(refs)),
	}
	for i := range refs {
		out.AllReferences = append(out.AllReferences, refs[i])
		out.UsagesByType[refs[i].UsageType] = append(out.UsagesByType[refs[i].UsageType], refs[i])
	}
	return out
}

// FileCount is the number of references in one file.
type FileCount struct {
	Path  string
	Count int
}

// Files ranks the files of a result by reference count, most referenced
// first, ties by path.
func Files(r *model.GroupedReferenceResult) []FileCount {
	counts := make(map[string]int)
	for i := range r.AllReferences {
		counts[r.AllReferences[i].FilePath]++
	}
	out := make([]FileCount, 0, len(counts))
	for p, c := range counts {
		out = append(out, FileCount{Path: p, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Path < out[j].Path
	})
	return out
}
