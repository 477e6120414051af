// Package insight reduces classified references into grouped statistics and
// short narrative observations.
package insight

import (
	"fmt"

	"github.com/phobologic/refscope/internal/config"
	"github.com/phobologic/refscope/internal/model"
)

// Generate builds the grouped result for target. The output depends only on
// the order of refs.
func Generate(target *model.Symbol, refs []model.ClassifiedReference, th config.InsightsConfig) *model.GroupedReferenceResult {
	res := model.EmptyResult()
	res.AllReferences = append(res.AllReferences, refs...)
	for _, r := range refs {
		res.UsagesByType[r.UsageType] = append(res.UsagesByType[r.UsageType], r)
	}

	s := summarize(refs)
	res.Summary = s.Summary

	rules := []func(*stats) []string{
		primaryLocation,
		testCoverage(target.Name, th),
		deprecated,
	}
	switch {
	case target.Kind.IsCallable():
		rules = append(rules, callable(target))
	case target.Kind.IsFieldLike():
		rules = append(rules, fieldLike(target))
	case target.Kind.IsType():
		rules = append(rules, typeUse(target))
	}
	rules = append(rules, coupling(th), comments(target))

	for _, rule := range rules {
		res.Insights = append(res.Insights, rule(s)...)
	}
	return res
}

// stats is the per-request tally the rules read from.
type stats struct {
	model.Summary
	primaryCount int
	testCount    int
	commentCount int
	reads        int
	writes       int
	inst         int
	byType       map[model.UsageType]int
	topClass     string
	topCount     int
}

func (s *stats) count(t model.UsageType) int {
	return s.byType[t]
}

func summarize(refs []model.ClassifiedReference) *stats {
	s := &stats{byType: map[model.UsageType]int{}}
	s.TotalReferences = len(refs)

	files := map[string]struct{}{}
	nonTest := map[string]int{}
	all := map[string]int{}
	var nonTestOrder, allOrder []string

	for _, r := range refs {
		files[r.FilePath] = struct{}{}
		s.byType[r.UsageType]++
		switch u := r.UsageType; {
		case u.IsRead():
			s.reads++
		case u.IsWrite():
			s.writes++
		case u.IsInstantiation():
			s.inst++
		}
		if r.IsInTestCode {
			s.HasTestUsages = true
			s.testCount++
		}
		if r.IsInDeprecatedCode {
			s.DeprecatedUsageCount++
		}
		if r.IsInComment {
			s.commentCount++
		}
		if c := r.ContainingClass; c != "" {
			if _, ok := all[c]; !ok {
				allOrder = append(allOrder, c)
			}
			all[c]++
			if !r.IsInTestCode {
				if _, ok := nonTest[c]; !ok {
					nonTestOrder = append(nonTestOrder, c)
				}
				nonTest[c]++
			}
		}
	}
	s.FileCount = len(files)
	s.PrimaryUsageLocation, s.primaryCount = top(nonTestOrder, nonTest)
	s.topClass, s.topCount = top(allOrder, all)
	return s
}

// top returns the key with the highest count; ties go to the earlier key.
func top(order []string, counts map[string]int) (string, int) {
	best, n := "", 0
	for _, k := range order {
		if counts[k] > n {
			best, n = k, counts[k]
		}
	}
	return best, n
}

func primaryLocation(s *stats) []string {
	if s.PrimaryUsageLocation == "" {
		return nil
	}
	return []string{fmt.Sprintf("Most usages are in %s (%d references)", s.PrimaryUsageLocation, s.primaryCount)}
}

func testCoverage(name string, th config.InsightsConfig) func(*stats) []string {
	return func(s *stats) []string {
		total := s.TotalReferences
		switch {
		case total == 0:
			return nil
		case !s.HasTestUsages:
			return []string{"No test coverage found - consider adding tests for " + name}
		case total > th.MinRefsForCoverage && float64(s.testCount)/float64(total) < th.TestCoverageRatio:
			pct := s.testCount * 100 / total
			return []string{fmt.Sprintf("Low test coverage: only %d of %d references (%d%%) are in tests - consider adding more tests", s.testCount, total, pct)}
		}
		return nil
	}
}

func deprecated(s *stats) []string {
	if s.DeprecatedUsageCount == 0 {
		return nil
	}
	return []string{fmt.Sprintf("Warning: %d usage(s) found in deprecated code", s.DeprecatedUsageCount)}
}

func callable(target *model.Symbol) func(*stats) []string {
	return func(s *stats) []string {
		var out []string
		if n := s.count(model.UsageMethodOverride); n > 0 {
			out = append(out, fmt.Sprintf("Overridden in %d subclass(es)", n))
		}
		if n := s.count(model.UsageMethodImplementation); n > 0 {
			out = append(out, fmt.Sprintf("Implemented by %d class(es)", n))
		}
		if !target.Modifiers.Has(model.Static) {
			if n := s.count(model.UsageStaticMethodCall); n > 0 {
				out = append(out, fmt.Sprintf("Warning: %d static-style call(s) to non-static method %s", n, target.Name))
			}
		}
		return out
	}
}

func fieldLike(target *model.Symbol) func(*stats) []string {
	return func(s *stats) []string {
		reads, writes := s.reads, s.writes
		var out []string
		if writes == 0 && reads > 0 && !immutable(target) {
			out = append(out, fmt.Sprintf("%s is never written after initialization - consider making it final", target.Name))
		}
		if writes > reads {
			out = append(out, fmt.Sprintf("%s is written more often than read (%d writes, %d reads)", target.Name, writes, reads))
		}
		if target.Modifiers.Has(model.Public) && !target.Modifiers.Has(model.Static) && !immutable(target) && !moduleLevel(target) {
			out = append(out, fmt.Sprintf("Public field %s accessed directly %d times - consider using getter/setter methods", target.Name, reads+writes))
		}
		return out
	}
}

// moduleLevel reports whether sym is declared directly in a module rather
// than in a type.
func moduleLevel(sym *model.Symbol) bool {
	return sym.Container == "" || sym.Container == sym.Package
}

func immutable(sym *model.Symbol) bool {
	return sym.Modifiers.Has(model.Final) || sym.Kind == model.Constant || sym.Kind == model.EnumConstant
}

func typeUse(target *model.Symbol) func(*stats) []string {
	return func(s *stats) []string {
		subs := s.count(model.UsageClassInheritance)
		inst := s.inst
		out := []string{fmt.Sprintf("Type %s has %d subclass(es) and %d instantiation(s)", target.Name, subs, inst)}
		if subs == 0 && inst == 0 && target.Kind != model.Interface && !target.Modifiers.Has(model.Abstract) {
			out = append(out, fmt.Sprintf("Type %s is never instantiated or extended - it may be unused", target.Name))
		}
		return out
	}
}

func coupling(th config.InsightsConfig) func(*stats) []string {
	return func(s *stats) []string {
		total := s.TotalReferences
		if total <= th.CouplingMinRefs || s.topClass == "" {
			return nil
		}
		if float64(s.topCount) <= th.CouplingShare*float64(total) {
			return nil
		}
		return []string{fmt.Sprintf("Tight coupling: %s accounts for %d of %d references", s.topClass, s.topCount, total)}
	}
}

func comments(target *model.Symbol) func(*stats) []string {
	return func(s *stats) []string {
		if s.commentCount == 0 {
			return nil
		}
		return []string{fmt.Sprintf("Referenced in %d comment(s) - update documentation when changing %s", s.commentCount, target.Name)}
	}
}
