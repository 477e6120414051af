package usage

import (
	"context"
	"log/slog"

	"github.com/phobologic/refscope/internal/host"
	"github.com/phobologic/refscope/internal/model"
	"github.com/phobologic/refscope/internal/resolve"
)

// occurrences gathers the raw occurrences of target plus the synthetic ones
// the host's text search cannot see. Each site appears once; the target's
// own declaration is present only when includeDecl is set, and then first.
func (s *Service) occurrences(ctx context.Context, logger *slog.Logger, target *model.Symbol, includeDecl bool) []model.Occurrence {
	raw, err := s.host.Occurrences(ctx, target, s.cfg.Limits.MaxOccurrences)
	if err != nil {
		s.hostFailure(logger, "occurrences", err, "symbol", target.Name)
	}

	var synthetic []model.Occurrence
	switch {
	case target.Kind == model.Constructor:
		synthetic = s.instantiations(ctx, logger, target)
	case target.Kind == model.Method:
		synthetic = s.overrides(ctx, logger, target)
	case target.Kind.IsType():
		synthetic = s.inheritors(ctx, logger, target)
	}

	type siteKey struct {
		file  string
		start int
	}
	index := make(map[siteKey]int, len(raw)+len(synthetic))
	out := make([]model.Occurrence, 0, len(raw)+len(synthetic)+1)
	if includeDecl {
		out = append(out, model.Occurrence{Location: target.Location, Fixed: model.UsageDeclaration})
	}
	add := func(o model.Occurrence) {
		if o.Location.SameSite(target.Location) {
			return
		}
		k := siteKey{o.Location.File, o.Location.Start}
		if i, ok := index[k]; ok {
			if o.Fixed != "" {
				out[i].Fixed = o.Fixed
			}
			return
		}
		index[k] = len(out)
		out = append(out, o)
	}
	for _, o := range raw {
		add(o)
	}
	for _, o := range synthetic {
		add(o)
	}
	return out
}

// owner finds the type that declares member.
func (s *Service) owner(ctx context.Context, logger *slog.Logger, member *model.Symbol) *model.Symbol {
	if member.Container == "" {
		return nil
	}
	types, err := s.host.SearchTypes(ctx, member.ContainerName())
	if err != nil {
		s.hostFailure(logger, "search types", err, "name", member.ContainerName())
		return nil
	}
	for _, t := range types {
		if t.QualifiedName == member.Container {
			return t
		}
	}
	return nil
}

// instantiations finds creation expressions of the constructor's type. When
// the type has several constructors only calls with a matching argument
// count are kept.
func (s *Service) instantiations(ctx context.Context, logger *slog.Logger, ctor *model.Symbol) []model.Occurrence {
	t := s.owner(ctx, logger, ctor)
	if t == nil {
		return nil
	}

	overloaded := false
	if members, err := s.host.Members(ctx, t.QualifiedName); err == nil {
		n := 0
		for _, m := range members {
			if m.Kind == model.Constructor {
				n++
			}
		}
		overloaded = n > 1
	} else {
		s.hostFailure(logger, "members", err, "container", t.QualifiedName)
	}

	occs, err := s.host.Occurrences(ctx, t, s.cfg.Limits.MaxInstantiations)
	if err != nil {
		s.hostFailure(logger, "instantiation search", err, "type", t.QualifiedName)
		return nil
	}

	var out []model.Occurrence
	for _, o := range occs {
		site, err := s.host.Site(ctx, o.Location)
		if err != nil || site == nil {
			continue
		}
		if site.Construction != host.ObjectCreation {
			continue
		}
		if overloaded && site.ArgCount != len(ctor.Parameters) {
			continue
		}
		out = append(out, model.Occurrence{Location: o.Location, Fixed: model.UsageConstructorCall})
	}
	return out
}

// overrides finds same-signature methods in descendants of the method's
// owner. Interface owners and abstract targets yield implementations.
func (s *Service) overrides(ctx context.Context, logger *slog.Logger, method *model.Symbol) []model.Occurrence {
	if method.Modifiers.Has(model.Static) || method.Modifiers.Has(model.Private) {
		return nil
	}
	t := s.owner(ctx, logger, method)
	if t == nil {
		return nil
	}

	lim := s.cfg.Limits
	subs, err := s.host.Subtypes(ctx, t, max(lim.MaxOverrides, lim.MaxImplementations))
	if err != nil {
		s.hostFailure(logger, "override search", err, "type", t.QualifiedName)
		return nil
	}

	implements := t.Kind == model.Interface || method.Modifiers.Has(model.Abstract)
	var out []model.Occurrence
	overrides, impls := 0, 0
	for _, sub := range subs {
		members, err := s.host.Members(ctx, sub.QualifiedName)
		if err != nil {
			s.hostFailure(logger, "members", err, "container", sub.QualifiedName)
			continue
		}
		for _, m := range members {
			if m.Kind != model.Method || !resolve.SameSignature(m, method) {
				continue
			}
			switch {
			case implements && impls < lim.MaxImplementations:
				impls++
				out = append(out, model.Occurrence{Location: m.Location, Fixed: model.UsageMethodImplementation})
			case !implements && overrides < lim.MaxOverrides:
				overrides++
				out = append(out, model.Occurrence{Location: m.Location, Fixed: model.UsageMethodOverride})
			}
		}
	}
	return out
}

// inheritors tags every known descendant of a type at its name.
func (s *Service) inheritors(ctx context.Context, logger *slog.Logger, t *model.Symbol) []model.Occurrence {
	subs, err := s.host.Subtypes(ctx, t, s.cfg.Limits.MaxInheritors)
	if err != nil {
		s.hostFailure(logger, "inheritor search", err, "type", qualified(t))
		return nil
	}
	out := make([]model.Occurrence, 0, len(subs))
	for _, sub := range subs {
		out = append(out, model.Occurrence{Location: sub.Location, Fixed: model.UsageClassInheritance})
	}
	return out
}
