package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/phobologic/refscope/internal/model"
)

// objectToString is reported for override markers whose overridden method
// cannot be found in the project.
// TODO: report the real java.lang.Object method (equals, hashCode) once the
// override lookup knows the JDK surface; today every unmatched override
// marker names toString.
const objectToString = "java.lang.Object.toString"

// Hint builds a short phrase that tells a candidate apart from others with
// the same name, e.g. "Static method in UserService".
func (r *Resolver) Hint(ctx context.Context, sym *model.Symbol) (string, error) {
	base := baseHint(sym)
	if sym.Kind != model.Method {
		return base, nil
	}

	overridden, err := r.overridden(ctx, sym)
	if err != nil {
		return "", err
	}
	if overridden != "" {
		return fmt.Sprintf("%s (overrides %s)", base, overridden), nil
	}
	return base, nil
}

func baseHint(sym *model.Symbol) string {
	in := containerPhrase(sym)
	m := sym.Modifiers

	switch {
	case sym.Kind == model.Constructor:
		return "Constructor in " + in
	case sym.Kind == model.Function && sym.Container == "":
		return "Function in " + packagePhrase(sym)
	case sym.Kind.IsCallable():
		switch {
		case m.Has(model.Static):
			return "Static method in " + in
		case m.Has(model.Abstract):
			return "Abstract method in " + in
		case m.Has(model.Default):
			return "Default method in " + in
		}
		return "Method in " + in
	case sym.Kind == model.EnumConstant:
		return "Enum constant in " + in
	case sym.Kind == model.Constant, sym.Kind == model.Field && m.Has(model.Static) && m.Has(model.Final):
		return "Constant in " + in
	case sym.Kind == model.Field && m.Has(model.Static):
		return "Static field in " + in
	case sym.Kind == model.Field:
		return "Field in " + in
	case sym.Kind == model.Variable && sym.Container == "":
		return "Variable in " + packagePhrase(sym)
	case sym.Kind == model.Variable:
		return "Local variable in " + in
	case sym.Kind == model.Parameter:
		return "Parameter of " + in
	case sym.Kind.IsType():
		return typeHint(sym)
	case sym.Kind == model.Import:
		return "Import in " + sym.Location.File
	case sym.Kind.CustomName() != "":
		what := strings.ReplaceAll(sym.Kind.CustomName(), "_", " ")
		return fmt.Sprintf("%s%s in %s", strings.ToUpper(what[:1]), what[1:], in)
	}
	return fmt.Sprintf("%s in %s", sym.Kind, in)
}

func typeHint(sym *model.Symbol) string {
	var what string
	switch sym.Kind {
	case model.Interface:
		what = "Interface"
	case model.Enum:
		what = "Enum"
	case model.Record:
		what = "Record"
	case model.Annotation:
		what = "Annotation type"
	default:
		what = "Class"
		if sym.Modifiers.Has(model.Abstract) {
			what = "Abstract class"
		}
	}
	if isNested(sym) {
		return fmt.Sprintf("%s nested in %s", what, sym.ContainerName())
	}
	return fmt.Sprintf("%s in %s", what, packagePhrase(sym))
}

// isNested reports whether a type's container is another type rather than
// its package or module.
func isNested(sym *model.Symbol) bool {
	return sym.Container != "" && sym.Container != sym.Package
}

func containerPhrase(sym *model.Symbol) string {
	if c := sym.ContainerName(); c != "" {
		return c
	}
	return sym.Location.File
}

func packagePhrase(sym *model.Symbol) string {
	pkg := sym.Package
	if sym.Language == "python" {
		if pkg == "" {
			return "module " + sym.Location.File
		}
		return "module " + pkg
	}
	if pkg == "" {
		return "default package"
	}
	return "package " + pkg
}

// overridden returns "Type.method" for the supertype method sym overrides.
func (r *Resolver) overridden(ctx context.Context, sym *model.Symbol) (string, error) {
	if sym.Container == "" || sym.Modifiers.Has(model.Static) {
		return "", nil
	}
	owner := &model.Symbol{Name: sym.ContainerName(), QualifiedName: sym.Container, Kind: model.Class}
	supers, err := r.host.Supertypes(ctx, owner)
	if err != nil {
		return "", fmt.Errorf("supertypes of %s: %w", sym.Container, err)
	}
	for _, st := range supers {
		members, err := r.host.Members(ctx, st.QualifiedName)
		if err != nil {
			return "", fmt.Errorf("members of %s: %w", st.QualifiedName, err)
		}
		for _, m := range members {
			if m.Kind == model.Method && SameSignature(m, sym) {
				return st.Name + "." + m.Name, nil
			}
		}
	}
	if sym.HasMarker("Override") {
		return objectToString, nil
	}
	return "", nil
}

// SameSignature reports whether two callables share a name and arity.
func SameSignature(a, b *model.Symbol) bool {
	return a.Name == b.Name && len(a.Parameters) == len(b.Parameters)
}

// AccessibilityWarning describes restricted visibility. Public symbols get
// an empty string.
func AccessibilityWarning(sym *model.Symbol) string {
	what := kindNoun(sym.Kind)
	switch sym.Modifiers.Visibility() {
	case model.VisibilityPrivate:
		return fmt.Sprintf("Private %s - only accessible within %s", what, containerPhrase(sym))
	case model.VisibilityProtected:
		return fmt.Sprintf("Protected %s - accessible only from subclasses and %s", what, packagePhrase(sym))
	case model.VisibilityPackage:
		if sym.Kind == model.Parameter || (sym.Kind == model.Variable && sym.Container != "") {
			return ""
		}
		return fmt.Sprintf("Package-private %s - only accessible within %s", what, packagePhrase(sym))
	}
	return ""
}

func kindNoun(k model.SymbolKind) string {
	switch {
	case k == model.Constructor:
		return "constructor"
	case k.IsCallable():
		return "method"
	case k.IsType():
		return "type"
	case k.IsFieldLike():
		return "field"
	case k.CustomName() != "":
		return strings.ReplaceAll(k.CustomName(), "_", " ")
	}
	return string(k)
}
