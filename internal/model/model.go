// Package model defines core data structures for refscope.
package model

import "strings"

// customPrefix marks a kind or usage tag outside the curated vocabulary.
const customPrefix = "custom:"

// SymbolKind indicates the declaration kind of a symbol.
type SymbolKind string

const (
	Class        SymbolKind = "class"
	Interface    SymbolKind = "interface"
	Enum         SymbolKind = "enum"
	Record       SymbolKind = "record"
	Annotation   SymbolKind = "annotation"
	Module       SymbolKind = "module"
	Method       SymbolKind = "method"
	Function     SymbolKind = "function"
	Constructor  SymbolKind = "constructor"
	Field        SymbolKind = "field"
	Constant     SymbolKind = "constant"
	EnumConstant SymbolKind = "enum_constant"
	Variable     SymbolKind = "variable"
	Parameter    SymbolKind = "parameter"
	Import       SymbolKind = "import"
)

// CustomKind returns a kind outside the curated set.
func CustomKind(name string) SymbolKind {
	return SymbolKind(customPrefix + name)
}

// CustomName returns the name k was built from, or "" for a curated kind.
func (k SymbolKind) CustomName() string {
	name, ok := strings.CutPrefix(string(k), customPrefix)
	if !ok {
		return ""
	}
	return name
}

// IsType reports whether k declares a type.
func (k SymbolKind) IsType() bool {
	switch k {
	case Class, Interface, Enum, Record, Annotation:
		return true
	}
	return false
}

// IsCallable reports whether k declares something that can be invoked.
func (k SymbolKind) IsCallable() bool {
	switch k {
	case Method, Function, Constructor:
		return true
	}
	return false
}

// IsFieldLike reports whether k declares a value slot.
func (k SymbolKind) IsFieldLike() bool {
	switch k {
	case Field, Constant, EnumConstant, Variable, Parameter:
		return true
	}
	return false
}

// Modifier is a declaration modifier keyword.
type Modifier string

const (
	Public    Modifier = "public"
	Protected Modifier = "protected"
	Private   Modifier = "private"
	Static    Modifier = "static"
	Final     Modifier = "final"
	Abstract  Modifier = "abstract"
	Default   Modifier = "default"
)

// Visibility is the effective access level of a declaration.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
	VisibilityPackage   Visibility = "package"
)

// Modifiers is the modifier set of a declaration.
type Modifiers []Modifier

// Has reports whether m contains mod.
func (m Modifiers) Has(mod Modifier) bool {
	for _, v := range m {
		if v == mod {
			return true
		}
	}
	return false
}

// Visibility derives the access level; no access keyword means package access.
func (m Modifiers) Visibility() Visibility {
	switch {
	case m.Has(Public):
		return VisibilityPublic
	case m.Has(Private):
		return VisibilityPrivate
	case m.Has(Protected):
		return VisibilityProtected
	}
	return VisibilityPackage
}

// Location is a byte range within one file. Line is 1-based.
type Location struct {
	File  string `json:"file"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Line  int    `json:"line"`
}

// Contains reports whether offset falls inside the range.
func (l Location) Contains(offset int) bool {
	return offset >= l.Start && offset < l.End
}

// SameSite reports whether two locations start at the same place.
func (l Location) SameSite(o Location) bool {
	return l.File == o.File && l.Start == o.Start
}

// Symbol is a declared entity. Location covers the name identifier,
// Extent the whole declaration. Container is the qualified name of the owner
// (a type, or the package for top-level types); Package is the Java package
// or Python module. Imports are symbols of kind Import whose Name is the
// local binding ("*" for wildcards) and QualifiedName the imported path.
type Symbol struct {
	Name          string     `json:"name"`
	QualifiedName string     `json:"qualifiedName,omitempty"`
	Kind          SymbolKind `json:"kind"`
	Location      Location   `json:"location"`
	Extent        Location   `json:"-"`
	Modifiers     Modifiers  `json:"modifiers,omitempty"`
	Container     string     `json:"container,omitempty"`
	Package       string     `json:"package,omitempty"`
	Deprecated    bool       `json:"deprecated,omitempty"`
	Doc           string     `json:"doc,omitempty"`
	Parameters    []string   `json:"parameters,omitempty"`
	Type          string     `json:"type,omitempty"`       // declared or return type as written
	Supertypes    []string   `json:"supertypes,omitempty"` // direct supertypes as written
	Markers       []string   `json:"markers,omitempty"`
	Library       bool       `json:"library,omitempty"`
	Language      string     `json:"language,omitempty"`
}

// Key identifies a symbol within one analysis request.
func (s *Symbol) Key() string {
	if s.QualifiedName != "" {
		return string(s.Kind) + ":" + s.QualifiedName + "@" + s.Location.File
	}
	return string(s.Kind) + ":" + s.Name + "@" + s.Location.File
}

// Same reports whether a and b describe the same declaration.
func (s *Symbol) Same(o *Symbol) bool {
	if s == nil || o == nil {
		return false
	}
	return s.Name == o.Name && s.Location.SameSite(o.Location)
}

// HasMarker reports whether the symbol carries the named annotation or
// decorator. A qualified marker such as "org.junit.Test" matches "Test".
func (s *Symbol) HasMarker(name string) bool {
	for _, m := range s.Markers {
		if m == name || strings.HasSuffix(m, "."+name) {
			return true
		}
	}
	return false
}

// ContainerName returns the simple name of the owning container.
func (s *Symbol) ContainerName() string {
	c := s.Container
	if dot := strings.LastIndex(c, "."); dot >= 0 {
		return c[dot+1:]
	}
	return c
}

// Occurrence is a raw source location where a symbol's name appears.
// Fixed is set only on synthetic occurrences injected by orchestration.
type Occurrence struct {
	Location Location
	Fixed    UsageType
}
