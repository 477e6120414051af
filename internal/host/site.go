package host

import "github.com/phobologic/refscope/internal/model"

// Construction describes an enclosing instantiation expression.
type Construction int

const (
	NotConstructed Construction = iota
	ObjectCreation
	ArrayCreation
)

// Qualifier describes how a member access is qualified.
type Qualifier int

const (
	Unqualified Qualifier = iota
	QualifiedImplicit
	QualifiedThis
	QualifiedSuper
	QualifiedExpr
)

// AssignSide tells which side of an assignment the occurrence is on.
type AssignSide int

const (
	NotAssigned AssignSide = iota
	AssignLeft
	AssignRight
)

// Increment tells whether the occurrence is the operand of ++ or --.
type Increment int

const (
	NoIncrement Increment = iota
	PrefixIncrement
	PostfixIncrement
)

// TypePosition names the type slot an occurrence fills.
type TypePosition int

const (
	NoTypePosition TypePosition = iota
	LocalVariableType
	ParameterType
	ReturnType
	FieldType
	CatchType
	InstanceofType
	CastType
	OtherType
)

// ImportKind describes an enclosing import statement.
type ImportKind int

const (
	NotImport ImportKind = iota
	SingleImport
	WildcardImport
	StaticImport
)

// CommentKind describes an enclosing comment.
type CommentKind int

const (
	NoComment CommentKind = iota
	LineComment
	BlockComment
	DocComment
)

// ParentRole is the syntactic role of the occurrence's immediate enclosing
// expression, the input to data-flow tagging.
type ParentRole int

const (
	RoleNone ParentRole = iota
	RoleAssignTarget
	RoleAssignValue
	RoleReturn
	RoleArgument
	RoleCondition
	RoleLoopCondition
	RoleLoopInit
	RoleFieldInitializer
	RoleConstructorArgument
	RoleVariableDeclaration
	RoleParameterDeclaration
	RoleReturnTypeDeclaration
	RolePrefixOp
	RolePostfixOp
	RoleBinaryOp
)

// Site is the flat record of structural facts about one occurrence.
// Every tree-shape check the classifier needs is answered here.
type Site struct {
	Text string // source text of the occurrence

	Invocation bool // the occurrence is the name of an invoked callable
	ArgCount   int  // argument count when Invocation or Construction is set

	Construction     Construction
	ArrayInitializer bool // ArrayCreation carries an initializer

	Access    bool // value-position name reference (field-like access)
	Qualifier Qualifier

	Assign      AssignSide
	Increment   Increment
	InCondition bool // inside an if/while/do/for/switch/ternary condition
	InArguments bool // inside a call's argument list

	Type   TypePosition
	Import ImportKind

	InAnnotation bool
	Comment      CommentKind

	// Declared is set when the occurrence is the name of a declaration.
	Declared *model.Symbol

	Callable *model.Symbol // nearest enclosing callable
	Owner    *model.Symbol // nearest enclosing type

	Role ParentRole
}

// InComment reports whether the occurrence lies in comment or documentation text.
func (s *Site) InComment() bool {
	return s.Comment != NoComment
}

// Deprecated reports whether the nearest enclosing callable or type is deprecated.
func (s *Site) Deprecated() bool {
	return (s.Callable != nil && s.Callable.Deprecated) || (s.Owner != nil && s.Owner.Deprecated)
}

// AccessModifier maps the qualifier onto the reported access tag.
// It is empty when the occurrence is not a member access.
func (s *Site) AccessModifier() model.AccessModifier {
	switch s.Qualifier {
	case QualifiedImplicit:
		return model.AccessImplicit
	case QualifiedThis:
		return model.AccessThis
	case QualifiedSuper:
		return model.AccessSuper
	case QualifiedExpr:
		return model.AccessQualified
	}
	return ""
}
