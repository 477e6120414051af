package model

import "strings"

// UsageType is the classified role of one occurrence relative to a target.
type UsageType string

const (
	UsageDeclaration UsageType = "declaration"

	UsageMethodCall       UsageType = "method_call"
	UsageStaticMethodCall UsageType = "static_method_call"
	UsageEqualsCall       UsageType = "equals_call"
	UsageToStringCall     UsageType = "toString_call"
	UsageHashCodeCall     UsageType = "hashCode_call"
	UsageGetterCall       UsageType = "getter_call"
	UsageSetterCall       UsageType = "setter_call"
	UsageBooleanCheck     UsageType = "boolean_check"
	UsageTestMethodCall   UsageType = "test_method_call"

	UsageConstructorCall   UsageType = "constructor_call"
	UsageArrayCreation     UsageType = "array_creation"
	UsageTestInstantiation UsageType = "test_instantiation"

	UsageFieldRead           UsageType = "field_read"
	UsageFieldWrite          UsageType = "field_write"
	UsageFieldIncrement      UsageType = "field_increment"
	UsageFieldConditionCheck UsageType = "field_condition_check"
	UsageFieldAsArgument     UsageType = "field_as_argument"

	UsageStaticFieldRead           UsageType = "static_field_read"
	UsageStaticFieldWrite          UsageType = "static_field_write"
	UsageStaticFieldIncrement      UsageType = "static_field_increment"
	UsageStaticFieldConditionCheck UsageType = "static_field_condition_check"
	UsageStaticFieldAsArgument     UsageType = "static_field_as_argument"

	UsageLocalVariableType UsageType = "local_variable_type"
	UsageParameterType     UsageType = "parameter_type"
	UsageReturnType        UsageType = "return_type"
	UsageFieldType         UsageType = "field_type"
	UsageCatchType         UsageType = "catch_type"
	UsageInstanceofCheck   UsageType = "instanceof_check"
	UsageTypeCast          UsageType = "type_cast"
	UsageTypeReference     UsageType = "type_reference"

	UsageImport         UsageType = "import"
	UsageWildcardImport UsageType = "wildcard_import"
	UsageStaticImport   UsageType = "static_import"

	UsageMethodOverride       UsageType = "method_override"
	UsageMethodImplementation UsageType = "method_implementation"
	UsageClassInheritance     UsageType = "class_inheritance"

	UsageAnnotation UsageType = "annotation_use"
	UsageDocComment UsageType = "javadoc_reference"
	UsageReference  UsageType = "reference"
)

var knownUsages = map[UsageType]struct{}{
	UsageDeclaration: {},
	UsageMethodCall:  {}, UsageStaticMethodCall: {}, UsageEqualsCall: {}, UsageToStringCall: {},
	UsageHashCodeCall: {}, UsageGetterCall: {}, UsageSetterCall: {}, UsageBooleanCheck: {},
	UsageTestMethodCall:  {},
	UsageConstructorCall: {}, UsageArrayCreation: {}, UsageTestInstantiation: {},
	UsageFieldRead: {}, UsageFieldWrite: {}, UsageFieldIncrement: {}, UsageFieldConditionCheck: {},
	UsageFieldAsArgument: {},
	UsageStaticFieldRead: {}, UsageStaticFieldWrite: {}, UsageStaticFieldIncrement: {},
	UsageStaticFieldConditionCheck: {}, UsageStaticFieldAsArgument: {},
	UsageLocalVariableType: {}, UsageParameterType: {}, UsageReturnType: {}, UsageFieldType: {},
	UsageCatchType: {}, UsageInstanceofCheck: {}, UsageTypeCast: {}, UsageTypeReference: {},
	UsageImport: {}, UsageWildcardImport: {}, UsageStaticImport: {},
	UsageMethodOverride: {}, UsageMethodImplementation: {}, UsageClassInheritance: {},
	UsageAnnotation: {}, UsageDocComment: {}, UsageReference: {},
}

// CustomUsage returns a usage tag outside the curated set.
func CustomUsage(tag string) UsageType {
	return UsageType(customPrefix + tag)
}

// IsKnown reports whether u is one of the curated tags.
func (u UsageType) IsKnown() bool {
	_, ok := knownUsages[u]
	return ok
}

// IsCustom reports whether u was built with CustomUsage.
func (u UsageType) IsCustom() bool {
	return strings.HasPrefix(string(u), customPrefix)
}

// IsWrite reports whether u writes a field.
func (u UsageType) IsWrite() bool {
	switch u {
	case UsageFieldWrite, UsageStaticFieldWrite, UsageFieldIncrement, UsageStaticFieldIncrement:
		return true
	}
	return false
}

// IsRead reports whether u reads a field.
func (u UsageType) IsRead() bool {
	switch u {
	case UsageFieldRead, UsageStaticFieldRead,
		UsageFieldConditionCheck, UsageStaticFieldConditionCheck,
		UsageFieldAsArgument, UsageStaticFieldAsArgument:
		return true
	}
	return false
}

// IsInstantiation reports whether u creates an instance of the target type.
func (u UsageType) IsInstantiation() bool {
	return u == UsageConstructorCall || u == UsageTestInstantiation
}

// DataFlow describes the syntactic role of an occurrence's enclosing expression.
type DataFlow string

const (
	FlowAssignedTo          DataFlow = "assigned to"
	FlowAssignedFrom        DataFlow = "assigned from"
	FlowReturned            DataFlow = "returned from method"
	FlowArgument            DataFlow = "passed as argument"
	FlowCondition           DataFlow = "used in condition"
	FlowLoopCondition       DataFlow = "loop condition"
	FlowLoopInit            DataFlow = "loop initialization"
	FlowFieldInitializer    DataFlow = "field initializer"
	FlowConstructorArgument DataFlow = "constructor argument"
	FlowVariableDecl        DataFlow = "variable declaration"
	FlowParameterDecl       DataFlow = "parameter declaration"
	FlowReturnTypeDecl      DataFlow = "return-type declaration"
	FlowPrefixOp            DataFlow = "prefix operation"
	FlowPostfixOp           DataFlow = "postfix operation"
	FlowBinaryOp            DataFlow = "binary operation"
)

// AccessModifier describes how a member access is qualified.
type AccessModifier string

const (
	AccessImplicit  AccessModifier = "implicit"
	AccessThis      AccessModifier = "this"
	AccessSuper     AccessModifier = "super"
	AccessQualified AccessModifier = "qualified"
)

// ClassifiedReference is one annotated usage of a target symbol.
type ClassifiedReference struct {
	FilePath           string         `json:"filePath"`
	StartOffset        int            `json:"startOffset"`
	EndOffset          int            `json:"endOffset"`
	LineNumber         int            `json:"lineNumber"`
	UsageType          UsageType      `json:"usageType"`
	ElementText        string         `json:"elementText,omitempty"`
	Preview            string         `json:"preview,omitempty"`
	ContainingMethod   string         `json:"containingMethod,omitempty"`
	ContainingClass    string         `json:"containingClass,omitempty"`
	IsInTestCode       bool           `json:"isInTestCode"`
	IsInComment        bool           `json:"isInComment"`
	IsInDeprecatedCode bool           `json:"isInDeprecatedCode"`
	AccessModifier     AccessModifier `json:"accessModifier,omitempty"`
	SurroundingContext string         `json:"surroundingContext,omitempty"`
	DataFlowContext    DataFlow       `json:"dataFlowContext,omitempty"`
}

// DefinitionCandidate is one ranked answer to a definition query.
type DefinitionCandidate struct {
	Symbol               Symbol  `json:"symbol"`
	Confidence           float64 `json:"confidence"`
	DisambiguationHint   string  `json:"disambiguationHint,omitempty"`
	IsTestCode           bool    `json:"isTestCode"`
	IsLibraryCode        bool    `json:"isLibraryCode"`
	AccessibilityWarning string  `json:"accessibilityWarning,omitempty"`
}

// Summary aggregates a reference list.
type Summary struct {
	TotalReferences      int    `json:"totalReferences"`
	FileCount            int    `json:"fileCount"`
	HasTestUsages        bool   `json:"hasTestUsages"`
	PrimaryUsageLocation string `json:"primaryUsageLocation,omitempty"`
	DeprecatedUsageCount int    `json:"deprecatedUsageCount"`
}

// GroupedReferenceResult is the reduced view of all usages of one target.
type GroupedReferenceResult struct {
	Summary       Summary                             `json:"summary"`
	UsagesByType  map[UsageType][]ClassifiedReference `json:"usagesByType"`
	Insights      []string                            `json:"insights"`
	AllReferences []ClassifiedReference               `json:"allReferences"`
}

// GroupOrder returns the usage types present in order of first appearance.
func (r *GroupedReferenceResult) GroupOrder() []UsageType {
	seen := make(map[UsageType]struct{}, len(r.UsagesByType))
	var order []UsageType
	for i := range r.AllReferences {
		u := r.AllReferences[i].UsageType
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		order = append(order, u)
	}
	return order
}

// EmptyResult returns a result with no references.
func EmptyResult() *GroupedReferenceResult {
	return &GroupedReferenceResult{
		UsagesByType:  map[UsageType][]ClassifiedReference{},
		Insights:      []string{},
		AllReferences: []ClassifiedReference{},
	}
}
