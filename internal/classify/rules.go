package classify

import (
	"strings"

	"github.com/phobologic/refscope/internal/host"
	"github.com/phobologic/refscope/internal/model"
)

// Facts are per-occurrence inputs that need more than the site itself.
type Facts struct {
	InTest         bool // test path, or enclosing callable is a test
	InTestCallable bool // enclosing callable carries a test marker or test prefix
	Overrides      bool // occurrence declares a structural override of the target
}

// UsageOf decides the usage type of one occurrence. The first matching rule wins.
func UsageOf(target *model.Symbol, site *host.Site, f Facts) model.UsageType {
	switch {
	case site.Declared != nil && site.Declared.Same(target):
		return model.UsageDeclaration
	case site.Invocation:
		return callUsage(target, f)
	case site.Construction != host.NotConstructed:
		return constructionUsage(site, f)
	case site.Access:
		return fieldUsage(target, site)
	case site.Type != host.NoTypePosition:
		return typeUsage(site.Type)
	case site.Import != host.NotImport:
		return importUsage(site.Import)
	case f.Overrides:
		return model.UsageMethodOverride
	case site.InAnnotation:
		return model.UsageAnnotation
	case site.InComment():
		return model.UsageDocComment
	}
	return model.UsageReference
}

func callUsage(target *model.Symbol, f Facts) model.UsageType {
	name := target.Name
	switch {
	case target.Kind.CustomName() != "":
		return model.CustomUsage(target.Kind.CustomName() + "_read")
	case target.Modifiers.Has(model.Static):
		return model.UsageStaticMethodCall
	case name == "equals" || name == "__eq__":
		return model.UsageEqualsCall
	case name == "toString" || name == "__str__" || name == "__repr__":
		return model.UsageToStringCall
	case name == "hashCode" || name == "__hash__":
		return model.UsageHashCodeCall
	case strings.HasPrefix(name, "get"):
		return model.UsageGetterCall
	case strings.HasPrefix(name, "set"):
		return model.UsageSetterCall
	case strings.HasPrefix(name, "is"):
		return model.UsageBooleanCheck
	case f.InTestCallable:
		return model.UsageTestMethodCall
	}
	return model.UsageMethodCall
}

func constructionUsage(site *host.Site, f Facts) model.UsageType {
	switch {
	case site.Construction == host.ArrayCreation && site.ArrayInitializer:
		return model.UsageArrayCreation
	case f.InTest:
		return model.UsageTestInstantiation
	}
	return model.UsageConstructorCall
}

// fieldUsage derives the access tag. Static targets get the static_ variant
// whatever the qualifier looks like.
func fieldUsage(target *model.Symbol, site *host.Site) model.UsageType {
	static := target.Modifiers.Has(model.Static)
	pick := func(inst, stat model.UsageType) model.UsageType {
		if static {
			return stat
		}
		return inst
	}

	switch {
	case site.Assign == host.AssignLeft:
		return pick(model.UsageFieldWrite, model.UsageStaticFieldWrite)
	case site.Assign == host.AssignRight:
		return pick(model.UsageFieldRead, model.UsageStaticFieldRead)
	case site.Increment != host.NoIncrement:
		return pick(model.UsageFieldIncrement, model.UsageStaticFieldIncrement)
	case site.InCondition:
		return pick(model.UsageFieldConditionCheck, model.UsageStaticFieldConditionCheck)
	case site.InArguments:
		return pick(model.UsageFieldAsArgument, model.UsageStaticFieldAsArgument)
	}
	return pick(model.UsageFieldRead, model.UsageStaticFieldRead)
}

func typeUsage(p host.TypePosition) model.UsageType {
	switch p {
	case host.LocalVariableType:
		return model.UsageLocalVariableType
	case host.ParameterType:
		return model.UsageParameterType
	case host.ReturnType:
		return model.UsageReturnType
	case host.FieldType:
		return model.UsageFieldType
	case host.CatchType:
		return model.UsageCatchType
	case host.InstanceofType:
		return model.UsageInstanceofCheck
	case host.CastType:
		return model.UsageTypeCast
	}
	return model.UsageTypeReference
}

func importUsage(k host.ImportKind) model.UsageType {
	switch k {
	case host.WildcardImport:
		return model.UsageWildcardImport
	case host.StaticImport:
		return model.UsageStaticImport
	}
	return model.UsageImport
}

// DataFlowOf tags the role of the occurrence's immediate enclosing
// expression. It does not depend on the target.
func DataFlowOf(site *host.Site) model.DataFlow {
	switch site.Role {
	case host.RoleAssignTarget:
		return model.FlowAssignedTo
	case host.RoleAssignValue:
		return model.FlowAssignedFrom
	case host.RoleReturn:
		return model.FlowReturned
	case host.RoleArgument:
		return model.FlowArgument
	case host.RoleCondition:
		return model.FlowCondition
	case host.RoleLoopCondition:
		return model.FlowLoopCondition
	case host.RoleLoopInit:
		return model.FlowLoopInit
	case host.RoleFieldInitializer:
		return model.FlowFieldInitializer
	case host.RoleConstructorArgument:
		return model.FlowConstructorArgument
	case host.RoleVariableDeclaration:
		return model.FlowVariableDecl
	case host.RoleParameterDeclaration:
		return model.FlowParameterDecl
	case host.RoleReturnTypeDeclaration:
		return model.FlowReturnTypeDecl
	case host.RolePrefixOp:
		return model.FlowPrefixOp
	case host.RolePostfixOp:
		return model.FlowPostfixOp
	case host.RoleBinaryOp:
		return model.FlowBinaryOp
	}
	return ""
}
