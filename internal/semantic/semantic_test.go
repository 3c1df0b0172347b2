package semantic

import (
	"testing"

	"github.com/gregvale/apexfmt/internal/apexerr"
)

func TestBaseCarriesRangeAndCSTID(t *testing.T) {
	rng := apexerr.Range{StartByte: 1, EndByte: 5}
	n := &Identifier{Base: Base{Rng: rng, ID: 7}, Name: "x"}

	if n.Kind() != "identifier" {
		t.Errorf("Kind() = %q, want %q", n.Kind(), "identifier")
	}
	if n.Range() != rng {
		t.Errorf("Range() = %+v, want %+v", n.Range(), rng)
	}
	if n.CSTID() != 7 {
		t.Errorf("CSTID() = %d, want 7", n.CSTID())
	}
}

func TestEveryVariantImplementsNode(t *testing.T) {
	var _ = []Node{
		&Root{}, &ClassDeclaration{}, &InterfaceDeclaration{}, &EnumDeclaration{},
		&EnumConstant{}, &FieldDeclaration{}, &VariableDeclarator{},
		&LocalVariableDeclaration{}, &MethodDeclaration{}, &FormalParameter{},
		&ConstructorDeclaration{}, &ConstructorBody{}, &ExplicitConstructorInvocation{},
		&Modifiers{}, &Annotation{}, &AnnotationKeyValue{}, &AccessorList{},
		&AccessorDeclaration{}, &Block{}, &ExpressionStatement{}, &IfStatement{},
		&ForStatement{}, &EnhancedForStatement{}, &WhileStatement{}, &DoStatement{},
		&TryStatement{}, &CatchClause{}, &CatchFormalParameter{}, &FinallyClause{},
		&ReturnStatement{}, &ThrowStatement{}, &RunAsStatement{}, &DmlExpression{},
		&AssignmentExpression{}, &BinaryExpression{}, &UnaryExpression{},
		&UpdateExpression{}, &TernaryExpression{}, &InstanceOfExpression{},
		&CastExpression{}, &ParenthesizedExpression{}, &MethodInvocation{},
		&FieldAccess{}, &ArrayAccess{}, &ObjectCreationExpression{},
		&ArrayCreationExpression{}, &MapCreationExpression{}, &ArrayInitializer{},
		&MapInitializer{}, &MapEntry{}, &QueryExpression{}, &TypeRef{}, &Literal{},
		&Identifier{}, &DanglingComment{},
	}
}
