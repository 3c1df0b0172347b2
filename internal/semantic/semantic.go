// Package semantic defines the closed sum of node variants the builder
// (internal/builder) lifts Apex CST nodes into (spec.md §3.2). Every
// concrete type implements Node, giving the document emitter
// (internal/emitter) an exhaustive switch to dispatch on.
package semantic

import "github.com/gregvale/apexfmt/internal/apexerr"

// Node is implemented by every semantic variant. CSTID ties a node back
// to its source CST node identity, the key the comment map (§3.3) is
// built on.
type Node interface {
	Kind() string
	Range() apexerr.Range
	CSTID() uintptr
}

// Base carries the two fields every variant needs regardless of shape:
// its source range and its originating CST node identity.
type Base struct {
	Rng apexerr.Range
	ID  uintptr
}

func (b Base) Range() apexerr.Range { return b.Rng }
func (b Base) CSTID() uintptr       { return b.ID }

// Root is the top of a file's semantic tree: a sequence of top-level
// type declarations (Apex allows at most one outer class/interface/enum
// per file, but the tree shape does not special-case that).
type Root struct {
	Base
	Declarations []Node
}

func (*Root) Kind() string { return "root" }

// --- declarations ---

type ClassDeclaration struct {
	Base
	Modifiers  *Modifiers
	Name       string
	SuperClass *TypeRef
	Interfaces []*TypeRef
	Body       []Node
	BodyID     uintptr // CST id of the class_body node, for dangling-comment lookup when Body is empty.
}

func (*ClassDeclaration) Kind() string { return "class_declaration" }

type InterfaceDeclaration struct {
	Base
	Modifiers  *Modifiers
	Name       string
	Interfaces []*TypeRef
	Body       []Node
	BodyID     uintptr
}

func (*InterfaceDeclaration) Kind() string { return "interface_declaration" }

type EnumDeclaration struct {
	Base
	Modifiers  *Modifiers
	Name       string
	Interfaces []*TypeRef
	Constants  []*EnumConstant
}

func (*EnumDeclaration) Kind() string { return "enum_declaration" }

type EnumConstant struct {
	Base
	Name string
}

func (*EnumConstant) Kind() string { return "enum_constant" }

type FieldDeclaration struct {
	Base
	Modifiers   *Modifiers
	Type        *TypeRef
	Declarators []*VariableDeclarator
	Accessors   *AccessorList // non-nil for a property, e.g. `public Integer Count { get; set; }`.
}

func (*FieldDeclaration) Kind() string { return "field_declaration" }

// VariableDeclarator is `name` or `name = initializer`, shared by field
// and local-variable declarations.
type VariableDeclarator struct {
	Base
	Name        string
	Dimensions  int // trailing [] on the declarator itself, e.g. `int x[]`.
	Initializer Node
}

func (*VariableDeclarator) Kind() string { return "variable_declarator" }

type LocalVariableDeclaration struct {
	Base
	Type        *TypeRef
	Declarators []*VariableDeclarator
}

func (*LocalVariableDeclaration) Kind() string { return "local_variable_declaration" }

type MethodDeclaration struct {
	Base
	Modifiers  *Modifiers
	ReturnType *TypeRef
	Name       string
	Params     []*FormalParameter
	Body       *Block // nil for abstract/interface methods.
}

func (*MethodDeclaration) Kind() string { return "method_declaration" }

type FormalParameter struct {
	Base
	Final bool
	Type  *TypeRef
	Name  string
}

func (*FormalParameter) Kind() string { return "formal_parameter" }

type ConstructorDeclaration struct {
	Base
	Modifiers *Modifiers
	Name      string
	Params    []*FormalParameter
	Body      *ConstructorBody
}

func (*ConstructorDeclaration) Kind() string { return "constructor_declaration" }

type ConstructorBody struct {
	Base
	ExplicitInvocation *ExplicitConstructorInvocation
	Statements         []Node
}

func (*ConstructorBody) Kind() string { return "constructor_body" }

type ExplicitConstructorInvocation struct {
	Base
	Target    string // "this" or "super"
	Arguments []Node
}

func (*ExplicitConstructorInvocation) Kind() string { return "explicit_constructor_invocation" }

// --- modifiers / annotations ---

type Modifiers struct {
	Base
	Annotations []*Annotation
	Keywords    []string // public, private, static, final, override, ...
}

func (*Modifiers) Kind() string { return "modifiers" }

type Annotation struct {
	Base
	Name      string
	Arguments []*AnnotationKeyValue // empty for a bare `@TestSetup`-style annotation.
}

func (*Annotation) Kind() string { return "annotation" }

type AnnotationKeyValue struct {
	Base
	Key   string // empty for a single positional argument, e.g. @SuppressWarnings('PMD') vs @future(callout=true).
	Value Node
}

func (*AnnotationKeyValue) Kind() string { return "annotation_key_value" }

// --- accessors (property get/set) ---

type AccessorList struct {
	Base
	Accessors []*AccessorDeclaration
}

func (*AccessorList) Kind() string { return "accessor_list" }

type AccessorDeclaration struct {
	Base
	Modifiers *Modifiers
	Kind_     string // "get" or "set"
	Body      *Block // nil for `get;` shorthand.
}

func (*AccessorDeclaration) Kind() string { return "accessor_declaration" }

// --- statements ---

type Block struct {
	Base
	Statements []Node
}

func (*Block) Kind() string { return "block" }

type ExpressionStatement struct {
	Base
	Expr Node
}

func (*ExpressionStatement) Kind() string { return "expression_statement" }

type IfStatement struct {
	Base
	Condition Node
	Then      Node
	Else      Node // nil, or another IfStatement (else-if) or a Block.
}

func (*IfStatement) Kind() string { return "if_statement" }

type ForStatement struct {
	Base
	Init      []Node
	Condition Node
	Update    []Node
	Body      Node
}

func (*ForStatement) Kind() string { return "for_statement" }

type EnhancedForStatement struct {
	Base
	Type       *TypeRef
	Name       string
	Collection Node
	Body       Node
}

func (*EnhancedForStatement) Kind() string { return "enhanced_for_statement" }

type WhileStatement struct {
	Base
	Condition Node
	Body      Node
}

func (*WhileStatement) Kind() string { return "while_statement" }

type DoStatement struct {
	Base
	Body      Node
	Condition Node
}

func (*DoStatement) Kind() string { return "do_statement" }

type TryStatement struct {
	Base
	Body    *Block
	Catches []*CatchClause
	Finally *FinallyClause
}

func (*TryStatement) Kind() string { return "try_statement" }

type CatchClause struct {
	Base
	Param *CatchFormalParameter
	Body  *Block
}

func (*CatchClause) Kind() string { return "catch_clause" }

type CatchFormalParameter struct {
	Base
	Types []*TypeRef // Apex does not support multi-catch, but the grammar allows it structurally.
	Name  string
}

func (*CatchFormalParameter) Kind() string { return "catch_formal_parameter" }

type FinallyClause struct {
	Base
	Body *Block
}

func (*FinallyClause) Kind() string { return "finally_clause" }

type ReturnStatement struct {
	Base
	Value Node // nil for a bare `return;`.
}

func (*ReturnStatement) Kind() string { return "return_statement" }

type ThrowStatement struct {
	Base
	Value Node
}

func (*ThrowStatement) Kind() string { return "throw_statement" }

// RunAsStatement is Apex's `System.runAs(user) { ... }` sugar.
type RunAsStatement struct {
	Base
	Arguments []Node
	Body      *Block
}

func (*RunAsStatement) Kind() string { return "run_as_statement" }

// --- DML ---

type DmlType int

const (
	DmlInsert DmlType = iota
	DmlUpdate
	DmlDelete
	DmlUndelete
	DmlUpsert
	DmlMerge
)

// DmlSecurityMode is the optional `AS USER` / `AS SYSTEM` clause on a DML
// statement.
type DmlSecurityMode int

const (
	DmlSecurityModeNone DmlSecurityMode = iota
	DmlSecurityModeUser
	DmlSecurityModeSystem
)

type DmlExpression struct {
	Base
	Type     DmlType
	Security DmlSecurityMode
	Target   Node
	With     Node // the second operand of `merge a with b`, else nil.
}

func (*DmlExpression) Kind() string { return "dml_expression" }

// --- expressions ---

type AssignmentExpression struct {
	Base
	Left     Node
	Operator string // =, +=, -=, *=, /=, &=, |=, ^=, <<=, >>=, >>>=
	Right    Node
}

func (*AssignmentExpression) Kind() string { return "assignment_expression" }

type BinaryExpression struct {
	Base
	Left     Node
	Operator string
	Right    Node
}

func (*BinaryExpression) Kind() string { return "binary_expression" }

type UnaryExpression struct {
	Base
	Operator string
	Operand  Node
}

func (*UnaryExpression) Kind() string { return "unary_expression" }

// UpdateExpression is a pre/post increment or decrement (`x++`, `--x`).
type UpdateExpression struct {
	Base
	Operator string // ++ or --
	Operand  Node
	Prefix   bool
}

func (*UpdateExpression) Kind() string { return "update_expression" }

type TernaryExpression struct {
	Base
	Condition Node
	Then      Node
	Else      Node
}

func (*TernaryExpression) Kind() string { return "ternary_expression" }

type InstanceOfExpression struct {
	Base
	Left Node
	Type *TypeRef
}

func (*InstanceOfExpression) Kind() string { return "instanceof_expression" }

type CastExpression struct {
	Base
	Type   *TypeRef
	Value  Node
}

func (*CastExpression) Kind() string { return "cast_expression" }

type ParenthesizedExpression struct {
	Base
	Inner Node
}

func (*ParenthesizedExpression) Kind() string { return "parenthesized_expression" }

type MethodInvocation struct {
	Base
	Receiver  Node // nil for an unqualified call.
	Name      string
	Arguments []Node
}

func (*MethodInvocation) Kind() string { return "method_invocation" }

type FieldAccess struct {
	Base
	Receiver Node
	Field    string
}

func (*FieldAccess) Kind() string { return "field_access" }

type ArrayAccess struct {
	Base
	Array Node
	Index Node
}

func (*ArrayAccess) Kind() string { return "array_access" }

type ObjectCreationExpression struct {
	Base
	Type      *TypeRef
	Arguments []Node
	Body      []Node // anonymous-class body members; empty otherwise.
	BodyID    uintptr
}

func (*ObjectCreationExpression) Kind() string { return "object_creation_expression" }

type ArrayCreationExpression struct {
	Base
	ElementType *TypeRef
	Dimensions  []Node // one entry per [expr], possibly nil entries for trailing [].
	Initializer *ArrayInitializer
}

func (*ArrayCreationExpression) Kind() string { return "array_creation_expression" }

type MapCreationExpression struct {
	Base
	Type        *TypeRef
	Initializer *MapInitializer
}

func (*MapCreationExpression) Kind() string { return "map_creation_expression" }

type ArrayInitializer struct {
	Base
	Elements []Node
}

func (*ArrayInitializer) Kind() string { return "array_initializer" }

type MapInitializer struct {
	Base
	Entries []*MapEntry
}

func (*MapInitializer) Kind() string { return "map_initializer" }

type MapEntry struct {
	Base
	Key   Node
	Value Node
}

func (*MapEntry) Kind() string { return "map_entry" }

// QueryExpression wraps an inline SOQL or SOSL query. Per spec.md's
// semantic-rewriting Non-goal, the query body is preserved as a single
// whitespace-normalized opaque string rather than re-parsed.
type QueryExpression struct {
	Base
	IsSosl bool
	Body   string
}

func (*QueryExpression) Kind() string { return "query_expression" }

// --- types ---

// TypeRef is the shared representation for type_identifier,
// scoped_type_identifier, generic_type and array_type — spec.md's Type
// category. Array and generic shape is carried inline rather than as
// separate wrapper node types, since every expression-level consumer
// needs the same "name + arity + element type" view regardless of which
// grammar production produced it.
type TypeRef struct {
	Base
	Name          string   // possibly dotted, e.g. "System.Schema".
	TypeArguments []*TypeRef
	ArrayDims     int
}

func (*TypeRef) Kind() string { return "type" }

// --- literals / identifiers ---

type LiteralKind int

const (
	LiteralInt LiteralKind = iota
	LiteralLong
	LiteralDouble
	LiteralString
	LiteralBoolean
	LiteralNull
)

// Literal covers every literal token kind; Text is the exact source
// text (Apex string literals keep their own quoting and escapes, so no
// re-encoding happens here per the Non-goal on semantic rewriting).
type Literal struct {
	Base
	LitKind LiteralKind
	Text    string
}

func (*Literal) Kind() string { return "literal" }

type Identifier struct {
	Base
	Name string
}

func (*Identifier) Kind() string { return "identifier" }

// --- comments as standalone tree members ---

// DanglingComment is a standalone comment node the emitter renders as its
// text. internal/builder does not construct it: dangling comments (spec.md
// §4.3's "dangling" bucket, scenario S6), like pre/post comments, are
// carried in the comment map and emitted by internal/emitter from there.
type DanglingComment struct {
	Base
	Text         string
	IsBlock      bool
	HasEmbeddedNewline bool
}

func (*DanglingComment) Kind() string { return "dangling_comment" }
