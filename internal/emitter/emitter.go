// Package emitter implements spec.md §4.4: the structural recursion that
// turns a semantic tree into a single layout document, interleaving the
// comment map (internal/comment) around each node's own document the way
// spec.md §4.3 requires. Generalized from the teacher's writeNode
// type-switch (formerly internal/formatter/writer.go) from string
// concatenation to document construction.
package emitter

import (
	"fmt"

	"github.com/gregvale/apexfmt/internal/comment"
	"github.com/gregvale/apexfmt/internal/doc"
	"github.com/gregvale/apexfmt/internal/semantic"
)

const indentSize = 2

// Emitter holds the shared arena and comment map for one file's emission
// pass — mirroring internal/doc.Builder's "one per format call" lifetime.
type Emitter struct {
	b    *doc.Builder
	cmts comment.Map
}

// New returns an Emitter that allocates documents from b and pulls
// attached comments from cmts.
func New(b *doc.Builder, cmts comment.Map) *Emitter {
	return &Emitter{b: b, cmts: cmts}
}

// Emit returns the complete document for root: the file's declarations,
// each wrapped in its pre/post comments, separated by blank lines.
func (e *Emitter) Emit(root *semantic.Root) doc.Ref {
	return e.emitSeq(root.Declarations, true)
}

// emitSeq emits a sequence of statements or declarations, each preceded
// by its comment-wrapped document and separated by a hard newline; when
// topLevel, consecutive items get a blank line between them to match
// spec.md's "declarations get a blank line, statements don't" texture.
func (e *Emitter) emitSeq(nodes []semantic.Node, topLevel bool) doc.Ref {
	var items []doc.Ref
	for i, n := range nodes {
		if i > 0 {
			items = append(items, e.b.Newline())
			if topLevel {
				items = append(items, e.b.Newline())
			}
		}
		items = append(items, e.emit(n))
	}
	if len(items) == 0 {
		return e.b.Text("")
	}
	return e.b.Concat(items...)
}

// wrapNode flanks raw with any pre/post/dangling comments the comment map
// attaches to the CST node identified by id. Every site that renders a
// semantic node's own document — not just emit's dispatch below, but the
// dedicated helpers for declarators, parameters, catch clauses, annotation
// arguments and enum constants that never pass through emit — calls this
// directly, so spec.md §4.3's comment map is consulted everywhere a
// comment could have attached, not only at the top level.
func (e *Emitter) wrapNode(id uintptr, raw doc.Ref) doc.Ref {
	bucket := e.cmts[id]
	if bucket == nil {
		return raw
	}

	var parts []doc.Ref
	for _, c := range bucket.Pre {
		parts = append(parts, e.comment(c), e.b.Newline())
	}
	parts = append(parts, raw)
	for _, c := range bucket.Post {
		parts = append(parts, e.b.Text(" "), e.comment(c))
	}
	for _, c := range bucket.Dangling {
		parts = append(parts, e.b.Newline(), e.comment(c))
	}
	return e.b.Concat(parts...)
}

// comment renders a single comment's text, forcing a hard break around it
// when it embeds a newline — Open Question decision 2 in DESIGN.md.
func (e *Emitter) comment(c comment.Comment) doc.Ref {
	if c.HasEmbeddedNewline {
		return e.b.Concat(e.b.Newline(), e.b.Text(c.Text), e.b.Newline())
	}
	return e.b.Text(c.Text)
}

// emit is the single entry point every recursive call in this package uses
// to render a child node: it wraps emitNode's dispatch in wrapNode so that
// arguments, sub-expressions, and statements nested arbitrarily deep all
// pick up their own attached comments, not just direct emitSeq items.
func (e *Emitter) emit(n semantic.Node) doc.Ref {
	return e.wrapNode(n.CSTID(), e.emitNode(n))
}

func (e *Emitter) emitNode(n semantic.Node) doc.Ref {
	switch v := n.(type) {
	case *semantic.ClassDeclaration:
		return e.classDecl(v)
	case *semantic.InterfaceDeclaration:
		return e.interfaceDecl(v)
	case *semantic.EnumDeclaration:
		return e.enumDecl(v)
	case *semantic.FieldDeclaration:
		return e.fieldDecl(v)
	case *semantic.MethodDeclaration:
		return e.methodDecl(v)
	case *semantic.ConstructorDeclaration:
		return e.constructorDecl(v)
	case *semantic.Block:
		return e.block(v)
	case *semantic.ExpressionStatement:
		return e.b.Concat(e.emit(v.Expr), e.b.Text(";"))
	case *semantic.IfStatement:
		return e.ifStmt(v)
	case *semantic.ForStatement:
		return e.forStmt(v)
	case *semantic.EnhancedForStatement:
		return e.enhancedForStmt(v)
	case *semantic.WhileStatement:
		return e.b.Concat(e.b.Text("while ("), e.emit(v.Condition), e.b.Text(") "), e.emit(v.Body))
	case *semantic.DoStatement:
		return e.b.Concat(e.b.Text("do "), e.emit(v.Body), e.b.Text(" while ("), e.emit(v.Condition), e.b.Text(");"))
	case *semantic.TryStatement:
		return e.tryStmt(v)
	case *semantic.ReturnStatement:
		if v.Value == nil {
			return e.b.Text("return;")
		}
		return e.b.Concat(e.b.Text("return "), e.emit(v.Value), e.b.Text(";"))
	case *semantic.ThrowStatement:
		return e.b.Concat(e.b.Text("throw "), e.emit(v.Value), e.b.Text(";"))
	case *semantic.RunAsStatement:
		return e.runAsStmt(v)
	case *semantic.DmlExpression:
		return e.dmlExpr(v)
	case *semantic.LocalVariableDeclaration:
		return e.localVarDecl(v)
	case *semantic.AssignmentExpression:
		return e.b.Concat(e.emit(v.Left), e.b.Text(" "+v.Operator+" "), e.emit(v.Right))
	case *semantic.BinaryExpression:
		return e.b.Concat(e.emit(v.Left), e.b.Text(" "+v.Operator+" "), e.emit(v.Right))
	case *semantic.UnaryExpression:
		return e.b.Concat(e.b.Text(v.Operator), e.emit(v.Operand))
	case *semantic.UpdateExpression:
		if v.Prefix {
			return e.b.Concat(e.b.Text(v.Operator), e.emit(v.Operand))
		}
		return e.b.Concat(e.emit(v.Operand), e.b.Text(v.Operator))
	case *semantic.TernaryExpression:
		return e.b.Group(e.b.Concat(
			e.emit(v.Condition), e.b.Text(" ? "), e.emit(v.Then), e.b.Text(" : "), e.emit(v.Else),
		))
	case *semantic.InstanceOfExpression:
		return e.b.Concat(e.emit(v.Left), e.b.Text(" instanceof "), e.typeRef(v.Type))
	case *semantic.CastExpression:
		return e.b.Concat(e.b.Text("("), e.typeRef(v.Type), e.b.Text(") "), e.emit(v.Value))
	case *semantic.ParenthesizedExpression:
		return e.b.Concat(e.b.Text("("), e.emit(v.Inner), e.b.Text(")"))
	case *semantic.MethodInvocation:
		return e.methodInvocation(v)
	case *semantic.FieldAccess:
		return e.b.Concat(e.emit(v.Receiver), e.b.Text("."+v.Field))
	case *semantic.ArrayAccess:
		return e.b.Concat(e.emit(v.Array), e.b.Text("["), e.emit(v.Index), e.b.Text("]"))
	case *semantic.ObjectCreationExpression:
		return e.objectCreation(v)
	case *semantic.ArrayCreationExpression:
		return e.arrayCreation(v)
	case *semantic.MapCreationExpression:
		return e.mapCreation(v)
	case *semantic.ArrayInitializer:
		return e.b.List("{", "}", indentSize, e.emitAll(v.Elements))
	case *semantic.MapInitializer:
		return e.mapInitializer(v)
	case *semantic.QueryExpression:
		return e.b.Concat(e.b.Text("["), e.b.Text(v.Body), e.b.Text("]"))
	case *semantic.TypeRef:
		return e.typeRef(v)
	case *semantic.Literal:
		return e.b.Text(v.Text)
	case *semantic.Identifier:
		return e.b.Text(v.Name)
	case *semantic.DanglingComment:
		return e.b.Text(v.Text)
	default:
		return e.b.Text(fmt.Sprintf("/* unhandled: %s */", n.Kind()))
	}
}

func (e *Emitter) emitAll(nodes []semantic.Node) []doc.Ref {
	out := make([]doc.Ref, len(nodes))
	for i, n := range nodes {
		out[i] = e.emit(n)
	}
	return out
}

// --- declarations ---

func (e *Emitter) modifiers(m *semantic.Modifiers) doc.Ref {
	if m == nil {
		return e.b.Text("")
	}
	var parts []doc.Ref
	for _, a := range m.Annotations {
		parts = append(parts, e.wrapNode(a.CSTID(), e.annotation(a)), e.b.Newline())
	}
	for _, k := range m.Keywords {
		parts = append(parts, e.b.Text(k+" "))
	}
	return e.b.Concat(parts...)
}

func (e *Emitter) annotation(a *semantic.Annotation) doc.Ref {
	if len(a.Arguments) == 0 {
		return e.b.Concat(e.b.Text("@"), e.b.Text(a.Name))
	}
	args := make([]doc.Ref, len(a.Arguments))
	for i, kv := range a.Arguments {
		var raw doc.Ref
		if kv.Key == "" {
			raw = e.emit(kv.Value)
		} else {
			raw = e.b.Concat(e.b.Text(kv.Key+"="), e.emit(kv.Value))
		}
		args[i] = e.wrapNode(kv.CSTID(), raw)
	}
	return e.b.Concat(e.b.Text("@"), e.b.Text(a.Name), e.b.List("(", ")", indentSize, args))
}

func (e *Emitter) classDecl(v *semantic.ClassDeclaration) doc.Ref {
	parts := []doc.Ref{e.modifiers(v.Modifiers), e.b.Text("class "), e.b.Text(v.Name)}
	if v.SuperClass != nil {
		parts = append(parts, e.b.Text(" extends "), e.typeRef(v.SuperClass))
	}
	if len(v.Interfaces) > 0 {
		parts = append(parts, e.b.Text(" implements "), e.typeRefList(v.Interfaces))
	}
	parts = append(parts, e.b.Text(" "), e.body(v.BodyID, v.Body))
	return e.b.Concat(parts...)
}

func (e *Emitter) interfaceDecl(v *semantic.InterfaceDeclaration) doc.Ref {
	parts := []doc.Ref{e.modifiers(v.Modifiers), e.b.Text("interface "), e.b.Text(v.Name)}
	if len(v.Interfaces) > 0 {
		parts = append(parts, e.b.Text(" extends "), e.typeRefList(v.Interfaces))
	}
	parts = append(parts, e.b.Text(" "), e.body(v.BodyID, v.Body))
	return e.b.Concat(parts...)
}

func (e *Emitter) enumDecl(v *semantic.EnumDeclaration) doc.Ref {
	consts := make([]doc.Ref, len(v.Constants))
	for i, c := range v.Constants {
		consts[i] = e.wrapNode(c.CSTID(), e.b.Text(c.Name))
	}
	return e.b.Concat(
		e.modifiers(v.Modifiers), e.b.Text("enum "), e.b.Text(v.Name), e.b.Text(" "),
		e.b.List("{", "}", indentSize, consts),
	)
}

// body emits a brace-delimited member/statement list. bodyID is the CST
// identity of the enclosing bracket-composite node itself (the
// class_body/block node, not its owner's declaration node) — dangling
// comments (spec.md §4.3, scenario S6) are attached there, so an
// otherwise-empty body can still surface them.
func (e *Emitter) body(bodyID uintptr, members []semantic.Node) doc.Ref {
	dangling := e.danglingComments(bodyID)

	if len(members) == 0 && len(dangling) == 0 {
		return e.b.Text("{}")
	}

	var innerParts []doc.Ref
	innerParts = append(innerParts, e.b.Newline(), e.emitSeq(members, true))
	for _, c := range dangling {
		if len(members) > 0 {
			innerParts = append(innerParts, e.b.Newline())
		}
		innerParts = append(innerParts, e.comment(c))
	}

	inner := e.b.Indent(indentSize, e.b.Concat(innerParts...))
	return e.b.Concat(e.b.Text("{"), inner, e.b.Newline(), e.b.Text("}"))
}

func (e *Emitter) danglingComments(id uintptr) []comment.Comment {
	if id == 0 {
		return nil
	}
	bucket := e.cmts[id]
	if bucket == nil {
		return nil
	}
	return bucket.Dangling
}

func (e *Emitter) typeRefList(ts []*semantic.TypeRef) doc.Ref {
	items := make([]doc.Ref, len(ts))
	for i, t := range ts {
		items[i] = e.typeRef(t)
	}
	return e.b.Join(e.b.Text(", "), items)
}

func (e *Emitter) typeRef(t *semantic.TypeRef) doc.Ref {
	parts := []doc.Ref{e.b.Text(t.Name)}
	if len(t.TypeArguments) > 0 {
		parts = append(parts, e.b.Text("<"), e.typeRefList(t.TypeArguments), e.b.Text(">"))
	}
	for i := 0; i < t.ArrayDims; i++ {
		parts = append(parts, e.b.Text("[]"))
	}
	return e.wrapNode(t.CSTID(), e.b.Concat(parts...))
}

func (e *Emitter) fieldDecl(v *semantic.FieldDeclaration) doc.Ref {
	parts := []doc.Ref{e.modifiers(v.Modifiers), e.typeRef(v.Type), e.b.Text(" "), e.declaratorList(v.Declarators)}
	if v.Accessors != nil {
		parts = append(parts, e.b.Text(" "), e.accessorList(v.Accessors))
		return e.b.Concat(parts...)
	}
	parts = append(parts, e.b.Text(";"))
	return e.b.Concat(parts...)
}

func (e *Emitter) accessorList(al *semantic.AccessorList) doc.Ref {
	items := make([]doc.Ref, len(al.Accessors))
	for i, a := range al.Accessors {
		items[i] = e.accessorDecl(a)
	}
	return e.b.Concat(e.b.Text("{ "), e.b.Join(e.b.Text(" "), items), e.b.Text(" }"))
}

func (e *Emitter) accessorDecl(a *semantic.AccessorDeclaration) doc.Ref {
	if a.Body == nil {
		return e.b.Concat(e.modifiers(a.Modifiers), e.b.Text(a.Kind_+";"))
	}
	return e.b.Concat(e.modifiers(a.Modifiers), e.b.Text(a.Kind_+" "), e.block(a.Body))
}

func (e *Emitter) declaratorList(decls []*semantic.VariableDeclarator) doc.Ref {
	items := make([]doc.Ref, len(decls))
	for i, d := range decls {
		var raw doc.Ref
		if d.Initializer == nil {
			raw = e.b.Text(d.Name)
		} else {
			raw = e.b.Concat(e.b.Text(d.Name+" = "), e.emit(d.Initializer))
		}
		items[i] = e.wrapNode(d.CSTID(), raw)
	}
	return e.b.Join(e.b.Text(", "), items)
}

func (e *Emitter) localVarDecl(v *semantic.LocalVariableDeclaration) doc.Ref {
	return e.b.Concat(e.typeRef(v.Type), e.b.Text(" "), e.declaratorList(v.Declarators), e.b.Text(";"))
}

func (e *Emitter) paramList(params []*semantic.FormalParameter) doc.Ref {
	items := make([]doc.Ref, len(params))
	for i, p := range params {
		prefix := ""
		if p.Final {
			prefix = "final "
		}
		raw := e.b.Concat(e.b.Text(prefix), e.typeRef(p.Type), e.b.Text(" "), e.b.Text(p.Name))
		items[i] = e.wrapNode(p.CSTID(), raw)
	}
	return e.b.List("(", ")", indentSize, items)
}

func (e *Emitter) methodDecl(v *semantic.MethodDeclaration) doc.Ref {
	parts := []doc.Ref{
		e.modifiers(v.Modifiers), e.typeRef(v.ReturnType), e.b.Text(" "), e.b.Text(v.Name),
		e.paramList(v.Params),
	}
	if v.Body == nil {
		parts = append(parts, e.b.Text(";"))
	} else {
		parts = append(parts, e.b.Text(" "), e.block(v.Body))
	}
	return e.b.Concat(parts...)
}

func (e *Emitter) constructorDecl(v *semantic.ConstructorDeclaration) doc.Ref {
	var stmts []semantic.Node
	if v.Body.ExplicitInvocation != nil {
		stmts = append(stmts, explicitInvocationAsStatement(v.Body.ExplicitInvocation))
	}
	stmts = append(stmts, v.Body.Statements...)
	bodyDoc := e.body(v.Body.CSTID(), stmts)
	return e.b.Concat(
		e.modifiers(v.Modifiers), e.b.Text(v.Name), e.paramList(v.Params), e.b.Text(" "), bodyDoc,
	)
}

// explicitInvocationAsStatement adapts an ExplicitConstructorInvocation
// (which is not itself a statement variant) into an ExpressionStatement
// wrapping a MethodInvocation, so the shared statement-emission path
// handles it without a dedicated case.
func explicitInvocationAsStatement(eci *semantic.ExplicitConstructorInvocation) semantic.Node {
	return &semantic.ExpressionStatement{
		Base: eci.Base,
		Expr: &semantic.MethodInvocation{Base: eci.Base, Name: eci.Target, Arguments: eci.Arguments},
	}
}

// --- statements ---

func (e *Emitter) block(b *semantic.Block) doc.Ref {
	return e.body(b.CSTID(), b.Statements)
}

func (e *Emitter) ifStmt(v *semantic.IfStatement) doc.Ref {
	parts := []doc.Ref{e.b.Text("if ("), e.emit(v.Condition), e.b.Text(") "), e.emit(v.Then)}
	if v.Else != nil {
		parts = append(parts, e.b.Text(" else "), e.emit(v.Else))
	}
	return e.b.Concat(parts...)
}

func (e *Emitter) forStmt(v *semantic.ForStatement) doc.Ref {
	init := e.emitAll(v.Init)
	update := e.emitAll(v.Update)
	cond := e.b.Text("")
	if v.Condition != nil {
		cond = e.emit(v.Condition)
	}
	header := e.b.Concat(
		e.b.Text("for ("), e.b.Join(e.b.Text(", "), init), e.b.Text("; "), cond, e.b.Text("; "),
		e.b.Join(e.b.Text(", "), update), e.b.Text(") "),
	)
	return e.b.Concat(header, e.emit(v.Body))
}

func (e *Emitter) enhancedForStmt(v *semantic.EnhancedForStatement) doc.Ref {
	header := e.b.Concat(
		e.b.Text("for ("), e.typeRef(v.Type), e.b.Text(" "+v.Name+" : "), e.emit(v.Collection), e.b.Text(") "),
	)
	return e.b.Concat(header, e.emit(v.Body))
}

func (e *Emitter) tryStmt(v *semantic.TryStatement) doc.Ref {
	parts := []doc.Ref{e.b.Text("try "), e.block(v.Body)}
	for _, c := range v.Catches {
		types := make([]doc.Ref, len(c.Param.Types))
		for i, t := range c.Param.Types {
			types[i] = e.typeRef(t)
		}
		paramDoc := e.wrapNode(c.Param.CSTID(), e.b.Text(c.Param.Name))
		header := e.b.Concat(
			e.b.Text(" catch ("), e.b.Join(e.b.Text(" | "), types), e.b.Text(" "), paramDoc, e.b.Text(") "),
		)
		parts = append(parts, e.wrapNode(c.CSTID(), header), e.block(c.Body))
	}
	if v.Finally != nil {
		parts = append(parts, e.wrapNode(v.Finally.CSTID(), e.b.Text(" finally ")), e.block(v.Finally.Body))
	}
	return e.b.Concat(parts...)
}

func (e *Emitter) runAsStmt(v *semantic.RunAsStatement) doc.Ref {
	args := e.emitAll(v.Arguments)
	return e.b.Concat(
		e.b.Text("System.runAs"), e.b.List("(", ")", indentSize, args), e.b.Text(" "), e.block(v.Body),
	)
}

func (e *Emitter) dmlExpr(v *semantic.DmlExpression) doc.Ref {
	keyword := [...]string{"insert", "update", "delete", "undelete", "upsert", "merge"}[v.Type]
	parts := []doc.Ref{e.b.Text(keyword + " ")}
	switch v.Security {
	case semantic.DmlSecurityModeUser:
		parts = append(parts, e.b.Text("as user "))
	case semantic.DmlSecurityModeSystem:
		parts = append(parts, e.b.Text("as system "))
	}
	parts = append(parts, e.emit(v.Target))
	if v.With != nil {
		parts = append(parts, e.b.Text(" with "), e.emit(v.With))
	}
	return e.b.Concat(parts...)
}

// --- expressions ---

func (e *Emitter) methodInvocation(v *semantic.MethodInvocation) doc.Ref {
	args := e.emitAll(v.Arguments)
	call := e.b.Concat(e.b.Text(v.Name), e.b.List("(", ")", indentSize, args))
	if v.Receiver == nil {
		return call
	}
	return e.b.Concat(e.emit(v.Receiver), e.b.Text("."), call)
}

func (e *Emitter) objectCreation(v *semantic.ObjectCreationExpression) doc.Ref {
	args := e.emitAll(v.Arguments)
	parts := []doc.Ref{e.b.Text("new "), e.typeRef(v.Type), e.b.List("(", ")", indentSize, args)}
	if len(v.Body) > 0 {
		parts = append(parts, e.b.Text(" "), e.body(v.BodyID, v.Body))
	}
	return e.b.Concat(parts...)
}

func (e *Emitter) arrayCreation(v *semantic.ArrayCreationExpression) doc.Ref {
	parts := []doc.Ref{e.b.Text("new "), e.typeRef(v.ElementType)}
	for _, d := range v.Dimensions {
		if d == nil {
			parts = append(parts, e.b.Text("[]"))
			continue
		}
		parts = append(parts, e.b.Text("["), e.emit(d), e.b.Text("]"))
	}
	if v.Initializer != nil {
		parts = append(parts, e.b.Text(" "), e.b.List("{", "}", indentSize, e.emitAll(v.Initializer.Elements)))
	}
	return e.b.Concat(parts...)
}

func (e *Emitter) mapCreation(v *semantic.MapCreationExpression) doc.Ref {
	parts := []doc.Ref{e.b.Text("new "), e.typeRef(v.Type)}
	if v.Initializer != nil {
		parts = append(parts, e.b.Text(" "), e.mapInitializer(v.Initializer))
	} else {
		parts = append(parts, e.b.Text("()"))
	}
	return e.b.Concat(parts...)
}

func (e *Emitter) mapInitializer(v *semantic.MapInitializer) doc.Ref {
	entries := make([]doc.Ref, len(v.Entries))
	for i, ent := range v.Entries {
		raw := e.b.Concat(e.emit(ent.Key), e.b.Text(" => "), e.emit(ent.Value))
		entries[i] = e.wrapNode(ent.CSTID(), raw)
	}
	return e.b.List("{", "}", indentSize, entries)
}
