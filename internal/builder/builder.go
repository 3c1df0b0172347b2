// Package builder converts an Apex CST into the semantic tree of
// internal/semantic (spec.md §4.2): a dispatch table keyed on CST node
// kind, generalized from the teacher's classifyLine/tryXxx ordered
// dispatch (internal/rules/format's predecessor, internal/parser/parser.go)
// to CST node-kind classification.
package builder

import (
	"github.com/gregvale/apexfmt/internal/apexerr"
	"github.com/gregvale/apexfmt/internal/cst"
	"github.com/gregvale/apexfmt/internal/semantic"
)

// Build lifts the CST rooted at root into a semantic.Root. It returns
// apexerr.UnknownNodeError if a CST kind has no registered builder, or
// apexerr.MissingChildError if a mandatory child lookup fails.
func Build(root *cst.Node) (*semantic.Root, error) {
	decls := make([]semantic.Node, 0, root.NamedChildCount())
	for _, c := range root.Children() {
		n, err := buildNode(c)
		if err != nil {
			return nil, err
		}
		if n != nil {
			decls = append(decls, n)
		}
	}
	return &semantic.Root{Base: baseOf(root), Declarations: decls}, nil
}

func baseOf(n *cst.Node) semantic.Base {
	return semantic.Base{
		Rng: apexerr.Range{
			StartByte: n.StartByte(), EndByte: n.EndByte(),
			StartRow: n.StartRow(), EndRow: n.EndRow(),
		},
		ID: n.ID(),
	}
}

// buildFunc builds one semantic node from a CST node of a known kind.
type buildFunc func(*cst.Node) (semantic.Node, error)

var dispatch map[string]buildFunc

func init() {
	dispatch = map[string]buildFunc{
		"class_declaration":      buildClassDeclaration,
		"interface_declaration":  buildInterfaceDeclaration,
		"enum_declaration":       buildEnumDeclaration,
		"field_declaration":      buildFieldDeclaration,
		"accessor_list":          buildAccessorList,
		"accessor_declaration":   buildAccessorDeclaration,
		"method_declaration":     buildMethodDeclaration,
		"constructor_declaration": buildConstructorDeclaration,
		"block":                  buildBlock,
		"local_variable_declaration": buildLocalVariableDeclaration,
		"expression_statement":   buildExpressionStatement,
		"if_statement":           buildIfStatement,
		"for_statement":          buildForStatement,
		"enhanced_for_statement": buildEnhancedForStatement,
		"while_statement":        buildWhileStatement,
		"do_statement":           buildDoStatement,
		"try_statement":          buildTryStatement,
		"return_statement":       buildReturnStatement,
		"throw_statement":        buildThrowStatement,
		"run_as_statement":       buildRunAsStatement,
		"dml_expression":         buildDmlExpression,
		"local_variable_expression": buildLocalVariableDeclaration,

		"assignment_expression":    buildAssignmentExpression,
		"binary_expression":        buildBinaryExpression,
		"unary_expression":         buildUnaryExpression,
		"update_expression":        buildUpdateExpression,
		"ternary_expression":       buildTernaryExpression,
		"instanceof_expression":    buildInstanceOfExpression,
		"cast_expression":          buildCastExpression,
		"parenthesized_expression": buildParenthesizedExpression,
		"method_invocation":        buildMethodInvocation,
		"field_access":             buildFieldAccess,
		"array_access":             buildArrayAccess,
		"object_creation_expression": buildObjectCreationExpression,
		"array_creation_expression":  buildArrayCreationExpression,
		"map_creation_expression":    buildMapCreationExpression,
		"query_expression":           buildQueryExpression,

		"identifier":     buildIdentifier,
		"type_identifier": buildTypeRef,
		"int":            buildLiteral(semantic.LiteralInt),
		"long":           buildLiteral(semantic.LiteralLong),
		"double":         buildLiteral(semantic.LiteralDouble),
		"string_literal":  buildLiteral(semantic.LiteralString),
		"boolean":         buildLiteral(semantic.LiteralBoolean),
		"null_literal":    buildLiteral(semantic.LiteralNull),
	}
}

func buildNode(n *cst.Node) (semantic.Node, error) {
	if n.IsError() {
		return nil, &apexerr.ParseError{Kind: n.Kind(), Range: rangeOf(n), Snippet: snippet(n)}
	}
	fn, ok := dispatch[n.Kind()]
	if !ok {
		return nil, &apexerr.UnknownNodeError{Kind: n.Kind(), ParentKind: parentKind(n)}
	}
	return fn(n)
}

func parentKind(n *cst.Node) string {
	if p := n.Parent(); p != nil {
		return p.Kind()
	}
	return "<root>"
}

func rangeOf(n *cst.Node) apexerr.Range {
	return apexerr.Range{StartByte: n.StartByte(), EndByte: n.EndByte(), StartRow: n.StartRow(), EndRow: n.EndRow()}
}

func snippet(n *cst.Node) string {
	text := n.Text()
	const maxLen = 60
	if len(text) > maxLen {
		return text[:maxLen] + "…"
	}
	return text
}

func mustChild(n *cst.Node, field string) (*cst.Node, error) {
	c := n.ChildByField(field)
	if c == nil {
		return nil, &apexerr.MissingChildError{ParentKind: n.Kind(), FieldOrKind: field}
	}
	return c, nil
}

// --- declarations ---

func buildClassDeclaration(n *cst.Node) (semantic.Node, error) {
	name, err := mustChild(n, "name")
	if err != nil {
		return nil, err
	}

	mods, err := buildModifiersOpt(n)
	if err != nil {
		return nil, err
	}

	var super *semantic.TypeRef
	if sc := n.ChildByField("superclass"); sc != nil {
		t, err := buildTypeRefNode(sc.FirstChild())
		if err != nil {
			return nil, err
		}
		super = t
	}

	ifaces, err := buildInterfaceListOpt(n)
	if err != nil {
		return nil, err
	}

	body, err := mustChild(n, "body")
	if err != nil {
		return nil, err
	}
	members, err := buildMembers(body)
	if err != nil {
		return nil, err
	}

	return &semantic.ClassDeclaration{
		Base: baseOf(n), Modifiers: mods, Name: name.Text(),
		SuperClass: super, Interfaces: ifaces, Body: members, BodyID: body.ID(),
	}, nil
}

func buildInterfaceDeclaration(n *cst.Node) (semantic.Node, error) {
	name, err := mustChild(n, "name")
	if err != nil {
		return nil, err
	}
	mods, err := buildModifiersOpt(n)
	if err != nil {
		return nil, err
	}
	ifaces, err := buildInterfaceListOpt(n)
	if err != nil {
		return nil, err
	}
	body, err := mustChild(n, "body")
	if err != nil {
		return nil, err
	}
	members, err := buildMembers(body)
	if err != nil {
		return nil, err
	}
	return &semantic.InterfaceDeclaration{
		Base: baseOf(n), Modifiers: mods, Name: name.Text(), Interfaces: ifaces, Body: members, BodyID: body.ID(),
	}, nil
}

func buildEnumDeclaration(n *cst.Node) (semantic.Node, error) {
	name, err := mustChild(n, "name")
	if err != nil {
		return nil, err
	}
	mods, err := buildModifiersOpt(n)
	if err != nil {
		return nil, err
	}
	body, err := mustChild(n, "body")
	if err != nil {
		return nil, err
	}
	var consts []*semantic.EnumConstant
	for _, ec := range body.ChildrenByKind("enum_constant") {
		consts = append(consts, &semantic.EnumConstant{Base: baseOf(ec), Name: ec.Text()})
	}
	return &semantic.EnumDeclaration{Base: baseOf(n), Modifiers: mods, Name: name.Text(), Constants: consts}, nil
}

func buildMembers(body *cst.Node) ([]semantic.Node, error) {
	members := make([]semantic.Node, 0, body.NamedChildCount())
	for _, c := range body.Children() {
		n, err := buildNode(c)
		if err != nil {
			return nil, err
		}
		if n != nil {
			members = append(members, n)
		}
	}
	return members, nil
}

func buildInterfaceListOpt(n *cst.Node) ([]*semantic.TypeRef, error) {
	ifaceNode := n.ChildByField("interfaces")
	if ifaceNode == nil {
		return nil, nil
	}
	var out []*semantic.TypeRef
	for _, t := range ifaceNode.Children() {
		tr, err := buildTypeRefNode(t)
		if err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	return out, nil
}

func buildModifiersOpt(n *cst.Node) (*semantic.Modifiers, error) {
	m := n.ChildByField("modifiers")
	if m == nil {
		m = n.ChildByKind("modifiers")
	}
	if m == nil {
		return nil, nil
	}

	var annos []*semantic.Annotation
	var keywords []string
	for _, c := range m.Children() {
		switch c.Kind() {
		case "annotation":
			a, err := buildAnnotation(c)
			if err != nil {
				return nil, err
			}
			annos = append(annos, a)
		default:
			keywords = append(keywords, c.Text())
		}
	}
	return &semantic.Modifiers{Base: baseOf(m), Annotations: annos, Keywords: keywords}, nil
}

func buildAnnotation(n *cst.Node) (*semantic.Annotation, error) {
	name, err := mustChild(n, "name")
	if err != nil {
		return nil, err
	}
	var args []*semantic.AnnotationKeyValue
	if argList := n.ChildByKind("annotation_argument_list"); argList != nil {
		for _, kv := range argList.Children() {
			if kv.Kind() != "annotation_key_value" {
				val, err := buildNode(kv)
				if err != nil {
					return nil, err
				}
				args = append(args, &semantic.AnnotationKeyValue{Base: baseOf(kv), Value: val})
				continue
			}
			key, _ := kv.ChildValueByField("key")
			valNode, err := mustChild(kv, "value")
			if err != nil {
				return nil, err
			}
			val, err := buildNode(valNode)
			if err != nil {
				return nil, err
			}
			args = append(args, &semantic.AnnotationKeyValue{Base: baseOf(kv), Key: key, Value: val})
		}
	}
	return &semantic.Annotation{Base: baseOf(n), Name: name.Text(), Arguments: args}, nil
}

func buildFieldDeclaration(n *cst.Node) (semantic.Node, error) {
	mods, err := buildModifiersOpt(n)
	if err != nil {
		return nil, err
	}
	typeNode, err := mustChild(n, "type")
	if err != nil {
		return nil, err
	}
	t, err := buildTypeRefNode(typeNode)
	if err != nil {
		return nil, err
	}
	decls, err := buildDeclarators(n)
	if err != nil {
		return nil, err
	}

	var accessors *semantic.AccessorList
	if al := n.ChildByKind("accessor_list"); al != nil {
		a, err := buildAccessorList(al)
		if err != nil {
			return nil, err
		}
		accessors = a.(*semantic.AccessorList)
	}

	return &semantic.FieldDeclaration{Base: baseOf(n), Modifiers: mods, Type: t, Declarators: decls, Accessors: accessors}, nil
}

func buildAccessorList(n *cst.Node) (semantic.Node, error) {
	var accessors []*semantic.AccessorDeclaration
	for _, a := range n.ChildrenByKind("accessor_declaration") {
		ad, err := buildAccessorDeclaration(a)
		if err != nil {
			return nil, err
		}
		accessors = append(accessors, ad.(*semantic.AccessorDeclaration))
	}
	return &semantic.AccessorList{Base: baseOf(n), Accessors: accessors}, nil
}

func buildAccessorDeclaration(n *cst.Node) (semantic.Node, error) {
	mods, err := buildModifiersOpt(n)
	if err != nil {
		return nil, err
	}

	kw := "get"
	if text := n.Text(); len(text) >= 3 && (text[:3] == "set" || text[:3] == "Set") {
		kw = "set"
	}

	var body *semantic.Block
	if bodyNode := n.ChildByField("body"); bodyNode != nil {
		b, err := buildBlock(bodyNode)
		if err != nil {
			return nil, err
		}
		body = b.(*semantic.Block)
	}

	return &semantic.AccessorDeclaration{Base: baseOf(n), Modifiers: mods, Kind_: kw, Body: body}, nil
}

func buildLocalVariableDeclaration(n *cst.Node) (semantic.Node, error) {
	typeNode, err := mustChild(n, "type")
	if err != nil {
		return nil, err
	}
	t, err := buildTypeRefNode(typeNode)
	if err != nil {
		return nil, err
	}
	decls, err := buildDeclarators(n)
	if err != nil {
		return nil, err
	}
	return &semantic.LocalVariableDeclaration{Base: baseOf(n), Type: t, Declarators: decls}, nil
}

func buildDeclarators(n *cst.Node) ([]*semantic.VariableDeclarator, error) {
	var out []*semantic.VariableDeclarator
	for _, d := range n.ChildrenByKind("variable_declarator") {
		name, err := mustChild(d, "name")
		if err != nil {
			return nil, err
		}
		var init semantic.Node
		if initNode := d.ChildByField("value"); initNode != nil {
			v, err := buildNode(initNode)
			if err != nil {
				return nil, err
			}
			init = v
		}
		out = append(out, &semantic.VariableDeclarator{Base: baseOf(d), Name: name.Text(), Initializer: init})
	}
	return out, nil
}

func buildMethodDeclaration(n *cst.Node) (semantic.Node, error) {
	mods, err := buildModifiersOpt(n)
	if err != nil {
		return nil, err
	}
	rtNode, err := mustChild(n, "type")
	if err != nil {
		return nil, err
	}
	rt, err := buildTypeRefNode(rtNode)
	if err != nil {
		return nil, err
	}
	name, err := mustChild(n, "name")
	if err != nil {
		return nil, err
	}
	params, err := buildParams(n)
	if err != nil {
		return nil, err
	}

	var body *semantic.Block
	if bodyNode := n.ChildByField("body"); bodyNode != nil {
		b, err := buildBlock(bodyNode)
		if err != nil {
			return nil, err
		}
		body = b.(*semantic.Block)
	}

	return &semantic.MethodDeclaration{
		Base: baseOf(n), Modifiers: mods, ReturnType: rt, Name: name.Text(), Params: params, Body: body,
	}, nil
}

func buildConstructorDeclaration(n *cst.Node) (semantic.Node, error) {
	mods, err := buildModifiersOpt(n)
	if err != nil {
		return nil, err
	}
	name, err := mustChild(n, "name")
	if err != nil {
		return nil, err
	}
	params, err := buildParams(n)
	if err != nil {
		return nil, err
	}
	bodyNode, err := mustChild(n, "body")
	if err != nil {
		return nil, err
	}

	var stmts []semantic.Node
	for _, c := range bodyNode.Children() {
		if c.Kind() == "explicit_constructor_invocation" {
			continue
		}
		s, err := buildNode(c)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}

	var eci *semantic.ExplicitConstructorInvocation
	if eciNode := bodyNode.ChildByKind("explicit_constructor_invocation"); eciNode != nil {
		args, err := buildArgumentList(eciNode)
		if err != nil {
			return nil, err
		}
		eci = &semantic.ExplicitConstructorInvocation{
			Base: baseOf(eciNode), Target: eciNode.FirstChild().Text(), Arguments: args,
		}
	}

	body := &semantic.ConstructorBody{Base: baseOf(bodyNode), ExplicitInvocation: eci, Statements: stmts}
	return &semantic.ConstructorDeclaration{Base: baseOf(n), Modifiers: mods, Name: name.Text(), Params: params, Body: body}, nil
}

func buildParams(n *cst.Node) ([]*semantic.FormalParameter, error) {
	paramsNode := n.ChildByField("parameters")
	if paramsNode == nil {
		paramsNode = n.ChildByKind("formal_parameters")
	}
	if paramsNode == nil {
		return nil, nil
	}
	var out []*semantic.FormalParameter
	for _, p := range paramsNode.ChildrenByKind("formal_parameter") {
		typeNode, err := mustChild(p, "type")
		if err != nil {
			return nil, err
		}
		t, err := buildTypeRefNode(typeNode)
		if err != nil {
			return nil, err
		}
		name, err := mustChild(p, "name")
		if err != nil {
			return nil, err
		}
		final := p.ChildByKind("final") != nil
		out = append(out, &semantic.FormalParameter{Base: baseOf(p), Final: final, Type: t, Name: name.Text()})
	}
	return out, nil
}

// --- statements ---

func buildBlock(n *cst.Node) (semantic.Node, error) {
	stmts := make([]semantic.Node, 0, n.NamedChildCount())
	for _, c := range n.Children() {
		s, err := buildNode(c)
		if err != nil {
			return nil, err
		}
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	return &semantic.Block{Base: baseOf(n), Statements: stmts}, nil
}

func buildExpressionStatement(n *cst.Node) (semantic.Node, error) {
	inner := n.FirstChild()
	if inner == nil {
		return nil, &apexerr.MissingChildError{ParentKind: n.Kind(), FieldOrKind: "<expr>"}
	}
	e, err := buildNode(inner)
	if err != nil {
		return nil, err
	}
	return &semantic.ExpressionStatement{Base: baseOf(n), Expr: e}, nil
}

func buildIfStatement(n *cst.Node) (semantic.Node, error) {
	condNode, err := mustChild(n, "condition")
	if err != nil {
		return nil, err
	}
	cond, err := buildNode(unwrapParen(condNode))
	if err != nil {
		return nil, err
	}
	thenNode, err := mustChild(n, "consequence")
	if err != nil {
		return nil, err
	}
	then, err := buildNode(thenNode)
	if err != nil {
		return nil, err
	}
	var elseN semantic.Node
	if e := n.ChildByField("alternative"); e != nil {
		elseN, err = buildNode(e)
		if err != nil {
			return nil, err
		}
	}
	return &semantic.IfStatement{Base: baseOf(n), Condition: cond, Then: then, Else: elseN}, nil
}

func unwrapParen(n *cst.Node) *cst.Node {
	if n.Kind() == "parenthesized_expression" {
		if inner := n.FirstChild(); inner != nil {
			return inner
		}
	}
	return n
}

func buildForStatement(n *cst.Node) (semantic.Node, error) {
	var init []semantic.Node
	for _, c := range n.ChildrenByField("init") {
		s, err := buildNode(c)
		if err != nil {
			return nil, err
		}
		init = append(init, s)
	}
	var cond semantic.Node
	if c := n.ChildByField("condition"); c != nil {
		s, err := buildNode(c)
		if err != nil {
			return nil, err
		}
		cond = s
	}
	var update []semantic.Node
	for _, c := range n.ChildrenByField("update") {
		s, err := buildNode(c)
		if err != nil {
			return nil, err
		}
		update = append(update, s)
	}
	bodyNode, err := mustChild(n, "body")
	if err != nil {
		return nil, err
	}
	body, err := buildNode(bodyNode)
	if err != nil {
		return nil, err
	}
	return &semantic.ForStatement{Base: baseOf(n), Init: init, Condition: cond, Update: update, Body: body}, nil
}

func buildEnhancedForStatement(n *cst.Node) (semantic.Node, error) {
	typeNode, err := mustChild(n, "type")
	if err != nil {
		return nil, err
	}
	t, err := buildTypeRefNode(typeNode)
	if err != nil {
		return nil, err
	}
	name, err := mustChild(n, "name")
	if err != nil {
		return nil, err
	}
	collNode, err := mustChild(n, "value")
	if err != nil {
		return nil, err
	}
	coll, err := buildNode(collNode)
	if err != nil {
		return nil, err
	}
	bodyNode, err := mustChild(n, "body")
	if err != nil {
		return nil, err
	}
	body, err := buildNode(bodyNode)
	if err != nil {
		return nil, err
	}
	return &semantic.EnhancedForStatement{Base: baseOf(n), Type: t, Name: name.Text(), Collection: coll, Body: body}, nil
}

func buildWhileStatement(n *cst.Node) (semantic.Node, error) {
	condNode, err := mustChild(n, "condition")
	if err != nil {
		return nil, err
	}
	cond, err := buildNode(unwrapParen(condNode))
	if err != nil {
		return nil, err
	}
	bodyNode, err := mustChild(n, "body")
	if err != nil {
		return nil, err
	}
	body, err := buildNode(bodyNode)
	if err != nil {
		return nil, err
	}
	return &semantic.WhileStatement{Base: baseOf(n), Condition: cond, Body: body}, nil
}

func buildDoStatement(n *cst.Node) (semantic.Node, error) {
	bodyNode, err := mustChild(n, "body")
	if err != nil {
		return nil, err
	}
	body, err := buildNode(bodyNode)
	if err != nil {
		return nil, err
	}
	condNode, err := mustChild(n, "condition")
	if err != nil {
		return nil, err
	}
	cond, err := buildNode(unwrapParen(condNode))
	if err != nil {
		return nil, err
	}
	return &semantic.DoStatement{Base: baseOf(n), Body: body, Condition: cond}, nil
}

func buildTryStatement(n *cst.Node) (semantic.Node, error) {
	bodyNode, err := mustChild(n, "body")
	if err != nil {
		return nil, err
	}
	bodyN, err := buildBlock(bodyNode)
	if err != nil {
		return nil, err
	}

	var catches []*semantic.CatchClause
	for _, c := range n.ChildrenByKind("catch_clause") {
		paramNode, err := mustChild(c, "parameter")
		if err != nil {
			return nil, err
		}
		name, err := mustChild(paramNode, "name")
		if err != nil {
			return nil, err
		}
		var types []*semantic.TypeRef
		for _, t := range paramNode.ChildrenByKind("catch_type") {
			tr, err := buildTypeRefNode(t)
			if err != nil {
				return nil, err
			}
			types = append(types, tr)
		}
		catchBodyNode, err := mustChild(c, "body")
		if err != nil {
			return nil, err
		}
		catchBody, err := buildBlock(catchBodyNode)
		if err != nil {
			return nil, err
		}
		catches = append(catches, &semantic.CatchClause{
			Base: baseOf(c),
			Param: &semantic.CatchFormalParameter{Base: baseOf(paramNode), Types: types, Name: name.Text()},
			Body:  catchBody.(*semantic.Block),
		})
	}

	var finally *semantic.FinallyClause
	if f := n.ChildByKind("finally_clause"); f != nil {
		fBodyNode, err := mustChild(f, "body")
		if err != nil {
			return nil, err
		}
		fBody, err := buildBlock(fBodyNode)
		if err != nil {
			return nil, err
		}
		finally = &semantic.FinallyClause{Base: baseOf(f), Body: fBody.(*semantic.Block)}
	}

	return &semantic.TryStatement{Base: baseOf(n), Body: bodyN.(*semantic.Block), Catches: catches, Finally: finally}, nil
}

func buildReturnStatement(n *cst.Node) (semantic.Node, error) {
	var val semantic.Node
	if v := n.FirstChild(); v != nil {
		r, err := buildNode(v)
		if err != nil {
			return nil, err
		}
		val = r
	}
	return &semantic.ReturnStatement{Base: baseOf(n), Value: val}, nil
}

func buildThrowStatement(n *cst.Node) (semantic.Node, error) {
	valNode, err := mustChild(n, "value")
	if err != nil {
		valNode = n.FirstChild()
	}
	if valNode == nil {
		return nil, &apexerr.MissingChildError{ParentKind: n.Kind(), FieldOrKind: "value"}
	}
	val, err := buildNode(valNode)
	if err != nil {
		return nil, err
	}
	return &semantic.ThrowStatement{Base: baseOf(n), Value: val}, nil
}

func buildRunAsStatement(n *cst.Node) (semantic.Node, error) {
	args, err := buildArgumentList(n)
	if err != nil {
		return nil, err
	}
	bodyNode, err := mustChild(n, "body")
	if err != nil {
		return nil, err
	}
	body, err := buildBlock(bodyNode)
	if err != nil {
		return nil, err
	}
	return &semantic.RunAsStatement{Base: baseOf(n), Arguments: args, Body: body.(*semantic.Block)}, nil
}

func buildDmlExpression(n *cst.Node) (semantic.Node, error) {
	var typ semantic.DmlType
	switch n.ChildByKind("dml_type").Text() {
	case "update":
		typ = semantic.DmlUpdate
	case "delete":
		typ = semantic.DmlDelete
	case "undelete":
		typ = semantic.DmlUndelete
	case "upsert":
		typ = semantic.DmlUpsert
	case "merge":
		typ = semantic.DmlMerge
	default:
		typ = semantic.DmlInsert
	}

	security := semantic.DmlSecurityModeNone
	if sm := n.ChildByKind("dml_security_mode"); sm != nil {
		if sm.Text() == "AS USER" {
			security = semantic.DmlSecurityModeUser
		} else {
			security = semantic.DmlSecurityModeSystem
		}
	}

	targetNode, err := mustChild(n, "target")
	if err != nil {
		targetNode = n.FirstChild()
	}
	var target semantic.Node
	if targetNode != nil {
		target, err = buildNode(targetNode)
		if err != nil {
			return nil, err
		}
	}

	var with semantic.Node
	if w := n.ChildByField("with"); w != nil {
		with, err = buildNode(w)
		if err != nil {
			return nil, err
		}
	}

	return &semantic.DmlExpression{Base: baseOf(n), Type: typ, Security: security, Target: target, With: with}, nil
}

// --- expressions ---

func buildAssignmentExpression(n *cst.Node) (semantic.Node, error) {
	leftNode, err := mustChild(n, "left")
	if err != nil {
		return nil, err
	}
	left, err := buildNode(leftNode)
	if err != nil {
		return nil, err
	}
	opNode, err := mustChild(n, "operator")
	if err != nil {
		opNode = nil
	}
	op := "="
	if opNode != nil {
		op = opNode.Text()
	}
	rightNode, err := mustChild(n, "right")
	if err != nil {
		return nil, err
	}
	right, err := buildNode(rightNode)
	if err != nil {
		return nil, err
	}
	return &semantic.AssignmentExpression{Base: baseOf(n), Left: left, Operator: op, Right: right}, nil
}

func buildBinaryExpression(n *cst.Node) (semantic.Node, error) {
	leftNode, err := mustChild(n, "left")
	if err != nil {
		return nil, err
	}
	left, err := buildNode(leftNode)
	if err != nil {
		return nil, err
	}
	opNode, err := mustChild(n, "operator")
	op := ""
	if err == nil {
		op = opNode.Text()
	}
	rightNode, err := mustChild(n, "right")
	if err != nil {
		return nil, err
	}
	right, err := buildNode(rightNode)
	if err != nil {
		return nil, err
	}
	return &semantic.BinaryExpression{Base: baseOf(n), Left: left, Operator: op, Right: right}, nil
}

func buildUnaryExpression(n *cst.Node) (semantic.Node, error) {
	opNode, err := mustChild(n, "operator")
	op := ""
	if err == nil {
		op = opNode.Text()
	}
	operandNode, err := mustChild(n, "operand")
	if err != nil {
		return nil, err
	}
	operand, err := buildNode(operandNode)
	if err != nil {
		return nil, err
	}
	return &semantic.UnaryExpression{Base: baseOf(n), Operator: op, Operand: operand}, nil
}

func buildUpdateExpression(n *cst.Node) (semantic.Node, error) {
	text := n.Text()
	prefix := len(text) >= 2 && (text[:2] == "++" || text[:2] == "--")
	op := "++"
	if (prefix && text[1] == '-') || (!prefix && len(text) >= 2 && text[len(text)-1] == '-') {
		op = "--"
	}
	operandNode := n.FirstChild()
	if operandNode == nil {
		return nil, &apexerr.MissingChildError{ParentKind: n.Kind(), FieldOrKind: "<operand>"}
	}
	operand, err := buildNode(operandNode)
	if err != nil {
		return nil, err
	}
	return &semantic.UpdateExpression{Base: baseOf(n), Operator: op, Operand: operand, Prefix: prefix}, nil
}

func buildTernaryExpression(n *cst.Node) (semantic.Node, error) {
	condNode, err := mustChild(n, "condition")
	if err != nil {
		return nil, err
	}
	cond, err := buildNode(condNode)
	if err != nil {
		return nil, err
	}
	thenNode, err := mustChild(n, "consequence")
	if err != nil {
		return nil, err
	}
	then, err := buildNode(thenNode)
	if err != nil {
		return nil, err
	}
	elseNode, err := mustChild(n, "alternative")
	if err != nil {
		return nil, err
	}
	elseN, err := buildNode(elseNode)
	if err != nil {
		return nil, err
	}
	return &semantic.TernaryExpression{Base: baseOf(n), Condition: cond, Then: then, Else: elseN}, nil
}

func buildInstanceOfExpression(n *cst.Node) (semantic.Node, error) {
	leftNode, err := mustChild(n, "left")
	if err != nil {
		return nil, err
	}
	left, err := buildNode(leftNode)
	if err != nil {
		return nil, err
	}
	typeNode, err := mustChild(n, "right")
	if err != nil {
		return nil, err
	}
	t, err := buildTypeRefNode(typeNode)
	if err != nil {
		return nil, err
	}
	return &semantic.InstanceOfExpression{Base: baseOf(n), Left: left, Type: t}, nil
}

func buildCastExpression(n *cst.Node) (semantic.Node, error) {
	typeNode, err := mustChild(n, "type")
	if err != nil {
		return nil, err
	}
	t, err := buildTypeRefNode(typeNode)
	if err != nil {
		return nil, err
	}
	valNode, err := mustChild(n, "value")
	if err != nil {
		return nil, err
	}
	val, err := buildNode(valNode)
	if err != nil {
		return nil, err
	}
	return &semantic.CastExpression{Base: baseOf(n), Type: t, Value: val}, nil
}

func buildParenthesizedExpression(n *cst.Node) (semantic.Node, error) {
	inner := n.FirstChild()
	if inner == nil {
		return nil, &apexerr.MissingChildError{ParentKind: n.Kind(), FieldOrKind: "<expr>"}
	}
	e, err := buildNode(inner)
	if err != nil {
		return nil, err
	}
	return &semantic.ParenthesizedExpression{Base: baseOf(n), Inner: e}, nil
}

func buildMethodInvocation(n *cst.Node) (semantic.Node, error) {
	var receiver semantic.Node
	if r := n.ChildByField("object"); r != nil {
		var err error
		receiver, err = buildNode(r)
		if err != nil {
			return nil, err
		}
	}
	name, err := mustChild(n, "name")
	if err != nil {
		return nil, err
	}
	args, err := buildArgumentList(n)
	if err != nil {
		return nil, err
	}
	return &semantic.MethodInvocation{Base: baseOf(n), Receiver: receiver, Name: name.Text(), Arguments: args}, nil
}

func buildArgumentList(n *cst.Node) ([]semantic.Node, error) {
	argsNode := n.ChildByField("arguments")
	if argsNode == nil {
		argsNode = n.ChildByKind("argument_list")
	}
	if argsNode == nil {
		return nil, nil
	}
	var out []semantic.Node
	for _, c := range argsNode.Children() {
		a, err := buildNode(c)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func buildFieldAccess(n *cst.Node) (semantic.Node, error) {
	receiverNode, err := mustChild(n, "object")
	if err != nil {
		return nil, err
	}
	receiver, err := buildNode(receiverNode)
	if err != nil {
		return nil, err
	}
	field, err := mustChild(n, "field")
	if err != nil {
		return nil, err
	}
	return &semantic.FieldAccess{Base: baseOf(n), Receiver: receiver, Field: field.Text()}, nil
}

func buildArrayAccess(n *cst.Node) (semantic.Node, error) {
	arrNode, err := mustChild(n, "array")
	if err != nil {
		return nil, err
	}
	arr, err := buildNode(arrNode)
	if err != nil {
		return nil, err
	}
	idxNode, err := mustChild(n, "index")
	if err != nil {
		return nil, err
	}
	idx, err := buildNode(idxNode)
	if err != nil {
		return nil, err
	}
	return &semantic.ArrayAccess{Base: baseOf(n), Array: arr, Index: idx}, nil
}

func buildObjectCreationExpression(n *cst.Node) (semantic.Node, error) {
	typeNode, err := mustChild(n, "type")
	if err != nil {
		return nil, err
	}
	t, err := buildTypeRefNode(typeNode)
	if err != nil {
		return nil, err
	}
	args, err := buildArgumentList(n)
	if err != nil {
		return nil, err
	}
	var body []semantic.Node
	var bodyID uintptr
	if b := n.ChildByField("body"); b != nil {
		body, err = buildMembers(b)
		if err != nil {
			return nil, err
		}
		bodyID = b.ID()
	}
	return &semantic.ObjectCreationExpression{Base: baseOf(n), Type: t, Arguments: args, Body: body, BodyID: bodyID}, nil
}

func buildArrayCreationExpression(n *cst.Node) (semantic.Node, error) {
	typeNode, err := mustChild(n, "type")
	if err != nil {
		return nil, err
	}
	t, err := buildTypeRefNode(typeNode)
	if err != nil {
		return nil, err
	}
	var dims []semantic.Node
	for _, d := range n.ChildrenByKind("dimensions_expr") {
		e, err := buildNode(d.FirstChild())
		if err != nil {
			return nil, err
		}
		dims = append(dims, e)
	}
	if d := n.ChildByKind("dimensions"); d != nil {
		for _, ch := range d.Text() {
			if ch == '[' {
				dims = append(dims, nil)
			}
		}
	}
	var init *semantic.ArrayInitializer
	if i := n.ChildByKind("array_initializer"); i != nil {
		ai, err := buildArrayInitializer(i)
		if err != nil {
			return nil, err
		}
		init = ai
	}
	return &semantic.ArrayCreationExpression{Base: baseOf(n), ElementType: t, Dimensions: dims, Initializer: init}, nil
}

func buildArrayInitializer(n *cst.Node) (*semantic.ArrayInitializer, error) {
	var elems []semantic.Node
	for _, c := range n.Children() {
		e, err := buildNode(c)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return &semantic.ArrayInitializer{Base: baseOf(n), Elements: elems}, nil
}

func buildMapCreationExpression(n *cst.Node) (semantic.Node, error) {
	typeNode, err := mustChild(n, "type")
	if err != nil {
		return nil, err
	}
	t, err := buildTypeRefNode(typeNode)
	if err != nil {
		return nil, err
	}
	var init *semantic.MapInitializer
	if i := n.ChildByKind("map_initializer"); i != nil {
		mi, err := buildMapInitializer(i)
		if err != nil {
			return nil, err
		}
		init = mi
	}
	return &semantic.MapCreationExpression{Base: baseOf(n), Type: t, Initializer: init}, nil
}

func buildMapInitializer(n *cst.Node) (*semantic.MapInitializer, error) {
	var entries []*semantic.MapEntry
	for _, e := range n.ChildrenByKind("map_entry") {
		keyNode, err := mustChild(e, "key")
		if err != nil {
			return nil, err
		}
		key, err := buildNode(keyNode)
		if err != nil {
			return nil, err
		}
		valNode, err := mustChild(e, "value")
		if err != nil {
			return nil, err
		}
		val, err := buildNode(valNode)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &semantic.MapEntry{Base: baseOf(e), Key: key, Value: val})
	}
	return &semantic.MapInitializer{Base: baseOf(n), Entries: entries}, nil
}

func buildQueryExpression(n *cst.Node) (semantic.Node, error) {
	isSosl := n.ChildByKind("sosl_query") != nil
	return &semantic.QueryExpression{Base: baseOf(n), IsSosl: isSosl, Body: normalizeQueryWhitespace(n.Text())}, nil
}

func normalizeQueryWhitespace(s string) string {
	var b []byte
	prevSpace := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		isSpace := c == ' ' || c == '\t' || c == '\n' || c == '\r'
		if isSpace {
			if !prevSpace {
				b = append(b, ' ')
			}
			prevSpace = true
			continue
		}
		prevSpace = false
		b = append(b, c)
	}
	return string(b)
}

// --- types / literals / identifiers ---

func buildTypeRef(n *cst.Node) (semantic.Node, error) { return buildTypeRefNode(n) }

func buildTypeRefNode(n *cst.Node) (*semantic.TypeRef, error) {
	if n == nil {
		return nil, &apexerr.MissingChildError{ParentKind: "<type>", FieldOrKind: "<node>"}
	}

	switch n.Kind() {
	case "generic_type":
		nameNode, err := mustChild(n, "type")
		if err != nil {
			nameNode = n.FirstChild()
		}
		var name string
		if nameNode != nil {
			name = nameNode.Text()
		}
		var args []*semantic.TypeRef
		if ta := n.ChildByKind("type_arguments"); ta != nil {
			for _, t := range ta.Children() {
				tr, err := buildTypeRefNode(t)
				if err != nil {
					return nil, err
				}
				args = append(args, tr)
			}
		}
		return &semantic.TypeRef{Base: baseOf(n), Name: name, TypeArguments: args}, nil

	case "array_type":
		elem, err := mustChild(n, "element")
		if err != nil {
			elem = n.FirstChild()
		}
		t, err := buildTypeRefNode(elem)
		if err != nil {
			return nil, err
		}
		t.ArrayDims++
		return t, nil

	case "scoped_type_identifier":
		return &semantic.TypeRef{Base: baseOf(n), Name: n.Text()}, nil

	default:
		return &semantic.TypeRef{Base: baseOf(n), Name: n.Text()}, nil
	}
}

func buildIdentifier(n *cst.Node) (semantic.Node, error) {
	return &semantic.Identifier{Base: baseOf(n), Name: n.Text()}, nil
}

func buildLiteral(kind semantic.LiteralKind) buildFunc {
	return func(n *cst.Node) (semantic.Node, error) {
		return &semantic.Literal{Base: baseOf(n), LitKind: kind, Text: n.Text()}, nil
	}
}
