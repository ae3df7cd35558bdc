package frontend

import (
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/dshills/cxxcorpus/pkg/metadata"
)

// extractor walks one syntax tree and collects facts
type extractor struct {
	file   string
	src    []byte
	global *scope

	// Scopes declared in this file by qualified name, for resolving
	// qualified names and out-of-line definitions
	scopes map[string]*scope

	facts []metadata.Fact
}

func newExtractor(file string, src []byte) *extractor {
	g := newGlobalScope()
	return &extractor{
		file:   file,
		src:    src,
		global: g,
		scopes: map[string]*scope{"": g},
	}
}

func (e *extractor) text(n *sitter.Node) string {
	return text(n, e.src)
}

func (e *extractor) loc(n *sitter.Node) *metadata.Location {
	return &metadata.Location{File: e.file, Line: line(n)}
}

// emit records a fact declared in owner and returns its index
func (e *extractor) emit(f metadata.Fact, owner *scope) int {
	f.Parent = owner.id
	f.ParentKind = owner.kind
	f.ParentName = owner.name
	f.Namespace = owner.chain()
	e.facts = append(e.facts, f)
	return len(e.facts) - 1
}

// walkBody visits the declarations directly inside n
func (e *extractor) walkBody(n *sitter.Node, s *scope, tmpl *metadata.TemplateInfo) {
	for _, c := range children(n) {
		e.dispatch(c, s, tmpl, docComment(c, e.src))
	}
}

// dispatch handles a single declaration
func (e *extractor) dispatch(n *sitter.Node, s *scope, tmpl *metadata.TemplateInfo, doc string) {
	switch n.Type() {
	case "namespace_definition":
		e.namespace(n, s, doc)
	case "class_specifier", "struct_specifier", "union_specifier":
		e.record(n, s, tmpl, doc, "")
	case "enum_specifier":
		e.enum(n, s, doc, "")
	case "function_definition":
		if d := n.ChildByFieldName("declarator"); d != nil {
			e.function(n, d, s, tmpl, doc, true)
		}
	case "declaration":
		e.declaration(n, s, tmpl, doc)
	case "field_declaration":
		e.fieldDeclaration(n, s, tmpl, doc)
	case "type_definition":
		e.typedef(n, s, doc)
	case "alias_declaration":
		e.alias(n, s, tmpl, doc)
	case "template_declaration":
		t := e.templateInfo(n.ChildByFieldName("parameters"))
		for _, c := range children(n) {
			if c.Type() != "template_parameter_list" {
				e.dispatch(c, s, t, doc)
			}
		}
	case "friend_declaration":
		e.friend(n, s)
	case "access_specifier":
		if a, err := metadata.ParseAccess(e.text(n)); err == nil {
			s.access = a
		}
	case "linkage_specification":
		body := n.ChildByFieldName("body")
		if body == nil {
			return
		}
		if body.Type() == "declaration_list" {
			e.walkBody(body, s, nil)
		} else {
			e.dispatch(body, s, nil, doc)
		}
	case "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif":
		e.walkBody(n, s, nil)
	}
}

func (e *extractor) namespace(n *sitter.Node, s *scope, doc string) {
	inline := hasToken(n, e.src, "inline")
	cur := s

	nameNode := n.ChildByFieldName("name")
	switch {
	case nameNode == nil:
		cur = e.enterNamespace(cur, "", doc, inline)
	case nameNode.Type() == "nested_namespace_specifier":
		// namespace a::b::c { ... } declares each level
		for _, part := range nestedNames(nameNode, e.src) {
			cur = e.enterNamespace(cur, part, doc, false)
		}
	default:
		cur = e.enterNamespace(cur, e.text(nameNode), doc, inline)
	}

	if body := n.ChildByFieldName("body"); body != nil {
		e.walkBody(body, cur, nil)
	}
}

func nestedNames(n *sitter.Node, src []byte) []string {
	var out []string
	for _, c := range children(n) {
		switch c.Type() {
		case "namespace_identifier":
			out = append(out, c.Content(src))
		case "nested_namespace_specifier":
			out = append(out, nestedNames(c, src)...)
		}
	}
	return out
}

func (e *extractor) enterNamespace(s *scope, name, doc string, inline bool) *scope {
	var ns *scope
	if name == "" {
		ns = s.child(usrAnonNS, "", metadata.KindNamespace)
	} else {
		ns = s.child(usrNamespace, name, metadata.KindNamespace)
	}
	e.emit(metadata.Fact{
		ID:          ns.id,
		Kind:        metadata.KindNamespace,
		Name:        name,
		Doc:         doc,
		IsInline:    inline,
		IsAnonymous: name == "",
	}, s)
	if name != "" {
		e.scopes[ns.qualified()] = ns
	}
	return ns
}

// record handles class, struct and union specifiers. alias names an
// anonymous record declared through a typedef.
func (e *extractor) record(n *sitter.Node, s *scope, tmpl *metadata.TemplateInfo, doc, alias string) {
	body := n.ChildByFieldName("body")
	owner := s
	name := alias
	var args []metadata.TArg

	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		scopes, last := qualifiedParts(nameNode, e.src)
		if last == nil {
			return
		}
		if len(scopes) > 0 {
			owner = e.resolveScope(s, scopes)
		}
		name = e.text(last)
		if last.Type() == "template_type" {
			name = e.text(last.ChildByFieldName("name"))
			args = templateArgs(last.ChildByFieldName("arguments"), e.src)
		}
	}
	if name == "" {
		return
	}

	tag := metadata.TagStruct
	fragment := usrStruct
	switch n.Type() {
	case "class_specifier":
		tag = metadata.TagClass
	case "union_specifier":
		tag = metadata.TagUnion
		fragment = usrUnion
	}

	rs := owner.child(fragment, name+argsKey(args), metadata.KindRecord)
	rs.access = tag.DefaultAccess()
	e.scopes[rs.qualified()] = rs

	f := metadata.Fact{
		ID:           rs.id,
		Kind:         metadata.KindRecord,
		Name:         name,
		Doc:          doc,
		Location:     e.loc(n),
		IsDefinition: body != nil,
		TagType:      tag,
		IsTypeDef:    alias != "",
		Template:     specialize(tmpl, args, func() metadata.SymbolID { return owner.child(fragment, name, metadata.KindRecord).id }),
		Bases:        e.bases(n, owner, tag),
	}
	if owner == s {
		f.Access = s.memberAccess()
	}
	if v := childOfType(n, "virtual_specifier"); v != nil && e.text(v) == "final" {
		var specs metadata.RecordFlags
		specs.SetIsFinal(true)
		f.Specs = specs.Raw()
	}
	rs.fact = e.emit(f, owner)

	if body != nil {
		e.walkBody(body, rs, nil)
	}
}

// specialize attaches specialization arguments to a template. The primary
// identity is computed only when there are arguments.
func specialize(tmpl *metadata.TemplateInfo, args []metadata.TArg, primary func() metadata.SymbolID) *metadata.TemplateInfo {
	if tmpl == nil && len(args) == 0 {
		return nil
	}
	t := tmpl.Clone()
	if t == nil {
		t = &metadata.TemplateInfo{}
	}
	if len(args) > 0 {
		t.Args = args
		id := primary()
		t.Primary = &id
	}
	return t
}

func (e *extractor) bases(n *sitter.Node, s *scope, tag metadata.TagKind) []metadata.BaseInfo {
	clause := childOfType(n, "base_class_clause")
	if clause == nil {
		return nil
	}

	var out []metadata.BaseInfo
	access := metadata.AccessNone
	virtual := false
	for i := 0; i < int(clause.ChildCount()); i++ {
		c := clause.Child(i)
		switch c.Type() {
		case "access_specifier":
			access, _ = metadata.ParseAccess(e.text(c))
		case "virtual":
			virtual = true
		case "type_identifier", "qualified_type_identifier", "template_type":
			b := metadata.NewBaseInfo(e.resolveRecord(s, c), normalize(e.text(c)))
			b.Access = access
			if access == metadata.AccessNone {
				b.Access = tag.DefaultAccess()
			}
			b.IsVirtual = virtual
			out = append(out, b)
			access, virtual = metadata.AccessNone, false
		}
	}
	return out
}

func (e *extractor) enum(n *sitter.Node, s *scope, doc, alias string) {
	name := alias
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = e.text(nameNode)
	}
	if name == "" {
		return
	}

	body := n.ChildByFieldName("body")
	es := s.child(usrEnum, name, metadata.KindEnum)
	f := metadata.Fact{
		ID:           es.id,
		Kind:         metadata.KindEnum,
		Name:         name,
		Access:       s.memberAccess(),
		Doc:          doc,
		Location:     e.loc(n),
		IsDefinition: body != nil,
		Scoped:       hasToken(n, e.src, "class") || hasToken(n, e.src, "struct"),
	}
	if base := n.ChildByFieldName("base"); base != nil {
		f.Type = &metadata.TypeInfo{Name: normalize(e.text(base))}
	}
	for _, c := range children(body) {
		if c.Type() != "enumerator" {
			continue
		}
		f.Enumerators = append(f.Enumerators, metadata.EnumValueInfo{
			Name:  e.text(c.ChildByFieldName("name")),
			Value: normalize(e.text(c.ChildByFieldName("value"))),
		})
	}
	e.emit(f, s)
}

// signature is everything that identifies a function declarator
type signature struct {
	owner  *scope
	name   string
	ret    string
	params []metadata.Param
	args   []metadata.TArg
	specs  metadata.FunctionFlags
}

func (sig *signature) usr() string {
	return sig.primaryUSR() + argsKey(sig.args)
}

func (sig *signature) primaryUSR() string {
	var b strings.Builder
	b.WriteString(sig.owner.usr)
	b.WriteString(usrFunction)
	b.WriteString(sig.name)
	b.WriteByte('#')
	for i, p := range sig.params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Type.Name)
	}
	if sig.specs.IsVariadic() {
		b.WriteString(",...")
	}
	if sig.specs.IsConst() {
		b.WriteString("#c")
	}
	if sig.specs.IsVolatile() {
		b.WriteString("#v")
	}
	switch sig.specs.RefQualifier() {
	case metadata.RefLValue:
		b.WriteString("#&")
	case metadata.RefRValue:
		b.WriteString("#&&")
	}
	return b.String()
}

// signature reads the function declared by decl through declarator d. It
// reports false when d does not declare a function. owner is the scope an
// unqualified name belongs to.
func (e *extractor) signature(decl, d *sitter.Node, owner *scope) (*signature, bool) {
	fd, retSuffix := functionDeclarator(d, e.src)
	sig := &signature{owner: owner, ret: typeText(decl, e.src)}

	var target, post *sitter.Node
	switch {
	case fd != nil:
		target = fd.ChildByFieldName("declarator")
		post = fd
	case d.Type() == "operator_cast":
		target = d
		post = d.ChildByFieldName("declarator")
	}
	if target == nil || post == nil {
		return nil, false
	}

	scopes, last := qualifiedParts(target, e.src)
	if last == nil {
		return nil, false
	}
	if len(scopes) > 0 {
		sig.owner = e.resolveScope(owner, scopes)
	}
	switch last.Type() {
	case "operator_cast":
		sig.name = "operator " + normalize(e.text(last.ChildByFieldName("type")))
		sig.ret = ""
	case "template_function", "template_method":
		sig.name = e.text(last.ChildByFieldName("name"))
		sig.args = templateArgs(last.ChildByFieldName("arguments"), e.src)
	case "identifier", "field_identifier", "destructor_name", "operator_name", "type_identifier":
		sig.name = normalize(e.text(last))
	default:
		// (*fp)(int) declares a pointer to function
		return nil, false
	}
	if sig.ret != "" {
		sig.ret = normalize(sig.ret + retSuffix)
	}

	var variadic bool
	sig.params, variadic = e.params(post.ChildByFieldName("parameters"))
	sig.specs.SetIsVariadic(variadic)

	// specifiers that follow the parameter list
	for i := 0; i < int(post.ChildCount()); i++ {
		c := post.Child(i)
		switch c.Type() {
		case "type_qualifier":
			switch e.text(c) {
			case "const":
				sig.specs.SetIsConst(true)
			case "volatile":
				sig.specs.SetIsVolatile(true)
			}
		case "ref_qualifier":
			if e.text(c) == "&&" {
				sig.specs.SetRefQualifier(metadata.RefRValue)
			} else {
				sig.specs.SetRefQualifier(metadata.RefLValue)
			}
		case "virtual_specifier":
			switch e.text(c) {
			case "final":
				sig.specs.SetIsFinal(true)
			case "override":
				sig.specs.SetIsOverride(true)
			}
		case "noexcept":
			if normalize(e.text(c)) != "noexcept(false)" {
				sig.specs.SetIsNoexcept(true)
			}
		case "trailing_return_type":
			sig.specs.SetHasTrailingReturn(true)
			sig.ret = normalize(strings.TrimPrefix(strings.TrimSpace(e.text(c)), "->"))
		}
	}

	// specifiers on the declaration itself
	for i := 0; i < int(decl.ChildCount()); i++ {
		c := decl.Child(i)
		switch c.Type() {
		case "storage_class_specifier":
			if sc, ok := metadata.ParseStorageClass(e.text(c)); ok {
				sig.specs.SetStorageClass(sc)
			}
		case "attribute_declaration":
			if strings.Contains(e.text(c), "nodiscard") {
				sig.specs.SetIsNodiscard(true)
			}
		case "default_method_clause":
			sig.specs.SetIsDefaulted(true)
		case "delete_method_clause":
			sig.specs.SetIsDeleted(true)
		case "pure_virtual_clause":
			sig.specs.SetIsPure(true)
		}
	}
	if hasToken(decl, e.src, "virtual") {
		sig.specs.SetIsVirtual(true)
	}
	switch {
	case hasToken(decl, e.src, "consteval"):
		sig.specs.SetConstexprKind(metadata.Consteval)
	case hasToken(decl, e.src, "constexpr"):
		sig.specs.SetConstexprKind(metadata.ConstexprSpecified)
	}
	if dv := decl.ChildByFieldName("default_value"); dv != nil && e.text(dv) == "0" {
		sig.specs.SetIsPure(true)
	}
	return sig, true
}

// function emits the function declared by decl through d. It reports false
// when d is not a function declarator.
func (e *extractor) function(decl, d *sitter.Node, s *scope, tmpl *metadata.TemplateInfo, doc string, isDef bool) bool {
	sig, ok := e.signature(decl, d, s)
	if !ok {
		return false
	}
	owner := sig.owner
	isMethod := owner.kind == metadata.KindRecord

	f := metadata.Fact{
		ID:           metadata.NewSymbolID(sig.usr()),
		Kind:         metadata.KindFunction,
		Name:         sig.name,
		Doc:          doc,
		Location:     e.loc(decl),
		IsDefinition: isDef,
		Specs:        sig.specs.Raw(),
		Params:       sig.params,
		IsMethod:     isMethod,
		Template: specialize(tmpl, sig.args, func() metadata.SymbolID {
			return metadata.NewSymbolID(sig.primaryUSR())
		}),
	}
	if sig.ret != "" {
		f.Type = &metadata.TypeInfo{Name: sig.ret, ID: e.knownRecord(owner, sig.ret)}
	}
	f.Alt = alternate(owner, func(ns *scope) string {
		alt := *sig
		alt.owner = ns
		return alt.usr()
	})
	if owner == s {
		f.Access = s.memberAccess()
	}
	e.emit(f, owner)

	if isMethod && owner == s && owner.fact >= 0 && strings.HasPrefix(sig.name, "~") && sig.specs.IsFinal() {
		var specs metadata.RecordFlags
		specs.SetRaw(e.facts[owner.fact].Specs)
		specs.SetIsFinalDestructor(true)
		e.facts[owner.fact].Specs = specs.Raw()
	}
	return true
}

func (e *extractor) params(list *sitter.Node) ([]metadata.Param, bool) {
	if list == nil {
		return nil, false
	}
	var out []metadata.Param
	variadic := false
	for i := 0; i < int(list.ChildCount()); i++ {
		c := list.Child(i)
		switch c.Type() {
		case "...":
			variadic = true
		case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
			nameNode, suffix := splitDeclarator(c.ChildByFieldName("declarator"), e.src)
			p := metadata.Param{Type: metadata.TypeInfo{Name: normalize(typeText(c, e.src) + suffix)}}
			if nameNode != nil {
				p.Name = e.text(nameNode)
			}
			if dv := c.ChildByFieldName("default_value"); dv != nil {
				p.Default = normalize(e.text(dv))
			}
			out = append(out, p)
		}
	}
	// f(void) takes no parameters
	if len(out) == 1 && out[0].Type.Name == "void" && out[0].Name == "" {
		out = nil
	}
	return out, variadic
}

func (e *extractor) declaration(n *sitter.Node, s *scope, tmpl *metadata.TemplateInfo, doc string) {
	if t := n.ChildByFieldName("type"); hasBody(t) {
		e.dispatch(t, s, nil, doc)
	}
	for _, d := range fieldChildren(n, "declarator") {
		if e.function(n, d, s, tmpl, doc, false) {
			continue
		}
		e.variable(n, d, s, doc)
	}
}

func (e *extractor) variable(n, d *sitter.Node, s *scope, doc string) {
	nameNode, suffix := splitDeclarator(d, e.src)
	if nameNode == nil {
		return
	}
	owner := s
	scopes, last := qualifiedParts(nameNode, e.src)
	if last == nil {
		return
	}
	if len(scopes) > 0 {
		owner = e.resolveScope(s, scopes)
	}
	if last.Type() != "identifier" && last.Type() != "field_identifier" {
		return
	}

	var specs metadata.VarFlags
	for _, kw := range childrenText(n, e.src, "storage_class_specifier") {
		if sc, ok := metadata.ParseStorageClass(kw); ok {
			specs.SetStorageClass(sc)
		}
	}
	name := e.text(last)
	typ := normalize(typeText(n, e.src) + suffix)
	f := metadata.Fact{
		ID:           metadata.NewSymbolID(owner.usr + usrVariable + name),
		Kind:         metadata.KindVariable,
		Name:         name,
		Doc:          doc,
		Location:     e.loc(n),
		IsDefinition: specs.StorageClass() != metadata.StorageExtern || d.Type() == "init_declarator",
		Specs:        specs.Raw(),
		Type:         &metadata.TypeInfo{Name: typ, ID: e.knownRecord(owner, typ)},
	}
	f.Alt = alternate(owner, func(ns *scope) string {
		return ns.usr + usrVariable + name
	})
	if owner == s {
		f.Access = s.memberAccess()
	}
	e.emit(f, owner)
}

func (e *extractor) fieldDeclaration(n *sitter.Node, s *scope, tmpl *metadata.TemplateInfo, doc string) {
	if t := n.ChildByFieldName("type"); hasBody(t) {
		e.dispatch(t, s, nil, doc)
	}
	for _, d := range fieldChildren(n, "declarator") {
		if e.function(n, d, s, tmpl, doc, false) {
			continue
		}
		e.field(n, d, s, doc)
	}
}

func (e *extractor) field(n, d *sitter.Node, s *scope, doc string) {
	nameNode, suffix := splitDeclarator(d, e.src)
	if nameNode == nil || nameNode.Type() != "field_identifier" {
		return
	}
	name := e.text(nameNode)
	typ := normalize(typeText(n, e.src) + suffix)
	f := metadata.Fact{
		Name:     name,
		Access:   s.memberAccess(),
		Doc:      doc,
		Location: e.loc(n),
		Type:     &metadata.TypeInfo{Name: typ, ID: e.knownRecord(s, typ)},
	}

	// static data members are variables
	if slices.Contains(childrenText(n, e.src, "storage_class_specifier"), "static") {
		var specs metadata.VarFlags
		specs.SetStorageClass(metadata.StorageStatic)
		f.ID = metadata.NewSymbolID(s.usr + usrVariable + name)
		f.Kind = metadata.KindVariable
		f.Specs = specs.Raw()
		f.IsDefinition = hasToken(n, e.src, "inline") || hasToken(n, e.src, "constexpr")
		e.emit(f, s)
		return
	}

	f.ID = metadata.NewSymbolID(s.usr + usrField + name)
	f.Kind = metadata.KindField
	f.IsDefinition = true
	f.IsMutable = hasToken(n, e.src, "mutable")
	if dv := n.ChildByFieldName("default_value"); dv != nil {
		f.Default = normalize(e.text(dv))
	}
	e.emit(f, s)
}

func (e *extractor) typedef(n *sitter.Node, s *scope, doc string) {
	t := n.ChildByFieldName("type")
	decls := fieldChildren(n, "declarator")
	if t == nil || len(decls) == 0 {
		return
	}

	underlying := typeText(n, e.src)
	if hasBody(t) {
		if nameNode := t.ChildByFieldName("name"); nameNode != nil {
			e.dispatch(t, s, nil, doc)
			underlying = strings.TrimSuffix(t.Type(), "_specifier") + " " + e.text(nameNode)
		} else if first, _ := splitDeclarator(decls[0], e.src); first != nil {
			// typedef struct { ... } name; names the record itself
			alias := e.text(first)
			if t.Type() == "enum_specifier" {
				e.enum(t, s, doc, alias)
			} else {
				e.record(t, s, nil, doc, alias)
			}
			underlying = alias
			decls = decls[1:]
		}
	}

	for _, d := range decls {
		nameNode, suffix := splitDeclarator(d, e.src)
		if nameNode == nil {
			continue
		}
		name := e.text(nameNode)
		typ := normalize(underlying + suffix)
		e.emit(metadata.Fact{
			ID:           s.child(usrTypedef, name, metadata.KindTypedef).id,
			Kind:         metadata.KindTypedef,
			Name:         name,
			Access:       s.memberAccess(),
			Doc:          doc,
			Location:     e.loc(n),
			IsDefinition: true,
			Type:         &metadata.TypeInfo{Name: typ, ID: e.knownRecord(s, typ)},
		}, s)
	}
}

func (e *extractor) alias(n *sitter.Node, s *scope, tmpl *metadata.TemplateInfo, doc string) {
	name := e.text(n.ChildByFieldName("name"))
	if name == "" {
		return
	}
	typ := normalize(e.text(n.ChildByFieldName("type")))
	e.emit(metadata.Fact{
		ID:           s.child(usrTypedef, name, metadata.KindTypedef).id,
		Kind:         metadata.KindTypedef,
		Name:         name,
		Access:       s.memberAccess(),
		Doc:          doc,
		Location:     e.loc(n),
		IsDefinition: true,
		IsUsing:      true,
		Template:     tmpl.Clone(),
		Type:         &metadata.TypeInfo{Name: typ, ID: e.knownRecord(s, typ)},
	}, s)
}

// friend records friend functions on the enclosing record. A friend
// defined in the class body is also emitted as a function of the enclosing
// namespace.
func (e *extractor) friend(n *sitter.Node, s *scope) {
	if s.kind != metadata.KindRecord || s.fact < 0 {
		return
	}
	ns := s.namespace()
	for _, c := range children(n) {
		var decls []*sitter.Node
		switch c.Type() {
		case "declaration":
			decls = fieldChildren(c, "declarator")
		case "function_definition":
			decls = fieldChildren(c, "declarator")
			if len(decls) == 1 {
				e.function(c, decls[0], ns, nil, docComment(n, e.src), true)
			}
		}
		for _, d := range decls {
			sig, ok := e.signature(c, d, ns)
			if !ok {
				continue
			}
			id := metadata.NewSymbolID(sig.usr())
			rec := &e.facts[s.fact]
			dup := false
			for _, f := range rec.Friends {
				if f == id {
					dup = true
					break
				}
			}
			if !dup {
				rec.Friends = append(rec.Friends, id)
			}
		}
	}
}

func (e *extractor) templateInfo(list *sitter.Node) *metadata.TemplateInfo {
	t := &metadata.TemplateInfo{}
	for _, p := range children(list) {
		var tp metadata.TParam
		switch p.Type() {
		case "type_parameter_declaration":
			tp = metadata.TParam{Kind: metadata.TParamType, Name: e.text(childOfType(p, "type_identifier"))}
		case "variadic_type_parameter_declaration":
			tp = metadata.TParam{Kind: metadata.TParamType, Name: e.text(childOfType(p, "type_identifier")), IsPack: true}
		case "optional_type_parameter_declaration":
			tp = metadata.TParam{
				Kind:    metadata.TParamType,
				Name:    e.text(p.ChildByFieldName("name")),
				Default: normalize(e.text(p.ChildByFieldName("default_type"))),
			}
		case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
			nameNode, _ := splitDeclarator(p.ChildByFieldName("declarator"), e.src)
			tp = metadata.TParam{
				Kind:    metadata.TParamNonType,
				Name:    e.text(nameNode),
				Default: normalize(e.text(p.ChildByFieldName("default_value"))),
				IsPack:  p.Type() == "variadic_parameter_declaration",
			}
		case "template_template_parameter_declaration":
			tp = metadata.TParam{Kind: metadata.TParamTemplate}
			if kids := children(p); len(kids) > 0 {
				last := kids[len(kids)-1]
				if name := last.ChildByFieldName("name"); name != nil {
					tp.Name = e.text(name)
				} else {
					tp.Name = e.text(childOfType(last, "type_identifier"))
				}
			}
		default:
			continue
		}
		t.Params = append(t.Params, tp)
	}
	return t
}

func templateArgs(list *sitter.Node, src []byte) []metadata.TArg {
	var out []metadata.TArg
	for _, c := range children(list) {
		out = append(out, metadata.TArg{Value: normalize(c.Content(src))})
	}
	return out
}

func argsKey(args []metadata.TArg) string {
	if len(args) == 0 {
		return ""
	}
	vals := make([]string, len(args))
	for i, a := range args {
		vals[i] = a.Value
	}
	return "<" + strings.Join(vals, ",") + ">"
}

func hasBody(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		return n.ChildByFieldName("body") != nil
	}
	return false
}

// qualifiedParts splits a possibly qualified name into its scope names and
// the final name node. A leading "::" yields an empty first scope.
func qualifiedParts(n *sitter.Node, src []byte) ([]string, *sitter.Node) {
	var scopes []string
	for n != nil {
		switch n.Type() {
		case "qualified_identifier", "qualified_type_identifier", "qualified_field_identifier":
		default:
			return scopes, n
		}
		sc := n.ChildByFieldName("scope")
		switch {
		case sc == nil:
			scopes = append(scopes, "")
		case sc.Type() == "template_type":
			scopes = append(scopes, sc.ChildByFieldName("name").Content(src))
		default:
			scopes = append(scopes, sc.Content(src))
		}
		n = n.ChildByFieldName("name")
	}
	return scopes, n
}

func joinQualified(q, name string) string {
	if q == "" {
		return name
	}
	return q + "::" + name
}

// lookup finds a scope declared in this file by searching outward from s
func (e *extractor) lookup(s *scope, name string) *scope {
	for cur := s; cur != nil; cur = cur.parent {
		if found, ok := e.scopes[joinQualified(cur.qualified(), name)]; ok {
			return found
		}
	}
	return nil
}

// resolveScope maps the scope names of a qualified declarator to a scope.
// Names not declared in this file are taken to be namespaces, except the
// last, which is taken to be a record and marked guessed.
func (e *extractor) resolveScope(s *scope, parts []string) *scope {
	cur := s
	if len(parts) > 0 && parts[0] == "" {
		cur = e.global
		parts = parts[1:]
	}
	for i, p := range parts {
		var found *scope
		if i == 0 {
			found = e.lookup(cur, p)
		} else {
			found = e.scopes[joinQualified(cur.qualified(), p)]
		}
		switch {
		case found != nil:
			cur = found
		case i == len(parts)-1:
			cur = cur.child(usrStruct, p, metadata.KindRecord)
			cur.guessed = true
		default:
			cur = cur.child(usrNamespace, p, metadata.KindNamespace)
		}
	}
	return cur
}

// alternate returns the namespace reading of a declaration whose owner is a
// guessed record, or nil. usr builds the declaration's USR under a scope.
func alternate(owner *scope, usr func(*scope) string) *metadata.FactScope {
	if !owner.guessed {
		return nil
	}
	ns := owner.parent.child(usrNamespace, owner.name, metadata.KindNamespace)
	return &metadata.FactScope{
		ID:         metadata.NewSymbolID(usr(ns)),
		Parent:     ns.id,
		ParentKind: metadata.KindNamespace,
		ParentName: ns.name,
		Namespace:  ns.chain(),
	}
}

// resolveRecord returns the identity of a named record type. Unqualified
// names not declared in this file are assumed to live in the enclosing
// namespace; template bases resolve to their primary template.
func (e *extractor) resolveRecord(s *scope, n *sitter.Node) metadata.SymbolID {
	scopes, last := qualifiedParts(n, e.src)
	if last == nil {
		return metadata.ZeroID
	}
	name := e.text(last)
	if last.Type() == "template_type" {
		name = e.text(last.ChildByFieldName("name"))
	}
	if len(scopes) > 0 {
		owner := e.resolveScope(s, scopes)
		if found, ok := e.scopes[joinQualified(owner.qualified(), name)]; ok {
			return found.id
		}
		return owner.child(usrStruct, name, metadata.KindRecord).id
	}
	if found := e.lookup(s, name); found != nil && found.kind == metadata.KindRecord {
		return found.id
	}
	return s.namespace().child(usrStruct, name, metadata.KindRecord).id
}

// knownRecord resolves a type spelling to a record declared in this file.
// Pointers, references and qualifiers are ignored.
func (e *extractor) knownRecord(s *scope, typ string) metadata.SymbolID {
	name := strings.TrimPrefix(typ, "const ")
	name = strings.TrimRight(name, "*& ")
	if name == "" || strings.ContainsAny(name, "<>() ") {
		return metadata.ZeroID
	}
	parts := strings.Split(name, "::")
	cur := s
	if len(parts) > 1 {
		if parts[0] == "" {
			cur = e.global
			parts = parts[1:]
		}
		found := e.lookup(cur, strings.Join(parts, "::"))
		if found == nil || found.kind != metadata.KindRecord {
			return metadata.ZeroID
		}
		return found.id
	}
	if found := e.lookup(cur, name); found != nil && found.kind == metadata.KindRecord {
		return found.id
	}
	return metadata.ZeroID
}
