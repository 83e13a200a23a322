package lang

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/expr-lang/expr/ast"

	"github.com/ardnew/aexpr/log"
)

// bindingPrefix prefixes the synthetic identifiers bound in the runtime
// environment. It cannot collide with context keys, which are never looked
// up by their synthetic name.
const bindingPrefix = "__ctx"

// chainCollector records the structural facts contextPatcher needs before
// any node is rewritten. expr-lang walks the tree post-order, so a visitor
// cannot see a node's parent when it visits the node itself.
type chainCollector struct {
	dotted  map[ast.Node]bool // operand of a dotted member access
	callees map[ast.Node]bool // callee of a function call
	locals  map[string]bool   // names declared with let
}

func newChainCollector() *chainCollector {
	return &chainCollector{
		dotted:  make(map[ast.Node]bool),
		callees: make(map[ast.Node]bool),
		locals:  make(map[string]bool),
	}
}

// Visit implements ast.Visitor for chainCollector.
func (c *chainCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.MemberNode:
		if _, ok := n.Property.(*ast.StringNode); ok {
			c.dotted[n.Node] = true
		}

	case *ast.CallNode:
		c.callees[n.Callee] = true

	case *ast.VariableDeclaratorNode:
		c.locals[n.Name] = true
	}
}

// contextPatcher resolves identifier and dotted member chains through a
// Context.
//
// For a chain such as a.b.c, the longest prefix naming a context key wins:
// "a.b.c" is tried first, then "a.b", then "a". The node spanning the
// matched prefix is replaced by a synthetic identifier whose value is bound
// in env, and any remaining members are evaluated by expr-lang at runtime.
// Chains that do not resolve at all evaluate to nil, except the callees of
// function calls, which are left for expr-lang to report.
type contextPatcher struct {
	ctx    *Context
	env    map[string]any
	scan   *chainCollector
	logger log.Logger
}

// Visit implements ast.Visitor for contextPatcher.
func (p *contextPatcher) Visit(node *ast.Node) {
	switch (*node).(type) {
	case *ast.IdentifierNode, *ast.MemberNode:
		// Only the outermost node of a chain is resolved.
		if !p.scan.dotted[*node] {
			p.resolve(node)
		}
	}
}

func (p *contextPatcher) resolve(slot *ast.Node) {
	// A computed member (a[b].c) breaks the chain. Its operand is not dotted,
	// so it was already visited and resolved on its own.
	segs, slots, ok := memberChain(slot)
	if !ok {
		return
	}

	if segs[0] == "$env" || p.scan.locals[segs[0]] {
		return
	}

	for n := len(segs); n > 0; n-- {
		key := strings.Join(segs[:n], ".")

		value, found := p.ctx.Get(key)
		if !found {
			continue
		}

		name := p.bind(value)
		ast.Patch(slots[n-1], &ast.IdentifierNode{Value: name})

		p.logger.Trace("patch identifier",
			slog.String("key", key),
			slog.String("binding", name),
			slog.Int("unresolved_members", len(segs)-n))

		return
	}

	if p.scan.callees[*slot] {
		return
	}

	ast.Patch(slot, &ast.NilNode{})

	p.logger.Trace("patch unresolved",
		slog.String("key", strings.Join(segs, ".")))
}

// bind stores value in the runtime environment under a new synthetic name.
func (p *contextPatcher) bind(value any) string {
	name := bindingPrefix + strconv.Itoa(len(p.env))
	p.env[name] = value

	return name
}

// memberChain returns the segments of a dotted chain rooted at an identifier,
// innermost first, along with the slot holding the node that spans each
// prefix of the chain.
func memberChain(slot *ast.Node) (segs []string, slots []*ast.Node, ok bool) {
	switch n := (*slot).(type) {
	case *ast.IdentifierNode:
		return []string{n.Value}, []*ast.Node{slot}, true

	case *ast.MemberNode:
		prop, ok := n.Property.(*ast.StringNode)
		if !ok {
			return nil, nil, false
		}

		segs, slots, ok := memberChain(&n.Node)
		if !ok {
			return nil, nil, false
		}

		return append(segs, prop.Value), append(slots, slot), true

	default:
		return nil, nil, false
	}
}
