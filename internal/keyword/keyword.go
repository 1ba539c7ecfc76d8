// Package keyword implements the line-oriented configuration engine:
// a keyword dispatch table and a block scanner over keepalived-style
// configuration text.
//
// A statement is one line: a keyword followed by its arguments. A root
// keyword may open a nested block with "{"; the block is closed by "}"
// on its own line. Handlers for child keywords are scoped to their
// parent's block.
package keyword

// Result is the recovery signal a handler returns to the scanner.
type Result int

const (
	// Continue proceeds with the next statement.
	Continue Result = iota

	// AbortBlock discards the remainder of the current block. The
	// scanner consumes every line up to the matching close brace
	// without invoking any handler, skips the block's end handler,
	// and resumes at the next sibling statement. A root handler that
	// aborts before its block opens swallows the whole block.
	AbortBlock
)

// Handler processes one statement. args holds the tokens following the
// keyword itself, excluding any block-opening brace.
type Handler func(args []string) Result

// EndHandler runs when a block closes normally. It does not run after
// AbortBlock.
type EndHandler func()

// Keyword is one entry in the dispatch table. A Keyword with children
// opens a block.
type Keyword struct {
	name    string
	handler Handler
	end     EndHandler
	subs    []*Keyword
}

// Sub registers a child keyword scoped to k's block and returns it.
// Registration order is the lookup order.
func (k *Keyword) Sub(name string, h Handler) *Keyword {
	sub := &Keyword{name: name, handler: h}
	k.subs = append(k.subs, sub)
	return sub
}

// End registers the block-close handler for k.
func (k *Keyword) End(fn EndHandler) {
	k.end = fn
}

// find returns the child keyword with the given name, or nil.
func (k *Keyword) find(name string) *Keyword {
	return findKeyword(k.subs, name)
}

// Registry is the ordered table of root keywords. A fresh Registry is
// built for every configuration load so that no handler state leaks
// between loads.
type Registry struct {
	roots []*Keyword
}

// NewRegistry returns an empty keyword table.
func NewRegistry() *Registry {
	return &Registry{}
}

// Root installs a root-level keyword and returns it for child
// registration.
func (r *Registry) Root(name string, h Handler) *Keyword {
	kw := &Keyword{name: name, handler: h}
	r.roots = append(r.roots, kw)
	return kw
}

// find returns the root keyword with the given name, or nil.
func (r *Registry) find(name string) *Keyword {
	return findKeyword(r.roots, name)
}

func findKeyword(kws []*Keyword, name string) *Keyword {
	for _, kw := range kws {
		if kw.name == name {
			return kw
		}
	}
	return nil
}
