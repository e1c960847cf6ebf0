package browser

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/anthonytopper/customer-web-xp/core/selector"
	"github.com/anthonytopper/customer-web-xp/internal/logging"
)

// Node identifies a DOM node of a Document. Ids are handed out by a
// registry living in the page, one per node, so equal ids mean the same
// node. Navigating the page invalidates every id.
type Node int

// NoNode is the id reported for absent nodes.
const NoNode Node = -1

// registry is evaluated once per page realm and stored on window.
const registry = `(() => {
	const nodes = [], ids = new Map();
	return {
		id(n) {
			if (!n) return -1;
			let i = ids.get(n);
			if (i === undefined) {
				i = nodes.length;
				nodes.push(n);
				ids.set(n, i);
			}
			return i;
		},
		node(i) { return i >= 0 ? nodes[i] : undefined; },
	};
})()`

// script wraps body in a function taking params, with the node registry
// bound to R.
func script(params, body string) string {
	return "(" + params + ") => { const R = (window.__cfiNodes ??= " + registry + "); " + body + " }"
}

// Document is a page open in the browser.
type Document struct {
	page    *rod.Page
	timeout time.Duration

	tree    *Tree
	surface *Surface
	canvas  *Canvas
}

// Attach wraps an already open page.
func Attach(ctx context.Context, page *rod.Page, cfg Config) (*Document, error) {
	cfg.defaults()
	d := &Document{page: page.Context(ctx), timeout: cfg.Timeout}
	d.tree = &Tree{doc: d}
	d.surface = &Surface{doc: d}
	d.canvas = &Canvas{doc: d}
	if _, err := d.call(script("", "return R.id(document.body);")); err != nil {
		return nil, err
	}
	return d, nil
}

// Page returns the underlying rod page.
func (d *Document) Page() *rod.Page { return d.page }

func (d *Document) Tree() *Tree       { return d.tree }
func (d *Document) Surface() *Surface { return d.surface }
func (d *Document) Canvas() *Canvas   { return d.canvas }

// Body returns the body element.
func (d *Document) Body() (Node, bool) {
	return d.node("body", script("", "return R.id(document.body);"))
}

// Selector returns a selector rooted at the body element.
func (d *Document) Selector(opts *selector.Options[Node]) (*selector.Selector[Node], bool) {
	body, ok := d.Body()
	if !ok {
		return nil, false
	}
	return selector.New(body, d.tree, opts), true
}

// Close closes the page.
func (d *Document) Close() error {
	return d.page.Close()
}

func (d *Document) call(js string, args ...any) (*proto.RuntimeRemoteObject, error) {
	ctx, cancel := context.WithTimeout(d.page.GetContext(), d.timeout)
	defer cancel()
	return d.page.Context(ctx).Eval(js, args...)
}

// eval runs js and logs failures, reporting them as absent results.
func (d *Document) eval(op, js string, args ...any) (*proto.RuntimeRemoteObject, bool) {
	res, err := d.call(js, args...)
	if err != nil {
		logging.BackendError(d.page.GetContext(), "browser", op, err)
		return nil, false
	}
	return res, true
}

func (d *Document) node(op, js string, args ...any) (Node, bool) {
	res, ok := d.eval(op, js, args...)
	if !ok || res.Value.Nil() {
		return NoNode, false
	}
	n := Node(res.Value.Int())
	return n, n != NoNode
}

// decode runs js, which must return a JSON string or null, into v.
func (d *Document) decode(op, js string, v any, args ...any) bool {
	res, ok := d.eval(op, js, args...)
	if !ok || res.Value.Nil() {
		return false
	}
	if err := json.Unmarshal([]byte(res.Value.Str()), v); err != nil {
		logging.BackendError(d.page.GetContext(), "browser", op, err)
		return false
	}
	return true
}

func (d *Document) truth(op, js string, args ...any) bool {
	res, ok := d.eval(op, js, args...)
	return ok && res.Value.Bool()
}
