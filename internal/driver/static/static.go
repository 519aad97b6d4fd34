// Package static implements driver.Driver over parsed HTML documents.
// It never executes scripts: clicks, typing and uploads mutate the in-memory
// tree and are recorded so callers can inspect what happened.
package static

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/spigell/easy-applier/internal/driver"
)

// ActionKind names a recorded interaction.
type ActionKind string

const (
	ActionNavigate ActionKind = "navigate"
	ActionClick    ActionKind = "click"
	ActionClear    ActionKind = "clear"
	ActionType     ActionKind = "type"
	ActionUpload   ActionKind = "upload"
)

// Action is one recorded interaction.
type Action struct {
	Kind   ActionKind
	Target string
	Value  string
}

// Transition is invoked after a click on an element matching its selector.
type Transition func(d *Driver) error

type node struct {
	sel *goquery.Selection
	gen int
}

func (n *node) String() string {
	return describe(n.sel)
}

// Driver is an in-memory document session.
type Driver struct {
	pages       map[string]string
	redirects   map[string]string
	doc         *goquery.Document
	url         string
	gen         int
	actions     []Action
	transitions []transition
}

type transition struct {
	selector string
	fn       Transition
}

// New creates a driver with the given document loaded.
func New(html string) (*Driver, error) {
	d := &Driver{pages: make(map[string]string), redirects: make(map[string]string)}
	if err := d.Load(html); err != nil {
		return nil, err
	}
	return d, nil
}

// AddPage registers a document served by Navigate.
func (d *Driver) AddPage(url, html string) {
	d.pages[url] = html
}

// AddRedirect makes Navigate to from land on to, the way a server redirect does.
func (d *Driver) AddRedirect(from, to string) {
	d.redirects[from] = to
}

// OnClick registers a transition fired when an element matching selector is clicked.
func (d *Driver) OnClick(selector string, fn Transition) {
	d.transitions = append(d.transitions, transition{selector: selector, fn: fn})
}

// Load replaces the current document. Locators from the previous document become stale.
func (d *Driver) Load(html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}
	d.doc = doc
	d.gen++
	return nil
}

// Actions returns the interactions recorded so far.
func (d *Driver) Actions() []Action {
	return append([]Action(nil), d.actions...)
}

// ActionsOf returns recorded interactions of one kind.
func (d *Driver) ActionsOf(kind ActionKind) []Action {
	var out []Action
	for _, a := range d.actions {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

func (d *Driver) Navigate(_ context.Context, url string) error {
	d.record(ActionNavigate, url, "")
	if to, ok := d.redirects[url]; ok {
		url = to
	}
	html, ok := d.pages[url]
	if !ok {
		return fmt.Errorf("no page registered for %s", url)
	}
	if err := d.Load(html); err != nil {
		return err
	}
	d.url = url
	return nil
}

func (d *Driver) Location(context.Context) (string, error) {
	return d.url, nil
}

func (d *Driver) FindOne(ctx context.Context, scope driver.Locator, selector string) (driver.Locator, error) {
	all, err := d.FindAll(ctx, scope, selector)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%s: %w", selector, driver.ErrNotFound)
	}
	return all[0], nil
}

func (d *Driver) FindAll(_ context.Context, scope driver.Locator, selector string) ([]driver.Locator, error) {
	root := d.doc.Selection
	if scope != nil {
		n, err := d.resolve(scope)
		if err != nil {
			return nil, err
		}
		root = n.sel
	}

	var out []driver.Locator
	root.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, &node{sel: s, gen: d.gen})
	})
	return out, nil
}

func (d *Driver) Click(_ context.Context, loc driver.Locator) error {
	n, err := d.resolve(loc)
	if err != nil {
		return err
	}

	d.record(ActionClick, n.String(), "")

	if goquery.NodeName(n.sel) == "input" {
		switch strings.ToLower(n.sel.AttrOr("type", "")) {
		case "checkbox":
			toggle(n.sel)
		case "radio":
			if name, ok := n.sel.Attr("name"); ok {
				d.doc.Find(fmt.Sprintf(`input[type="radio"][name=%q]`, name)).RemoveAttr("checked")
			}
			n.sel.SetAttr("checked", "checked")
		}
	}

	for _, t := range d.transitions {
		if n.sel.Is(t.selector) {
			return t.fn(d)
		}
	}
	return nil
}

func (d *Driver) Clear(_ context.Context, loc driver.Locator) error {
	n, err := d.resolve(loc)
	if err != nil {
		return err
	}
	n.sel.SetAttr("value", "")
	d.record(ActionClear, n.String(), "")
	return nil
}

func (d *Driver) Type(_ context.Context, loc driver.Locator, text string) error {
	n, err := d.resolve(loc)
	if err != nil {
		return err
	}
	n.sel.SetAttr("value", n.sel.AttrOr("value", "")+text)
	d.record(ActionType, n.String(), text)
	return nil
}

func (d *Driver) Upload(_ context.Context, loc driver.Locator, path string) error {
	n, err := d.resolve(loc)
	if err != nil {
		return err
	}
	if goquery.NodeName(n.sel) != "input" || n.sel.AttrOr("type", "") != "file" {
		return fmt.Errorf("upload target %s is not a file input", n)
	}
	n.sel.SetAttr("data-uploaded", path)
	d.record(ActionUpload, n.String(), path)
	return nil
}

func (d *Driver) ReadText(_ context.Context, loc driver.Locator) (string, error) {
	n, err := d.resolve(loc)
	if err != nil {
		return "", err
	}
	return n.sel.Text(), nil
}

func (d *Driver) ReadAttribute(_ context.Context, loc driver.Locator, name string) (string, bool, error) {
	n, err := d.resolve(loc)
	if err != nil {
		return "", false, err
	}
	v, ok := n.sel.Attr(name)
	return v, ok, nil
}

// WaitFor checks once: a static document never changes by itself.
func (d *Driver) WaitFor(ctx context.Context, selector string, _ time.Duration) (driver.Locator, error) {
	loc, err := d.FindOne(ctx, nil, selector)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", selector, driver.ErrTimeout)
	}
	return loc, nil
}

func (d *Driver) Close() error { return nil }

func (d *Driver) resolve(loc driver.Locator) (*node, error) {
	n, ok := loc.(*node)
	if !ok || n == nil {
		return nil, fmt.Errorf("locator %v was not produced by the static driver", loc)
	}
	if n.gen != d.gen {
		return nil, fmt.Errorf("stale locator %s", n)
	}
	return n, nil
}

func (d *Driver) record(kind ActionKind, target, value string) {
	d.actions = append(d.actions, Action{Kind: kind, Target: target, Value: value})
}

func toggle(s *goquery.Selection) {
	if _, ok := s.Attr("checked"); ok {
		s.RemoveAttr("checked")
		return
	}
	s.SetAttr("checked", "checked")
}

// describe renders a short CSS-like description: tag#id.class[name][value].
func describe(s *goquery.Selection) string {
	var b strings.Builder
	b.WriteString(goquery.NodeName(s))
	if id, ok := s.Attr("id"); ok && id != "" {
		b.WriteString("#" + id)
	}
	if class, ok := s.Attr("class"); ok && class != "" {
		b.WriteString("." + strings.Join(strings.Fields(class), "."))
	}
	attrs := []string{"name", "aria-label"}
	if isChoice(s) {
		// text controls carry their typed value here, choices carry their identity
		attrs = append(attrs, "value")
	}
	for _, attr := range attrs {
		if v := s.AttrOr(attr, ""); v != "" {
			b.WriteString(fmt.Sprintf("[%s=%q]", attr, v))
		}
	}
	return b.String()
}

func isChoice(s *goquery.Selection) bool {
	t := strings.ToLower(s.AttrOr("type", ""))
	return goquery.NodeName(s) == "input" && (t == "radio" || t == "checkbox")
}
