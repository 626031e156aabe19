package web

import (
	"sync"

	"github.com/rogerio-castellano/product-catalog/internal/catalog"
)

// Page is the server-side document of the catalog UI: the products table, the
// product form and anything waiting to be shown to the user. It implements
// catalog.View.
type Page struct {
	mu     sync.Mutex
	rows   []catalog.Row
	form   catalog.Form
	alerts []string
	scroll bool
	// listed is set when the current rows came from a load that no page
	// view has consumed yet.
	listed bool
}

// State is one rendering of the page.
type State struct {
	Rows   []catalog.Row
	Form   catalog.Form
	Alerts []string
	Scroll bool
}

func NewPage() *Page {
	return &Page{}
}

func (p *Page) RenderProducts(rows []catalog.Row) {
	cp := make([]catalog.Row, len(rows))
	copy(cp, rows)

	p.mu.Lock()
	p.rows = cp
	p.mu.Unlock()
}

func (p *Page) FillForm(f catalog.Form) {
	p.mu.Lock()
	p.form = f
	p.mu.Unlock()
}

func (p *Page) ResetForm() {
	p.mu.Lock()
	p.form = catalog.Form{}
	p.mu.Unlock()
}

func (p *Page) Alert(msg string) {
	p.mu.Lock()
	p.alerts = append(p.alerts, msg)
	p.mu.Unlock()
}

func (p *Page) ScrollToTop() {
	p.mu.Lock()
	p.scroll = true
	p.mu.Unlock()
}

// SetInput records what the user typed into the visible fields. The hidden id
// field is left alone.
func (p *Page) SetInput(in catalog.FormInput) {
	p.mu.Lock()
	p.form.Name = in.Name
	p.form.Quantity = in.Quantity
	p.form.Price = in.Price
	p.mu.Unlock()
}

// MarkListed records that the list was just loaded, so the next page view
// does not need to load it again.
func (p *Page) MarkListed() {
	p.mu.Lock()
	p.listed = true
	p.mu.Unlock()
}

// TakeListed reports whether MarkListed was called since the last call and
// clears the mark.
func (p *Page) TakeListed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	listed := p.listed
	p.listed = false
	return listed
}

// Snapshot returns the current page. Alerts and a pending scroll are handed
// out once and then cleared.
func (p *Page) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := State{
		Rows:   make([]catalog.Row, len(p.rows)),
		Form:   p.form,
		Alerts: p.alerts,
		Scroll: p.scroll,
	}
	copy(s.Rows, p.rows)
	p.alerts = nil
	p.scroll = false
	return s
}

var _ catalog.View = (*Page)(nil)
