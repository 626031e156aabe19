package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// User-facing messages.
const (
	MsgInvalidPrice = "Preço inválido. Use formato 199,99"
	MsgSaveFailed   = "Erro ao salvar produto"
	MsgFetchFailed  = "Erro ao buscar produto"
	MsgLoadFailed   = "Erro ao carregar produtos"
)

var (
	ErrInvalidPrice = errors.New("invalid price")
	// ErrLoadFailed wraps list failures from Load, including the reload after a
	// successful Submit.
	ErrLoadFailed = errors.New("load products")
)

// Mode tells whether a submit creates a new product or updates an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Controller drives the catalog page: it loads the products table and turns
// the product form into create and update requests.
//
// Network calls are made without holding the controller lock, so overlapping
// operations are not serialized: whichever response arrives last decides what
// the view shows.
type Controller struct {
	api    ProductAPI
	view   View
	logger zerolog.Logger

	mu        sync.Mutex
	mode      Mode
	editingID ID
}

func NewController(api ProductAPI, view View, logger zerolog.Logger) *Controller {
	return &Controller{
		api:    api,
		view:   view,
		logger: logger.With().Str("component", "catalog").Logger(),
		mode:   ModeCreate,
	}
}

// Mode returns the current form mode and, in edit mode, the id being edited.
func (c *Controller) Mode() (Mode, ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode, c.editingID
}

// Load fetches the product list and replaces the table with it. On failure
// the table keeps whatever it showed before.
func (c *Controller) Load(ctx context.Context) error {
	products, err := c.api.List(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to load products")
		c.view.Alert(MsgLoadFailed)
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	rows := make([]Row, len(products))
	for i, p := range products {
		rows[i] = rowFor(p)
	}
	c.view.RenderProducts(rows)
	return nil
}

// Submit saves the form. Only the price is validated; an invalid price aborts
// before any request is made. A failed save leaves the form and mode as they were.
func (c *Controller) Submit(ctx context.Context, in FormInput) error {
	price, ok := ParsePrice(strings.TrimSpace(in.Price)).Value()
	if !ok {
		c.logger.Debug().Str("price", in.Price).Msg("rejected price input")
		c.view.Alert(MsgInvalidPrice)
		return ErrInvalidPrice
	}

	payload := ProductInput{
		Name:     strings.TrimSpace(in.Name),
		Quantity: parseQuantity(in.Quantity),
		Price:    price,
	}

	mode, id := c.Mode()
	var err error
	switch mode {
	case ModeEdit:
		err = c.api.Update(ctx, id, payload)
	default:
		err = c.api.Create(ctx, payload)
	}
	if err != nil {
		c.logger.Error().Err(err).Str("mode", mode.String()).Str("id", id.String()).Msg("failed to save product")
		c.view.Alert(MsgSaveFailed)
		return err
	}

	c.logger.Info().Str("mode", mode.String()).Str("id", id.String()).Str("name", payload.Name).Msg("product saved")
	c.Cancel()
	return c.Load(ctx)
}

// Cancel clears the form and returns to create mode.
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.mode = ModeCreate
	c.editingID = ""
	c.mu.Unlock()

	c.view.ResetForm()
}

// SelectForEdit fetches one product, fills the form with it and switches to
// edit mode.
func (c *Controller) SelectForEdit(ctx context.Context, id ID) error {
	p, err := c.api.Get(ctx, id)
	if err != nil {
		c.logger.Error().Err(err).Str("id", id.String()).Msg("failed to fetch product")
		c.view.Alert(MsgFetchFailed)
		return err
	}
	if p.ID == "" {
		p.ID = id
	}

	c.mu.Lock()
	c.mode = ModeEdit
	c.editingID = p.ID
	c.mu.Unlock()

	c.view.FillForm(formFor(p))
	c.view.ScrollToTop()
	return nil
}

// parseQuantity converts the quantity field; anything that is not an integer
// is sent as zero.
func parseQuantity(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
