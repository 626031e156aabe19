package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID identifies a product. The server assigns it and may encode it as a JSON
// number or string; the UI only ever echoes it back.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Product is a catalog record as returned by the products API.
type Product struct {
	ID       ID      `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// ProductInput is the body sent on create and update. It never carries an id.
type ProductInput struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// ProductAPI is the products REST resource as seen by the controller.
type ProductAPI interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id ID) (Product, error)
	Create(ctx context.Context, in ProductInput) error
	Update(ctx context.Context, id ID, in ProductInput) error
}

// Row is one rendered line of the products table. EditID is carried by the
// row's edit control.
type Row struct {
	ID       string
	Name     string
	Quantity string
	Price    string
	EditID   ID
}

// Form holds the values of the product form fields as text.
type Form struct {
	ID       string
	Name     string
	Quantity string
	Price    string
}

// FormInput is what the user submits. The id is not part of it: the
// controller knows which product is being edited.
type FormInput struct {
	Name     string
	Quantity string
	Price    string
}

// View is everything the controller needs from the page.
type View interface {
	// RenderProducts replaces the whole table body.
	RenderProducts(rows []Row)
	FillForm(f Form)
	ResetForm()
	// Alert shows a blocking message to the user.
	Alert(msg string)
	ScrollToTop()
}

func rowFor(p Product) Row {
	return Row{
		ID:       p.ID.String(),
		Name:     p.Name,
		Quantity: strconv.Itoa(p.Quantity),
		Price:    DisplayPrice(p.Price),
		EditID:   p.ID,
	}
}

func formFor(p Product) Form {
	return Form{
		ID:       p.ID.String(),
		Name:     p.Name,
		Quantity: strconv.Itoa(p.Quantity),
		Price:    EditPrice(p.Price),
	}
}
