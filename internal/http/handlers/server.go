package handlers

import (
	"github.com/rs/zerolog"

	"github.com/rogerio-castellano/product-catalog/internal/events"
	repo "github.com/rogerio-castellano/product-catalog/internal/repo"
)

var (
	productRepo repo.ProductRepository
	publisher   events.Publisher = events.NopPublisher{}
	logger                       = zerolog.Nop()
)

func SetProductRepo(r repo.ProductRepository) {
	productRepo = r
}

func SetPublisher(p events.Publisher) {
	publisher = p
}

func SetLogger(l zerolog.Logger) {
	logger = l.With().Str("component", "handlers").Logger()
}
