package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rogerio-castellano/product-catalog/internal/events"
	models "github.com/rogerio-castellano/product-catalog/internal/models"
	repo "github.com/rogerio-castellano/product-catalog/internal/repo"
)

func toResponse(p models.Product) ProductResponse {
	return ProductResponse{
		Id:       p.ID,
		Name:     p.Name,
		Quantity: p.Quantity,
		Price:    p.Price,
	}
}

func productID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil
}

// decodeProduct writes the 400 response itself and reports false when the
// body is not a valid product.
func decodeProduct(w http.ResponseWriter, r *http.Request) (ProductRequest, bool) {
	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		logger.Debug().Err(err).Msg("rejected product body")
		if errors.Is(err, ErrInvalidPrice) {
			writeError(w, http.StatusBadRequest, "invalid price")
			return req, false
		}
		http.Error(w, "invalid input", http.StatusBadRequest)
		return req, false
	}

	if validationErrors := validateProduct(&req); len(validationErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, validationErrors)
		return req, false
	}
	return req, true
}

func publish(ctx context.Context, e events.ProductEvent) {
	if err := publisher.Publish(ctx, e); err != nil {
		logger.Error().Err(err).Str("event", string(e.Type)).Int("product_id", e.ProductID).Msg("failed to publish product event")
	}
}

// GetProductsHandler godoc
// @Summary List all products
// @Description Newest products first
// @Tags products
// @Produce json
// @Success 200 {array} ProductResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/products [get]
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := productRepo.GetAll(r.Context())
	if err != nil {
		logger.Error().Err(err).Msg("failed to list products")
		writeError(w, http.StatusInternalServerError, "could not fetch products")
		return
	}
	response := make([]ProductResponse, len(products))
	for i, p := range products {
		response[i] = toResponse(p)
	}
	writeJSON(w, http.StatusOK, response)
}

// GetProductByIDHandler godoc
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/products/{id} [get]
func GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := productRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		logger.Error().Err(err).Int("id", id).Msg("failed to fetch product")
		writeError(w, http.StatusInternalServerError, "could not fetch product")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(product))
}

// CreateProductHandler godoc
// @Summary Create a new product
// @Description Price may be a number or a string in "199,99" notation
// @Tags products
// @Accept json
// @Produce json
// @Param product body ProductRequest true "Product to add"
// @Success 201 {object} CreatedResponse
// @Failure 400 {array} ProductValidationError
// @Failure 500 {object} ErrorResponse
// @Router /api/products [post]
func CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeProduct(w, r)
	if !ok {
		return
	}

	created, err := productRepo.Create(r.Context(), models.Product{
		Name:     req.Name,
		Quantity: req.Quantity,
		Price:    float64(req.Price),
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to create product")
		writeError(w, http.StatusInternalServerError, "could not create product")
		return
	}

	logger.Info().Int("id", created.ID).Str("name", created.Name).Msg("product created")
	publish(r.Context(), events.NewProductEvent(events.ProductCreated, created.ID, &created))
	writeJSON(w, http.StatusCreated, CreatedResponse{Id: created.ID})
}

// UpdateProductHandler godoc
// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param product body ProductRequest true "Updated product"
// @Success 200 {object} OKResponse
// @Failure 400 {array} ProductValidationError
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/products/{id} [put]
func UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	req, ok := decodeProduct(w, r)
	if !ok {
		return
	}

	updated, err := productRepo.Update(r.Context(), models.Product{
		ID:       id,
		Name:     req.Name,
		Quantity: req.Quantity,
		Price:    float64(req.Price),
	})
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		logger.Error().Err(err).Int("id", id).Msg("failed to update product")
		writeError(w, http.StatusInternalServerError, "could not update product")
		return
	}

	logger.Info().Int("id", id).Msg("product updated")
	publish(r.Context(), events.NewProductEvent(events.ProductUpdated, id, &updated))
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// DeleteProductHandler godoc
// @Summary Delete a product
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} OKResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/products/{id} [delete]
func DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := productRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Produto não encontrado")
			return
		}
		logger.Error().Err(err).Int("id", id).Msg("failed to delete product")
		writeError(w, http.StatusInternalServerError, "could not delete product")
		return
	}

	logger.Info().Int("id", id).Msg("product deleted")
	publish(r.Context(), events.NewProductEvent(events.ProductDeleted, id, nil))
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// HealthHandler reports that the process is serving requests.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
