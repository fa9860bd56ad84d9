package controllers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"stockroom/codec"
	"stockroom/inventory"
	"stockroom/models"
)

const defaultLowStockThreshold = 10

type ProductController struct {
	store  inventory.Store
	logger *slog.Logger
}

func NewProductController(store inventory.Store, logger *slog.Logger) *ProductController {
	return &ProductController{store: store, logger: logger}
}

// ListProducts handles GET /api/products. ?name= filters by substring and
// takes precedence over ?category=.
func (p *ProductController) ListProducts(c *fiber.Ctx) error {
	var (
		products []models.Product
		err      error
	)
	switch name, category := c.Query("name"), c.Query("category"); {
	case name != "":
		products, err = p.store.FindByName(c.UserContext(), name)
	case category != "":
		products, err = p.store.FindByCategory(c.UserContext(), category)
	default:
		products, err = p.store.List(c.UserContext())
	}
	if err != nil {
		return err
	}
	return send(c, fiber.StatusOK, codec.Encode(products))
}

// CreateProduct handles POST /api/products.
func (p *ProductController) CreateProduct(c *fiber.Ctx) error {
	product, err := codec.DecodeProduct(string(c.Body()))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid product data: "+err.Error())
	}
	if product == nil {
		return fail(c, fiber.StatusBadRequest, inventory.ErrInvalidProduct.Error())
	}

	if err := p.store.Add(c.UserContext(), *product); err != nil {
		if errors.Is(err, inventory.ErrDuplicateID) || errors.Is(err, inventory.ErrInvalidProduct) {
			return fail(c, fiber.StatusBadRequest, err.Error())
		}
		return err
	}
	return send(c, fiber.StatusOK, codec.Success("product added"))
}

// GetProduct handles GET /api/product?id=.
func (p *ProductController) GetProduct(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return fail(c, fiber.StatusBadRequest, "missing product id")
	}

	product, err := p.store.Get(c.UserContext(), id)
	if err != nil {
		return p.notFoundOr(c, err)
	}
	return send(c, fiber.StatusOK, codec.Encode(product))
}

// UpdateProduct handles PUT /api/product?id=.
func (p *ProductController) UpdateProduct(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return fail(c, fiber.StatusBadRequest, "missing product id")
	}

	req, err := codec.DecodeUpdate(string(c.Body()))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid update data: "+err.Error())
	}
	if req == nil {
		return fail(c, fiber.StatusBadRequest, "invalid update data")
	}

	if _, err := p.store.Update(c.UserContext(), id, *req); err != nil {
		return p.notFoundOr(c, err)
	}
	return send(c, fiber.StatusOK, codec.Success("product updated"))
}

// DeleteProduct handles DELETE /api/product?id=.
func (p *ProductController) DeleteProduct(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return fail(c, fiber.StatusBadRequest, "missing product id")
	}

	if err := p.store.Delete(c.UserContext(), id); err != nil {
		return p.notFoundOr(c, err)
	}
	return send(c, fiber.StatusOK, codec.Success("product deleted"))
}

// Statistics handles GET /api/statistics.
func (p *ProductController) Statistics(c *fiber.Ctx) error {
	st, err := p.store.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return send(c, fiber.StatusOK, codec.Encode(codec.Object{
		{Key: "productCount", Value: st.ProductCount},
		{Key: "totalValue", Value: st.TotalValue},
		{Key: "categories", Value: st.Categories},
	}))
}

// LowStock handles GET /api/low-stock. A missing or unparsable threshold
// falls back to 10.
func (p *ProductController) LowStock(c *fiber.Ctx) error {
	threshold := defaultLowStockThreshold
	if v, err := strconv.Atoi(c.Query("threshold")); err == nil {
		threshold = v
	}

	products, err := p.store.LowStock(c.UserContext(), threshold)
	if err != nil {
		return err
	}
	return send(c, fiber.StatusOK, codec.Encode(products))
}

func (p *ProductController) notFoundOr(c *fiber.Ctx, err error) error {
	if errors.Is(err, inventory.ErrNotFound) {
		return fail(c, fiber.StatusNotFound, err.Error())
	}
	return err
}
