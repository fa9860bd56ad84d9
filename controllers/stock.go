package controllers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"stockroom/codec"
	"stockroom/inventory"
	"stockroom/middleware"
	"stockroom/models"
)

type stockFunc func(ctx context.Context, id string, amount int) (models.Product, error)

// StockIn handles POST /api/stock-in.
func (p *ProductController) StockIn(c *fiber.Ctx) error {
	return p.adjust(c, p.store.StockIn, "stock-in")
}

// StockOut handles POST /api/stock-out.
func (p *ProductController) StockOut(c *fiber.Ctx) error {
	return p.adjust(c, p.store.StockOut, "stock-out")
}

func (p *ProductController) adjust(c *fiber.Ctx, apply stockFunc, op string) error {
	req, err := codec.DecodeStockAdjustment(string(c.Body()))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, op+" failed: "+err.Error())
	}
	if req == nil || req.ID == "" {
		return fail(c, fiber.StatusBadRequest, op+" failed: missing product id")
	}

	product, err := apply(c.UserContext(), req.ID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, inventory.ErrInvalidAmount),
			errors.Is(err, inventory.ErrInsufficientStock),
			errors.Is(err, inventory.ErrNotFound):
			return fail(c, fiber.StatusBadRequest, op+" failed: "+err.Error())
		}
		return err
	}

	username, _ := c.Locals(middleware.UsernameKey).(string)
	p.logger.Info(op, "username", username, "id", product.ID, "amount", req.Amount, "quantity", product.Quantity)
	return send(c, fiber.StatusOK, codec.Success(op+" succeeded"))
}
