package webapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/TaxTrail-Team/taxtrail-server/internal/fx"
	"github.com/TaxTrail-Team/taxtrail-server/internal/taxes"
)

func registerTaxRoutes(api fiber.Router, d Deps) {
	group := api.Group("/taxes")
	group.Get("/", listTaxes(d))
	group.Post("/", createTax(d))
	group.Get("/categories", listCategories(d))
	group.Post("/convert", convertTaxes(d))
}

func filterFromQuery(c *fiber.Ctx) taxes.Filter {
	f := taxes.Filter{
		Category: c.Query("category"),
		Limit:    c.QueryInt("limit", 0),
	}
	if year := c.QueryInt("year", -1); year >= 0 {
		f.Year = &year
	}
	if raw := c.Query("amount"); raw != "" {
		if amount := c.QueryFloat("amount", -1); amount >= 0 {
			f.Amount = &amount
		}
	}
	return f
}

func listTaxes(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := d.Taxes.List(c.UserContext(), filterFromQuery(c))
		if err != nil {
			return problemJSON(c, errorStatus(err), "Failed to list tax items", err.Error())
		}
		return c.JSON(items)
	}
}

func listCategories(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats, err := d.Taxes.Categories(c.UserContext())
		if err != nil {
			return problemJSON(c, errorStatus(err), "Failed to list categories", err.Error())
		}
		return c.JSON(cats)
	}
}

type createRequest struct {
	Name     string  `json:"name" validate:"required"`
	Category string  `json:"category" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3,alpha"`
	Year     int     `json:"year"`
}

func createTax(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := bindAndValidate[createRequest](c)
		if err != nil {
			return problemJSON(c, fiber.StatusBadRequest, "Invalid tax item", err.Error())
		}
		item := taxes.Item{
			Name:     req.Name,
			Category: req.Category,
			Amount:   req.Amount,
			Currency: req.Currency,
			Year:     req.Year,
		}
		if err := d.Taxes.Create(c.UserContext(), &item); err != nil {
			return problemJSON(c, errorStatus(err), "Failed to store tax item", err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

type convertRequest struct {
	Target   string `json:"target" validate:"required,len=3,alpha"`
	Category string `json:"category"`
	Year     *int   `json:"year"`
	Limit    int    `json:"limit"`
}

type convertResponse struct {
	Target string                `json:"target"`
	Items  []taxes.ConvertedItem `json:"items"`
}

func convertTaxes(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := bindAndValidate[convertRequest](c)
		if err != nil {
			return problemJSON(c, fiber.StatusBadRequest, "Invalid conversion request", err.Error())
		}
		items, err := d.Taxes.Convert(c.UserContext(), taxes.Filter{
			Category: req.Category,
			Year:     req.Year,
			Limit:    req.Limit,
		}, req.Target)
		if err != nil {
			return problemJSON(c, errorStatus(err), "Conversion failed", err.Error())
		}
		return c.JSON(convertResponse{Target: fx.NormalizeCode(req.Target), Items: items})
	}
}
