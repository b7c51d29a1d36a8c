package checkouttest

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	checkout "github.com/nextcommerce/checkout-go"
)

// Package describes a purchasable upsell package the sandbox knows about.
type Package struct {
	ID    string
	Title string
	Price string
}

// Server is an in-process sandbox implementation of the checkout API
// contract (GET /orders/:ref, POST /orders/:ref/upsells). It serves
// seeded orders and applies upsells by appending lines and recomputing
// the total, which makes it a drop-in backend for integration tests and
// merchant test mode.
type Server struct {
	mu       sync.Mutex
	orders   map[string]*checkout.Order
	packages map[string]Package

	echo *echo.Echo
}

// NewServer creates an empty sandbox.
func NewServer() *Server {
	s := &Server{
		orders:   make(map[string]*checkout.Order),
		packages: make(map[string]Package),
	}

	e := echo.New()
	e.HideBanner = true
	e.GET("/orders/:ref", s.getOrder)
	e.POST("/orders/:ref/upsells", s.addUpsell)
	s.echo = e

	return s
}

// Handler returns the sandbox as an http.Handler for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// SeedOrder registers an order under its RefID.
func (s *Server) SeedOrder(order checkout.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := order
	o.Lines = append([]checkout.OrderLine(nil), order.Lines...)
	s.orders[order.RefID] = &o
}

// SeedPackage registers an upsell package available for purchase.
func (s *Server) SeedPackage(pkg Package) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages[pkg.ID] = pkg
}

type errorBody struct {
	Message string `json:"message"`
}

func (s *Server) getOrder(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[c.Param("ref")]
	if !ok {
		return c.JSON(http.StatusNotFound, errorBody{Message: "order not found"})
	}
	return c.JSON(http.StatusOK, order)
}

func (s *Server) addUpsell(c echo.Context) error {
	var req checkout.UpsellRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "invalid upsell payload"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[c.Param("ref")]
	if !ok {
		return c.JSON(http.StatusNotFound, errorBody{Message: "order not found"})
	}
	if !order.SupportsPostPurchaseUpsells {
		return c.JSON(http.StatusConflict, errorBody{Message: "order does not support post-purchase upsells"})
	}

	total, err := decimal.NewFromString(order.TotalInclTax)
	if err != nil {
		total = decimal.Zero
	}

	for _, line := range req.Lines {
		id := fmt.Sprintf("%v", line.PackageID)
		pkg, ok := s.packages[id]
		if !ok {
			return c.JSON(http.StatusUnprocessableEntity, errorBody{Message: fmt.Sprintf("unknown package %s", id)})
		}

		price, err := decimal.NewFromString(pkg.Price)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, errorBody{Message: fmt.Sprintf("package %s has an invalid price", id)})
		}

		qty := line.Quantity
		if qty <= 0 {
			qty = 1
		}
		lineTotal := price.Mul(decimal.NewFromInt(int64(qty)))
		total = total.Add(lineTotal)

		order.Lines = append(order.Lines, checkout.OrderLine{
			IsUpsell:         true,
			ProductSKU:       fmt.Sprintf("PKG-%s", pkg.ID),
			ProductTitle:     pkg.Title,
			Quantity:         qty,
			PriceInclTax:     pkg.Price,
			LineTotalInclTax: lineTotal.StringFixed(2),
		})
	}

	order.TotalInclTax = total.StringFixed(2)
	return c.JSON(http.StatusOK, order)
}
