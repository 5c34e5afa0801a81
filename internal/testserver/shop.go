package testserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
)

// Shop is an in-memory fake of the order API the default routes target:
// products at /, order creation at /order and order lookup and update at
// /order/{id}.
type Shop struct {
	mu       sync.Mutex
	products map[int]shopProduct
	orders   map[int]*shopOrder
	nextID   int
}

type shopProduct struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Weight  int     `json:"weight"`
	InStock bool    `json:"in_stock"`
}

type shopLine struct {
	ID       int `json:"id"`
	Quantity int `json:"quantity"`
}

type shopOrder struct {
	ID           int            `json:"id"`
	Email        *string        `json:"email"`
	Paid         bool           `json:"paid"`
	Products     []shopLine     `json:"products"`
	ShippingInfo map[string]any `json:"shipping_info"`
	CreditCard   map[string]any `json:"credit_card"`
}

// NewShop creates a shop with a small product catalogue.
func NewShop() *Shop {
	return &Shop{
		products: map[int]shopProduct{
			1: {ID: 1, Name: "Brown eggs", Price: 28.1, Weight: 400, InStock: true},
			2: {ID: 2, Name: "Sweet fresh strawberry", Price: 29.45, Weight: 299, InStock: true},
			3: {ID: 3, Name: "Asparagus", Price: 18.95, Weight: 1000, InStock: false},
		},
		orders: make(map[int]*shopOrder),
	}
}

// Handler returns the shop's routes.
func (s *Shop) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.listProducts)
	mux.HandleFunc("POST /order", s.createOrder)
	mux.HandleFunc("GET /order/{id}", s.getOrder)
	mux.HandleFunc("PUT /order/{id}", s.updateOrder)
	return mux
}

func shopError(w http.ResponseWriter, code int, field, errCode, name string) {
	writeJSON(w, code, map[string]any{
		"errors": map[string]any{
			field: map[string]string{"code": errCode, "name": name},
		},
	})
}

func (s *Shop) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]shopProduct, 0, len(s.products))
	for id := 1; id <= len(s.products); id++ {
		out = append(out, s.products[id])
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": out})
}

func (s *Shop) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Product  *shopLine  `json:"product"`
		Products []shopLine `json:"products"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shopError(w, http.StatusUnprocessableEntity, "order", "json-not-valid", "invalid json")
		return
	}
	lines := req.Products
	if req.Product != nil {
		lines = []shopLine{*req.Product}
	}
	if len(lines) == 0 {
		shopError(w, http.StatusUnprocessableEntity, "product", "missing-fields", "an order needs a product and a quantity")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range lines {
		p, ok := s.products[line.ID]
		if !ok {
			shopError(w, http.StatusNotFound, "order", "product-does-not-exist", "product does not exist")
			return
		}
		if !p.InStock {
			shopError(w, http.StatusUnprocessableEntity, "product", "out-of-inventory", "product is out of inventory")
			return
		}
		if line.Quantity < 1 {
			shopError(w, http.StatusUnprocessableEntity, "order", "invalid-quantity", "quantity must be at least 1")
			return
		}
	}
	s.nextID++
	s.orders[s.nextID] = &shopOrder{ID: s.nextID, Products: lines}
	http.Redirect(w, r, fmt.Sprintf("/order/%d", s.nextID), http.StatusFound)
}

func (s *Shop) lookup(w http.ResponseWriter, r *http.Request) *shopOrder {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return nil
	}
	order, ok := s.orders[id]
	if !ok {
		shopError(w, http.StatusNotFound, "order", "order-does-not-exist", "order does not exist")
		return nil
	}
	return order
}

func (s *Shop) getOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order := s.lookup(w, r); order != nil {
		writeJSON(w, http.StatusOK, map[string]any{"order": order})
	}
}

func (s *Shop) updateOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order := s.lookup(w, r)
	if order == nil {
		return
	}

	var req struct {
		Order *struct {
			Email    string         `json:"email"`
			Shipping map[string]any `json:"shipping_information"`
		} `json:"order"`
		CreditCard map[string]any `json:"credit_card"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shopError(w, http.StatusUnprocessableEntity, "order", "json-not-valid", "invalid json")
		return
	}

	switch {
	case req.Order != nil:
		if req.Order.Email == "" || req.Order.Shipping == nil {
			shopError(w, http.StatusUnprocessableEntity, "order", "missing-fields", "missing fields")
			return
		}
		email := req.Order.Email
		order.Email = &email
		order.ShippingInfo = req.Order.Shipping
		writeJSON(w, http.StatusOK, map[string]any{"order": order})
	case req.CreditCard != nil:
		order.CreditCard = req.CreditCard
		// Payment is accepted for background processing with a plain-text body.
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("Created"))
	default:
		shopError(w, http.StatusUnprocessableEntity, "order", "missing-fields", "missing fields")
	}
}
