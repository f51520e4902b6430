package models

import (
	"fmt"
	"math"
	"time"
)

type Payment struct {
	ID     int64     `json:"id"`
	Moment time.Time `json:"moment"`
}

// OrderItem keeps the product price captured when the order was placed.
type OrderItem struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	ImgURL    string  `json:"imgUrl"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

func (i OrderItem) SubTotal() float64 {
	return roundMoney(i.Price * float64(i.Quantity))
}

type Order struct {
	ID      int64       `json:"id"`
	Moment  time.Time   `json:"moment"`
	Status  OrderStatus `json:"status"`
	Client  User        `json:"client"`
	Payment *Payment    `json:"payment"`
	Items   []OrderItem `json:"items"`
}

func (o *Order) Total() float64 {
	var sum float64
	for _, item := range o.Items {
		sum += item.Price * float64(item.Quantity)
	}
	return roundMoney(sum)
}

// ProductIDs lists referenced products without duplicates, in item order.
func (o *Order) ProductIDs() []int64 {
	seen := make(map[int64]struct{}, len(o.Items))
	ids := make([]int64, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// Apply moves the order through t. Paying attaches a payment whose id is
// assigned by the store.
func (o *Order) Apply(t OrderTransition, now time.Time) error {
	next, err := o.Status.Next(t)
	if err != nil {
		return fmt.Errorf("order %d: %w", o.ID, err)
	}
	if next == StatusPaid && o.Payment == nil {
		o.Payment = &Payment{Moment: now}
	}
	o.Status = next
	return nil
}

// OrderLine is a requested product and quantity.
type OrderLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// ValidateOrderLines checks request shape before any product is resolved.
func ValidateOrderLines(lines []OrderLine) error {
	verr := &ValidationError{}
	if len(lines) == 0 {
		verr.Add("items", "Deve ter pelo menos um item")
		return verr
	}
	for i, line := range lines {
		if line.ProductID <= 0 {
			verr.Add(fmt.Sprintf("items[%d].productId", i), "Produto inválido")
		}
		if line.Quantity <= 0 {
			verr.Add(fmt.Sprintf("items[%d].quantity", i), "A quantidade deve ser positiva")
		}
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// NewOrder builds a WAITING_PAYMENT order for client. Every line must resolve
// to a product in products; prices are captured from them.
func NewOrder(client User, lines []OrderLine, products map[int64]Product, now time.Time) (*Order, error) {
	if err := ValidateOrderLines(lines); err != nil {
		return nil, err
	}
	items := make([]OrderItem, 0, len(lines))
	for _, line := range lines {
		p, ok := products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", line.ProductID, ErrNotFound)
		}
		items = append(items, OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			ImgURL:    p.ImgURL,
			Quantity:  line.Quantity,
			Price:     p.Price,
		})
	}
	return &Order{
		Moment: now.UTC(),
		Status: StatusWaitingPayment,
		Client: client,
		Items:  items,
	}, nil
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
