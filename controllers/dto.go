package controllers

import (
	"time"

	"commerce-service/models"
)

type categoryRef struct {
	ID int64 `json:"id"`
}

type productRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	ImgURL      string        `json:"imgUrl"`
	Categories  []categoryRef `json:"categories"`
}

type ProductMinDTO struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	ImgURL string  `json:"imgUrl"`
}

func toProductMin(p models.Product) ProductMinDTO {
	return ProductMinDTO{ID: p.ID, Name: p.Name, Price: p.Price, ImgURL: p.ImgURL}
}

type orderRequest struct {
	Items []models.OrderLine `json:"items"`
}

type statusRequest struct {
	Event string `json:"event"`
}

type ClientDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type OrderItemDTO struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImgURL    string  `json:"imgUrl"`
	SubTotal  float64 `json:"subTotal"`
}

type OrderDTO struct {
	ID      int64              `json:"id"`
	Moment  time.Time          `json:"moment"`
	Status  models.OrderStatus `json:"status"`
	Client  ClientDTO          `json:"client"`
	Payment *models.Payment    `json:"payment"`
	Items   []OrderItemDTO     `json:"items"`
	Total   float64            `json:"total"`
}

func toOrderDTO(o *models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			ImgURL:    it.ImgURL,
			SubTotal:  it.SubTotal(),
		})
	}
	return OrderDTO{
		ID:      o.ID,
		Moment:  o.Moment,
		Status:  o.Status,
		Client:  ClientDTO{ID: o.Client.ID, Name: o.Client.Name},
		Payment: o.Payment,
		Items:   items,
		Total:   o.Total(),
	}
}
