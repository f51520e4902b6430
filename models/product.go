package models

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	ImgURL      string     `json:"imgUrl"`
	Categories  []Category `json:"categories"`
}

// CategoryIDs returns the ids of the product categories in their stored order.
func (p Product) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

const (
	SortByID    = "id"
	SortByName  = "name"
	SortByPrice = "price"
)

// ProductFilter selects a page of the catalog. Page is zero-based.
type ProductFilter struct {
	Name string
	Page int
	Size int
	Sort string
}
