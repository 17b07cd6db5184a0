// AngelaMos | 2026
// dto.go

package storefront

import "github.com/caffeinepub/engineer-notes-shop/internal/actor"

type ProductResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	PriceInCents int64  `json:"price_in_cents"`
	CategoryID   string `json:"category_id"`
	HasFile      bool   `json:"has_file"`
}

type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func ToProductResponse(p *actor.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Title:        p.Title,
		Author:       p.Author,
		PriceInCents: p.PriceInCents,
		CategoryID:   p.CategoryID,
		HasFile:      p.HasFile(),
	}
}

func ToProductResponseList(products []actor.Product) []ProductResponse {
	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, ToProductResponse(&p))
	}
	return responses
}

func ToCategoryResponse(c *actor.Category) CategoryResponse {
	return CategoryResponse{
		ID:   c.ID,
		Name: c.Name,
		Icon: c.Icon,
	}
}

func ToCategoryResponseList(categories []actor.Category) []CategoryResponse {
	responses := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		responses = append(responses, ToCategoryResponse(&c))
	}
	return responses
}
