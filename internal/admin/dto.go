// AngelaMos | 2026
// dto.go

package admin

import (
	"github.com/caffeinepub/engineer-notes-shop/internal/actor"
	"github.com/caffeinepub/engineer-notes-shop/internal/adminflow"
	"github.com/caffeinepub/engineer-notes-shop/internal/errtext"
)

type ProductRequest struct {
	ID           string `json:"id"             validate:"required,min=1,max=64"`
	Title        string `json:"title"          validate:"required,min=1,max=200"`
	Author       string `json:"author"         validate:"required,min=1,max=100"`
	PriceInCents int64  `json:"price_in_cents" validate:"gte=0"`
	CategoryID   string `json:"category_id"    validate:"required,min=1,max=64"`
}

func (r ProductRequest) ToParams() actor.ProductParams {
	return actor.ProductParams{
		ID:           r.ID,
		Title:        r.Title,
		Author:       r.Author,
		PriceInCents: r.PriceInCents,
		CategoryID:   r.CategoryID,
	}
}

type PublishRequest struct {
	Published bool `json:"published"`
}

type CategoryRequest struct {
	ID   string `json:"id"   validate:"required,min=1,max=64"`
	Name string `json:"name" validate:"required,min=1,max=100"`
	Icon string `json:"icon" validate:"max=100"`
}

type AssignRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user guest"`
}

type ProductResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	PriceInCents int64  `json:"price_in_cents"`
	CategoryID   string `json:"category_id"`
	IsPublished  bool   `json:"is_published"`
	HasFile      bool   `json:"has_file"`
}

func ToProductResponse(p *actor.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Title:        p.Title,
		Author:       p.Author,
		PriceInCents: p.PriceInCents,
		CategoryID:   p.CategoryID,
		IsPublished:  p.IsPublished,
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

// BootstrapResponse is the wire form of the bootstrap state. Error text is
// already translated for display.
type BootstrapResponse struct {
	State     string            `json:"state"`
	Terminal  bool              `json:"terminal"`
	Retryable bool              `json:"retryable"`
	Error     string            `json:"error,omitempty"`
	Products  []ProductResponse `json:"products,omitempty"`
}

func ToBootstrapResponse(state adminflow.State) BootstrapResponse {
	resp := BootstrapResponse{
		State:     state.Kind.String(),
		Terminal:  state.Kind.Terminal(),
		Retryable: state.Kind.Retryable(),
	}

	if state.Err != nil {
		resp.Error = errtext.Translate(state.Err)
	}

	if state.Kind == adminflow.Ready {
		resp.Products = ToProductResponseList(state.Products)
	}

	return resp
}

type UploadResponse struct {
	ProductID string `json:"product_id"`
	SizeBytes int64  `json:"size_bytes"`
	Uploaded  bool   `json:"uploaded"`
}
