package ai

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// CatalogModel is one entry of a provider's model listing.
type CatalogModel struct {
	ID      string `json:"id" yaml:"id"`
	Created int64  `json:"created" yaml:"created"`
}

// Catalog lists the models a provider currently serves.
type Catalog interface {
	ListModels(ctx context.Context) ([]CatalogModel, error)
}

// OpenAICatalog lists models through the OpenAI API.
type OpenAICatalog struct {
	client *openai.Client
}

type Config struct {
	APIKey  string
	BaseURL string // optional
}

func NewOpenAICatalog(cfg Config) *OpenAICatalog {
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	return &OpenAICatalog{client: c}
}

func (o *OpenAICatalog) ListModels(ctx context.Context) ([]CatalogModel, error) {
	// Default timeout guard, if caller didn't set one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}
	list, err := o.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CatalogModel, 0, len(list.Models))
	for _, m := range list.Models {
		out = append(out, CatalogModel{ID: m.ID, Created: m.CreatedAt})
	}
	return out, nil
}
