package api

import (
	"context"
	"fmt"
	"net/http"
)

// The strategies, symbols, tags and trade-templates endpoints all follow
// the same list/create/patch/delete shape, so they share these generic
// helpers. List endpoints may return either a bare array or a paginated
// wrapper; both normalize to a plain slice here.

func listResource[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var raw []byte
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &raw); err != nil {
		return nil, err
	}
	page, err := decodeList[T](raw)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func createNamed[T any](ctx context.Context, c *Client, path, name string) (T, error) {
	var out T
	p, err := jsonPayload(map[string]string{"name": name})
	if err != nil {
		return out, err
	}
	err = c.do(ctx, http.MethodPost, path, nil, p, &out)
	return out, err
}

func renameResource[T any](ctx context.Context, c *Client, path string, id int, name string) (T, error) {
	var out T
	p, err := jsonPayload(map[string]string{"name": name})
	if err != nil {
		return out, err
	}
	err = c.do(ctx, http.MethodPatch, fmt.Sprintf("%s%d/", path, id), nil, p, &out)
	return out, err
}

func deleteResource(ctx context.Context, c *Client, path string, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("%s%d/", path, id), nil, nil, nil)
}

// Strategies.

func (c *Client) ListStrategies(ctx context.Context) ([]Strategy, error) {
	out, err := listResource[Strategy](ctx, c, "/strategies/")
	if err != nil {
		return nil, fmt.Errorf("list strategies: %w", err)
	}
	return out, nil
}

func (c *Client) CreateStrategy(ctx context.Context, name string) (Strategy, error) {
	out, err := createNamed[Strategy](ctx, c, "/strategies/", name)
	if err != nil {
		return Strategy{}, fmt.Errorf("create strategy: %w", err)
	}
	return out, nil
}

func (c *Client) RenameStrategy(ctx context.Context, id int, name string) (Strategy, error) {
	out, err := renameResource[Strategy](ctx, c, "/strategies/", id, name)
	if err != nil {
		return Strategy{}, fmt.Errorf("rename strategy %d: %w", id, err)
	}
	return out, nil
}

func (c *Client) DeleteStrategy(ctx context.Context, id int) error {
	if err := deleteResource(ctx, c, "/strategies/", id); err != nil {
		return fmt.Errorf("delete strategy %d: %w", id, err)
	}
	return nil
}

// Symbols.

func (c *Client) ListSymbols(ctx context.Context) ([]Symbol, error) {
	out, err := listResource[Symbol](ctx, c, "/symbols/")
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	return out, nil
}

func (c *Client) CreateSymbol(ctx context.Context, name string) (Symbol, error) {
	out, err := createNamed[Symbol](ctx, c, "/symbols/", name)
	if err != nil {
		return Symbol{}, fmt.Errorf("create symbol: %w", err)
	}
	return out, nil
}

func (c *Client) RenameSymbol(ctx context.Context, id int, name string) (Symbol, error) {
	out, err := renameResource[Symbol](ctx, c, "/symbols/", id, name)
	if err != nil {
		return Symbol{}, fmt.Errorf("rename symbol %d: %w", id, err)
	}
	return out, nil
}

func (c *Client) DeleteSymbol(ctx context.Context, id int) error {
	if err := deleteResource(ctx, c, "/symbols/", id); err != nil {
		return fmt.Errorf("delete symbol %d: %w", id, err)
	}
	return nil
}

// Tags.

func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	out, err := listResource[Tag](ctx, c, "/tags/")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return out, nil
}

func (c *Client) CreateTag(ctx context.Context, name string) (Tag, error) {
	out, err := createNamed[Tag](ctx, c, "/tags/", name)
	if err != nil {
		return Tag{}, fmt.Errorf("create tag: %w", err)
	}
	return out, nil
}

func (c *Client) RenameTag(ctx context.Context, id int, name string) (Tag, error) {
	out, err := renameResource[Tag](ctx, c, "/tags/", id, name)
	if err != nil {
		return Tag{}, fmt.Errorf("rename tag %d: %w", id, err)
	}
	return out, nil
}

func (c *Client) DeleteTag(ctx context.Context, id int) error {
	if err := deleteResource(ctx, c, "/tags/", id); err != nil {
		return fmt.Errorf("delete tag %d: %w", id, err)
	}
	return nil
}

// Trade templates.

func (c *Client) ListTemplates(ctx context.Context) ([]TradeTemplate, error) {
	out, err := listResource[TradeTemplate](ctx, c, "/trade-templates/")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return out, nil
}

func (c *Client) CreateTemplate(ctx context.Context, in TemplateInput) (TradeTemplate, error) {
	p, err := jsonPayload(in)
	if err != nil {
		return TradeTemplate{}, err
	}
	var out TradeTemplate
	if err := c.do(ctx, http.MethodPost, "/trade-templates/", nil, p, &out); err != nil {
		return TradeTemplate{}, fmt.Errorf("create template: %w", err)
	}
	return out, nil
}

func (c *Client) UpdateTemplate(ctx context.Context, id int, in TemplateInput) (TradeTemplate, error) {
	p, err := jsonPayload(in)
	if err != nil {
		return TradeTemplate{}, err
	}
	var out TradeTemplate
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/trade-templates/%d/", id), nil, p, &out); err != nil {
		return TradeTemplate{}, fmt.Errorf("update template %d: %w", id, err)
	}
	return out, nil
}

func (c *Client) DeleteTemplate(ctx context.Context, id int) error {
	if err := deleteResource(ctx, c, "/trade-templates/", id); err != nil {
		return fmt.Errorf("delete template %d: %w", id, err)
	}
	return nil
}
