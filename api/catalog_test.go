package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCRUD(t *testing.T) {
	t.Parallel()

	c, _ := newTradeTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/strategies/":
			// Bare-array shape.
			io.WriteString(w, `[{"id":1,"name":"breakout"}]`)
		case r.Method == http.MethodGet && r.URL.Path == "/tags/":
			// Paginated shape; both must normalize identically.
			io.WriteString(w, `{"count":1,"next":null,"previous":null,"results":[{"id":5,"name":"fomo"}]}`)
		case r.Method == http.MethodPost && r.URL.Path == "/symbols/":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			json.NewEncoder(w).Encode(Symbol{ID: 9, Name: body["name"]})
		case r.Method == http.MethodPatch && r.URL.Path == "/strategies/1/":
			json.NewEncoder(w).Encode(Strategy{ID: 1, Name: "breakout v2"})
		case r.Method == http.MethodDelete && r.URL.Path == "/tags/5/":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	ctx := context.Background()

	strategies, err := c.ListStrategies(ctx)
	require.NoError(t, err)
	require.Len(t, strategies, 1)
	assert.Equal(t, "breakout", strategies[0].Name)

	tags, err := c.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "fomo", tags[0].Name)

	sym, err := c.CreateSymbol(ctx, "SOLUSD")
	require.NoError(t, err)
	assert.Equal(t, 9, sym.ID)
	assert.Equal(t, "SOLUSD", sym.Name)

	strat, err := c.RenameStrategy(ctx, 1, "breakout v2")
	require.NoError(t, err)
	assert.Equal(t, "breakout v2", strat.Name)

	require.NoError(t, c.DeleteTag(ctx, 5))
}

func TestTemplates(t *testing.T) {
	t.Parallel()

	c, _ := newTradeTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/trade-templates/":
			io.WriteString(w, `[{"id":1,"name":"london open","symbol":"EURUSD","side":"long","is_paper":false}]`)
		case r.Method == http.MethodPost && r.URL.Path == "/trade-templates/":
			var in TemplateInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "ny close", in.Name)
			json.NewEncoder(w).Encode(TradeTemplate{ID: 2, Name: in.Name})
		case r.Method == http.MethodPatch && r.URL.Path == "/trade-templates/2/":
			json.NewEncoder(w).Encode(TradeTemplate{ID: 2, Name: "ny close v2"})
		case r.Method == http.MethodDelete && r.URL.Path == "/trade-templates/2/":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	ctx := context.Background()

	templates, err := c.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "london open", templates[0].Name)

	created, err := c.CreateTemplate(ctx, TemplateInput{Name: "ny close"})
	require.NoError(t, err)
	assert.Equal(t, 2, created.ID)

	updated, err := c.UpdateTemplate(ctx, 2, TemplateInput{Name: "ny close v2"})
	require.NoError(t, err)
	assert.Equal(t, "ny close v2", updated.Name)

	require.NoError(t, c.DeleteTemplate(ctx, 2))
}
