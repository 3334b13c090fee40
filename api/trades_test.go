package api

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradebook/tradebook/tradelogic"
)

func fp(x float64) *float64 { return &x }
func ip(x int) *int         { return &x }
func bp(x bool) *bool       { return &x }
func sp(x string) *string   { return &x }

// newTradeTestClient wires a client to a handler with a logged-in store.
func newTradeTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := newTestStore(t)
	require.NoError(t, store.SetTokens("access-1", "refresh-1"))
	return NewClient(server.URL, store), server
}

func TestListTrades_QueryParams(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values
	c, _ := newTradeTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(Page[Trade]{Count: 0, Results: []Trade{}})
	}))

	_, err := c.ListTrades(context.Background(), TradesListParams{
		Page:     ip(2),
		From:     "2026-01-01",
		To:       "2026-02-01",
		Symbol:   ip(7),
		Strategy: ip(3),
		IsPaper:  bp(false),
		Search:   "btc",
		Ordering: "-entry_date",
	})
	require.NoError(t, err)

	assert.Equal(t, "2", gotQuery.Get("page"))
	assert.Equal(t, "2026-01-01", gotQuery.Get("from"))
	assert.Equal(t, "2026-02-01", gotQuery.Get("to"))
	assert.Equal(t, "7", gotQuery.Get("symbol"))
	assert.Equal(t, "3", gotQuery.Get("strategy"))
	assert.Equal(t, "false", gotQuery.Get("is_paper"))
	assert.Equal(t, "btc", gotQuery.Get("search"))
	assert.Equal(t, "-entry_date", gotQuery.Get("ordering"))
}

func TestListTrades_PaginatedAndBare(t *testing.T) {
	t.Parallel()

	t.Run("paginated wrapper", func(t *testing.T) {
		t.Parallel()
		c, _ := newTradeTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"count": 12, "next": "/trades/?page=2", "previous": null, "results": [{"id": 1, "symbol": 7, "pnl": "10.50"}]}`)
		}))
		page, err := c.ListTrades(context.Background(), TradesListParams{})
		require.NoError(t, err)
		assert.Equal(t, 12, page.Count)
		require.NotNil(t, page.Next)
		require.Len(t, page.Results, 1)
		assert.Equal(t, "10.50", page.Results[0].Pnl)
	})

	t.Run("bare array", func(t *testing.T) {
		t.Parallel()
		c, _ := newTradeTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[{"id": 1}, {"id": 2}]`)
		}))
		page, err := c.ListTrades(context.Background(), TradesListParams{})
		require.NoError(t, err)
		assert.Equal(t, 2, page.Count)
		assert.Nil(t, page.Next)
		assert.Len(t, page.Results, 2)
	})
}

func TestCreateTrade_JSONBody(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	c, _ := newTradeTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/trades/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(Trade{ID: 42})
	}))

	in := TradeInput{
		Symbol:       7,
		Side:         tradelogic.Long,
		EntryPrice:   100.5,
		ExitPrice:    110.25,
		Quantity:     fp(10),
		StopLoss:     fp(95),
		EntryDate:    "2026-03-01T09:30",
		ExitDate:     "2026-03-01T15:45",
		Pnl:          97.5,
		Rr:           fp(1.7727),
		Leverage:     fp(2),
		TotalCapital: fp(10000),
		AmountRisked: fp(55),
		Strategy:     ip(3),
		TagIDs:       []int{1, 4},
		IsPaper:      true,
	}

	trade, err := c.CreateTrade(context.Background(), in, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, trade.ID)

	// Decimal fields cross the wire as strings; ids and flags stay typed.
	assert.Equal(t, "100.5", gotBody["entry_price"])
	assert.Equal(t, "110.25", gotBody["exit_price"])
	assert.Equal(t, "97.5", gotBody["pnl"])
	assert.Equal(t, "10", gotBody["quantity"])
	assert.Equal(t, "95", gotBody["stop_loss"])
	assert.Equal(t, "1.7727", gotBody["rr"])
	assert.Equal(t, "10000", gotBody["total_capital"])
	assert.Equal(t, "55", gotBody["amount_risked"])
	assert.Equal(t, float64(7), gotBody["symbol"])
	assert.Equal(t, float64(2), gotBody["leverage"])
	assert.Equal(t, "long", gotBody["side"])
	assert.Equal(t, true, gotBody["is_paper"])
	assert.Equal(t, []any{float64(1), float64(4)}, gotBody["tag_ids"])
}

func TestCreateTrade_RejectsBadSymbol(t *testing.T) {
	t.Parallel()

	c, _ := newTradeTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not reach the server")
	}))

	_, err := c.CreateTrade(context.Background(), TradeInput{Symbol: 0, Side: tradelogic.Long}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol")
}

func TestCreateTrade_MultipartWithScreenshot(t *testing.T) {
	t.Parallel()

	c, _ := newTradeTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "100.5", r.FormValue("entry_price"))
		assert.Equal(t, "long", r.FormValue("side"))
		// tag_ids is repeated per value, not JSON-encoded.
		assert.Equal(t, []string{"1", "4"}, r.MultipartForm.Value["tag_ids"])

		file, header, err := r.FormFile("screenshot")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "entry.png", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, content)

		json.NewEncoder(w).Encode(Trade{ID: 43})
	}))

	in := TradeInput{
		Symbol:     7,
		Side:       tradelogic.Long,
		EntryPrice: 100.5,
		ExitPrice:  110,
		EntryDate:  "2026-03-01T09:30",
		ExitDate:   "2026-03-01T15:45",
		Pnl:        95,
		TagIDs:     []int{1, 4},
	}
	shot := &Attachment{Filename: "entry.png", Content: []byte{0x89, 'P', 'N', 'G'}}

	trade, err := c.CreateTrade(context.Background(), in, shot)
	require.NoError(t, err)
	assert.Equal(t, 43, trade.ID)
}

func TestUpdateTrade_CoercionRules(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	c, _ := newTradeTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/trades/42/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(Trade{ID: 42})
	}))

	_, err := c.UpdateTrade(context.Background(), 42, TradeUpdate{
		EntryPrice:    fp(101),
		Pnl:           fp(-12.5),
		Symbol:        ip(0),              // invalid id: dropped
		Leverage:      fp(-3),             // invalid: forced to 1
		EmotionRating: fp(math.NaN()),     // non-finite: omitted
		Notes:         sp("cut it early"), // passthrough
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "101", gotBody["entry_price"])
	assert.Equal(t, "-12.5", gotBody["pnl"])
	assert.Equal(t, float64(1), gotBody["leverage"])
	assert.Equal(t, "cut it early", gotBody["notes"])
	assert.NotContains(t, gotBody, "symbol")
	assert.NotContains(t, gotBody, "emotion_rating")
	assert.NotContains(t, gotBody, "exit_price")
	assert.NotContains(t, gotBody, "is_paper")
}

func TestDeleteAndDuplicateTrade(t *testing.T) {
	t.Parallel()

	c, _ := newTradeTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/trades/9/":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost && r.URL.Path == "/trades/9/duplicate/":
			json.NewEncoder(w).Encode(Trade{ID: 10})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	require.NoError(t, c.DeleteTrade(context.Background(), 9))

	dup, err := c.DuplicateTrade(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, 10, dup.ID)
}

func TestBulkOperations(t *testing.T) {
	t.Parallel()

	c, _ := newTradeTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch r.URL.Path {
		case "/trades/bulk-delete/":
			assert.Equal(t, []any{float64(1), float64(2)}, body["ids"])
			json.NewEncoder(w).Encode(map[string]int{"deleted": 2})
		case "/trades/bulk-tag/":
			assert.Equal(t, "remove", body["action"])
			json.NewEncoder(w).Encode(map[string]int{"updated": 3})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	deleted, err := c.BulkDeleteTrades(context.Background(), []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	updated, err := c.BulkTagTrades(context.Background(), []int{1, 2, 3}, []int{5}, TagRemove)
	require.NoError(t, err)
	assert.Equal(t, 3, updated)
}

func TestExportAndCompare(t *testing.T) {
	t.Parallel()

	c, _ := newTradeTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/trades/export/":
			assert.Empty(t, r.URL.Query().Get("page"), "export ignores pagination")
			w.Header().Set("Content-Type", "text/csv")
			io.WriteString(w, "id,pnl\n1,10.5\n")
		case "/trades/compare/":
			assert.Equal(t, "1,2,3", r.URL.Query().Get("ids"))
			json.NewEncoder(w).Encode(map[string][]Trade{"trades": {{ID: 1}, {ID: 2}, {ID: 3}}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	blob, err := c.ExportTradesCSV(context.Background(), TradesListParams{Page: ip(3)})
	require.NoError(t, err)
	assert.Equal(t, "id,pnl\n1,10.5\n", string(blob))

	trades, err := c.CompareTrades(context.Background(), []int{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, trades, 3)
}
