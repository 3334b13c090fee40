package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// TradesListParams filter and order the trade list.
type TradesListParams struct {
	Page     *int
	From     string
	To       string
	Symbol   *int
	Strategy *int
	IsPaper  *bool
	Search   string
	Ordering string
}

func (p TradesListParams) values() url.Values {
	q := url.Values{}
	if p.Page != nil {
		q.Set("page", strconv.Itoa(*p.Page))
	}
	if p.From != "" {
		q.Set("from", p.From)
	}
	if p.To != "" {
		q.Set("to", p.To)
	}
	if p.Symbol != nil {
		q.Set("symbol", strconv.Itoa(*p.Symbol))
	}
	if p.Strategy != nil {
		q.Set("strategy", strconv.Itoa(*p.Strategy))
	}
	if p.IsPaper != nil {
		q.Set("is_paper", strconv.FormatBool(*p.IsPaper))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Ordering != "" {
		q.Set("ordering", p.Ordering)
	}
	return q
}

// Attachment is a file sent alongside a trade (a chart screenshot).
type Attachment struct {
	Filename string
	Content  []byte
}

// ListTrades returns one page of trades matching the filters.
func (c *Client) ListTrades(ctx context.Context, params TradesListParams) (Page[Trade], error) {
	var raw []byte
	if err := c.do(ctx, http.MethodGet, "/trades/", params.values(), nil, &raw); err != nil {
		return Page[Trade]{}, fmt.Errorf("list trades: %w", err)
	}
	page, err := decodeList[Trade](raw)
	if err != nil {
		return Page[Trade]{}, fmt.Errorf("list trades: %w", err)
	}
	return page, nil
}

// GetTrade fetches a single trade.
func (c *Client) GetTrade(ctx context.Context, id int) (Trade, error) {
	var out Trade
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/trades/%d/", id), nil, nil, &out); err != nil {
		return Trade{}, fmt.Errorf("get trade %d: %w", id, err)
	}
	return out, nil
}

// CreateTrade submits a new trade, as JSON normally or as a multipart form
// when a screenshot is attached.
func (c *Client) CreateTrade(ctx context.Context, in TradeInput, screenshot *Attachment) (Trade, error) {
	if in.Symbol < 1 {
		return Trade{}, fmt.Errorf("create trade: symbol must be a positive id")
	}
	body := createBody(in)

	p, err := tradePayload(body, screenshot)
	if err != nil {
		return Trade{}, fmt.Errorf("create trade: %w", err)
	}
	var out Trade
	if err := c.do(ctx, http.MethodPost, "/trades/", nil, p, &out); err != nil {
		return Trade{}, fmt.Errorf("create trade: %w", err)
	}
	return out, nil
}

// UpdateTrade patches an existing trade with the provided fields, using the
// same JSON/multipart split as create.
func (c *Client) UpdateTrade(ctx context.Context, id int, in TradeUpdate, screenshot *Attachment) (Trade, error) {
	body := updateBody(in)

	p, err := tradePayload(body, screenshot)
	if err != nil {
		return Trade{}, fmt.Errorf("update trade %d: %w", id, err)
	}
	var out Trade
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/trades/%d/", id), nil, p, &out); err != nil {
		return Trade{}, fmt.Errorf("update trade %d: %w", id, err)
	}
	return out, nil
}

// DeleteTrade removes a trade.
func (c *Client) DeleteTrade(ctx context.Context, id int) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/trades/%d/", id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete trade %d: %w", id, err)
	}
	return nil
}

// BulkDeleteTrades removes several trades and returns how many went.
func (c *Client) BulkDeleteTrades(ctx context.Context, ids []int) (int, error) {
	p, err := jsonPayload(map[string]any{"ids": ids})
	if err != nil {
		return 0, err
	}
	var out struct {
		Deleted int `json:"deleted"`
	}
	if err := c.do(ctx, http.MethodPost, "/trades/bulk-delete/", nil, p, &out); err != nil {
		return 0, fmt.Errorf("bulk delete trades: %w", err)
	}
	return out.Deleted, nil
}

// TagAction selects what BulkTagTrades does with the tags.
type TagAction string

const (
	TagAdd    TagAction = "add"
	TagRemove TagAction = "remove"
)

// BulkTagTrades adds or removes tags across several trades.
func (c *Client) BulkTagTrades(ctx context.Context, ids, tagIDs []int, action TagAction) (int, error) {
	p, err := jsonPayload(map[string]any{
		"ids":     ids,
		"tag_ids": tagIDs,
		"action":  action,
	})
	if err != nil {
		return 0, err
	}
	var out struct {
		Updated int `json:"updated"`
	}
	if err := c.do(ctx, http.MethodPost, "/trades/bulk-tag/", nil, p, &out); err != nil {
		return 0, fmt.Errorf("bulk tag trades: %w", err)
	}
	return out.Updated, nil
}

// DuplicateTrade clones a trade server-side and returns the copy.
func (c *Client) DuplicateTrade(ctx context.Context, id int) (Trade, error) {
	var out Trade
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/trades/%d/duplicate/", id), nil, nil, &out); err != nil {
		return Trade{}, fmt.Errorf("duplicate trade %d: %w", id, err)
	}
	return out, nil
}

// ExportTradesCSV downloads the filtered trades as a CSV blob. Page is
// ignored; exports are always the full filtered set.
func (c *Client) ExportTradesCSV(ctx context.Context, params TradesListParams) ([]byte, error) {
	params.Page = nil
	var blob []byte
	if err := c.do(ctx, http.MethodGet, "/trades/export/", params.values(), nil, &blob); err != nil {
		return nil, fmt.Errorf("export trades: %w", err)
	}
	return blob, nil
}

// ImportTradesCSV uploads a CSV of trades.
func (c *Client) ImportTradesCSV(ctx context.Context, filename string, content []byte) (ImportResult, error) {
	p, err := buildMultipart(nil, "file", &Attachment{Filename: filename, Content: content})
	if err != nil {
		return ImportResult{}, fmt.Errorf("import trades: %w", err)
	}
	var out ImportResult
	if err := c.do(ctx, http.MethodPost, "/trades/import/", nil, p, &out); err != nil {
		return ImportResult{}, fmt.Errorf("import trades: %w", err)
	}
	return out, nil
}

// CompareTrades fetches several trades side by side.
func (c *Client) CompareTrades(ctx context.Context, ids []int) ([]Trade, error) {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	q := url.Values{}
	q.Set("ids", strings.Join(parts, ","))

	var out struct {
		Trades []Trade `json:"trades"`
	}
	if err := c.do(ctx, http.MethodGet, "/trades/compare/", q, nil, &out); err != nil {
		return nil, fmt.Errorf("compare trades: %w", err)
	}
	return out.Trades, nil
}

// numString renders a decimal the way the backend expects it: as a string,
// shortest form.
func numString(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// createBody serializes a TradeInput. Decimal fields go over as strings;
// optional fields are omitted when unset.
func createBody(in TradeInput) map[string]any {
	body := map[string]any{
		"symbol":      in.Symbol,
		"side":        string(in.Side),
		"entry_price": numString(in.EntryPrice),
		"exit_price":  numString(in.ExitPrice),
		"entry_date":  in.EntryDate,
		"exit_date":   in.ExitDate,
		"pnl":         numString(in.Pnl),
		"is_paper":    in.IsPaper,
	}
	if in.StopLoss != nil {
		body["stop_loss"] = numString(*in.StopLoss)
	}
	if in.Quantity != nil {
		body["quantity"] = numString(*in.Quantity)
	}
	if in.Rr != nil {
		body["rr"] = numString(*in.Rr)
	}
	if in.Leverage != nil {
		body["leverage"] = *in.Leverage
	}
	if in.TotalCapital != nil {
		body["total_capital"] = numString(*in.TotalCapital)
	}
	if in.AmountRisked != nil {
		body["amount_risked"] = numString(*in.AmountRisked)
	}
	if in.Notes != "" {
		body["notes"] = in.Notes
	}
	if in.Strategy != nil {
		body["strategy"] = *in.Strategy
	}
	if len(in.TagIDs) > 0 {
		body["tag_ids"] = in.TagIDs
	}
	if in.EmotionRating != nil {
		body["emotion_rating"] = *in.EmotionRating
	}
	if in.EmotionNotes != "" {
		body["emotion_notes"] = in.EmotionNotes
	}
	if in.PreTradePlan != "" {
		body["pre_trade_plan"] = in.PreTradePlan
	}
	if in.PostTradeReview != "" {
		body["post_trade_review"] = in.PostTradeReview
	}
	return body
}

// updateBody serializes a partial update. Decimal fields are coerced to
// strings; symbol is dropped unless it is a usable id; leverage is forced
// to a positive number, defaulting to 1; emotion_rating is omitted entirely
// when non-finite.
func updateBody(in TradeUpdate) map[string]any {
	body := map[string]any{}
	setNum := func(key string, v *float64) {
		if v != nil {
			body[key] = numString(*v)
		}
	}
	setNum("entry_price", in.EntryPrice)
	setNum("exit_price", in.ExitPrice)
	setNum("stop_loss", in.StopLoss)
	setNum("quantity", in.Quantity)
	setNum("pnl", in.Pnl)
	setNum("rr", in.Rr)
	setNum("total_capital", in.TotalCapital)
	setNum("amount_risked", in.AmountRisked)

	if in.Symbol != nil && *in.Symbol >= 1 {
		body["symbol"] = *in.Symbol
	}
	if in.Side != nil {
		body["side"] = string(*in.Side)
	}
	if in.EntryDate != nil {
		body["entry_date"] = *in.EntryDate
	}
	if in.ExitDate != nil {
		body["exit_date"] = *in.ExitDate
	}
	if in.Leverage != nil {
		lev := *in.Leverage
		if math.IsNaN(lev) || math.IsInf(lev, 0) || lev <= 0 {
			lev = 1
		}
		body["leverage"] = lev
	}
	if in.Notes != nil {
		body["notes"] = *in.Notes
	}
	if in.Strategy != nil {
		body["strategy"] = *in.Strategy
	}
	if in.TagIDs != nil {
		body["tag_ids"] = in.TagIDs
	}
	if in.EmotionRating != nil {
		if r := *in.EmotionRating; !math.IsNaN(r) && !math.IsInf(r, 0) {
			body["emotion_rating"] = r
		}
	}
	if in.EmotionNotes != nil {
		body["emotion_notes"] = *in.EmotionNotes
	}
	if in.PreTradePlan != nil {
		body["pre_trade_plan"] = *in.PreTradePlan
	}
	if in.PostTradeReview != nil {
		body["post_trade_review"] = *in.PostTradeReview
	}
	if in.IsPaper != nil {
		body["is_paper"] = *in.IsPaper
	}
	return body
}

// tradePayload picks the wire encoding: JSON without a screenshot,
// multipart with one. Call sites never branch on the attachment themselves.
func tradePayload(body map[string]any, screenshot *Attachment) (*payload, error) {
	if screenshot == nil {
		return jsonPayload(body)
	}
	return buildMultipart(body, "screenshot", screenshot)
}

// buildMultipart encodes fields and an optional file as a multipart form.
// Every scalar is stringified, tag_ids is repeated per value, and nested
// objects are JSON-stringified. Field order is sorted for reproducibility.
func buildMultipart(fields map[string]any, fileField string, att *Attachment) (*payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := fields[k]
		if v == nil {
			continue
		}
		if k == "tag_ids" {
			if ids, ok := v.([]int); ok {
				for _, id := range ids {
					if err := w.WriteField("tag_ids", strconv.Itoa(id)); err != nil {
						return nil, fmt.Errorf("write field tag_ids: %w", err)
					}
				}
				continue
			}
		}
		str, err := formFieldValue(v)
		if err != nil {
			return nil, fmt.Errorf("encode field %s: %w", k, err)
		}
		if err := w.WriteField(k, str); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}

	if att != nil {
		fw, err := w.CreateFormFile(fileField, att.Filename)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := fw.Write(att.Content); err != nil {
			return nil, fmt.Errorf("write form file: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}
	return &payload{contentType: w.FormDataContentType(), body: buf.Bytes()}, nil
}

// formFieldValue stringifies one multipart field: scalars via their natural
// string form, composites as JSON.
func formFieldValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case float64:
		return numString(x), nil
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}
