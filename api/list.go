package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Page is one page of a list response.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// decodeList normalizes the two wire shapes a list endpoint may return: a
// bare JSON array, or a paginated {count,next,previous,results} wrapper.
// Both come back as a Page; a bare array is a single page of everything.
func decodeList[T any](data []byte) (Page[T], error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return Page[T]{}, fmt.Errorf("decode list: %w", err)
		}
		return Page[T]{Count: len(items), Results: items}, nil
	}

	var page Page[T]
	if err := json.Unmarshal(data, &page); err != nil {
		return Page[T]{}, fmt.Errorf("decode list: %w", err)
	}
	return page, nil
}
