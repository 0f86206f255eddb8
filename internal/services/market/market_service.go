package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// Quote is one market reading for an item: the current sell price in cents
// and how many listings are up.
type Quote struct {
	SellPrice    int64
	SellListings int64
}

// Service fetches item quotes from the Rust price API.
type Service struct {
	baseURL string
	client  *resty.Client
}

type itemResponse struct {
	Success bool `json:"success"`
	Data    struct {
		SellPrice    int64 `json:"sell_price"`
		SellListings int64 `json:"sell_listings"`
	} `json:"data"`
}

func NewService(baseURL string) *Service {
	client := resty.New()
	client.SetTimeout(30 * time.Second)

	return &Service{
		baseURL: baseURL,
		client:  client,
	}
}

// FetchQuote returns the current quote for an item by display name. A
// provider response without success set is treated as a fetch failure.
func (s *Service) FetchQuote(ctx context.Context, displayName string) (Quote, error) {
	reqURL := fmt.Sprintf("%s/api/item?item=%s", s.baseURL, url.QueryEscape(displayName))

	resp, err := s.client.R().SetContext(ctx).Get(reqURL)
	if err != nil {
		return Quote{}, fmt.Errorf("fetch quote for %q: %w", displayName, err)
	}

	var parsed itemResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return Quote{}, fmt.Errorf("parse quote for %q: %w", displayName, err)
	}
	if !parsed.Success {
		return Quote{}, fmt.Errorf("quote provider returned failure for %q", displayName)
	}

	return Quote{
		SellPrice:    parsed.Data.SellPrice,
		SellListings: parsed.Data.SellListings,
	}, nil
}
