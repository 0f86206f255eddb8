package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrUnavailable means Steam responded but the inventory could not be read,
// for example because the profile is private. Callers fall back to the last
// persisted holding instead of failing.
var ErrUnavailable = errors.New("inventory unavailable")

// Rust's Steam app id and the community inventory context.
const (
	rustAppID   = 252490
	contextID   = 2
	assetsLimit = 500
)

// Asset is one unit in a Steam inventory. ClassID identifies the item type.
type Asset struct {
	AssetID    string `json:"assetid"`
	ClassID    string `json:"classid"`
	InstanceID string `json:"instanceid"`
	Amount     string `json:"amount"`
}

type inventoryResponse struct {
	Assets  []Asset `json:"assets"`
	Success any     `json:"success"`
}

type vanityResponse struct {
	Response struct {
		SteamID string `json:"steamid"`
		Success int    `json:"success"`
	} `json:"response"`
}

type playerSummaryResponse struct {
	Response struct {
		Players []struct {
			SteamID     string `json:"steamid"`
			PersonaName string `json:"personaname"`
		} `json:"players"`
	} `json:"response"`
}

// Service talks to the Steam community and Web APIs.
type Service struct {
	apiKey        string
	communityBase string
	apiBase       string
	client        *resty.Client
}

func NewService(apiKey string) *Service {
	client := resty.New()
	client.SetTimeout(30 * time.Second)

	return &Service{
		apiKey:        apiKey,
		communityBase: "https://steamcommunity.com",
		apiBase:       "https://api.steampowered.com",
		client:        client,
	}
}

// FetchInventory returns every Rust asset in the given account's public
// inventory. A response that Steam itself marks unsuccessful, or one with
// no asset list at all, is reported as ErrUnavailable.
func (s *Service) FetchInventory(ctx context.Context, steamID string) ([]Asset, error) {
	reqURL := fmt.Sprintf("%s/inventory/%s/%d/%d?l=english&count=%d",
		s.communityBase, steamID, rustAppID, contextID, assetsLimit)

	resp, err := s.client.R().SetContext(ctx).Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("fetch inventory for %s: %w", steamID, err)
	}

	var parsed inventoryResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("parse inventory for %s: %w", steamID, err)
	}
	if isFalse(parsed.Success) || parsed.Assets == nil {
		return nil, fmt.Errorf("inventory for %s: %w", steamID, ErrUnavailable)
	}

	return parsed.Assets, nil
}

// isFalse reports whether the loosely typed success field is an explicit
// failure. Steam returns it as a bool on some endpoints and a 0/1 number
// on others.
func isFalse(v any) bool {
	switch t := v.(type) {
	case bool:
		return !t
	case float64:
		return t == 0
	default:
		return false
	}
}

// ResolveVanityURL maps a vanity profile name to a 64-bit Steam ID.
func (s *Service) ResolveVanityURL(ctx context.Context, vanity string) (string, error) {
	reqURL := fmt.Sprintf("%s/ISteamUser/ResolveVanityURL/v1/?key=%s&format=json&vanityurl=%s",
		s.apiBase, s.apiKey, vanity)

	resp, err := s.client.R().SetContext(ctx).Get(reqURL)
	if err != nil {
		return "", fmt.Errorf("resolve vanity url %q: %w", vanity, err)
	}

	var parsed vanityResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("parse vanity response for %q: %w", vanity, err)
	}
	if parsed.Response.SteamID == "" {
		return "", fmt.Errorf("vanity url %q did not resolve", vanity)
	}

	return parsed.Response.SteamID, nil
}

// GetPersonaName returns the current display name of a Steam account.
func (s *Service) GetPersonaName(ctx context.Context, steamID string) (string, error) {
	reqURL := fmt.Sprintf("%s/ISteamUser/GetPlayerSummaries/v2/?key=%s&format=json&steamids=%s",
		s.apiBase, s.apiKey, steamID)

	resp, err := s.client.R().SetContext(ctx).Get(reqURL)
	if err != nil {
		return "", fmt.Errorf("fetch player summary for %s: %w", steamID, err)
	}

	var parsed playerSummaryResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("parse player summary for %s: %w", steamID, err)
	}
	if len(parsed.Response.Players) == 0 {
		return "", fmt.Errorf("player %s not found", steamID)
	}

	return parsed.Response.Players[0].PersonaName, nil
}
