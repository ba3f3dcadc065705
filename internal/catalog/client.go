package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"duelserver/internal/ruleserr"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"
)

// Client is the HTTP-backed implementation of the catalog collaborator.
// Requests are retried with exponential backoff and deduplicated with
// singleflight so a burst of players opening rooms around the same deck
// doesn't fan out into redundant upstream calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetry   time.Duration
	group      singleflight.Group
}

// NewClient constructs a catalog Client pointed at baseURL (e.g.
// "https://catalog.internal/v1"). timeout bounds a single HTTP round trip;
// maxRetry bounds the total time spent retrying before giving up.
func NewClient(baseURL string, timeout, maxRetry time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxRetry:   maxRetry,
	}
}

// GetCard fetches a single card definition by card number.
func (c *Client) GetCard(ctx context.Context, cardNumber string) (*CardDefinition, error) {
	v, err, _ := c.group.Do("card:"+cardNumber, func() (any, error) {
		var def CardDefinition
		url := fmt.Sprintf("%s/cards/%s", c.baseURL, cardNumber)
		if err := c.getJSON(ctx, url, &def); err != nil {
			return nil, err
		}
		return &def, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*CardDefinition), nil
}

// ListCards fetches every card definition referenced by cardNumbers,
// deduplicating repeated numbers within the same call.
func (c *Client) ListCards(ctx context.Context, cardNumbers []string) (map[string]*CardDefinition, error) {
	seen := make(map[string]struct{}, len(cardNumbers))
	out := make(map[string]*CardDefinition, len(cardNumbers))
	for _, num := range cardNumbers {
		if _, ok := seen[num]; ok {
			continue
		}
		seen[num] = struct{}{}
		def, err := c.GetCard(ctx, num)
		if err != nil {
			return nil, err
		}
		out[num] = def
	}
	return out, nil
}

// GetDeck resolves a deck reference to its concrete card list.
func (c *Client) GetDeck(ctx context.Context, deckRef string) (*DeckList, error) {
	v, err, _ := c.group.Do("deck:"+deckRef, func() (any, error) {
		var deck DeckList
		url := fmt.Sprintf("%s/decks/%s", c.baseURL, deckRef)
		if err := c.getJSON(ctx, url, &deck); err != nil {
			return nil, err
		}
		return &deck, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*DeckList), nil
}

func (c *Client) getJSON(ctx context.Context, url string, dst any) error {
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err // transient network error, retryable
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(ruleserr.Rules(ruleserr.CodeInvalidSelection, "catalog entry not found: "+url))
		case resp.StatusCode >= 500:
			return fmt.Errorf("catalog returned status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("catalog returned status %d", resp.StatusCode))
		}
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding catalog response: %w", err))
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxElapsedTime(backoff.NewExponentialBackOff(), c.maxRetry), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		if rerr, ok := err.(*ruleserr.Error); ok {
			return rerr
		}
		return ruleserr.Collaborator(ruleserr.CodeCatalogUnreachable, "catalog request failed: "+url, err)
	}
	return nil
}
