package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xrpl-commons/dapp-wallet/apperr"
	"go.uber.org/zap/zaptest"
)

const (
	nftA = "000B013A95F14B0044F78A264E41713C64B5F89242540EE208C3098E00000D65"
	nftB = "000B013A95F14B0044F78A264E41713C64B5F89242540EE208C3098E00000D66"
)

func notionPageJSON(nftID, price, images string) map[string]any {
	return map[string]any{
		"object": "page",
		"id":     "page-" + nftID[len(nftID)-4:],
		"properties": map[string]any{
			"ID":       map[string]any{"type": "title", "title": []any{map[string]any{"plain_text": nftID}}},
			"Title":    map[string]any{"type": "rich_text", "rich_text": []any{map[string]any{"plain_text": "Sun"}, map[string]any{"plain_text": "set"}}},
			"Subtitle": map[string]any{"type": "rich_text", "rich_text": []any{map[string]any{"plain_text": "Edition 1"}}},
			"Price":    map[string]any{"type": "number", "number": json.Number(price)},
			"Images":   map[string]any{"type": "rich_text", "rich_text": []any{map[string]any{"plain_text": images}}},
		},
	}
}

func newNotion(t *testing.T, handler http.HandlerFunc) *NotionCatalog {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultNotionConfig()
	cfg.BaseURL = srv.URL
	cfg.Token = "secret"
	cfg.DatabaseID = "db1"
	cfg.RetryDelay = time.Millisecond

	c, err := NewNotionCatalog(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	return c
}

func TestNotionOffers(t *testing.T) {
	var query map[string]any
	c := newNotion(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/databases/db1/query" || r.Header.Get("Authorization") != "Bearer secret" || r.Header.Get("Notion-Version") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &query)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"object":      "list",
			"results":     []any{notionPageJSON(nftA, "25", "https://a/1.png, https://a/2.png"), notionPageJSON(nftB, "12.5", "")},
			"has_more":    true,
			"next_cursor": "cursor-2",
		})
	})

	page, err := c.Offers(context.Background(), 2, "cursor-1")
	require.NoError(t, err)
	require.True(t, page.HasMore)
	require.Equal(t, "cursor-2", page.NextCursor)
	require.Equal(t, []Offer{
		{NFTID: nftA, Title: "Sunset", Subtitle: "Edition 1", Price: "25", Image: "https://a/1.png"},
		{NFTID: nftB, Title: "Sunset", Subtitle: "Edition 1", Price: "12.5"},
	}, page.Offers)

	assert.Equal(t, float64(2), query["page_size"])
	assert.Equal(t, "cursor-1", query["start_cursor"])
	filter, ok := query["filter"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, filter["and"], 2)
}

func TestNotionOffer(t *testing.T) {
	c := newNotion(t, func(w http.ResponseWriter, r *http.Request) {
		var query struct {
			Filter struct {
				Title struct {
					Equals string `json:"equals"`
				} `json:"title"`
			} `json:"filter"`
		}
		_ = json.NewDecoder(r.Body).Decode(&query)

		results := []any{}
		if query.Filter.Title.Equals == nftA {
			results = append(results, notionPageJSON(nftA, "25", "https://a/1.png, https://a/2.png"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results, "has_more": false, "next_cursor": nil})
	})

	offer, err := c.Offer(context.Background(), nftA)
	require.NoError(t, err)
	require.Equal(t, &FullOffer{
		NFTID:    nftA,
		Title:    "Sunset",
		Subtitle: "Edition 1",
		Price:    "25",
		Images:   []string{"https://a/1.png", "https://a/2.png"},
	}, offer)

	_, err = c.Offer(context.Background(), nftB)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestNotionErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expect   apperr.Kind
		attempts int32
	}{
		{"not found", 404, `{"object":"error","status":404,"code":"object_not_found","message":"no db"}`, apperr.KindNotFound, 1},
		{"unauthorized", 401, `{"object":"error","status":401,"code":"unauthorized","message":"bad token"}`, apperr.KindUnauthorized, 1},
		{"restricted", 403, `{"object":"error","status":403,"code":"restricted_resource","message":"nope"}`, apperr.KindForbidden, 1},
		{"invalid json", 400, `{"object":"error","status":400,"code":"invalid_json","message":"bad"}`, apperr.KindBadRequest, 1},
		{"rate limited", 429, `{"object":"error","status":429,"code":"rate_limited","message":"slow down"}`, apperr.KindTransport, 3},
		{"server error", 502, `<html>bad gateway</html>`, apperr.KindTransport, 3},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newNotion(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(test.status)
				_, _ = w.Write([]byte(test.body))
			})

			_, err := c.Offers(context.Background(), 10, "")
			require.Error(t, err)
			assert.Equal(t, test.expect, apperr.KindOf(err))
			assert.Equal(t, test.attempts, calls.Load())
		})
	}
}

func TestNotionRetryRecovers(t *testing.T) {
	var calls atomic.Int32
	c := newNotion(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"object":"error","status":503,"code":"service_unavailable","message":"later"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{notionPageJSON(nftA, "1", "")}})
	})

	page, err := c.Offers(context.Background(), 0, "")
	require.NoError(t, err)
	require.Len(t, page.Offers, 1)
	require.Equal(t, int32(2), calls.Load())
}

func TestNewNotionCatalogRequiresCredentials(t *testing.T) {
	_, err := NewNotionCatalog(NotionConfig{DatabaseID: "db"}, zaptest.NewLogger(t))
	require.Error(t, err)
	_, err = NewNotionCatalog(NotionConfig{Token: "t"}, zaptest.NewLogger(t))
	require.Error(t, err)
}

const catalogYAML = `
offers:
  - nftId: ` + nftA + `
    title: Sunset
    subtitle: Edition 1
    price: "25"
    images: [https://a/1.png, https://a/2.png]
  - nftId: unlisted
    title: No price
  - nftId: ` + nftB + `
    title: Dawn
    price: "3"
  - nftId: C0FFEE
    title: Third
    price: "7"
`

func TestFileCatalog(t *testing.T) {
	c, err := ParseFileCatalog([]byte(catalogYAML))
	require.NoError(t, err)
	ctx := context.Background()

	page, err := c.Offers(ctx, 2, "")
	require.NoError(t, err)
	require.True(t, page.HasMore)
	require.Equal(t, "2", page.NextCursor)
	require.Equal(t, []Offer{
		{NFTID: nftA, Title: "Sunset", Subtitle: "Edition 1", Price: "25", Image: "https://a/1.png"},
		{NFTID: nftB, Title: "Dawn", Price: "3"},
	}, page.Offers)

	page, err = c.Offers(ctx, 2, page.NextCursor)
	require.NoError(t, err)
	require.False(t, page.HasMore)
	require.Empty(t, page.NextCursor)
	require.Len(t, page.Offers, 1)

	_, err = c.Offers(ctx, 2, "nope")
	require.ErrorIs(t, err, apperr.ErrBadRequest)

	offer, err := c.Offer(ctx, nftA)
	require.NoError(t, err)
	require.Equal(t, []string{"https://a/1.png", "https://a/2.png"}, offer.Images)

	_, err = c.Offer(ctx, "unlisted")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSplitImages(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitImages(" a , ,b"))
	require.Nil(t, splitImages(""))
}
