package catalog

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xrpl-commons/dapp-wallet/apperr"
	"gopkg.in/yaml.v3"
)

// FileCatalog serves offers from a YAML document:
//
//	offers:
//	  - nftId: 000B013A...
//	    title: Sunset
//	    subtitle: Edition 1/10
//	    price: "25"
//	    images: [https://example.com/a.png, https://example.com/b.png]
//
// Cursors are offsets into the list of listed entries.
type FileCatalog struct {
	offers []*FullOffer
}

var _ Catalog = (*FileCatalog)(nil)

type catalogFile struct {
	Offers []*FullOffer `yaml:"offers"`
}

func LoadFileCatalog(path string) (*FileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return ParseFileCatalog(data)
}

// ParseFileCatalog reads a catalog document. Entries without a price or an
// NFT id are skipped.
func ParseFileCatalog(data []byte) (*FileCatalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	c := &FileCatalog{}
	for _, offer := range file.Offers {
		if offer == nil || !offer.listed() {
			continue
		}
		c.offers = append(c.offers, offer)
	}
	return c, nil
}

func (c *FileCatalog) Offers(ctx context.Context, pageSize int, cursor string) (*Page, error) {
	start := 0
	if cursor != "" {
		var err error
		if start, err = strconv.Atoi(cursor); err != nil || start < 0 || start > len(c.offers) {
			return nil, apperr.Newf(apperr.KindBadRequest, "invalid cursor %q", cursor)
		}
	}

	end := start + clampPageSize(pageSize)
	if end > len(c.offers) {
		end = len(c.offers)
	}

	page := &Page{Offers: make([]Offer, 0, end-start)}
	for _, offer := range c.offers[start:end] {
		page.Offers = append(page.Offers, offer.summary())
	}
	if end < len(c.offers) {
		page.HasMore = true
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

func (c *FileCatalog) Offer(ctx context.Context, nftID string) (*FullOffer, error) {
	for _, offer := range c.offers {
		if strings.EqualFold(offer.NFTID, nftID) {
			out := *offer
			out.Images = append([]string(nil), offer.Images...)
			return &out, nil
		}
	}
	return nil, apperr.Newf(apperr.KindNotFound, "Offer not found.")
}
