// Package catalog serves the marketplace offers shown next to the wallet. It
// is read-only and independent from the dApp protocol.
package catalog

import (
	"context"
	"strings"
)

// Offer is a catalog entry as listed in a page
type Offer struct {
	NFTID    string `json:"nftId" yaml:"nftId"`
	Title    string `json:"title" yaml:"title"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
	Price    string `json:"price" yaml:"price"`
	// Image is the first image of the entry
	Image string `json:"image" yaml:"-"`
}

// FullOffer is a catalog entry with all of its images
type FullOffer struct {
	NFTID    string   `json:"nftId" yaml:"nftId"`
	Title    string   `json:"title" yaml:"title"`
	Subtitle string   `json:"subtitle" yaml:"subtitle"`
	Price    string   `json:"price" yaml:"price"`
	Images   []string `json:"images" yaml:"images"`
}

type Page struct {
	Offers     []Offer `json:"offers"`
	HasMore    bool    `json:"hasMore"`
	NextCursor string  `json:"nextCursor,omitempty"`
}

type Catalog interface {
	// Offers lists up to pageSize offers starting at cursor. An empty cursor
	// starts from the beginning.
	Offers(ctx context.Context, pageSize int, cursor string) (*Page, error)
	// Offer looks an entry up by NFT id. Unknown ids fail with apperr.KindNotFound.
	Offer(ctx context.Context, nftID string) (*FullOffer, error)
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func clampPageSize(pageSize int) int {
	switch {
	case pageSize <= 0:
		return DefaultPageSize
	case pageSize > MaxPageSize:
		return MaxPageSize
	}
	return pageSize
}

// splitImages splits a comma separated image list
func splitImages(images string) []string {
	var out []string
	for _, image := range strings.Split(images, ",") {
		if image = strings.TrimSpace(image); image != "" {
			out = append(out, image)
		}
	}
	return out
}

func (o *FullOffer) summary() Offer {
	offer := Offer{NFTID: o.NFTID, Title: o.Title, Subtitle: o.Subtitle, Price: o.Price}
	if len(o.Images) > 0 {
		offer.Image = o.Images[0]
	}
	return offer
}

// listed reports whether the entry can be offered: it needs a price and an NFT id
func (o *FullOffer) listed() bool {
	return o.Price != "" && o.NFTID != ""
}
