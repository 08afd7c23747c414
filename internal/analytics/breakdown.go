package analytics

import (
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/sampattitrack/engine/internal/models"
	"github.com/sampattitrack/engine/internal/store"
	"github.com/sampattitrack/engine/internal/types"
)

// topTags is how many tags are listed individually before the rest rolls
// into the Others bucket.
const topTags = 9

// OthersBucket is the label of the rollup bucket.
const OthersBucket = "Others"

// TagShare is the spend attributed to one tag.
type TagShare struct {
	TagID  string          `json:"tagId,omitempty"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// TagBreakdown sums absolute expense amounts per tag over the inclusive
// date range, largest first, with everything beyond the top nine rolled
// into Others.
//
// This query scans the store directly instead of the projection: it needs
// posting-level tag joins the projection deliberately drops, and it is
// called rarely enough that caching is not worth it.
func TagBreakdown(from, until types.Date) ([]TagShare, error) {
	accounts, err := store.Accounts("")
	if err != nil {
		return nil, err
	}

	categories := make(map[string]models.AccountCategory, len(accounts))
	for _, a := range accounts {
		categories[a.Path] = a.Category
	}

	transactions, err := store.Transactions(from, until)
	if err != nil {
		return nil, err
	}

	totals := map[string]TagShare{}
	for _, t := range transactions {
		for _, p := range t.Postings {
			if categories[p.AccountPath] != models.CategoryExpense {
				continue
			}

			for _, tag := range p.Tags {
				share := totals[tag.ID]
				share.TagID = tag.ID
				share.Name = tag.Name
				share.Amount = share.Amount.Add(p.Amount.Abs())
				totals[tag.ID] = share
			}
		}
	}

	shares := make([]TagShare, 0, len(totals))
	for _, share := range totals {
		shares = append(shares, share)
	}

	slices.SortFunc(shares, func(a, b TagShare) int {
		return b.Amount.Cmp(a.Amount)
	})

	if len(shares) <= topTags {
		return shares, nil
	}

	others := TagShare{Name: OthersBucket}
	for _, share := range shares[topTags:] {
		others.Amount = others.Amount.Add(share.Amount)
	}

	return append(shares[:topTags], others), nil
}
