// Package reconcile narrows an untrusted structured record into receipt rows
// and persists them.
package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"receiptiq/internal/model"
	"receiptiq/internal/record"
)

// Narrow converts rec into a Receipt bound to fileID. It never fails: bad
// dates become nil, bad totals become 0 and malformed items are dropped.
// IDs and timestamps are left for the caller.
func Narrow(rec record.Record, fileID string, logger zerolog.Logger) *model.Receipt {
	return &model.Receipt{
		ReceiptFileID: fileID,
		PurchasedAt:   narrowDate(rec[record.KeyPurchasedAt], logger),
		MerchantName:  narrowString(rec[record.KeyMerchantName]),
		TotalAmount:   narrowTotal(rec[record.KeyTotalAmount], logger),
		Items:         narrowItems(rec[record.KeyItems], logger),
	}
}

func narrowDate(v any, logger zerolog.Logger) *time.Time {
	if v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		logger.Warn().Str("event", "date_unparseable").Interface("value", v).Msg("purchased_at is not a string")
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		logger.Warn().Str("event", "date_unparseable").Str("value", s).Err(err).Msg("could not parse purchased_at")
		return nil
	}
	return &t
}

func narrowString(v any) *string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return &x
	case map[string]any, []any:
		return nil
	default:
		s, err := cast.ToStringE(x)
		if err != nil {
			return nil
		}
		return &s
	}
}

func narrowTotal(v any, logger zerolog.Logger) float64 {
	f, ok, err := toFloat(v)
	if err != nil {
		logger.Warn().Str("event", "total_unparseable").Interface("value", v).Err(err).Msg("total_amount defaulted to 0")
		return 0
	}
	if !ok {
		return 0
	}
	return f
}

// toFloat coerces v. ok is false for null or empty input, which callers treat as 0.
func toFloat(v any) (f float64, ok bool, err error) {
	switch x := v.(type) {
	case nil:
		return 0, false, nil
	case string:
		x = strings.TrimSpace(x)
		if x == "" {
			return 0, false, nil
		}
		v = x
	case bool, map[string]any, []any:
		return 0, false, fmt.Errorf("unexpected %T", v)
	}
	f, err = cast.ToFloat64E(v)
	if err != nil {
		return 0, false, err
	}
	return f, true, nil
}

func narrowItems(v any, logger zerolog.Logger) []model.ReceiptItem {
	items := make([]model.ReceiptItem, 0)
	if v == nil {
		return items
	}
	list, ok := v.([]any)
	if !ok {
		logger.Warn().Str("event", "items_not_list").Interface("value", v).Msg("items ignored")
		return items
	}

	for i, raw := range list {
		entry, ok := raw.(map[string]any)
		if !ok {
			logger.Warn().Str("event", "item_skipped").Int("index", i).Msg("item is not an object")
			continue
		}
		desc, hasDesc := entry[record.KeyDescription]
		qty, hasQty := entry[record.KeyQuantity]
		price, hasPrice := entry[record.KeyPrice]
		if !hasDesc || !hasQty || !hasPrice {
			logger.Warn().Str("event", "item_skipped").Int("index", i).Interface("item", entry).Msg("item is missing required keys")
			continue
		}
		description := narrowString(desc)
		if description == nil {
			logger.Warn().Str("event", "item_skipped").Int("index", i).Interface("item", entry).Msg("item has no description")
			continue
		}
		q, _, qErr := toFloat(qty)
		p, _, pErr := toFloat(price)
		if qErr != nil || pErr != nil {
			logger.Error().Str("event", "item_unparseable").Int("index", i).Interface("item", entry).Msg("could not parse item data")
			continue
		}
		items = append(items, model.ReceiptItem{
			Description: *description,
			Quantity:    q,
			Price:       p,
		})
	}
	return items
}
