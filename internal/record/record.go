// Package record holds the untrusted structured result returned by the language model.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Keys recognised in a Record.
const (
	KeyMerchantName = "merchant_name"
	KeyPurchasedAt  = "purchased_at"
	KeyTotalAmount  = "total_amount"
	KeyItems        = "items"

	KeyDescription = "description"
	KeyQuantity    = "quantity"
	KeyPrice       = "price"
)

// ErrNotObject is returned when the payload is valid JSON but not an object.
var ErrNotObject = errors.New("structured record is not a JSON object")

// Record is the loosely-typed extraction result. Any key may be missing,
// null or of the wrong type; only the reconciler narrows it into domain types.
type Record map[string]any

// Parse decodes a JSON object into a Record.
func Parse(data []byte) (Record, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode structured record: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return Record(obj), nil
}
