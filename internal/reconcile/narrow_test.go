package reconcile

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiptiq/internal/record"
)

func mustParse(t *testing.T, s string) record.Record {
	t.Helper()
	rec, err := record.Parse([]byte(s))
	require.NoError(t, err)
	return rec
}

func TestNarrow_PurchasedAt(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  *time.Time
	}{
		{name: "iso datetime", value: "2024-01-15T10:00:00", want: ptr(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))},
		{name: "iso date", value: "2024-01-15", want: ptr(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))},
		{name: "null", value: nil},
		{name: "garbage", value: "not-a-date"},
		{name: "number", value: float64(42)},
		{name: "empty", value: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := Narrow(record.Record{record.KeyPurchasedAt: tt.value}, "file-1", zerolog.Nop())
			if tt.want == nil {
				assert.Nil(t, rc.PurchasedAt)
				return
			}
			require.NotNil(t, rc.PurchasedAt)
			assert.True(t, tt.want.Equal(*rc.PurchasedAt), "got %s", rc.PurchasedAt)
		})
	}
}

func TestNarrow_TotalAmount(t *testing.T) {
	tests := []struct {
		name string
		rec  record.Record
		want float64
	}{
		{name: "absent", rec: record.Record{}, want: 0},
		{name: "null", rec: record.Record{record.KeyTotalAmount: nil}, want: 0},
		{name: "empty string", rec: record.Record{record.KeyTotalAmount: ""}, want: 0},
		{name: "numeric string", rec: record.Record{record.KeyTotalAmount: "12.50"}, want: 12.5},
		{name: "padded string", rec: record.Record{record.KeyTotalAmount: " 7 "}, want: 7},
		{name: "number", rec: record.Record{record.KeyTotalAmount: 23.5}, want: 23.5},
		{name: "unparseable", rec: record.Record{record.KeyTotalAmount: "$12"}, want: 0},
		{name: "object", rec: record.Record{record.KeyTotalAmount: map[string]any{"v": 1}}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := Narrow(tt.rec, "file-1", zerolog.Nop())
			assert.Equal(t, tt.want, rc.TotalAmount)
		})
	}
}

func TestNarrow_MerchantName(t *testing.T) {
	assert.Nil(t, Narrow(record.Record{}, "f", zerolog.Nop()).MerchantName)
	assert.Nil(t, Narrow(record.Record{record.KeyMerchantName: nil}, "f", zerolog.Nop()).MerchantName)
	assert.Nil(t, Narrow(record.Record{record.KeyMerchantName: []any{"a"}}, "f", zerolog.Nop()).MerchantName)

	rc := Narrow(record.Record{record.KeyMerchantName: "Acme"}, "f", zerolog.Nop())
	require.NotNil(t, rc.MerchantName)
	assert.Equal(t, "Acme", *rc.MerchantName)

	rc = Narrow(record.Record{record.KeyMerchantName: float64(7)}, "f", zerolog.Nop())
	require.NotNil(t, rc.MerchantName)
	assert.Equal(t, "7", *rc.MerchantName)
}

func TestNarrow_PartialItems(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	rec := mustParse(t, `{"items":[{"description":"A","quantity":1,"price":5},{"description":"B"}]}`)

	rc := Narrow(rec, "file-1", logger)

	require.Len(t, rc.Items, 1)
	assert.Equal(t, "A", rc.Items[0].Description)
	assert.Equal(t, 1.0, rc.Items[0].Quantity)
	assert.Equal(t, 5.0, rc.Items[0].Price)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "item_skipped")
}

func TestNarrow_ItemCountBounds(t *testing.T) {
	tests := []struct {
		name  string
		items string
		want  int
	}{
		{name: "all complete", items: `[{"description":"A","quantity":1,"price":1},{"description":"B","quantity":"2","price":"3.5"}]`, want: 2},
		{name: "missing price", items: `[{"description":"A","quantity":1}]`, want: 0},
		{name: "non numeric quantity", items: `[{"description":"A","quantity":"two","price":1},{"description":"B","quantity":1,"price":1}]`, want: 1},
		{name: "null description", items: `[{"description":null,"quantity":1,"price":1}]`, want: 0},
		{name: "null quantity and price", items: `[{"description":"A","quantity":null,"price":""}]`, want: 1},
		{name: "not an object", items: `["A", 3]`, want: 0},
		{name: "empty", items: `[]`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := mustParse(t, `{"items":`+tt.items+`}`)
			inputs := len(rec[record.KeyItems].([]any))

			rc := Narrow(rec, "file-1", zerolog.Nop())

			assert.LessOrEqual(t, len(rc.Items), inputs)
			assert.Len(t, rc.Items, tt.want)
		})
	}
}

func TestNarrow_ItemsNotAList(t *testing.T) {
	rc := Narrow(record.Record{record.KeyItems: "Widget"}, "file-1", zerolog.Nop())
	assert.NotNil(t, rc.Items)
	assert.Empty(t, rc.Items)

	rc = Narrow(record.Record{}, "file-1", zerolog.Nop())
	assert.NotNil(t, rc.Items)
	assert.Empty(t, rc.Items)
}

func TestNarrow_NullQuantityDefaultsToZero(t *testing.T) {
	rec := mustParse(t, `{"items":[{"description":"A","quantity":null,"price":""}]}`)
	rc := Narrow(rec, "file-1", zerolog.Nop())

	require.Len(t, rc.Items, 1)
	assert.Zero(t, rc.Items[0].Quantity)
	assert.Zero(t, rc.Items[0].Price)
}

func TestNarrow_Acme(t *testing.T) {
	rec := mustParse(t, `{"merchant_name":"Acme","purchased_at":"2024-03-01T00:00:00","total_amount":23.50,"items":[{"description":"Widget","quantity":2,"price":11.75}]}`)

	rc := Narrow(rec, "file-1", zerolog.Nop())

	assert.Equal(t, "file-1", rc.ReceiptFileID)
	require.NotNil(t, rc.MerchantName)
	assert.Equal(t, "Acme", *rc.MerchantName)
	assert.Equal(t, 23.5, rc.TotalAmount)
	require.NotNil(t, rc.PurchasedAt)
	assert.True(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Equal(*rc.PurchasedAt))
	require.Len(t, rc.Items, 1)
	assert.Equal(t, "Widget", rc.Items[0].Description)
	assert.Equal(t, 2.0, rc.Items[0].Quantity)
	assert.Equal(t, 11.75, rc.Items[0].Price)
}

func ptr[T any](v T) *T { return &v }
