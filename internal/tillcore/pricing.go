package tillcore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"resto-backend/internal/models"
)

// DefaultServiceFeePercent is the usual Brazilian service surcharge
var DefaultServiceFeePercent = decimal.NewFromInt(10)

// UnitPrice folds the selected extras into a product's base price. The result
// is snapshotted on the order line; later catalog changes never touch it.
func UnitPrice(basePrice decimal.Decimal, extras []models.ItemExtra) decimal.Decimal {
	price := basePrice
	for _, x := range extras {
		price = price.Add(x.Price)
	}
	return price
}

// LineKey builds the dedup key for an order line: product, observation and
// the sorted extra-id set. Two lines merge only when all three match exactly;
// extras compare as sets, not in selection order.
func LineKey(productID *int, observation string, extras []models.ItemExtra) string {
	pid := 0
	if productID != nil {
		pid = *productID
	}
	ids := make([]int, 0, len(extras))
	for _, x := range extras {
		ids = append(ids, x.ID)
	}
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("%d|%s|%s", pid, observation, strings.Join(parts, ","))
}

// FindMergeLine returns the index of the existing line the new selection
// collapses into, or -1 when a fresh line is needed.
func FindMergeLine(items []models.OrderItem, productID *int, observation string, extras []models.ItemExtra) int {
	key := LineKey(productID, observation, extras)
	for i := range items {
		if LineKey(items[i].ProductID, items[i].Observation, items[i].Extras) == key {
			return i
		}
	}
	return -1
}

// Totals computes an order's subtotal, service fee and total from its lines.
// Intermediate sums keep full precision; each figure is rounded to 2 places
// exactly once, and total is derived from the rounded parts so
// total == subtotal + service_fee survives persistence.
func Totals(items []models.OrderItem, serviceFeePercent decimal.Decimal) (subtotal, serviceFee, total decimal.Decimal) {
	sum := decimal.Zero
	for i := range items {
		sum = sum.Add(items[i].LineTotal())
	}
	subtotal = sum.Round(2)
	serviceFee = sum.Mul(serviceFeePercent).Div(decimal.NewFromInt(100)).Round(2)
	total = subtotal.Add(serviceFee)
	return subtotal, serviceFee, total
}
