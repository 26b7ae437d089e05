package tillcore

import (
	"testing"

	"github.com/shopspring/decimal"

	"resto-backend/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestUnitPriceFoldsExtras(t *testing.T) {
	extras := []models.ItemExtra{
		{ID: 1, Name: "bacon", Price: d("3.50")},
		{ID: 2, Name: "cheddar", Price: d("2.00")},
	}
	got := UnitPrice(d("24.90"), extras)
	if !got.Equal(d("30.40")) {
		t.Fatalf("unit price = %s, want 30.40", got)
	}
}

func TestLineKeyIgnoresExtraOrder(t *testing.T) {
	pid := 7
	a := []models.ItemExtra{{ID: 3}, {ID: 1}}
	b := []models.ItemExtra{{ID: 1}, {ID: 3}}
	if LineKey(&pid, "sem cebola", a) != LineKey(&pid, "sem cebola", b) {
		t.Fatal("extras set should compare order-independently")
	}
	c := []models.ItemExtra{{ID: 1}}
	if LineKey(&pid, "sem cebola", a) == LineKey(&pid, "sem cebola", c) {
		t.Fatal("different extras sets must not collide")
	}
	if LineKey(&pid, "sem cebola", a) == LineKey(&pid, "", a) {
		t.Fatal("different observations must not collide")
	}
}

func TestFindMergeLine(t *testing.T) {
	pid := 7
	other := 8
	items := []models.OrderItem{
		{ProductID: &pid, Observation: "sem cebola", Extras: []models.ItemExtra{{ID: 4}}, Quantity: 1},
		{ProductID: &other, Quantity: 2},
	}

	if i := FindMergeLine(items, &pid, "sem cebola", []models.ItemExtra{{ID: 4}}); i != 0 {
		t.Fatalf("expected merge with line 0, got %d", i)
	}
	if i := FindMergeLine(items, &pid, "sem cebola", nil); i != -1 {
		t.Fatalf("different extras set merged into line %d", i)
	}
	if i := FindMergeLine(items, &pid, "bem passado", []models.ItemExtra{{ID: 4}}); i != -1 {
		t.Fatalf("different observation merged into line %d", i)
	}
}

func TestTotals(t *testing.T) {
	tests := []struct {
		name                      string
		items                     []models.OrderItem
		feePct                    decimal.Decimal
		subtotal, fee, total      string
	}{
		{
			name: "two items default fee",
			items: []models.OrderItem{
				{UnitPrice: d("30.00"), Quantity: 1},
				{UnitPrice: d("30.00"), Quantity: 1},
			},
			feePct:   DefaultServiceFeePercent,
			subtotal: "60", fee: "6", total: "66",
		},
		{
			name: "quantity multiplies",
			items: []models.OrderItem{
				{UnitPrice: d("12.50"), Quantity: 4},
			},
			feePct:   DefaultServiceFeePercent,
			subtotal: "50", fee: "5", total: "55",
		},
		{
			name:     "empty order",
			items:    nil,
			feePct:   DefaultServiceFeePercent,
			subtotal: "0", fee: "0", total: "0",
		},
		{
			name: "fee rounds once",
			items: []models.OrderItem{
				{UnitPrice: d("10.01"), Quantity: 3},
			},
			feePct:   DefaultServiceFeePercent,
			subtotal: "30.03", fee: "3", total: "33.03",
		},
		{
			name: "zero fee percent",
			items: []models.OrderItem{
				{UnitPrice: d("18.00"), Quantity: 1},
			},
			feePct:   decimal.Zero,
			subtotal: "18", fee: "0", total: "18",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, fee, total := Totals(tt.items, tt.feePct)
			if !sub.Equal(d(tt.subtotal)) {
				t.Errorf("subtotal = %s, want %s", sub, tt.subtotal)
			}
			if !fee.Equal(d(tt.fee)) {
				t.Errorf("service fee = %s, want %s", fee, tt.fee)
			}
			if !total.Equal(d(tt.total)) {
				t.Errorf("total = %s, want %s", total, tt.total)
			}
			if !total.Equal(sub.Add(fee)) {
				t.Errorf("total %s != subtotal %s + fee %s", total, sub, fee)
			}
		})
	}
}

func TestTotalsIdempotent(t *testing.T) {
	items := []models.OrderItem{
		{UnitPrice: d("33.33"), Quantity: 3},
		{UnitPrice: d("0.01"), Quantity: 7},
	}
	s1, f1, t1 := Totals(items, DefaultServiceFeePercent)
	s2, f2, t2 := Totals(items, DefaultServiceFeePercent)
	if !s1.Equal(s2) || !f1.Equal(f2) || !t1.Equal(t2) {
		t.Fatalf("recomputing totals changed the result: (%s,%s,%s) vs (%s,%s,%s)",
			s1, f1, t1, s2, f2, t2)
	}
}
