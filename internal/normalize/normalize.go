package normalize

import (
	"strings"
	"time"

	"uplens/internal/rowsource"
)

// LineItem is one validated product row of an order export.
type LineItem struct {
	OrderID       string  `json:"orderId"`
	OrderTotal    float64 `json:"orderTotal"`
	BuyerID       string  `json:"buyerId"`
	IsUpsell      bool    `json:"isUpsell"`
	ProductCode   string  `json:"productCode"`
	ProductName   string  `json:"productName"`
	ProductOption string  `json:"productOption"`

	OrderDate time.Time `json:"orderDate"`
	HasDate   bool      `json:"hasDate"`

	// LineAmount is unit price x quantity (or the explicit line amount
	// column). HasLineAmount is false when neither is available; the
	// together-amount ratio then reports N/A instead of a guess.
	LineAmount    float64 `json:"lineAmount"`
	HasLineAmount bool    `json:"hasLineAmount"`
	UnitPrice     float64 `json:"unitPrice"`
	Qty           int64   `json:"qty"`
}

// Order is the one-row-per-order record derived from LineItems sharing an
// order id. Orders are built once per run and never mutated afterwards.
type Order struct {
	OrderID     string    `json:"orderId"`
	TotalAmount float64   `json:"totalAmount"`
	IsGuest     bool      `json:"isGuest"`
	HasUpsell   bool      `json:"hasUpsell"`
	ItemCount   int       `json:"itemCount"`
	OrderDate   time.Time `json:"orderDate"`
	HasDate     bool      `json:"hasDate"`
}

// Diagnostics counts rows recovered locally instead of failing the run.
// Attached to the report so drops are never silently lost.
type Diagnostics struct {
	RowsRead       int `json:"rowsRead"`
	DroppedAmount  int `json:"droppedAmount"`  // total missing, unparsable, or <= 0
	DroppedDate    int `json:"droppedDate"`    // date column present but cell unparsable
	DroppedNoOrder int `json:"droppedNoOrder"` // empty order id
}

func (d Diagnostics) Dropped() int {
	return d.DroppedAmount + d.DroppedDate + d.DroppedNoOrder
}

// Result is the normalizer output: validated line items plus one Order per
// unique order id, both in first-seen input order.
type Result struct {
	Items  []LineItem
	Orders []Order
	Diag   Diagnostics
}

// Normalize cleans raw rows into LineItems and deduplicates them into
// Orders. Rows whose order total fails coercion or is <= 0 are treated as
// cancelled/refunded and dropped before deduplication. A required column
// missing from the input entirely is a *SchemaError.
func Normalize(rows []rowsource.Row, sc Schema) (*Result, error) {
	res := &Result{}
	if len(rows) == 0 {
		return res, nil
	}

	if err := checkSchema(rows[0], sc); err != nil {
		return nil, err
	}
	_, hasDateCol := rows[0][sc.OrderDate]

	orderIdx := make(map[string]int)
	for _, row := range rows {
		res.Diag.RowsRead++

		orderID := strings.TrimSpace(row[sc.OrderID])
		if orderID == "" {
			res.Diag.DroppedNoOrder++
			continue
		}
		total, ok := ParseAmount(row[sc.OrderTotal])
		if !ok || total <= 0 {
			res.Diag.DroppedAmount++
			continue
		}

		item := LineItem{
			OrderID:       orderID,
			OrderTotal:    total,
			BuyerID:       strings.TrimSpace(row[sc.BuyerID]),
			IsUpsell:      strings.TrimSpace(row[sc.Class]) == sc.UpsellValue,
			ProductCode:   strings.TrimSpace(row[sc.ProductCode]),
			ProductName:   strings.TrimSpace(row[sc.ProductName]),
			ProductOption: strings.TrimSpace(row[sc.ProductOption]),
		}

		if hasDateCol && sc.OrderDate != "" {
			d, ok := ParseDate(row[sc.OrderDate])
			if !ok && strings.TrimSpace(row[sc.OrderDate]) != "" {
				// A date column is present but this cell is garbage:
				// the row cannot be placed in any period.
				res.Diag.DroppedDate++
				continue
			}
			item.OrderDate, item.HasDate = d, ok
		}

		if sc.UnitPrice != "" {
			item.UnitPrice, _ = ParseAmount(row[sc.UnitPrice])
		}
		if sc.Qty != "" {
			item.Qty, _ = ParseQty(row[sc.Qty])
		}
		if sc.LineAmount != "" {
			if v, ok := ParseAmount(row[sc.LineAmount]); ok {
				item.LineAmount, item.HasLineAmount = v, true
			}
		}
		if !item.HasLineAmount && item.UnitPrice > 0 && item.Qty > 0 {
			item.LineAmount = item.UnitPrice * float64(item.Qty)
			item.HasLineAmount = true
		}

		res.Items = append(res.Items, item)

		if i, seen := orderIdx[orderID]; seen {
			o := &res.Orders[i]
			o.ItemCount++
			o.HasUpsell = o.HasUpsell || item.IsUpsell
			if !o.HasDate && item.HasDate {
				o.OrderDate, o.HasDate = item.OrderDate, true
			}
		} else {
			orderIdx[orderID] = len(res.Orders)
			res.Orders = append(res.Orders, Order{
				OrderID:     orderID,
				TotalAmount: total, // constant across lines of one order
				IsGuest:     item.BuyerID == "",
				HasUpsell:   item.IsUpsell,
				ItemCount:   1,
				OrderDate:   item.OrderDate,
				HasDate:     item.HasDate,
			})
		}
	}
	return res, nil
}

func checkSchema(sample rowsource.Row, sc Schema) error {
	if _, ok := sample[sc.OrderID]; !ok {
		return &SchemaError{Field: "order id", Column: sc.OrderID}
	}
	if _, ok := sample[sc.OrderTotal]; !ok {
		return &SchemaError{Field: "order total", Column: sc.OrderTotal}
	}
	return nil
}
