package normalize

import "fmt"

// Schema maps engine field names to the column headers of a concrete
// export. Column names are configuration, not code: shops rename columns,
// so every consumer passes (or defaults) a Schema instead of the engine
// hard-coding one layout.
type Schema struct {
	OrderID       string `json:"orderId"`
	OrderTotal    string `json:"orderTotal"`
	BuyerID       string `json:"buyerId"`
	Class         string `json:"class"`
	OrderDate     string `json:"orderDate"`
	ProductCode   string `json:"productCode"`
	ProductName   string `json:"productName"`
	ProductOption string `json:"productOption"`
	UnitPrice     string `json:"unitPrice"`
	Qty           string `json:"qty"`
	LineAmount    string `json:"lineAmount"`

	// Sentinel values of the Class column.
	UpsellValue  string `json:"upsellValue"`
	GeneralValue string `json:"generalValue"`
}

// DefaultSchema matches the Cafe24-style order export the reporting pages
// were originally built around.
func DefaultSchema() Schema {
	return Schema{
		OrderID:       "주문번호",
		OrderTotal:    "총 주문 금액",
		BuyerID:       "주문자 아이디",
		Class:         "일반/업셀 구분",
		OrderDate:     "주문일",
		ProductCode:   "상품 코드",
		ProductName:   "상품명",
		ProductOption: "상품 옵션",
		UnitPrice:     "상품 단가",
		Qty:           "구매 수량",
		UpsellValue:   "업셀 상품",
		GeneralValue:  "일반 상품",
	}
}

// SchemaError reports a required column that is entirely absent from the
// input. It is fatal: the caller must fix the column mapping or the
// dataset. Per-row coercion failures are not schema errors; those rows are
// dropped and counted in Diagnostics.
type SchemaError struct {
	Field  string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("normalize: required column %q (%s) missing from input", e.Column, e.Field)
}
