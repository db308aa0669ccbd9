package bucket

import (
	"math"

	"uplens/internal/normalize"
)

// Verdict classifies an observed ratio against an externally supplied
// benchmark.
type Verdict string

const (
	VerdictSimilar Verdict = "similar"
	VerdictHigher  Verdict = "higher"
	VerdictLower   Verdict = "lower"
	// VerdictNA marks a ratio that could not be computed (no upsell
	// orders, no line amounts). Soft: the rest of the report stays useful.
	VerdictNA Verdict = "insufficient-data"
)

// Tolerance is the "similar" band around a benchmark: within
// max(benchmark*Rel, AbsPts) percentage points counts as similar. The
// defaults (0.15, 2) are a deliberate judgment call, so they stay
// configurable rather than baked in.
type Tolerance struct {
	Rel    float64 `json:"rel"`
	AbsPts float64 `json:"absPts"`
}

func DefaultTolerance() Tolerance { return Tolerance{Rel: 0.15, AbsPts: 2} }

// Classify compares observed v against benchmark b.
func Classify(v, b float64, tol Tolerance) Verdict {
	band := b * tol.Rel
	if band < tol.AbsPts {
		band = tol.AbsPts
	}
	diff := v - b
	if math.Abs(diff) < band {
		return VerdictSimilar
	}
	if diff > 0 {
		return VerdictHigher
	}
	return VerdictLower
}

// Benchmarks are externally supplied reference values observed ratios are
// classified against. Supplied by configuration, never baked into the
// engine.
type Benchmarks struct {
	UpsellConvRatio float64 `json:"upsellConvRatio"` // % of order amount from upsell-converted orders
	TogetherRatio   float64 `json:"togetherRatio"`   // % of order amount from upsell line amounts
	AOVLift         float64 `json:"aovLift"`         // % AOV gain of upsell orders
	ItemsLift       float64 `json:"itemsLift"`       // items-per-order gain of upsell orders
}

// Ratios are the order-level scalar metrics of one analysis run. Ok flags
// guard every division: a false flag surfaces as N/A, never as a crash or
// a bogus zero comparison.
type Ratios struct {
	OrderCount       int     `json:"orderCount"`
	UpsellOrderCount int     `json:"upsellOrderCount"`
	TotalAmount      float64 `json:"totalAmount"`
	UpsellConvAmount float64 `json:"upsellConvAmount"`

	// Share of total order amount carried by upsell-converted orders (%).
	UpsellConvRatio   float64 `json:"upsellConvRatio"`
	UpsellConvRatioOK bool    `json:"upsellConvRatioOk"`

	// Share of total order amount carried by upsell line amounts (%).
	// Requires line amounts (unit price x qty); otherwise not OK.
	TogetherAmount  float64 `json:"togetherAmount"`
	TogetherRatio   float64 `json:"togetherRatio"`
	TogetherRatioOK bool    `json:"togetherRatioOk"`

	AOVAll    float64 `json:"aovAll"`
	AOVUpsell float64 `json:"aovUpsell"`
	// AOVLift is the relative AOV gain of upsell orders over all orders (%).
	AOVLift   float64 `json:"aovLift"`
	AOVLiftOK bool    `json:"aovLiftOk"`

	ItemsAvgAll    float64 `json:"itemsAvgAll"`
	ItemsAvgUpsell float64 `json:"itemsAvgUpsell"`
	ItemsLift      float64 `json:"itemsLift"`
	ItemsLiftOK    bool    `json:"itemsLiftOk"`
}

// ComputeRatios derives the scalar metrics from normalized items and
// orders.
func ComputeRatios(items []normalize.LineItem, orders []normalize.Order) Ratios {
	var r Ratios
	r.OrderCount = len(orders)

	var itemsAll, itemsUpsell, upsellOrders int
	for _, o := range orders {
		r.TotalAmount += o.TotalAmount
		itemsAll += o.ItemCount
		if o.HasUpsell {
			upsellOrders++
			r.UpsellConvAmount += o.TotalAmount
			itemsUpsell += o.ItemCount
		}
	}
	r.UpsellOrderCount = upsellOrders

	if r.TotalAmount > 0 {
		r.UpsellConvRatio = r.UpsellConvAmount / r.TotalAmount * 100
		r.UpsellConvRatioOK = true
	}

	lineAmounts := false
	for _, it := range items {
		if !it.IsUpsell {
			continue
		}
		if it.HasLineAmount {
			lineAmounts = true
			r.TogetherAmount += it.LineAmount
		}
	}
	if lineAmounts && r.TotalAmount > 0 {
		r.TogetherRatio = r.TogetherAmount / r.TotalAmount * 100
		r.TogetherRatioOK = true
	}

	if r.OrderCount > 0 {
		r.AOVAll = r.TotalAmount / float64(r.OrderCount)
		r.ItemsAvgAll = float64(itemsAll) / float64(r.OrderCount)
	}
	if upsellOrders > 0 {
		r.AOVUpsell = r.UpsellConvAmount / float64(upsellOrders)
		r.ItemsAvgUpsell = float64(itemsUpsell) / float64(upsellOrders)
	}
	if r.AOVAll > 0 && upsellOrders > 0 {
		r.AOVLift = (r.AOVUpsell - r.AOVAll) / r.AOVAll * 100
		r.AOVLiftOK = true
	}
	if r.OrderCount > 0 && upsellOrders > 0 {
		r.ItemsLift = r.ItemsAvgUpsell - r.ItemsAvgAll
		r.ItemsLiftOK = true
	}
	return r
}
