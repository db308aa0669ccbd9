package report

import (
	"fmt"
	"strings"
	"time"

	"uplens/internal/assoc"
	"uplens/internal/bucket"
	"uplens/internal/normalize"
	"uplens/internal/period"
)

// Metric is one labeled value of a report section: the raw number, a
// display string, and (where a benchmark applies) a verdict. HasValue
// false means N/A — the metric could not be computed from the data.
type Metric struct {
	Label     string         `json:"label"`
	Value     float64        `json:"value"`
	HasValue  bool           `json:"hasValue"`
	Formatted string         `json:"formatted"`
	Verdict   bucket.Verdict `json:"verdict,omitempty"`
}

// Table is render-agnostic tabular data for a section.
type Table struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Section is one ordered block of the report.
type Section struct {
	Title   string   `json:"title"`
	Metrics []Metric `json:"metrics,omitempty"`
	Tables  []Table  `json:"tables,omitempty"`
}

// Report is the engine's final output: ordered sections plus the
// diagnostic summary of rows dropped during normalization. Rendering
// (charts, HTML, clipboard) is a collaborator concern.
type Report struct {
	GeneratedAt int64                 `json:"generatedAt"`
	PeriodStart string                `json:"periodStart,omitempty"`
	PeriodEnd   string                `json:"periodEnd,omitempty"`
	PeriodDays  int                   `json:"periodDays,omitempty"`
	Sections    []Section             `json:"sections"`
	Diagnostics normalize.Diagnostics `json:"diagnostics"`
}

// NowUnix returns current time in epoch seconds. Split for testability.
var NowUnix = func() int64 { return time.Now().UTC().Unix() }

func na(label string) Metric {
	return Metric{Label: label, Formatted: "N/A", Verdict: bucket.VerdictNA}
}

// PerformanceSection summarizes upsell performance against benchmarks.
func PerformanceSection(r bucket.Ratios, bm bucket.Benchmarks, tol bucket.Tolerance) Section {
	s := Section{Title: "Upsell performance"}
	s.Metrics = append(s.Metrics,
		Metric{Label: "Orders", Value: float64(r.OrderCount), HasValue: true, Formatted: FormatInt(int64(r.OrderCount))},
		Metric{Label: "Total order amount", Value: r.TotalAmount, HasValue: true, Formatted: FormatAmount(r.TotalAmount)},
		Metric{Label: "Upsell-converted order amount", Value: r.UpsellConvAmount, HasValue: true, Formatted: FormatAmount(r.UpsellConvAmount)},
	)

	if r.UpsellConvRatioOK {
		s.Metrics = append(s.Metrics, Metric{
			Label: "Upsell conversion ratio", Value: r.UpsellConvRatio, HasValue: true,
			Formatted: FormatPercent(r.UpsellConvRatio),
			Verdict:   bucket.Classify(r.UpsellConvRatio, bm.UpsellConvRatio, tol),
		})
	} else {
		s.Metrics = append(s.Metrics, na("Upsell conversion ratio"))
	}

	if r.TogetherRatioOK {
		s.Metrics = append(s.Metrics, Metric{
			Label: "Together-purchase amount ratio", Value: r.TogetherRatio, HasValue: true,
			Formatted: FormatPercent(r.TogetherRatio),
			Verdict:   bucket.Classify(r.TogetherRatio, bm.TogetherRatio, tol),
		})
	} else {
		s.Metrics = append(s.Metrics, na("Together-purchase amount ratio"))
	}

	s.Metrics = append(s.Metrics, Metric{
		Label: "AOV (all orders)", Value: r.AOVAll, HasValue: r.OrderCount > 0, Formatted: FormatAmount(r.AOVAll),
	})
	if r.AOVLiftOK {
		s.Metrics = append(s.Metrics,
			Metric{Label: "AOV (upsell orders)", Value: r.AOVUpsell, HasValue: true, Formatted: FormatAmount(r.AOVUpsell)},
			Metric{Label: "AOV lift", Value: r.AOVLift, HasValue: true, Formatted: FormatPercent(r.AOVLift), Verdict: bucket.Classify(r.AOVLift, bm.AOVLift, tol)},
		)
	} else {
		s.Metrics = append(s.Metrics, na("AOV (upsell orders)"), na("AOV lift"))
	}

	if r.ItemsLiftOK {
		verdict := bucket.VerdictLower
		if r.ItemsLift >= bm.ItemsLift {
			verdict = bucket.VerdictHigher
		}
		s.Metrics = append(s.Metrics,
			Metric{Label: "Items per order (all)", Value: r.ItemsAvgAll, HasValue: true, Formatted: FormatCount(r.ItemsAvgAll)},
			Metric{Label: "Items per order (upsell)", Value: r.ItemsAvgUpsell, HasValue: true, Formatted: FormatCount(r.ItemsAvgUpsell)},
			Metric{Label: "Items per order lift", Value: r.ItemsLift, HasValue: true, Formatted: fmt.Sprintf("%+.1f", r.ItemsLift), Verdict: verdict},
		)
	} else {
		s.Metrics = append(s.Metrics,
			Metric{Label: "Items per order (all)", Value: r.ItemsAvgAll, HasValue: r.OrderCount > 0, Formatted: FormatCount(r.ItemsAvgAll)},
			na("Items per order lift"))
	}
	return s
}

// MembershipSection reports member vs guest order share.
func MembershipSection(members, guests int) Section {
	total := members + guests
	s := Section{Title: "Member vs guest orders"}
	memberPct, guestPct := 0.0, 0.0
	if total > 0 {
		memberPct = float64(members) / float64(total) * 100
		guestPct = float64(guests) / float64(total) * 100
	}
	s.Metrics = append(s.Metrics,
		Metric{Label: "Member orders", Value: float64(members), HasValue: true, Formatted: fmt.Sprintf("%s (%s)", FormatInt(int64(members)), FormatPercent(memberPct))},
		Metric{Label: "Guest orders", Value: float64(guests), HasValue: true, Formatted: fmt.Sprintf("%s (%s)", FormatInt(int64(guests)), FormatPercent(guestPct))},
	)
	return s
}

// bandLabel renders a histogram band lower bound in bucket-width units,
// e.g. width 10000: 0 -> "0.0", 150000 -> "15.0", cap -> ">20.0".
func bandLabel(lower, width, cap int64) string {
	units := float64(lower) / float64(width)
	if lower >= cap {
		return fmt.Sprintf(">%.1f", units)
	}
	return fmt.Sprintf("%.1f", units)
}

// DistributionSection tabulates a price-band histogram with per-band
// shares.
func DistributionSection(title string, bands []bucket.Band, width, cap int64) Section {
	shares := bucket.Shares(bands)
	t := Table{Title: title, Columns: []string{"Band", "Orders", "Share"}}
	for i, b := range bands {
		t.Rows = append(t.Rows, []string{
			bandLabel(b.Lower, width, cap),
			FormatInt(int64(b.Count)),
			fmt.Sprintf("%.1f%%", shares[i]),
		})
	}
	return Section{Title: title, Tables: []Table{t}}
}

// ItemsSection tabulates the items-per-order distribution, with small
// slices grouped into "Others".
func ItemsSection(dist []bucket.ItemBand, slices []bucket.Slice) Section {
	s := Section{Title: "Items per order"}
	full := Table{Title: "Distribution", Columns: []string{"Items", "Orders"}}
	for _, b := range dist {
		full.Rows = append(full.Rows, []string{FormatInt(int64(b.Items)), FormatInt(int64(b.Count))})
	}
	grouped := Table{Title: "Share breakdown", Columns: []string{"Items", "Orders", "Share"}}
	for _, sl := range slices {
		grouped.Rows = append(grouped.Rows, []string{sl.Label, FormatInt(int64(sl.Count)), fmt.Sprintf("%.1f%%", sl.Share)})
	}
	s.Tables = []Table{full, grouped}
	return s
}

// PeriodSection reports the before/after threshold comparison.
func PeriodSection(res period.Result) Section {
	s := Section{Title: fmt.Sprintf("Before/after comparison (%s..%s vs %s..%s)",
		res.PriorStart.Format("2006-01-02"), res.PriorEnd.Format("2006-01-02"),
		res.CurrentStart.Format("2006-01-02"), res.CurrentEnd.Format("2006-01-02"))}

	s.Metrics = append(s.Metrics,
		Metric{Label: fmt.Sprintf("Orders with >= %d items, prior", res.Thresholds.Items), Value: res.Prior.Items, HasValue: true, Formatted: FormatPercent(res.Prior.Items * 100)},
		Metric{Label: fmt.Sprintf("Orders with >= %d items, current", res.Thresholds.Items), Value: res.Current.Items, HasValue: true, Formatted: FormatPercent(res.Current.Items * 100)},
	)
	if res.ItemsDeltaOK {
		s.Metrics = append(s.Metrics, Metric{Label: "Item-count proportion delta", Value: res.ItemsDelta, HasValue: true, Formatted: FormatSignedPercent(res.ItemsDelta)})
	} else {
		s.Metrics = append(s.Metrics, na("Item-count proportion delta"))
	}

	s.Metrics = append(s.Metrics,
		Metric{Label: fmt.Sprintf("Orders of %s+ amount, prior", FormatInt(res.Thresholds.Amount)), Value: res.Prior.Amount, HasValue: true, Formatted: FormatPercent(res.Prior.Amount * 100)},
		Metric{Label: fmt.Sprintf("Orders of %s+ amount, current", FormatInt(res.Thresholds.Amount)), Value: res.Current.Amount, HasValue: true, Formatted: FormatPercent(res.Current.Amount * 100)},
	)
	if res.AmountDeltaOK {
		s.Metrics = append(s.Metrics, Metric{Label: "Amount proportion delta", Value: res.AmountDelta, HasValue: true, Formatted: FormatSignedPercent(res.AmountDelta)})
	} else {
		s.Metrics = append(s.Metrics, na("Amount proportion delta"))
	}
	return s
}

// ProductSection tabulates per-product purchase performance.
func ProductSection(title string, perf []bucket.ProductPerf) Section {
	t := Table{Title: title, Columns: []string{"Code", "Name", "Qty", "Unit prices", "Revenue"}}
	for _, p := range perf {
		prices := make([]string, len(p.UnitPrices))
		for i, up := range p.UnitPrices {
			prices[i] = FormatAmount(up)
		}
		t.Rows = append(t.Rows, []string{
			p.Code, p.Name, FormatInt(p.Qty), strings.Join(prices, ", "), FormatAmount(p.Revenue),
		})
	}
	return Section{Title: title, Tables: []Table{t}}
}

// DisplayNames maps product codes to "code - name (option)" labels using
// each code's first-seen line item.
func DisplayNames(items []normalize.LineItem) map[string]string {
	out := make(map[string]string)
	for _, it := range items {
		if it.ProductCode == "" {
			continue
		}
		if _, ok := out[it.ProductCode]; ok {
			continue
		}
		label := it.ProductCode
		if it.ProductName != "" {
			label += " - " + it.ProductName
		}
		if it.ProductOption != "" {
			label += " (" + it.ProductOption + ")"
		}
		out[it.ProductCode] = label
	}
	return out
}

// RelatedSection tabulates the co-purchase partners of a queried product:
// all related products, then upsell products attached to it.
func RelatedSection(product string, related, attached []assoc.Related, names map[string]string) Section {
	label := names[product]
	if label == "" {
		label = product
	}
	s := Section{Title: "Co-purchases of " + label}

	all := Table{Title: "Purchased together", Columns: []string{"Product", "Orders"}}
	for _, r := range related {
		all.Rows = append(all.Rows, []string{displayOr(names, r.Product), FormatInt(r.Count)})
	}
	ups := Table{Title: "Upsell items attached", Columns: []string{"Product", "Orders"}}
	for _, r := range attached {
		ups.Rows = append(ups.Rows, []string{displayOr(names, r.Product), FormatInt(r.Count)})
	}
	s.Tables = []Table{all, ups}
	return s
}

func displayOr(names map[string]string, code string) string {
	if label, ok := names[code]; ok {
		return label
	}
	return code
}
