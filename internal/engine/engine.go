// Package engine orchestrates one analysis run: raw rows in, structured
// report out. Each run operates on its own immutable input; no state is
// shared between runs except an optional persistent pair store.
package engine

import (
	"fmt"
	"time"

	"uplens/internal/assoc"
	"uplens/internal/bucket"
	"uplens/internal/metrics"
	"uplens/internal/normalize"
	"uplens/internal/pairstore"
	"uplens/internal/period"
	"uplens/internal/report"
	"uplens/internal/rowsource"
)

// RunOptions select per-run extras on top of the standard sections.
type RunOptions struct {
	// RelatedProduct adds a co-purchase section for this product code.
	RelatedProduct string

	// ComparePeriods adds the before/after comparison. An empty
	// sub-period then aborts the run instead of reporting 0/0 ratios.
	ComparePeriods bool

	// PairStore, when set, receives the run's pair counts under RunSeq.
	// Reapplying the same RunSeq is a no-op, so retried uploads don't
	// double-count.
	PairStore pairstore.Store
	RunSeq    int64
}

type Engine struct {
	cfg Config
	m   *metrics.Registry // optional
}

// New builds an engine. reg may be nil when no metrics endpoint is wanted.
func New(cfg Config, reg *metrics.Registry) *Engine {
	return &Engine{cfg: cfg, m: reg}
}

// Run executes the full pipeline over one batch of raw rows.
func (e *Engine) Run(rows []rowsource.Row, opts RunOptions) (*report.Report, error) {
	start := time.Now()
	rep, err := e.run(rows, opts)
	if e.m != nil {
		e.m.RunSeconds.Observe(time.Since(start).Seconds())
		e.m.RunsTotal.Inc()
		if err != nil {
			e.m.RunFailures.Inc()
		} else {
			e.m.RowsRead.Add(float64(rep.Diagnostics.RowsRead))
			e.m.RowsDropped.Add(float64(rep.Diagnostics.Dropped()))
			e.m.LastRunRows.Set(float64(rep.Diagnostics.RowsRead))
		}
	}
	return rep, err
}

func (e *Engine) run(rows []rowsource.Row, opts RunOptions) (*report.Report, error) {
	cfg := e.cfg
	res, err := normalize.Normalize(rows, cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	rep := &report.Report{
		GeneratedAt: report.NowUnix(),
		Diagnostics: res.Diag,
	}
	if start, end, days, ok := dateSpan(res.Orders); ok {
		rep.PeriodStart = start.Format("2006-01-02")
		rep.PeriodEnd = end.Format("2006-01-02")
		rep.PeriodDays = days
	}

	ratios := bucket.ComputeRatios(res.Items, res.Orders)
	rep.Sections = append(rep.Sections,
		report.PerformanceSection(ratios, cfg.Benchmarks, cfg.Tolerance))

	members, guests := bucket.MemberSplit(res.Orders)
	rep.Sections = append(rep.Sections, report.MembershipSection(members, guests))

	all := bucket.Histogram(res.Orders, cfg.BucketWidth, cfg.BucketCap)
	rep.Sections = append(rep.Sections,
		report.DistributionSection("Order value distribution (all orders)", all, cfg.BucketWidth, cfg.BucketCap))

	var upsellOrders []normalize.Order
	for _, o := range res.Orders {
		if o.HasUpsell {
			upsellOrders = append(upsellOrders, o)
		}
	}
	up := bucket.Histogram(upsellOrders, cfg.BucketWidth, cfg.BucketCap)
	rep.Sections = append(rep.Sections,
		report.DistributionSection("Order value distribution (upsell orders)", up, cfg.BucketWidth, cfg.BucketCap))

	dist := bucket.ItemCountDist(res.Orders)
	rep.Sections = append(rep.Sections,
		report.ItemsSection(dist, bucket.GroupOthers(dist, cfg.OthersMinShare)))

	if recent := recentOrders(res.Orders, cfg.RecentWindowDays); len(recent) > 0 {
		h := bucket.Histogram(recent, cfg.BucketWidth, cfg.BucketCap)
		sec := report.DistributionSection(
			fmt.Sprintf("Order value distribution (last %d days)", cfg.RecentWindowDays),
			h, cfg.BucketWidth, cfg.BucketCap)
		rdist := bucket.ItemCountDist(recent)
		items := report.ItemsSection(rdist, bucket.GroupOthers(rdist, cfg.OthersMinShare))
		sec.Tables = append(sec.Tables, items.Tables...)
		rep.Sections = append(rep.Sections, sec)
	}

	if opts.ComparePeriods {
		pres, err := period.Compare(res.Orders, cfg.SplitAt, cfg.BucketWidth)
		if err != nil {
			return nil, fmt.Errorf("compare periods: %w", err)
		}
		rep.Sections = append(rep.Sections, report.PeriodSection(pres))
	}

	rep.Sections = append(rep.Sections,
		report.ProductSection("Product performance (upsell lines)",
			bucket.ProductSummary(res.Items, bucket.UpsellLines)))

	groups := assoc.GroupProducts(res.Items)
	miner := assoc.NewMiner()
	upsellMiner := assoc.NewUpsellMiner()
	for _, g := range groups {
		miner.AddOrder(g.All)
		upsellMiner.AddOrder(g.General, g.Upsell)
	}

	if opts.RelatedProduct != "" {
		names := report.DisplayNames(res.Items)
		rep.Sections = append(rep.Sections, report.RelatedSection(
			opts.RelatedProduct,
			miner.Related(opts.RelatedProduct),
			upsellMiner.AttachedTo(opts.RelatedProduct),
			names))
	}

	if opts.PairStore != nil {
		if err := miner.Persist(opts.PairStore, opts.RunSeq); err != nil {
			return nil, fmt.Errorf("persist pairs: %w", err)
		}
		if e.m != nil {
			e.m.PairsIndexed.Add(float64(miner.PairCount()))
		}
	}

	return rep, nil
}

func dateSpan(orders []normalize.Order) (min, max time.Time, days int, ok bool) {
	for _, o := range orders {
		if !o.HasDate {
			continue
		}
		if !ok {
			min, max, ok = o.OrderDate, o.OrderDate, true
			continue
		}
		if o.OrderDate.Before(min) {
			min = o.OrderDate
		}
		if o.OrderDate.After(max) {
			max = o.OrderDate
		}
	}
	if !ok {
		return time.Time{}, time.Time{}, 0, false
	}
	days = int(max.Sub(min).Hours()/24) + 1
	return min, max, days, true
}

func recentOrders(orders []normalize.Order, days int) []normalize.Order {
	if days <= 0 {
		return nil
	}
	_, max, _, ok := dateSpan(orders)
	if !ok {
		return nil
	}
	cutoff := max.AddDate(0, 0, -(days - 1))
	var out []normalize.Order
	for _, o := range orders {
		if o.HasDate && !o.OrderDate.Before(cutoff) {
			out = append(out, o)
		}
	}
	return out
}
