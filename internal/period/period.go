package period

import (
	"fmt"
	"math"
	"time"

	"uplens/internal/normalize"
)

// EmptyPeriodError is fatal for the comparator: a sub-period with zero
// orders would turn every proportion into 0/0, so the run is aborted
// instead of reporting misleading ratios.
type EmptyPeriodError struct {
	Which string // "prior" or "current"
	Start time.Time
	End   time.Time
}

func (e *EmptyPeriodError) Error() string {
	return fmt.Sprintf("period: %s period %s..%s contains no orders",
		e.Which, e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
}

// Thresholds are derived from the prior period's baseline.
type Thresholds struct {
	Items  int64 `json:"items"`
	Amount int64 `json:"amount"`
}

// Proportions are the fraction of a period's orders at or above each
// threshold.
type Proportions struct {
	Items  float64 `json:"items"`
	Amount float64 `json:"amount"`
}

// Result of a before/after comparison.
type Result struct {
	PriorStart   time.Time `json:"priorStart"`
	PriorEnd     time.Time `json:"priorEnd"`
	CurrentStart time.Time `json:"currentStart"`
	CurrentEnd   time.Time `json:"currentEnd"`

	Thresholds Thresholds  `json:"thresholds"`
	Prior      Proportions `json:"prior"`
	Current    Proportions `json:"current"`

	// Relative deltas: (current - prior) / prior. Not OK when the prior
	// proportion is 0 (reported as N/A rather than dividing by zero).
	ItemsDelta    float64 `json:"itemsDelta"`
	ItemsDeltaOK  bool    `json:"itemsDeltaOk"`
	AmountDelta   float64 `json:"amountDelta"`
	AmountDeltaOK bool    `json:"amountDeltaOk"`
}

// Compare splits dated orders into prior/current halves and measures how
// the share of "large" orders moved. splitAt picks an explicit boundary
// day (last day of the prior period); the zero time means auto:
// floor(total_days/2) days from the earliest order date. bucketWidth
// rounds the derived amount threshold up to a band boundary.
func Compare(orders []normalize.Order, splitAt time.Time, bucketWidth int64) (Result, error) {
	var dated []normalize.Order
	for _, o := range orders {
		if o.HasDate {
			dated = append(dated, o)
		}
	}
	if len(dated) == 0 {
		return Result{}, &EmptyPeriodError{Which: "prior"}
	}

	minD, maxD := day(dated[0].OrderDate), day(dated[0].OrderDate)
	for _, o := range dated[1:] {
		d := day(o.OrderDate)
		if d.Before(minD) {
			minD = d
		}
		if d.After(maxD) {
			maxD = d
		}
	}

	var priorEnd time.Time
	if splitAt.IsZero() {
		totalDays := int(maxD.Sub(minD).Hours()/24) + 1
		halfDays := totalDays / 2
		priorEnd = minD.AddDate(0, 0, halfDays-1)
	} else {
		priorEnd = day(splitAt)
	}
	currStart := priorEnd.AddDate(0, 0, 1)

	var prior, curr []normalize.Order
	for _, o := range dated {
		if !day(o.OrderDate).After(priorEnd) {
			prior = append(prior, o)
		} else {
			curr = append(curr, o)
		}
	}
	if len(prior) == 0 {
		return Result{}, &EmptyPeriodError{Which: "prior", Start: minD, End: priorEnd}
	}
	if len(curr) == 0 {
		return Result{}, &EmptyPeriodError{Which: "current", Start: currStart, End: maxD}
	}

	res := Result{
		PriorStart:   minD,
		PriorEnd:     priorEnd,
		CurrentStart: currStart,
		CurrentEnd:   maxD,
		Thresholds:   deriveThresholds(prior, bucketWidth),
	}
	res.Prior = proportions(prior, res.Thresholds)
	res.Current = proportions(curr, res.Thresholds)

	if res.Prior.Items > 0 {
		res.ItemsDelta = (res.Current.Items - res.Prior.Items) / res.Prior.Items
		res.ItemsDeltaOK = true
	}
	if res.Prior.Amount > 0 {
		res.AmountDelta = (res.Current.Amount - res.Prior.Amount) / res.Prior.Amount
		res.AmountDeltaOK = true
	}
	return res, nil
}

// deriveThresholds turns the prior period's baseline into thresholds. The
// item threshold is the prior mean rounded up, floored at 2 so a low
// baseline never produces a trivial "more than most orders" band. The
// amount threshold is the prior mean rounded up to the next band boundary.
func deriveThresholds(prior []normalize.Order, bucketWidth int64) Thresholds {
	var items int
	var amount float64
	for _, o := range prior {
		items += o.ItemCount
		amount += o.TotalAmount
	}
	meanItems := float64(items) / float64(len(prior))
	meanAmount := amount / float64(len(prior))

	var t Thresholds
	if meanItems <= 2 {
		t.Items = 2
	} else {
		t.Items = int64(math.Ceil(meanItems))
	}
	if bucketWidth <= 0 {
		bucketWidth = 10000
	}
	t.Amount = int64(math.Ceil(meanAmount/float64(bucketWidth))) * bucketWidth
	return t
}

func proportions(orders []normalize.Order, t Thresholds) Proportions {
	var p Proportions
	for _, o := range orders {
		if int64(o.ItemCount) >= t.Items {
			p.Items++
		}
		if o.TotalAmount >= float64(t.Amount) {
			p.Amount++
		}
	}
	n := float64(len(orders))
	p.Items /= n
	p.Amount /= n
	return p
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
