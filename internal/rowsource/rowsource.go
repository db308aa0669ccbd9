package rowsource

import "context"

// Row is one raw tabular row keyed by column header. Values are kept as
// strings; interpretation (numeric coercion, date parsing) happens in the
// normalizer, not here.
type Row map[string]string

// Source abstracts where order rows come from. The engine never knows
// whether rows came from a CSV upload, a relational snapshot store, or a
// drained topic.
type Source interface {
	ReadAll(ctx context.Context) ([]Row, error)
}
