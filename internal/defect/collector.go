package defect

// Collector accumulates the records of one theme in insertion order.
//
// A per-kind limit bounds memory on badly broken inputs: once a kind reached
// the limit, further records of that kind are counted but not stored.
//
// A Collector is not safe for concurrent use.
type Collector struct {
	theme   string
	limit   int
	records []Record
	counts  [kindCount]int
}

// NewCollector creates a collector for the named theme. A limit of zero or
// less stores every record.
func NewCollector(theme string, limit int) *Collector {
	return &Collector{theme: theme, limit: limit}
}

// Theme returns the theme name the collector was created for.
func (c *Collector) Theme() string { return c.theme }

// Add records a defect at (x, y).
func (c *Collector) Add(kind Kind, x, y float64, params ...Param) {
	if !kind.Valid() {
		return
	}
	c.counts[kind]++
	if c.limit > 0 && c.counts[kind] > c.limit {
		return
	}
	var ps []Param
	if len(params) > 0 {
		ps = make([]Param, len(params))
		copy(ps, params)
	}
	c.records = append(c.records, Record{Kind: kind, X: x, Y: y, Params: ps})
}

// Records returns the stored records. The slice must not be modified.
func (c *Collector) Records() []Record {
	return c.records
}

// Len returns the number of stored records.
func (c *Collector) Len() int {
	return len(c.records)
}

// Count returns how many records of kind were added, including ones dropped
// by the limit.
func (c *Collector) Count(kind Kind) int {
	if !kind.Valid() {
		return 0
	}
	return c.counts[kind]
}

// Total returns how many records were added, including dropped ones.
func (c *Collector) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Dropped returns how many records were counted but not stored.
func (c *Collector) Dropped() int {
	return c.Total() - len(c.records)
}

// Counts returns the per-kind totals for every kind that occurred.
func (c *Collector) Counts() map[Kind]int {
	m := make(map[Kind]int)
	for k := PointDetached; k < kindCount; k++ {
		if c.counts[k] > 0 {
			m[k] = c.counts[k]
		}
	}
	return m
}

// Drain returns the stored records and resets the collector.
func (c *Collector) Drain() []Record {
	records := c.records
	c.records = nil
	c.counts = [kindCount]int{}
	return records
}
