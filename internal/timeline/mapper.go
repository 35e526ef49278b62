package timeline

import "math"

// mapEpsilon absorbs floating error when walking output time across segments.
const mapEpsilon = 0.001

// Mapper converts positions between the source and output timelines. It is
// a pure function of the segment state it was built from.
type Mapper struct {
	table    RemapTable
	duration float64
	total    float64
}

func NewMapper(table RemapTable, sourceDuration float64) *Mapper {
	return &Mapper{
		table:    table,
		duration: sourceDuration,
		total:    table.TotalOutputDuration(),
	}
}

func (m *Mapper) TotalOutputDuration() float64 {
	return m.total
}

func (m *Mapper) Table() RemapTable {
	return m.table
}

// OutputFractionToSource maps a fraction of the output timeline to a fraction
// of the source clip.
func (m *Mapper) OutputFractionToSource(f float64) float64 {
	if m.duration <= 0 {
		return 0
	}
	outputTime := f * m.total
	acc := 0.0
	for _, e := range m.table {
		d := e.OutputDuration()
		if outputTime <= acc+d+mapEpsilon {
			within := (outputTime - acc) * e.Speed
			return (e.SourceStart + within) / m.duration
		}
		acc += d
	}
	return 1.0
}

// SourceFractionToOutput maps a fraction of the source clip to a fraction of
// the output timeline. Positions inside removed ranges snap to the nearest
// enabled boundary; on an exact tie the first boundary scanned wins.
func (m *Mapper) SourceFractionToOutput(f float64) float64 {
	if m.total <= 0 {
		return 0
	}
	sourceTime := f * m.duration

	for _, e := range m.table {
		if sourceTime >= e.SourceStart && sourceTime <= e.SourceEnd {
			return e.ToOutput(sourceTime) / m.total
		}
	}

	best := math.Inf(1)
	result := 0.0
	for _, e := range m.table {
		if d := math.Abs(sourceTime - e.SourceStart); d < best {
			best = d
			result = e.OutputOffset / m.total
		}
		if d := math.Abs(sourceTime - e.SourceEnd); d < best {
			best = d
			result = e.OutputEnd() / m.total
		}
	}
	return result
}

// OutputTimeToSource is OutputFractionToSource in seconds.
func (m *Mapper) OutputTimeToSource(t float64) float64 {
	if m.total <= 0 {
		return 0
	}
	return m.OutputFractionToSource(t/m.total) * m.duration
}

// SourceTimeToOutput is SourceFractionToOutput in seconds.
func (m *Mapper) SourceTimeToOutput(t float64) float64 {
	if m.duration <= 0 {
		return 0
	}
	return m.SourceFractionToOutput(t/m.duration) * m.total
}
