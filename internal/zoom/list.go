package zoom

import "github.com/google/uuid"

// List is the editable set of zoom regions of a project. Regions may overlap
// in time; at render time the one added last wins. Every edit re-clamps the
// region it touches and reports whether anything changed.
type List struct {
	bounds  Bounds
	regions []Region
}

func NewList(b Bounds) *List {
	return &List{bounds: b}
}

func (l *List) Bounds() Bounds {
	return l.bounds
}

// SetBounds changes the source bounds and re-clamps every region.
func (l *List) SetBounds(b Bounds) {
	l.bounds = b
	for i := range l.regions {
		l.regions[i] = b.Clamp(l.regions[i])
	}
}

// Regions returns a copy of the regions in creation order.
func (l *List) Regions() []Region {
	return append([]Region(nil), l.regions...)
}

func (l *List) Len() int {
	return len(l.regions)
}

func (l *List) Get(id string) (Region, bool) {
	if i := l.indexOf(id); i >= 0 {
		return l.regions[i], true
	}
	return Region{}, false
}

// Replace swaps the whole list, as on load or undo.
func (l *List) Replace(regions []Region) {
	l.regions = make([]Region, 0, len(regions))
	for _, r := range regions {
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		l.regions = append(l.regions, l.bounds.Clamp(r))
	}
}

// Add appends a region, assigning an id if it has none.
func (l *List) Add(r Region) Region {
	if r.ID == "" || l.indexOf(r.ID) >= 0 {
		r.ID = uuid.New().String()
	}
	r = l.bounds.Clamp(r)
	l.regions = append(l.regions, r)
	return r
}

// Update overwrites the region with the same id.
func (l *List) Update(r Region) bool {
	return l.edit(r.ID, func(cur *Region) { *cur = r })
}

// Move shifts a region in time by delta, keeping its duration.
func (l *List) Move(id string, delta float64) bool {
	return l.edit(id, func(r *Region) {
		d := r.Duration()
		start := r.StartTime + delta
		if start < 0 {
			start = 0
		}
		if l.bounds.Duration > 0 && start+d > l.bounds.Duration {
			start = l.bounds.Duration - d
		}
		r.StartTime, r.EndTime = start, start+d
	})
}

// Retime sets new start and end times.
func (l *List) Retime(id string, start, end float64) bool {
	return l.edit(id, func(r *Region) {
		r.StartTime, r.EndTime = start, end
	})
}

// SetLevel changes the zoom level; the focus is re-clamped for the new crop.
func (l *List) SetLevel(id string, level float64) bool {
	return l.edit(id, func(r *Region) { r.ZoomLevel = level })
}

func (l *List) SetFocus(id string, x, y float64) bool {
	return l.edit(id, func(r *Region) { r.FocusX, r.FocusY = x, y })
}

func (l *List) Toggle(id string) bool {
	return l.edit(id, func(r *Region) { r.IsEnabled = !r.IsEnabled })
}

// Duplicate copies a region and places the copy right after the original.
func (l *List) Duplicate(id string) (Region, bool) {
	i := l.indexOf(id)
	if i < 0 {
		return Region{}, false
	}
	cp := l.regions[i]
	cp.ID = uuid.New().String()
	d := cp.Duration()
	cp.StartTime = cp.EndTime
	cp.EndTime = cp.StartTime + d
	if l.bounds.Duration > 0 && cp.EndTime > l.bounds.Duration {
		cp.EndTime = l.bounds.Duration
		cp.StartTime = cp.EndTime - d
	}
	cp = l.bounds.Clamp(cp)
	l.regions = append(l.regions, cp)
	return cp, true
}

func (l *List) Remove(id string) bool {
	i := l.indexOf(id)
	if i < 0 {
		return false
	}
	l.regions = append(l.regions[:i:i], l.regions[i+1:]...)
	return true
}

// ActiveAt returns the enabled region covering t, preferring the most
// recently added one when several overlap.
func (l *List) ActiveAt(t float64) (Region, bool) {
	for i := len(l.regions) - 1; i >= 0; i-- {
		if r := l.regions[i]; r.IsEnabled && r.Contains(t) {
			return r, true
		}
	}
	return Region{}, false
}

func (l *List) edit(id string, fn func(*Region)) bool {
	i := l.indexOf(id)
	if i < 0 {
		return false
	}
	before := l.regions[i]
	next := before
	fn(&next)
	next.ID = before.ID
	next = l.bounds.Clamp(next)
	if next == before {
		return false
	}
	l.regions[i] = next
	return true
}

func (l *List) indexOf(id string) int {
	for i, r := range l.regions {
		if r.ID == id {
			return i
		}
	}
	return -1
}
