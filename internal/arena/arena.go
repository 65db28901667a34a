// Package arena implements a paged, densely-indexed store keyed by a
// monotonically allocated id. It generalizes the page/base bookkeeping
// used for addressable integer memory in a bytecode VM to any value type,
// so that it can back an id-keyed collection of structs instead of words.
package arena

// DefaultPageSize is used when a zero-value Arena first allocates a page.
const DefaultPageSize = 255

// pagedCore tracks the non-contiguous base/size runs backing an Arena,
// allocating new pages on demand and locating the page holding a given id.
type pagedCore struct {
	PageSize uint
	bases    []uint
	sizes    []uint
}

func (c *pagedCore) findPage(id uint) int {
	i, j := 0, len(c.bases)
	for i < j {
		h := int(uint(i+j)>>1) + 1
		if h < len(c.bases) && c.bases[h] <= id {
			i = h
		} else {
			j = h - 1
		}
	}
	return i
}

func (c *pagedCore) allocPage(pageID int, id uint) (base, size uint, isNew bool) {
	if pageID == len(c.bases) {
		base = id / c.PageSize * c.PageSize
		size = c.PageSize
		if i := len(c.bases) - 1; i >= 0 {
			lastEnd := c.bases[i] + c.sizes[i]
			if base < lastEnd {
				size -= lastEnd - base
				base = lastEnd
			}
		}
		c.bases = append(c.bases, base)
		c.sizes = append(c.sizes, size)
		return base, size, true
	}

	base = c.bases[pageID]
	if id < base {
		size = c.PageSize
		nextBase := base
		base = id / c.PageSize * c.PageSize
		if gapSize := nextBase - base; size > gapSize {
			size = gapSize
		}
		c.bases = append(c.bases, 0)
		c.sizes = append(c.sizes, 0)
		copy(c.bases[pageID+1:], c.bases[pageID:])
		copy(c.sizes[pageID+1:], c.sizes[pageID:])
		c.bases[pageID] = base
		c.sizes[pageID] = size
		return base, size, true
	}

	return base, c.sizes[pageID], false
}

// Arena is a paged, id-keyed store of values of type T. The zero value is
// ready to use. Ids are allocated by the caller (typically a monotonic
// counter); Arena only provides dense storage and lookup for them.
type Arena[T any] struct {
	core  pagedCore
	pages [][]T
}

// Len reports one past the highest id ever stored, or 0 if nothing has
// been stored yet.
func (a *Arena[T]) Len() uint {
	if i := len(a.core.bases) - 1; i >= 0 {
		return a.core.bases[i] + uint(len(a.pages[i]))
	}
	return 0
}

// Get returns the value stored at id, or the zero value of T if nothing
// was ever stored there.
func (a *Arena[T]) Get(id uint) (T, bool) {
	var zero T
	if len(a.pages) == 0 {
		return zero, false
	}
	pageID := a.core.findPage(id)
	base := a.core.bases[pageID]
	page := a.pages[pageID]
	if i := int(id) - int(base); 0 <= i && i < len(page) {
		return page[i], true
	}
	return zero, false
}

// Set stores value at id, allocating pages as needed.
func (a *Arena[T]) Set(id uint, value T) {
	if a.core.PageSize == 0 {
		a.core.PageSize = DefaultPageSize
	}
	pageID := a.core.findPage(id)
	base, size, isNew := a.core.allocPage(pageID, id)
	if isNew {
		page := make([]T, size)
		if pageID == len(a.pages) {
			a.pages = append(a.pages, page)
		} else {
			a.pages = append(a.pages, nil)
			copy(a.pages[pageID+1:], a.pages[pageID:])
			a.pages[pageID] = page
		}
	}
	page := a.pages[pageID]
	page[id-base] = value
}

// Each calls f for every id in [0, Len()) that has a stored value, in
// ascending id order. Unallocated gaps are skipped.
func (a *Arena[T]) Each(f func(id uint, value T)) {
	for pageID, base := range a.core.bases {
		page := a.pages[pageID]
		for i, v := range page {
			f(base+uint(i), v)
		}
	}
}
