package geom

import "sort"

// Gatherer is a moving collector described by its motion segment for one
// tick plus a collision half-width.
type Gatherer struct {
	Start Point2D
	End   Point2D
	Width float64
}

// Item is a static collision target (a dropped object or a deposit point).
type Item struct {
	Pos   Point2D
	Width float64
}

// GatherEvent records one gatherer touching one item. Time is the parametric
// position along the gatherer's segment, in [0,1].
type GatherEvent struct {
	Gatherer   int
	Item       int
	SqDistance float64
	Time       float64
}

// collectResult is the projection of a point onto a motion segment.
type collectResult struct {
	sqDistance float64
	ratio      float64 // position of the projection along the segment
}

func (r collectResult) isCollected(collectRadius float64) bool {
	return r.sqDistance <= collectRadius*collectRadius && r.ratio >= 0 && r.ratio <= 1
}

// tryCollectPoint projects c onto the segment a→b. a and b must differ.
func tryCollectPoint(a, b, c Point2D) collectResult {
	ux := c.X - a.X
	uy := c.Y - a.Y
	vx := b.X - a.X
	vy := b.Y - a.Y
	uDotV := ux*vx + uy*vy
	uLen2 := ux*ux + uy*uy
	vLen2 := vx*vx + vy*vy

	ratio := uDotV / vLen2
	sqDistance := uLen2 - uDotV*uDotV/vLen2
	return collectResult{sqDistance: sqDistance, ratio: ratio}
}

// FindGatherEvents returns every contact between a moving gatherer and a
// static item, ordered by contact time ascending. Ties are broken by item
// index, then gatherer index, so the result does not depend on storage
// order. Gatherers with no displacement produce no events.
func FindGatherEvents(gatherers []Gatherer, items []Item) []GatherEvent {
	var events []GatherEvent
	for g, gatherer := range gatherers {
		if gatherer.Start == gatherer.End {
			continue
		}
		for i, item := range items {
			res := tryCollectPoint(gatherer.Start, gatherer.End, item.Pos)
			if !res.isCollected(gatherer.Width + item.Width) {
				continue
			}
			events = append(events, GatherEvent{
				Gatherer:   g,
				Item:       i,
				SqDistance: res.sqDistance,
				Time:       res.ratio,
			})
		}
	}
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		if a.Item != b.Item {
			return a.Item < b.Item
		}
		return a.Gatherer < b.Gatherer
	})
	return events
}
