package reconcile

import "sort"

// Plan holds the three disjoint action sets produced by Diff.
type Plan[R any, T any] struct {
	Creates  []Match[R, T]
	Updates  []Match[R, T]
	Archives []Orphan[T]

	summary PlanSummary
}

// Diff matches source records against the target snapshot by key.
//
// Records whose key is empty are dropped. When several records share a key the
// last one wins but keeps the position of the first, so the output order follows
// the scrape. Creates and updates are in scrape order, archives sorted by key.
// Diff performs no I/O and does not modify its inputs.
func Diff[R any, T any](scraped []R, existing map[string]T, key func(R) string) *Plan[R, T] {
	plan := &Plan[R, T]{}
	plan.summary.Scraped = len(scraped)
	plan.summary.Existing = len(existing)

	order := make([]string, 0, len(scraped))
	latest := make(map[string]R, len(scraped))

	for _, record := range scraped {
		k := key(record)
		if k == "" {
			plan.summary.Dropped++
			continue
		}
		if _, seen := latest[k]; seen {
			plan.summary.Duplicates++
		} else {
			order = append(order, k)
		}
		latest[k] = record
	}
	plan.summary.Unique = len(order)

	for _, k := range order {
		record := latest[k]
		if current, ok := existing[k]; ok {
			plan.Updates = append(plan.Updates, Match[R, T]{Key: k, Record: record, Existing: current})
			continue
		}
		plan.Creates = append(plan.Creates, Match[R, T]{Key: k, Record: record})
	}

	for k, current := range existing {
		if _, ok := latest[k]; ok {
			continue
		}
		plan.Archives = append(plan.Archives, Orphan[T]{Key: k, Existing: current})
	}
	sort.Slice(plan.Archives, func(i, j int) bool {
		return plan.Archives[i].Key < plan.Archives[j].Key
	})

	return plan
}

// Promote turns creates whose key is present in index into updates against the
// indexed entity. It is used when the target snapshot was narrower than the
// whole target, so an entity filed elsewhere is updated instead of duplicated.
// It returns the number of promoted creates.
func (p *Plan[R, T]) Promote(index map[string]T) int {
	if len(index) == 0 || len(p.Creates) == 0 {
		return 0
	}

	promoted := 0
	creates := p.Creates[:0]
	for _, m := range p.Creates {
		if current, ok := index[m.Key]; ok {
			m.Existing = current
			p.Updates = append(p.Updates, m)
			promoted++
			continue
		}
		creates = append(creates, m)
	}
	p.Creates = creates

	return promoted
}

// DropArchives removes all archive actions and returns how many were removed.
func (p *Plan[R, T]) DropArchives() int {
	n := len(p.Archives)
	p.Archives = nil
	return n
}

// Summary returns aggregate counts for the plan in its current state.
func (p *Plan[R, T]) Summary() PlanSummary {
	s := p.summary
	s.Creates = len(p.Creates)
	s.Updates = len(p.Updates)
	s.Archives = len(p.Archives)
	return s
}

// Actions flattens the plan into creates, then updates, then archives.
func (p *Plan[R, T]) Actions() []Action[R, T] {
	actions := make([]Action[R, T], 0, len(p.Creates)+len(p.Updates)+len(p.Archives))
	for _, m := range p.Creates {
		actions = append(actions, Action[R, T]{Type: ActionCreate, Key: m.Key, Record: m.Record})
	}
	for _, m := range p.Updates {
		actions = append(actions, Action[R, T]{Type: ActionUpdate, Key: m.Key, Record: m.Record, Existing: m.Existing})
	}
	for _, o := range p.Archives {
		actions = append(actions, Action[R, T]{Type: ActionArchive, Key: o.Key, Existing: o.Existing})
	}
	return actions
}
