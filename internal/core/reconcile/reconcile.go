// Package reconcile holds the pure attendance reconciliation functions:
// grouping punches into daily pairs, finding open pairs and deciding whether
// a new entrada is allowed. Everything here is deterministic and side-effect
// free; "today" is always an explicit parameter so the functions stay
// testable and never read the ambient clock.
package reconcile

import (
	"sort"
	"time"

	"ponto.service/internal/core/model"
)

// PairKey identifies one employee's pair on one business day.
type PairKey struct {
	EmployeeID string
	Day        model.BusinessDay
}

// GroupByEmployeeAndDay folds a punch log into daily pairs. Input order does
// not matter. When the same (employee, day) has several punches of one kind,
// the earliest entrada and the latest saida win; the extras stay in the raw
// log but are client retries, not new shifts, so they never form pairs.
func GroupByEmployeeAndDay(punches []model.PunchRecord, loc *time.Location) map[PairKey]model.DailyPunchPair {
	pairs := make(map[PairKey]model.DailyPunchPair)

	for i := range punches {
		p := punches[i]
		key := PairKey{EmployeeID: p.EmployeeID, Day: model.BusinessDayOf(p.Timestamp, loc)}
		pair, ok := pairs[key]
		if !ok {
			pair = model.DailyPunchPair{EmployeeID: p.EmployeeID, Day: key.Day}
		}

		switch p.Kind {
		case model.KindEntrada:
			if pair.Entrada == nil || p.Timestamp.Before(pair.Entrada.Timestamp) {
				pair.Entrada = &punches[i]
			}
		case model.KindSaida:
			if pair.Saida == nil || p.Timestamp.After(pair.Saida.Timestamp) {
				pair.Saida = &punches[i]
			}
		}

		pairs[key] = pair
	}

	return pairs
}

// PairsForEmployee groups a single employee's punches and returns the pairs
// ordered by business day.
func PairsForEmployee(punches []model.PunchRecord, loc *time.Location) []model.DailyPunchPair {
	grouped := GroupByEmployeeAndDay(punches, loc)

	out := make([]model.DailyPunchPair, 0, len(grouped))
	for _, pair := range grouped {
		out = append(out, pair)
	}
	sortPairs(out)
	return out
}

// OpenPairs returns the open pairs among pairs, ordered by business day.
func OpenPairs(pairs []model.DailyPunchPair) []model.DailyPunchPair {
	var open []model.DailyPunchPair
	for _, p := range pairs {
		if p.Open() {
			open = append(open, p)
		}
	}
	sortPairs(open)
	return open
}

// FindPendingExit returns the employee's earliest open pair strictly before
// today, or nil when no prior-day pair is open. An open pair on today itself
// never blocks: the employee can still punch its saida.
func FindPendingExit(pairs []model.DailyPunchPair, today model.BusinessDay) *model.PendingExit {
	for _, p := range OpenPairs(pairs) {
		if p.Day.Before(today) {
			return &model.PendingExit{EmployeeID: p.EmployeeID, Day: p.Day, Entrada: p.Entrada}
		}
	}
	return nil
}

// CanRegisterEntrada is the entrada gate: a new clock-in is allowed unless a
// prior business day still has an open pair. A second entrada today after a
// closed pair is fine; the engine does not forbid multiple shifts per day.
func CanRegisterEntrada(pairs []model.DailyPunchPair, today model.BusinessDay) bool {
	return FindPendingExit(pairs, today) == nil
}

func sortPairs(pairs []model.DailyPunchPair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Day != pairs[j].Day {
			return pairs[i].Day.Before(pairs[j].Day)
		}
		return pairs[i].EmployeeID < pairs[j].EmployeeID
	})
}
