package engine

import "oiobot/internal/models"

type State string

const (
	StateIdle           State = "IDLE"
	StatePendingEntry   State = "PENDING_ENTRY"
	StateFirstLegFilled State = "FIRST_LEG_FILLED"
	StateChasePending   State = "CHASE_PENDING"
	StateBothLegsFilled State = "BOTH_LEGS_FILLED"
)

// Cycle — единственный активный торговый цикл процесса. Все поля мутирует
// только машина состояний, в одном потоке диспетчеризации.
type Cycle struct {
	ID     int64
	Active bool

	EntryHigh float64
	EntryLow  float64
	Midpoint  float64

	BuyRef  string
	SellRef string

	FirstFilledRef       string
	FirstFilledDirection models.Direction

	ChaseRef string

	TakeProfitsAdjusted bool
}

// State выводится из полей, отдельного поля состояния нет.
func (c *Cycle) State() State {
	switch {
	case !c.Active:
		return StateIdle
	case c.FirstFilledRef == "":
		return StatePendingEntry
	case c.ChaseRef == "":
		return StateFirstLegFilled
	case !c.TakeProfitsAdjusted:
		return StateChasePending
	default:
		return StateBothLegsFilled
	}
}

// trackedRefs — тикеты, от которых зависит завершение цикла.
func (c *Cycle) trackedRefs() []string {
	var refs []string
	seen := map[string]bool{}
	for _, ref := range []string{c.BuyRef, c.SellRef, c.FirstFilledRef, c.ChaseRef} {
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
	}
	return refs
}
