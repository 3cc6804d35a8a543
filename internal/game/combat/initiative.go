package combat

// ActingOrder returns a and b in the order they act: higher Speed first, ties
// going to the lower ID.
//
// Postcondition: deterministic for identical inputs.
func ActingOrder(a, b *Combatant) (first, second *Combatant) {
	switch {
	case a.Stats.Speed > b.Stats.Speed:
		return a, b
	case b.Stats.Speed > a.Stats.Speed:
		return b, a
	case b.ID < a.ID:
		return b, a
	default:
		return a, b
	}
}
