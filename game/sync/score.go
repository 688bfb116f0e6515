package sync

// ScoreLedger replicates every player's score total. Totals only ever
// come from two places: a local award on the shooter's own client, and a
// scoreUpdate broadcast applied last-writer-wins.
type ScoreLedger struct {
	totals map[string]int
}

func NewScoreLedger() *ScoreLedger {
	return &ScoreLedger{totals: make(map[string]int)}
}

// Award adds points locally and returns the new total. Only the client
// that is the designated authority for the scoring event may call this;
// everyone else waits for the broadcast total.
func (l *ScoreLedger) Award(playerID string, points int) int {
	l.totals[playerID] += points
	return l.totals[playerID]
}

// Apply overwrites a player's total with a replicated value.
func (l *ScoreLedger) Apply(playerID string, total int) {
	l.totals[playerID] = total
}

// Total returns one player's current total.
func (l *ScoreLedger) Total(playerID string) int {
	return l.totals[playerID]
}

// Totals returns a copy of the full ledger.
func (l *ScoreLedger) Totals() map[string]int {
	out := make(map[string]int, len(l.totals))
	for id, total := range l.totals {
		out[id] = total
	}
	return out
}
