// Package standings tracks per-engine win/draw/loss/points records.
package standings

// Row is one engine's standing.
type Row struct {
	Name   string
	Games  int
	Wins   int
	Draws  int
	Losses int
	Points float64
}

// ScorePercent returns the row's score as a percentage of games played.
func (r Row) ScorePercent() float64 {
	if r.Games == 0 {
		return 0
	}
	return 100 * r.Points / float64(r.Games)
}

// Table holds standings for a fixed set of engines, indexed by engine id.
type Table struct {
	rows        []Row
	gamesPlayed int
}

// New creates a table with one zeroed row per engine name, in id order.
func New(engineNames []string) *Table {
	rows := make([]Row, len(engineNames))
	for i, name := range engineNames {
		rows[i] = Row{Name: name}
	}
	return &Table{rows: rows}
}

// RecordResult applies one game's result between whiteID and blackID.
func (t *Table) RecordResult(whiteID, blackID int, result string) {
	if whiteID < 0 || blackID < 0 || whiteID >= len(t.rows) || blackID >= len(t.rows) {
		return
	}
	white := &t.rows[whiteID]
	black := &t.rows[blackID]
	white.Games++
	black.Games++
	t.gamesPlayed++

	switch result {
	case "1-0":
		white.Wins++
		white.Points += 1.0
		black.Losses++
	case "0-1":
		black.Wins++
		black.Points += 1.0
		white.Losses++
	case "1/2-1/2":
		white.Draws++
		black.Draws++
		white.Points += 0.5
		black.Points += 0.5
	}
}

// RecordBye credits engineID with points (typically 1.0) for a bye round.
func (t *Table) RecordBye(engineID int, points float64) {
	if engineID < 0 || engineID >= len(t.rows) {
		return
	}
	row := &t.rows[engineID]
	row.Games++
	if points >= 1.0 {
		row.Wins++
	} else if points > 0 {
		row.Draws++
	}
	row.Points += points
	t.gamesPlayed++
}

// Snapshot returns a copy of all rows, in engine id order.
func (t *Table) Snapshot() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// LoadSnapshot replaces the table's rows and recomputes games played.
func (t *Table) LoadSnapshot(rows []Row) {
	t.rows = make([]Row, len(rows))
	copy(t.rows, rows)
	total := 0
	for _, r := range t.rows {
		total += r.Games
	}
	t.gamesPlayed = total / 2
}

// GamesPlayed returns the total number of games recorded (byes counted once).
func (t *Table) GamesPlayed() int { return t.gamesPlayed }

// Points returns engineID's current points, or 0 for an out-of-range id.
func (t *Table) Points(engineID int) float64 {
	if engineID < 0 || engineID >= len(t.rows) {
		return 0
	}
	return t.rows[engineID].Points
}
