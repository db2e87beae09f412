package sportwinner

import (
	"context"

	"github.com/fiffu/ligawatch/lib/models"
)

// GetSpielerInfo row layout. Name cells bracket the per-side blocks; the
// running totals sit in the total cells of a row with no player names.
const (
	infoLeftName   = 0
	infoLeftTotal  = 5
	infoRightTotal = 10
	infoRightName  = 15
	infoWidth      = 16
)

// RowKind tags a raw GetSpielerInfo row before any field extraction.
type RowKind int

const (
	Unrecognized RowKind = iota
	PlayerRow
	TotalsRow
	NoteRow
)

// ClassifyInfoRow decides what a raw row represents. A totals row has both
// name cells empty and both total cells populated with numbers; a player row
// has at least one name; anything else with content is a note.
func ClassifyInfoRow(row Row) RowKind {
	if len(row) < infoWidth {
		return Unrecognized
	}
	if row.Cell(infoLeftName) != "" || row.Cell(infoRightName) != "" {
		return PlayerRow
	}
	_, leftOK := ParseCellNumber(row.Cell(infoLeftTotal))
	_, rightOK := ParseCellNumber(row.Cell(infoRightTotal))
	if leftOK && rightOK {
		return TotalsRow
	}
	for i := range row {
		if row.Cell(i) != "" {
			return NoteRow
		}
	}
	return Unrecognized
}

// LiveTotals polls the running totals of one game. ok is false when no
// totals row exists yet, which means "no observation this cycle" rather
// than an empty score.
func (c *Client) LiveTotals(ctx context.Context, season, gameID string) (models.ScoreState, bool, error) {
	rows, err := c.Command(ctx, "GetSpielerInfo", map[string]string{
		"id_saison": season,
		"id_spiel":  gameID,
		"wertung":   "1",
	})
	if err != nil {
		return models.ScoreState{}, false, err
	}
	return ExtractTotals(rows)
}

// ExtractTotals scans raw rows for the first totals row and parses both
// sides.
func ExtractTotals(rows []Row) (models.ScoreState, bool, error) {
	for _, row := range rows {
		if ClassifyInfoRow(row) != TotalsRow {
			continue
		}
		left, _ := ParseCellNumber(row.Cell(infoLeftTotal))
		right, _ := ParseCellNumber(row.Cell(infoRightTotal))
		return models.ScoreState{Left: int(left), Right: int(right)}, true, nil
	}
	return models.ScoreState{}, false, nil
}
