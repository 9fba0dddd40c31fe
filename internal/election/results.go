package election

import (
	"strconv"
	"strings"

	"github.com/alvmarrod/election-weaver/internal/htmltable"
)

// Layout describes the assumed structure of a municipality results page.
// The first table is the turnout block; every later table lists parties.
type Layout struct {
	MinTables      int      // fewer tables means the page is not a results page
	VotersCell     int      // td index of eligible voters in the first table
	EnvelopesCell  int      // td index of issued envelopes in the first table
	ValidVotesCell int      // td index of valid votes in the first table
	StatsHeaders   []string // labels the first table's th cells must contain, if it has any
	HeaderRows     int      // rows skipped at the top of each party table
	PartyNameCell  int
	PartyVotesCell int
}

// DefaultLayout matches the results pages of the 2017 Chamber of Deputies election
func DefaultLayout() Layout {
	return Layout{
		MinTables:      3,
		VotersCell:     3,
		EnvelopesCell:  4,
		ValidVotesCell: 7,
		StatsHeaders:   []string{"Voliči", "Vydané obálky", "Platné hlasy"},
		HeaderRows:     2,
		PartyNameCell:  1,
		PartyVotesCell: 2,
	}
}

// partyMinCells is the minimum td count of a usable party row
func (l Layout) partyMinCells() int {
	return max(l.PartyNameCell, l.PartyVotesCell) + 1
}

// ParseBasicStats reads the turnout block from the first table.
// Returns false when the page does not look like a results page or a value is unusable.
func ParseBasicStats(doc *htmltable.Document, layout Layout) (MunicipalityStats, bool) {
	if len(doc.Tables) < layout.MinTables || len(doc.Tables) == 0 {
		return MunicipalityStats{}, false
	}

	first := doc.Tables[0]
	if !hasStatsHeaders(first.Headers, layout.StatsHeaders) {
		return MunicipalityStats{}, false
	}

	voters, ok := cellNumber(first.Cells, layout.VotersCell)
	if !ok {
		return MunicipalityStats{}, false
	}
	envelopes, ok := cellNumber(first.Cells, layout.EnvelopesCell)
	if !ok {
		return MunicipalityStats{}, false
	}
	valid, ok := cellNumber(first.Cells, layout.ValidVotesCell)
	if !ok {
		return MunicipalityStats{}, false
	}

	return MunicipalityStats{
		EligibleVoters:  voters,
		EnvelopesIssued: envelopes,
		ValidVotes:      valid,
	}, true
}

// ParsePartyVotes collects party counts from every table after the first.
// A row whose count does not parse is skipped on its own.
func ParsePartyVotes(doc *htmltable.Document, layout Layout) *PartyVotes {
	votes := NewPartyVotes()
	if len(doc.Tables) < 2 {
		return votes
	}

	for _, table := range doc.Tables[1:] {
		if len(table.Rows) <= layout.HeaderRows {
			continue
		}
		for _, row := range table.Rows[layout.HeaderRows:] {
			if len(row.Cells) < layout.partyMinCells() {
				continue
			}

			count, ok := ParseCount(row.Cells[layout.PartyVotesCell].Text)
			if !ok {
				continue
			}
			votes.Set(row.Cells[layout.PartyNameCell].Text, count)
		}
	}

	return votes
}

// ParseCount converts a cell such as "1 234" (plain or non-breaking space) to a non-negative integer
func ParseCount(text string) (int, bool) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "\u00a0", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	n, err := strconv.Atoi(cleaned)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func cellNumber(cells []htmltable.Cell, i int) (int, bool) {
	if i < 0 || i >= len(cells) {
		return 0, false
	}
	return ParseCount(cells[i].Text)
}

// hasStatsHeaders checks the header labels; tables without th cells pass unchecked
func hasStatsHeaders(headers, required []string) bool {
	if len(headers) == 0 {
		return true
	}

	for _, label := range required {
		label = normalizeLabel(label)
		found := false
		for _, h := range headers {
			if strings.Contains(normalizeLabel(h), label) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// normalizeLabel lowercases and collapses whitespace so wrapped headers still match
func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
