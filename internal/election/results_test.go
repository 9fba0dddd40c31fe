package election

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasicStats(t *testing.T) {
	tests := []struct {
		name     string
		page     string
		expected MunicipalityStats
		ok       bool
	}{
		{
			name:     "well-formed page",
			page:     resultsPage(statsTable("1\u00a0234", "800", "795"), partyTable(), partyTable()),
			expected: MunicipalityStats{EligibleVoters: 1234, EnvelopesIssued: 800, ValidVotes: 795},
			ok:       true,
		},
		{
			name:     "ordinary spaces",
			page:     resultsPage(statsTable(" 12 345 ", "1 000", "999"), partyTable(), partyTable()),
			expected: MunicipalityStats{EligibleVoters: 12345, EnvelopesIssued: 1000, ValidVotes: 999},
			ok:       true,
		},
		{
			name: "too few tables",
			page: resultsPage(statsTable("1", "2", "3"), partyTable()),
		},
		{
			name: "non-numeric cell",
			page: resultsPage(statsTable("many", "2", "3"), partyTable(), partyTable()),
		},
		{
			name: "negative cell",
			page: resultsPage(statsTable("-5", "2", "3"), partyTable(), partyTable()),
		},
		{
			name: "missing cells",
			page: resultsPage(`<table><tr><td>1</td><td>2</td><td>3</td><td>4</td></tr></table>`, partyTable(), partyTable()),
		},
		{
			name: "unexpected headers",
			page: resultsPage(`<table><tr><th>Kandidát</th></tr><tr><td>0</td><td>0</td><td>0</td><td>1</td><td>2</td><td>0</td><td>0</td><td>3</td></tr></table>`, partyTable(), partyTable()),
		},
		{
			name: "headers wrapped with line breaks",
			page: resultsPage(`<table>
<tr><th>Okrsky</th><th>Voliči<br/>v seznamu</th><th>Vydané<br/>obálky</th><th>Volební účast v %</th><th>Odevzdané obálky</th><th>Platné<br/>hlasy</th></tr>
<tr><td>1</td><td>1</td><td>100,00</td><td>410</td><td>266</td><td>64,88</td><td>266</td><td>265</td></tr>
</table>`, partyTable(), partyTable()),
			expected: MunicipalityStats{EligibleVoters: 410, EnvelopesIssued: 266, ValidVotes: 265},
			ok:       true,
		},
		{
			name: "headers split across source lines",
			page: resultsPage("<table>\n<tr><th>Voliči\n  v seznamu</th><th>Vydané\n\tobálky</th><th>Platné\r\nhlasy</th></tr>\n"+
				"<tr><td>0</td><td>0</td><td>0</td><td>7</td><td>6</td><td>0</td><td>0</td><td>5</td></tr>\n</table>", partyTable(), partyTable()),
			expected: MunicipalityStats{EligibleVoters: 7, EnvelopesIssued: 6, ValidVotes: 5},
			ok:       true,
		},
		{
			name:     "table without headers is indexed blindly",
			page:     resultsPage(`<table><tr><td>0</td><td>0</td><td>0</td><td>10</td><td>9</td><td>0</td><td>0</td><td>8</td></tr></table>`, partyTable(), partyTable()),
			expected: MunicipalityStats{EligibleVoters: 10, EnvelopesIssued: 9, ValidVotes: 8},
			ok:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, ok := ParseBasicStats(decode(t, tt.page), DefaultLayout())
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, stats)
		})
	}
}

func TestHasStatsHeadersIgnoresWhitespaceAndCase(t *testing.T) {
	headers := []string{"VOLIČI v seznamu", "Vydané  obálky", "Platné\u00a0hlasy"}
	assert.True(t, hasStatsHeaders(headers, DefaultLayout().StatsHeaders))
	assert.True(t, hasStatsHeaders(headers, []string{" vydané\nobálky "}))
	assert.False(t, hasStatsHeaders(headers, []string{"Vydanéobálky"}))
}

func TestParsePartyVotes(t *testing.T) {
	page := resultsPage(
		statsTable("100", "80", "79"),
		partyTable([2]string{"Občanská demokratická strana", "1\u00a0020"}, [2]string{"ANO 2011", "2 500"}),
		partyTable([2]string{"Strana zelených", "-"}, [2]string{"Piráti", "7"}),
	)

	votes := ParsePartyVotes(decode(t, page), DefaultLayout())

	assert.Equal(t, []string{"Občanská demokratická strana", "ANO 2011", "Piráti"}, votes.Names())
	count, ok := votes.Get("Občanská demokratická strana")
	require.True(t, ok)
	assert.Equal(t, 1020, count)
	count, _ = votes.Get("ANO 2011")
	assert.Equal(t, 2500, count)
	_, ok = votes.Get("Strana zelených")
	assert.False(t, ok)
}

func TestParsePartyVotesShortRows(t *testing.T) {
	page := resultsPage(
		statsTable("100", "80", "79"),
		`<table><tr><th>h</th></tr><tr><th>h</th></tr><tr><td>1</td><td>Short</td></tr><tr><td>2</td><td>Full</td><td>3</td></tr></table>`,
	)

	votes := ParsePartyVotes(decode(t, page), DefaultLayout())

	assert.Equal(t, []string{"Full"}, votes.Names())
}

func TestParsePartyVotesIgnoresFirstTable(t *testing.T) {
	page := resultsPage(partyTable([2]string{"First", "1"}, [2]string{"Table", "2"}))

	votes := ParsePartyVotes(decode(t, page), DefaultLayout())

	assert.Equal(t, 0, votes.Len())
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		ok       bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{"1\u00a0234\u00a0567", 1234567, true},
		{"\u00a01 234\u00a0", 1234, true},
		{"1 234", 1234, true},
		{"", 0, false},
		{"12,5", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseCount(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPartyVotesKeepsFirstPosition(t *testing.T) {
	votes := NewPartyVotes()
	votes.Set("A", 1)
	votes.Set("B", 2)
	votes.Set("A", 3)

	assert.Equal(t, []string{"A", "B"}, votes.Names())
	count, _ := votes.Get("A")
	assert.Equal(t, 3, count)
}
