package election

// DistrictRef points at one district listing page
type DistrictRef struct {
	Name string
	URL  string
}

// MunicipalityRef is one row of a district's municipality listing
type MunicipalityRef struct {
	Code string
	Name string
	URL  string
}

// MunicipalityStats holds the turnout block of a municipality results page
type MunicipalityStats struct {
	EligibleVoters  int
	EnvelopesIssued int
	ValidVotes      int
}

// PartyVotes maps party name to vote count, remembering insertion order
type PartyVotes struct {
	names  []string
	counts map[string]int
}

// NewPartyVotes creates an empty ordered party map
func NewPartyVotes() *PartyVotes {
	return &PartyVotes{counts: make(map[string]int)}
}

// Set stores a count; an existing party keeps its original position
func (pv *PartyVotes) Set(party string, votes int) {
	if _, exists := pv.counts[party]; !exists {
		pv.names = append(pv.names, party)
	}
	pv.counts[party] = votes
}

// Get returns the count for a party
func (pv *PartyVotes) Get(party string) (int, bool) {
	votes, ok := pv.counts[party]
	return votes, ok
}

// Names returns party names in insertion order
func (pv *PartyVotes) Names() []string {
	names := make([]string, len(pv.names))
	copy(names, pv.names)
	return names
}

// Len returns the number of parties
func (pv *PartyVotes) Len() int {
	return len(pv.names)
}

// ResultRow is one exported municipality line
type ResultRow struct {
	Municipality MunicipalityRef
	Stats        MunicipalityStats
	Votes        map[string]int
}

// Dataset is the aggregated result of one district.
// Parties lists every party seen in the district, in first-seen order, and
// every row carries a Votes entry for each of them.
type Dataset struct {
	District string
	Parties  []string
	Rows     []ResultRow
}
