package election

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// statsTable renders a turnout block with voters, envelopes and valid votes at td 3, 4 and 7
func statsTable(voters, envelopes, valid string) string {
	return fmt.Sprintf(`<table>
<tr><th>Okrsky</th><th>Voliči v seznamu</th><th>Vydané obálky</th><th>Volební účast v %%</th><th>Odevzdané obálky</th><th>Platné hlasy</th><th>%% platných hlasů</th></tr>
<tr><th>celkem</th><th>zpr.</th><th>v %%</th></tr>
<tr><td>1</td><td>1</td><td>100,00</td><td>%s</td><td>%s</td><td>64,83</td><td>%s</td><td>%s</td><td>99,62</td></tr>
</table>`, voters, envelopes, envelopes, valid)
}

// partyTable renders one party table with two header rows
func partyTable(rows ...[2]string) string {
	var b strings.Builder
	b.WriteString("<table>\n<tr><th>Strana</th><th>Platné hlasy</th></tr>\n<tr><th>číslo</th><th>název</th><th>celkem</th><th>v %</th></tr>\n")
	for i, r := range rows {
		fmt.Fprintf(&b, "<tr><td>%d</td><td>%s</td><td>%s</td><td>1,00</td></tr>\n", i+1, r[0], r[1])
	}
	b.WriteString("</table>")
	return b.String()
}

func resultsPage(stats string, tables ...string) string {
	return "<html><body>" + stats + strings.Join(tables, "\n") + "</body></html>"
}

// districtPage renders a municipality listing with two header rows
func districtPage(refs ...MunicipalityRef) string {
	var b strings.Builder
	b.WriteString("<html><body><table>\n<tr><th>Obec</th><th>Výběr okrsku</th></tr>\n<tr><th>číslo</th><th>název</th></tr>\n")
	for _, r := range refs {
		fmt.Fprintf(&b, `<tr><td><a href="%s">%s</a></td><td>%s</td><td>X</td></tr>`+"\n", r.URL, r.Code, r.Name)
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

// fakeFetcher serves pages from a map; missing URLs fail
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls map[string]int
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages, calls: make(map[string]int)}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[url]++
	page, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("unreachable: %s", url)
	}
	return page, nil
}

type countingRecorder struct {
	mu      sync.Mutex
	listed  int
	parsed  int
	dropped int
}

func (r *countingRecorder) MunicipalitiesListed(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listed += n
}

func (r *countingRecorder) MunicipalityParsed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsed++
}

func (r *countingRecorder) MunicipalityDropped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped++
}
