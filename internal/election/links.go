package election

import (
	"net/url"

	"github.com/alvmarrod/election-weaver/internal/htmltable"
)

// Root listing layout: district name in the 2nd cell, link in the 4th
const (
	districtMinCells = 3
	districtNameCell = 1
	districtLinkCell = 3
)

// District listing layout: code link in the 1st cell, name in the 2nd
const (
	municipalityHeaderRows = 2
	municipalityMinCells   = 2
	municipalityLinkCell   = 0
	municipalityNameCell   = 1
)

// ExtractDistricts maps district names to absolute listing URLs.
// Rows without enough cells or without a link are skipped.
func ExtractDistricts(doc *htmltable.Document, baseURL string) map[string]string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return map[string]string{}
	}

	districts := make(map[string]string)
	for _, row := range doc.Rows {
		if len(row.Cells) < districtMinCells {
			continue
		}

		link, ok := row.Cell(districtLinkCell)
		if !ok || link.Anchor == nil {
			continue
		}

		target, ok := resolveURL(base, link.Anchor.Href)
		if !ok {
			continue
		}

		districts[row.Cells[districtNameCell].Text] = target
	}

	return districts
}

// ExtractMunicipalities lists municipalities of a district page in page order
func ExtractMunicipalities(doc *htmltable.Document, baseURL string) []MunicipalityRef {
	municipalities := []MunicipalityRef{}

	base, err := url.Parse(baseURL)
	if err != nil || len(doc.Rows) <= municipalityHeaderRows {
		return municipalities
	}

	for _, row := range doc.Rows[municipalityHeaderRows:] {
		if len(row.Cells) < municipalityMinCells {
			continue
		}

		anchor := row.Cells[municipalityLinkCell].Anchor
		if anchor == nil {
			continue
		}

		target, ok := resolveURL(base, anchor.Href)
		if !ok {
			continue
		}

		municipalities = append(municipalities, MunicipalityRef{
			Code: anchor.Text,
			Name: row.Cells[municipalityNameCell].Text,
			URL:  target,
		})
	}

	return municipalities
}

// resolveURL resolves a possibly relative href against the page URL
func resolveURL(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}
