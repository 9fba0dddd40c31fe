package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/alvmarrod/election-weaver/internal/election"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	separator = ";"
	bom       = "\uFEFF"
)

// Fixed leading columns; party columns follow in dataset order
var baseColumns = []string{"Kód obce", "Název obce", "Voliči", "Vydané obálky", "Platné hlasy"}

// SortRows orders rows by municipality name using Czech collation, then by code
func SortRows(rows []election.ResultRow) {
	col := collate.New(language.Czech)
	slices.SortStableFunc(rows, func(a, b election.ResultRow) int {
		if c := col.CompareString(a.Municipality.Name, b.Municipality.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Municipality.Code, b.Municipality.Code)
	})
}

// WriteCSV writes the dataset sorted by municipality name.
// Text fields are always quoted, counts never are.
func WriteCSV(w io.Writer, dataset *election.Dataset) error {
	rows := slices.Clone(dataset.Rows)
	SortRows(rows)

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(bom); err != nil {
		return err
	}

	header := make([]string, 0, len(baseColumns)+len(dataset.Parties))
	for _, name := range append(slices.Clone(baseColumns), dataset.Parties...) {
		header = append(header, quote(name))
	}
	if err := writeLine(bw, header); err != nil {
		return err
	}

	for _, row := range rows {
		fields := []string{
			quote(row.Municipality.Code),
			quote(row.Municipality.Name),
			strconv.Itoa(row.Stats.EligibleVoters),
			strconv.Itoa(row.Stats.EnvelopesIssued),
			strconv.Itoa(row.Stats.ValidVotes),
		}
		for _, party := range dataset.Parties {
			fields = append(fields, strconv.Itoa(row.Votes[party]))
		}
		if err := writeLine(bw, fields); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteFile writes the dataset to path atomically; on error no file is left behind
func WriteFile(path string, dataset *election.Dataset) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, dataset); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set output file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output file into place: %w", err)
	}
	return nil
}

func writeLine(w *bufio.Writer, fields []string) error {
	_, err := w.WriteString(strings.Join(fields, separator) + "\n")
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
