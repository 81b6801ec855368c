package client

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tntchem/devhub/store"
)

// CSVFileName is the default export file name.
const CSVFileName = "compounds.csv"

// csvHeader is the fixed export column order.
var csvHeader = []string{"name", "formula", "pKa", "energy_eV", "geometry", "is_superbase", "synthesis_notes"}

// WriteCSV writes the compound list to w in the fixed column order. Absent
// values become empty cells; quoting and escaping follow RFC 4180.
func WriteCSV(w io.Writer, compounds []*store.Compound) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, c := range compounds {
		record := []string{
			c.Name,
			stringCell(c.Formula),
			floatCell(c.Properties.PKa),
			floatCell(c.Properties.EnergyEV),
			stringCell(c.Properties.Geometry),
			boolCell(c.Properties.IsSuperbase),
			stringCell(c.SynthesisNotes),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the compound list to a file at path, creating or
// truncating it.
func ExportCSV(path string, compounds []*store.Compound) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := WriteCSV(f, compounds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func stringCell(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func boolCell(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
