package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/rzubek/botl/lang/vm"
)

// LoadTable reads rows in CSV form from r and installs them as the table
// predicate name/arity, converting each field to a vm.Cell by trying an
// integer, then a float, then falling back to the field text itself as an
// atom (spec.md §3 "Table... populated from an external row source").
// encoding/csv is the stdlib: no example repo in the corpus pulls in a
// third-party CSV library, and the format itself (RFC 4180) is exactly what
// the stdlib package already implements, so there is nothing an external
// dependency would add here (lang/store DESIGN.md entry).
func (s *Store) LoadTable(name string, arity int, r io.Reader) (*vm.Predicate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = arity

	var rows []vm.TableRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("store: loading table %s/%d: %w", name, arity, err)
		}
		row := make(vm.TableRow, len(rec))
		for i, field := range rec {
			row[i] = fieldCell(field)
		}
		rows = append(rows, row)
	}
	return s.DefineTable(name, arity, rows), nil
}

// fieldCell converts one CSV field to the cell it most specifically parses
// as: an integer, then a float, then the raw string as an atom.
func fieldCell(field string) vm.Cell {
	if n, err := strconv.ParseInt(field, 10, 64); err == nil {
		return vm.IntCell(n)
	}
	if f, err := strconv.ParseFloat(field, 64); err == nil {
		return vm.FloatCell(f)
	}
	return vm.ObjCell(field)
}
