// Package refsheet reads the tab-separated reference sheet that maps each
// downloaded assembly file to its species and subspecies, and builds the
// lookup used to annotate coverage statistics. It also generates that sheet
// from a local NCBI assembly summary (see summary.go).
package refsheet

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/brentp/xopen"
)

// Header names accepted for each column role. Comparison is case-insensitive
// and all comment lines of the sheet are scanned jointly.
var (
	fileHeaders       = []string{"filename", "file_name", "file-name", "file"}
	speciesHeaders    = []string{"scientific_name", "organism_name", "organism", "species_name", "species"}
	subspeciesHeaders = []string{"intraespecific_name", "subspecies_name", "strain", "subspecies"}
)

// extensions stripped from assembly file names, applied in this order so
// that "x.fna.gz" reduces to "x".
var extensions = []string{".gz", ".fna"}

// NoSubspecies marks entries without an intraspecific name.
const NoSubspecies = "--"

// Record is one reference assembly from the sheet.
type Record struct {
	Species    string
	Subspecies string
}

// Index maps an assembly id (file name with extensions stripped) to its record.
type Index map[string]Record

// Role pairs an unresolved column role with the header names accepted for it.
type Role struct {
	Name     string
	Accepted []string
}

// MissingHeaderError reports the column roles that could not be resolved
// from the sheet's comment lines. It is fatal: without all three roles no
// assembly can be annotated.
type MissingHeaderError struct {
	Roles []Role
}

func (e *MissingHeaderError) Error() string {
	parts := make([]string, 0, len(e.Roles))
	for _, r := range e.Roles {
		parts = append(parts, fmt.Sprintf("no %s header found (accepted names: %s)", r.Name, strings.Join(r.Accepted, ", ")))
	}
	return "refsheet: " + strings.Join(parts, "; ")
}

type columns struct {
	file, species, subspecies int
}

func nameIn(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// detectColumns resolves the column index for each role from the sheet's
// comment lines. All unresolved roles are reported together.
func detectColumns(headers [][]string) (columns, error) {
	cols := columns{file: -1, species: -1, subspecies: -1}
	for _, header := range headers {
		for i, name := range header {
			name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), "#")))
			switch {
			case nameIn(fileHeaders, name):
				cols.file = i
			case nameIn(speciesHeaders, name):
				cols.species = i
			case nameIn(subspeciesHeaders, name):
				cols.subspecies = i
			}
		}
	}
	var missing []Role
	if cols.file == -1 {
		missing = append(missing, Role{"file name", fileHeaders})
	}
	if cols.species == -1 {
		missing = append(missing, Role{"species name", speciesHeaders})
	}
	if cols.subspecies == -1 {
		missing = append(missing, Role{"subspecies name", subspeciesHeaders})
	}
	if len(missing) > 0 {
		return cols, &MissingHeaderError{Roles: missing}
	}
	return cols, nil
}

// StripExtensions removes the known assembly extensions from name, in order,
// so "x.fna.gz" and "x.gz" both reduce to "x".
func StripExtensions(name string) string {
	for _, ext := range extensions {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// Read parses a tab-separated reference sheet. Lines starting with '#' are
// comment lines and are scanned jointly for the file, species and subspecies
// columns. Data lines missing one of the resolved columns are skipped with a
// warning rather than aborting the run.
func Read(r io.Reader) (Index, error) {
	br := bufio.NewReader(r)
	var headers, data [][]string
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimRight(line, "\r\n")
			if line != "" {
				toks := strings.Split(line, "\t")
				if strings.HasPrefix(line, "#") {
					headers = append(headers, toks)
				} else {
					data = append(data, toks)
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	cols, err := detectColumns(headers)
	if err != nil {
		return nil, err
	}

	need := cols.file
	if cols.species > need {
		need = cols.species
	}
	if cols.subspecies > need {
		need = cols.subspecies
	}

	idx := make(Index, len(data))
	for _, toks := range data {
		if len(toks) <= need {
			log.Printf("refsheet: skipping line with %d fields (need at least %d): %s", len(toks), need+1, strings.Join(toks, "\t"))
			continue
		}
		sub := toks[cols.subspecies]
		if sub == "" {
			sub = NoSubspecies
		}
		idx[StripExtensions(toks[cols.file])] = Record{Species: toks[cols.species], Subspecies: sub}
	}
	return idx, nil
}

// Load reads a reference sheet from path. Gzipped sheets are handled
// transparently.
func Load(path string) (Index, error) {
	fh, err := xopen.Ropen(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Read(fh)
}
