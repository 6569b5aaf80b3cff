package refsheet

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"

	arg "github.com/alexflint/go-arg"
	"github.com/brentp/xopen"
)

// assembly_summary.txt column positions, per
// ftp://ftp.ncbi.nlm.nih.gov/genomes/README_assembly_summary.txt
const (
	colAccession     = 0
	colCategory      = 4
	colTaxid         = 5
	colSpeciesTaxid  = 6
	colOrganism      = 7
	colInfraspecific = 8
	colLevel         = 11
	colFTPPath       = 19
	summaryFields    = 23
)

// Assembly is one row of an NCBI assembly summary.
type Assembly struct {
	Accession       string
	SpeciesTaxid    string
	SubspeciesTaxid string
	Organism        string
	Infraspecific   string
	Level           string
	FTPPath         string
}

// FileName is the name the assembly is stored under once downloaded.
func (a Assembly) FileName() string {
	return a.Accession + ".fna.gz"
}

// DownloadURL points at the genomic fasta within the assembly's FTP directory.
func (a Assembly) DownloadURL() string {
	base := a.FTPPath[strings.LastIndex(a.FTPPath, "/")+1:]
	return fmt.Sprintf("%s/%s_genomic.fna.gz", a.FTPPath, base)
}

// ParseSummary reads an NCBI assembly summary, keeping only complete rows.
// Comment lines and truncated rows are dropped.
func ParseSummary(r io.Reader, onlyComplete, onlyRef bool) ([]Assembly, error) {
	var out []Assembly
	rdr := bufio.NewReader(r)
	for {
		line, err := rdr.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		eof := err == io.EOF
		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			if eof {
				break
			}
			continue
		}
		toks := strings.Split(line, "\t")
		if len(toks) == summaryFields &&
			(!onlyComplete || toks[colLevel] == "Complete Genome") &&
			(!onlyRef || toks[colCategory] == "reference genome") {
			out = append(out, Assembly{
				Accession:       toks[colAccession],
				SpeciesTaxid:    toks[colSpeciesTaxid],
				SubspeciesTaxid: toks[colTaxid],
				Organism:        toks[colOrganism],
				Infraspecific:   toks[colInfraspecific],
				Level:           toks[colLevel],
				FTPPath:         toks[colFTPPath],
			})
		}
		if eof {
			break
		}
	}
	return out, nil
}

// WriteSheet writes assemblies as a pikavirus reference sheet. The header
// names satisfy the roles detectColumns looks for, so the generated sheet
// round-trips through Read.
func WriteSheet(w io.Writer, group string, assemblies []Assembly) error {
	if _, err := fmt.Fprintf(w, "# Assemblies chosen for the group %s\n", group); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "# Assembly_accession\tSpecies_taxid\tSubspecies_taxid\tScientific_name\tIntraespecific_name\tDownload_URL\tFile_name\tAssembly_level\n"); err != nil {
		return err
	}
	for _, a := range assemblies {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.Accession, a.SpeciesTaxid, a.SubspeciesTaxid, a.Organism,
			a.Infraspecific, a.DownloadURL(), a.FileName(), a.Level); err != nil {
			return err
		}
	}
	return nil
}

type sheetArgs struct {
	OnlyComplete bool     `arg:"help:keep only Complete Genome assemblies"`
	OnlyRef      bool     `arg:"help:keep only reference genome assemblies"`
	Output       string   `arg:"-o,help:path for the reference sheet (- for stdout)"`
	Group        string   `arg:"positional,required,help:organism group label written in the sheet comment"`
	Summaries    []string `arg:"positional,required,help:NCBI assembly_summary.txt file(s) in priority order"`
}

// Main is called from the dispatcher.
func Main() {
	cli := sheetArgs{Output: "-"}
	arg.MustParse(&cli)

	var all []Assembly
	// first summary wins on duplicate accessions so refseq can be listed
	// ahead of genbank.
	seen := make(map[string]bool)
	for _, path := range cli.Summaries {
		fh, err := xopen.Ropen(path)
		if err != nil {
			log.Fatal(err)
		}
		assemblies, err := ParseSummary(fh, cli.OnlyComplete, cli.OnlyRef)
		fh.Close()
		if err != nil {
			log.Fatalf("refsheet: %s: %v", path, err)
		}
		for _, a := range assemblies {
			if seen[a.Accession] {
				continue
			}
			seen[a.Accession] = true
			all = append(all, a)
		}
	}

	wtr, err := xopen.Wopen(cli.Output)
	if err != nil {
		log.Fatal(err)
	}
	if err := WriteSheet(wtr, cli.Group, all); err != nil {
		log.Fatal(err)
	}
	if err := wtr.Close(); err != nil {
		log.Fatal(err)
	}
}
