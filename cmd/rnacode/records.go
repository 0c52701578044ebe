package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/leijurv/rna_grammar_go/rnacode"
)

// Record is one molecule of a dot-bracket file:
//
//	>name
//	GGGAAACCC
//	(((...)))
type Record struct {
	Name string
	RNA  rnacode.RNA
}

// ReadRecords parses a dot-bracket file. Blank lines and lines starting with #
// are skipped; the >name line is optional.
func ReadRecords(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var records []Record
	var name, primary string
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, ">"):
			if primary != "" {
				return nil, fmt.Errorf("line %d: record %q has no structure line", lineNo, name)
			}
			name = strings.TrimSpace(line[1:])
		case primary == "":
			primary = line
		default:
			rna, err := rnacode.NewRNA(primary, line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if name == "" {
				name = fmt.Sprintf("record%d", len(records)+1)
			}
			records = append(records, Record{Name: name, RNA: rna})
			name, primary = "", ""
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if primary != "" {
		return nil, fmt.Errorf("record %q has no structure line", name)
	}
	return records, nil
}

// WriteRecord writes rec in the format read by ReadRecords
func WriteRecord(w io.Writer, rec Record) error {
	if rec.Name != "" {
		if _, err := fmt.Fprintf(w, ">%s\n", rec.Name); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n", rec.RNA.Primary, rec.RNA.Structure)
	return err
}
