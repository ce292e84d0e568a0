package kegg

import (
	"bufio"
	"io"
	"strings"
)

// terminator marks the end of a record. Only the first three characters of
// the line are significant.
const terminator = "///"

// RecordScanner splits a flat-file stream into records. Each record is the
// ordered list of lines from just after the previous terminator (or the
// start of the stream) through and including a line beginning with "///".
// A trailing partial record with no terminator is silently dropped; that
// matches the flat-file contract and is relied on by the web client, which
// concatenates paged responses.
type RecordScanner struct {
	scanner *bufio.Scanner
	record  []string
}

// NewRecordScanner returns a scanner reading records from r.
func NewRecordScanner(r io.Reader) *RecordScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &RecordScanner{scanner: sc}
}

// Scan advances to the next record. It returns false when the stream is
// exhausted or a read error occurred; check Err afterwards.
func (rs *RecordScanner) Scan() bool {
	rs.record = rs.record[:0]
	for rs.scanner.Scan() {
		line := strings.TrimSuffix(rs.scanner.Text(), "\r")
		rs.record = append(rs.record, line)
		if strings.HasPrefix(line, terminator) {
			return true
		}
	}
	rs.record = nil
	return false
}

// Record returns the lines of the current record, including the terminator.
// The returned slice is only valid until the next call to Scan.
func (rs *RecordScanner) Record() []string {
	return rs.record
}

// Err returns the first error encountered while reading the stream.
func (rs *RecordScanner) Err() error {
	return rs.scanner.Err()
}

// SplitRecords partitions pre-fetched lines into records on the terminator
// line. Lines after the final terminator are dropped.
func SplitRecords(lines []string) [][]string {
	var records [][]string
	start := 0
	for i, line := range lines {
		if strings.HasPrefix(line, terminator) {
			records = append(records, lines[start:i+1])
			start = i + 1
		}
	}
	return records
}
