package kegg

import (
	"strings"
	"testing"
)

func TestRecordScannerSplitsOnTerminator(t *testing.T) {
	input := "ENTRY       EC 1.1.1.1                 Enzyme\nNAME        alcohol dehydrogenase\n///\nENTRY       EC 1.1.1.2                 Enzyme\n///\n"
	scanner := NewRecordScanner(strings.NewReader(input))

	var records [][]string
	for scanner.Scan() {
		record := scanner.Record()
		copied := make([]string, len(record))
		copy(copied, record)
		records = append(records, copied)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if got := records[0][len(records[0])-1]; got != "///" {
		t.Errorf("first record ends with %q, want ///", got)
	}
	if len(records[0]) != 3 || len(records[1]) != 2 {
		t.Errorf("record lengths = %d, %d; want 3, 2", len(records[0]), len(records[1]))
	}
}

func TestRecordScannerDropsTrailingPartialRecord(t *testing.T) {
	input := "ENTRY       EC 1.1.1.1                 Enzyme\n///\nENTRY       EC 9.9.9.9\nNAME        dangling"
	scanner := NewRecordScanner(strings.NewReader(input))

	count := 0
	for scanner.Scan() {
		count++
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d records, want 1 (partial record must be dropped)", count)
	}
}

func TestRecordScannerHandlesCRLF(t *testing.T) {
	input := "ENTRY       R00001                      Reaction\r\n///\r\n"
	scanner := NewRecordScanner(strings.NewReader(input))
	if !scanner.Scan() {
		t.Fatal("expected one record")
	}
	for _, line := range scanner.Record() {
		if strings.HasSuffix(line, "\r") {
			t.Errorf("line %q retains carriage return", line)
		}
	}
}

func TestSplitRecords(t *testing.T) {
	lines := []string{"a", "///", "b", "c", "///", "dangling"}
	records := SplitRecords(lines)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if len(records[0]) != 2 || len(records[1]) != 3 {
		t.Errorf("record lengths = %d, %d; want 2, 3", len(records[0]), len(records[1]))
	}
}
