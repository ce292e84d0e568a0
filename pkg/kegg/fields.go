package kegg

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Field tags occupy the first tagWidth character columns of a line. A line
// whose prefix is blank continues the most recently named field.
const tagWidth = 12

// Sub-field column layout for the relation fields. Three of the offsets
// deliberately differ: pathway names start one column after the 7-character
// id, module names start two columns after, and orthology ids are only 6
// characters wide.
const (
	pathwayIDWidth     = 7
	pathwayNameStart   = 8
	orthologyIDWidth   = 6
	orthologyNameStart = 7
	moduleIDWidth      = 7
	moduleNameStart    = 9
)

var logger = log.New(os.Stderr)

// SetLogger replaces the package logger used for recoverable parse
// warnings. Passing nil restores the default stderr logger.
func SetLogger(l *log.Logger) {
	if l == nil {
		logger = log.New(os.Stderr)
		return
	}
	logger = l
}

// fieldLine splits a record line into its tag and value columns. tagged is
// true when the line names a new field; the caller keeps the previous tag
// for continuation lines.
func fieldLine(line string) (tag, value string, tagged bool) {
	prefix := line
	if len(line) > tagWidth {
		prefix = line[:tagWidth]
		value = strings.TrimSpace(line[tagWidth:])
	}
	tag = strings.TrimSpace(prefix)
	return tag, value, tag != ""
}

// subField splits a relation value into its fixed-column id and name parts.
func subField(value string, idWidth, nameStart int) (string, string) {
	if len(value) <= idWidth {
		return strings.TrimSpace(value), ""
	}
	id := strings.TrimSpace(value[:idWidth])
	if len(value) <= nameStart {
		return id, ""
	}
	return id, strings.TrimSpace(value[nameStart:])
}

// padTag left-justifies a field tag into the tag columns.
func padTag(tag string) string {
	return tag + strings.Repeat(" ", tagWidth-len(tag))
}

var continuation = strings.Repeat(" ", tagWidth)

// appendWrapped writes a multi-value field: the first line carries the tag,
// continuation lines a blank prefix, and every line except the last ends
// with a semicolon.
func appendWrapped(record []string, tag string, values []string) []string {
	if len(values) == 0 {
		return record
	}
	for i, v := range values {
		prefix := continuation
		if i == 0 {
			prefix = padTag(tag)
		}
		if i < len(values)-1 {
			v += ";"
		}
		record = append(record, prefix+v)
	}
	return record
}

// appendPlain writes a multi-line field without semicolon wrapping.
func appendPlain(record []string, tag string, values []string) []string {
	for i, v := range values {
		prefix := continuation
		if i == 0 {
			prefix = padTag(tag)
		}
		record = append(record, prefix+v)
	}
	return record
}

// appendPairs writes id/name relation lines separated by two spaces, which
// reproduces the fixed-column offsets expected on parse.
func appendPairs(record []string, tag string, pairs [][2]string) []string {
	for i, p := range pairs {
		prefix := continuation
		if i == 0 {
			prefix = padTag(tag)
		}
		record = append(record, prefix+p[0]+"  "+p[1])
	}
	return record
}
