package app

import (
	"strconv"
	"strings"
)

const maxTracedQueryLength = 512

// formatDBQueryForTrace flattens whitespace and folds multi-row VALUES lists
// down to their first tuple, so a 500-row game log insert still reads as one
// statement in a trace.
func formatDBQueryForTrace(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	if query == "" {
		return query
	}

	query = foldValuesTuples(query)
	if len(query) <= maxTracedQueryLength {
		return query
	}
	return query[:maxTracedQueryLength] + "..."
}

func foldValuesTuples(query string) string {
	start := strings.Index(query, "VALUES (")
	if start < 0 {
		return query
	}
	values := query[start:]
	firstEnd := strings.IndexByte(values, ')')
	lastSep := strings.LastIndex(values, "), (")
	if firstEnd < 0 || lastSep < 0 || lastSep < firstEnd {
		return query
	}
	lastEnd := strings.IndexByte(values[lastSep+len("), ("):], ')')
	if lastEnd < 0 {
		return query
	}
	lastEnd += lastSep + len("), (")

	rows := strings.Count(values[:lastEnd+1], "), (") + 1
	return query[:start] + values[:firstEnd+1] +
		" /* +" + strconv.Itoa(rows-1) + " rows */" +
		values[lastEnd+1:]
}
