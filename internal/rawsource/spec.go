package rawsource

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"fieldstack/internal/fieldsource"
)

// ParseDropoutLine decodes one "field line:start-end" tuple.
func ParseDropoutLine(text string) (fieldsource.FieldID, fieldsource.Region, error) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) != 2 {
		return 0, fieldsource.Region{}, fmt.Errorf("dropout spec %q: expected \"field line:start-end\"", text)
	}

	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fieldsource.Region{}, fmt.Errorf("dropout spec %q: field id: %w", text, err)
	}

	lineRange := strings.SplitN(fields[1], ":", 2)
	if len(lineRange) != 2 {
		return 0, fieldsource.Region{}, fmt.Errorf("dropout spec %q: missing line separator", text)
	}
	line, err := strconv.Atoi(lineRange[0])
	if err != nil {
		return 0, fieldsource.Region{}, fmt.Errorf("dropout spec %q: line: %w", text, err)
	}

	bounds := strings.SplitN(lineRange[1], "-", 2)
	if len(bounds) != 2 {
		return 0, fieldsource.Region{}, fmt.Errorf("dropout spec %q: missing range separator", text)
	}
	start, err := strconv.Atoi(bounds[0])
	if err != nil {
		return 0, fieldsource.Region{}, fmt.Errorf("dropout spec %q: start: %w", text, err)
	}
	end, err := strconv.Atoi(bounds[1])
	if err != nil {
		return 0, fieldsource.Region{}, fmt.Errorf("dropout spec %q: end: %w", text, err)
	}
	if line < 0 || start < 0 || end <= start {
		return 0, fieldsource.Region{}, fmt.Errorf("dropout spec %q: empty or negative range", text)
	}

	return fieldsource.FieldID(id), fieldsource.Region{
		Line: line, Start: start, End: end, Basis: fieldsource.BasisHintDerived,
	}, nil
}

// ParseDropouts decodes a whole dropout-hint document: one tuple per line,
// '#' starting a comment, blank lines ignored. Regions come back grouped by
// field and sorted.
func ParseDropouts(r io.Reader) (map[fieldsource.FieldID][]fieldsource.Region, error) {
	hints := make(map[fieldsource.FieldID][]fieldsource.Region)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		id, region, err := ParseDropoutLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		hints[id] = append(hints[id], region)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dropout spec: %w", err)
	}
	for id := range hints {
		fieldsource.SortRegions(hints[id])
	}
	return hints, nil
}

// WriteDropouts encodes a source's dropout hints in the compact text form,
// fields in ascending order.
func WriteDropouts(w io.Writer, src fieldsource.Source) error {
	if src.FieldCount() == 0 {
		return nil
	}
	first, last := src.FieldRange()
	ids := make([]fieldsource.FieldID, 0, src.FieldCount())
	for id := first; id <= last; id++ {
		if src.HasField(id) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	bw := bufio.NewWriter(w)
	for _, id := range ids {
		for _, r := range src.DropoutHints(id) {
			if _, err := fmt.Fprintf(bw, "%d %d:%d-%d\n", id, r.Line, r.Start, r.End); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
