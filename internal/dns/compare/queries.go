package compare

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/haukened/rr-shift/internal/dns/domain"
)

// LoadQueryFile reads a query list: one "name [type]" per line, '#' starts a
// comment, blank lines are skipped, type defaults to A.
func LoadQueryFile(path string) ([]domain.DNSQuery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var queries []domain.DNSQuery
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) > 2 {
			return nil, fmt.Errorf("line %d: expected 'name [type]', got %q", lineNo, line)
		}

		rtype := domain.RecordTypeA
		if len(fields) == 2 {
			rtype = domain.RecordType(strings.ToUpper(fields[1]))
			if !rtype.IsValid() {
				return nil, fmt.Errorf("line %d: unknown record type %q", lineNo, fields[1])
			}
		}
		q, err := domain.NewDNSQuery(fields[0], rtype)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		queries = append(queries, q)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return queries, nil
}
