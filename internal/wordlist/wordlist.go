// Package wordlist loads password lists from files.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadSet reads one entry per line from path into a set. Blank lines and
// lines starting with '#' are skipped; entries are normalized with Normalize.
func LoadSet(path string) (map[string]struct{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only list.
			_ = cerr
		}
	}()

	set := map[string]struct{}{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[Normalize(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("password list %s is empty", path)
	}
	return set, nil
}

// Normalize folds an entry to its lookup form.
func Normalize(s string) string {
	return strings.ToLower(s)
}
