package wallets

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Set is the owned-wallet allow-list: lowercase 0x-prefixed addresses.
type Set map[string]struct{}

// Load reads a newline-delimited address list. Lines are trimmed,
// BOM-stripped, lower-cased, and prefixed with 0x when missing; blank
// lines are skipped.
func Load(path string) (Set, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open allow-list: %w", err)
	}
	defer file.Close()

	set := make(Set)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		addr := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if addr == "" {
			continue
		}
		addr = strings.ToLower(addr)
		if !strings.HasPrefix(addr, "0x") {
			addr = "0x" + addr
		}
		set[addr] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read allow-list: %w", err)
	}

	return set, nil
}

// Contains reports membership, case-insensitively.
func (s Set) Contains(addr string) bool {
	_, ok := s[strings.ToLower(addr)]
	return ok
}

// Addresses returns the members in sorted order.
func (s Set) Addresses() []string {
	out := make([]string, 0, len(s))
	for addr := range s {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

func (s Set) Len() int {
	return len(s)
}
