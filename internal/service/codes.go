package service

import (
	"fmt"
	"strings"
)

const (
	minPrefixLen    = 3
	maxPrefixLen    = 4
	maxCodeAttempts = 50
)

// tenantPrefix takes the first alphanumeric characters of the gym name,
// uppercased, padded with X to the minimum length.
func tenantPrefix(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == maxPrefixLen {
				break
			}
		}
	}
	prefix := b.String()
	for len(prefix) < minPrefixLen {
		prefix += "X"
	}
	return prefix
}

// generateCode returns prefix plus a random three digit suffix that is not in
// taken. After maxCodeAttempts random tries it falls back to a counter suffix.
// Callers must hold s.mu.
func (s *GymService) generateCode(prefix string, taken map[string]bool) string {
	for i := 0; i < maxCodeAttempts; i++ {
		code := fmt.Sprintf("%s%03d", prefix, 100+s.rng.Intn(900))
		if !taken[code] {
			return code
		}
	}
	return disambiguate(prefix+"1000", taken)
}

// disambiguate returns id if free, otherwise id-1, id-2, ... whichever is free first.
func disambiguate(id string, taken map[string]bool) string {
	if !taken[id] {
		return id
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if !taken[candidate] {
			return candidate
		}
	}
}

func idSet[T any](items []T, id func(T) string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[id(item)] = true
	}
	return set
}
