package domain

import "strings"

// CapabilityKey is the comparison form of a capability name.
func CapabilityKey(capability string) string {
	return strings.ToLower(strings.TrimSpace(capability))
}

// ContainsCapability reports whether caps holds capability, ignoring case and
// surrounding whitespace. An empty capability is never contained.
func ContainsCapability(caps []string, capability string) bool {
	key := CapabilityKey(capability)
	if key == "" {
		return false
	}
	for _, c := range caps {
		if CapabilityKey(c) == key {
			return true
		}
	}
	return false
}

// NormalizeCapabilities trims every name, drops empties and removes case-insensitive
// duplicates, keeping the first spelling in order of first occurrence. It accepts
// []string or []any (non-string elements are skipped); anything else yields an empty list.
// The result is never nil.
func NormalizeCapabilities(value any) []string {
	var names []string
	switch v := value.(type) {
	case []string:
		names = v
	case []any:
		names = make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
	}

	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}
