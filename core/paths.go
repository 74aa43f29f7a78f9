package core

import (
	"fmt"
	"strings"
)

func normalizePath(path string) string {
	return strings.TrimSpace(path)
}

func splitPath(path string) []string {
	parts := strings.Split(normalizePath(path), ".")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil
		}
		out = append(out, part)
	}
	return out
}

// pathIsPrefix reports whether a is a strict segment-wise prefix of b,
// i.e. writing both a and b would place a value and a container at the
// same location.
func pathIsPrefix(a, b []string) bool {
	if len(a) >= len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func lookupPathValue(root map[string]any, path string) (any, bool) {
	if root == nil {
		return nil, false
	}
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, false
	}
	current := any(root)
	for _, part := range parts {
		asMap, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		next, exists := asMap[part]
		if !exists {
			return nil, false
		}
		current = next
	}
	return current, true
}

// writePathValue places value at a dotted path under root, creating
// intermediate containers as needed. It fails instead of clobbering a
// non-container value written by a sibling path; compiled configurations
// never trip this because path conflicts are rejected at compile time.
func writePathValue(root map[string]any, path string, value any) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return fmt.Errorf("core: empty destination path")
	}
	current := root
	for idx, part := range parts {
		if idx == len(parts)-1 {
			current[part] = value
			return nil
		}
		next, exists := current[part]
		if !exists {
			child := make(map[string]any)
			current[part] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("core: destination path %q collides with a non-object value at %q", path, part)
		}
		current = child
	}
	return nil
}
