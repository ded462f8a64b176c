package domain

// FirstNonEmpty resolves optional fixture text such as an assignment status
// to its first non-empty candidate. The last candidate is usually the default.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// FirstInt resolves an optional step attribute like order or duration_days
// to the first value given, or fallback when none was.
func FirstInt(fallback int, ptrs ...*int) int {
	for _, p := range ptrs {
		if p != nil {
			return *p
		}
	}
	return fallback
}
