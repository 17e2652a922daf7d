package extract

// Windows groups items into consecutive fixed-arity runs. A trailing run
// shorter than size is dropped.
func Windows[T any](items []T, size int) [][]T {
	if size <= 0 {
		return nil
	}
	runs := make([][]T, 0, len(items)/size)
	for i := 0; i+size <= len(items); i += size {
		runs = append(runs, items[i:i+size])
	}
	return runs
}

// ArrayLiteral locates the first '[' outside a string literal and returns the
// slice up to and including its matching ']', skipping brackets inside string
// literals.
func ArrayLiteral(text string) (string, bool) {
	start := -1
	depth := 0
	var quote byte
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case '[':
			if start < 0 {
				start = i
			}
			depth++
		case ']':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
