package tui

// calculateScrollOffset computes the new scroll offset to keep cursor visible within pageSize.
func calculateScrollOffset(cursor, currentOffset, pageSize int) int {
	if cursor < currentOffset {
		return cursor
	}
	if cursor >= currentOffset+pageSize {
		return cursor - pageSize + 1
	}
	return currentOffset
}

// pageSize is the number of stream rows that fit between the header and
// the footer.
func (m Model) pageSize() int {
	// app title, header, footer
	return max(m.height-3, 1)
}

func (m *Model) ensureCursorVisible() {
	m.scrollOffset = calculateScrollOffset(m.cursor, m.scrollOffset, m.pageSize())
}

// navigateList moves the stream cursor. It reports whether key was a
// navigation key.
func (m *Model) navigateList(key string, itemCount int) bool {
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < itemCount-1 {
			m.cursor++
		}
	case "pgup", "ctrl+u":
		m.cursor = max(m.cursor-m.pageSize(), 0)
	case "pgdown", "ctrl+d":
		m.cursor = max(min(m.cursor+m.pageSize(), itemCount-1), 0)
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(itemCount-1, 0)
	default:
		return false
	}
	m.ensureCursorVisible()
	return true
}
