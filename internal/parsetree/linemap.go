package parsetree

// AssignLineNumbers implements spec.md §6's line-number map: every
// Line that did not come with an explicit BASIC line number is given a
// synthetic one, monotonically increasing, one per logical source
// line. Explicit numbers are left untouched and are not required to
// be in order (BASIC programs are resequenced by line number, not by
// textual position) — only the synthesised ones advance monotonically
// from the highest number already seen plus one, so a synthetic number
// is never lower than any explicit number before it. It can still equal
// an explicit number that appears later in the list: no renumbering is
// done here (this module never resequences a program).
func AssignLineNumbers(lines []Line) {
	next := 1
	for i := range lines {
		if lines[i].HasNumber {
			if lines[i].Number >= next {
				next = lines[i].Number + 1
			}
			continue
		}
		lines[i].Number = next
		lines[i].HasNumber = true
		next++
	}
}
