package rating

// SABO rank ladder, lowest first. Each label starts at its ELO floor.
var ranks = []struct {
	floor int
	label string
}{
	{1000, "K"},
	{1100, "K+"},
	{1200, "I"},
	{1300, "I+"},
	{1400, "H"},
	{1500, "H+"},
	{1600, "G"},
	{1700, "G+"},
	{1800, "F"},
	{1900, "F+"},
	{2000, "E"},
	{2100, "E+"},
}

// RankFor returns the rank label for an ELO rating. Anything below the first
// floor is still K.
func RankFor(elo int) string {
	label := ranks[0].label
	for _, r := range ranks {
		if elo < r.floor {
			break
		}
		label = r.label
	}
	return label
}

// EloFor returns the floor of a rank label, used to seed players who register
// with a known rank. Unknown labels fall back to DefaultElo.
func EloFor(label string) int {
	for _, r := range ranks {
		if r.label == label {
			return r.floor
		}
	}
	return DefaultElo
}
