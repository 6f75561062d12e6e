package game

// Suspects is the fixed cast every case is written around. The character
// controller claims exactly one of these, and questions may only be
// addressed to them.
var Suspects = []string{
	"Mrs. Bellamy",
	"Mr. Holloway",
	"Tommy the Janitor",
	"Dr. Adrian Blackwood",
}

// IsSuspect reports whether name is one of the four suspects.
func IsSuspect(name string) bool {
	for _, s := range Suspects {
		if s == name {
			return true
		}
	}
	return false
}
