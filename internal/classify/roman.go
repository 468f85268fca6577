package classify

// romanTable covers the numerals that plausibly title a chapter. Anything
// outside I–XX is almost always stray capitalized text, not a heading.
var romanTable = map[string]int{
	"I": 1, "II": 2, "III": 3, "IV": 4, "V": 5,
	"VI": 6, "VII": 7, "VIII": 8, "IX": 9, "X": 10,
	"XI": 11, "XII": 12, "XIII": 13, "XIV": 14, "XV": 15,
	"XVI": 16, "XVII": 17, "XVIII": 18, "XIX": 19, "XX": 20,
}

// RomanToArabic converts a roman numeral in the supported I–XX range to its
// arabic value.
func RomanToArabic(s string) (int, bool) {
	n, ok := romanTable[s]
	return n, ok
}
