package metis

// EnglishThreshold is the share of ASCII letters above which text counts as English.
const EnglishThreshold = 0.8

// IsEnglish reports whether text is predominantly English, comparing ASCII
// letters against all ASCII, CJK ideograph and kana letters.
func IsEnglish(text string) bool {
	var ascii, total int
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			ascii++
			total++
		case r >= 0x4E00 && r <= 0x9FFF, r >= 0x3040 && r <= 0x309F, r >= 0x30A0 && r <= 0x30FF:
			total++
		}
	}
	if total == 0 {
		return false
	}
	return float64(ascii)/float64(total) > EnglishThreshold
}
