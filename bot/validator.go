package bot

import "regexp"

// Letters (Latin, basic Cyrillic), whitespace and hyphens, 2 to 50 runes.
var cityPattern = regexp.MustCompile(`^[A-Za-zА-Яа-я\s-]{2,50}$`)

// ValidCity reports whether s looks like a city name worth sending to the provider
func ValidCity(s string) bool {
	return cityPattern.MatchString(s)
}
