package fanwheel

import "strings"

// WrapTwoLines splits a behavior phrase into the two lines the outer ring
// renders. A single word is returned unsplit (empty second line); two words
// go one per line; longer phrases split after the first ceil(n/2) words,
// shifting the split left by one word when it would otherwise end line one
// on a short (<= 3 character) word such as "at" or "of".
func WrapTwoLines(words []string) (string, string) {
	switch len(words) {
	case 0:
		return "", ""
	case 1:
		return words[0], ""
	case 2:
		return words[0], words[1]
	}

	mid := (len(words) + 1) / 2
	if len(words) > 3 && len(words[mid-1]) <= 3 {
		mid--
	}
	return strings.Join(words[:mid], " "), strings.Join(words[mid:], " ")
}
