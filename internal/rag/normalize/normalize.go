// Package normalize implements the Arabic text normalizer: a pure,
// idempotent transform applied to both ingested chunks and user
// queries before embedding or routing.
package normalize

import "strings"

const (
	tatweel      = 'ـ'
	alefMaksura  = 'ى'
	yaa          = 'ي'
	taaMarbuta   = 'ة'
	haa          = 'ه'
)

var alefVariants = map[rune]rune{
	'آ': 'ا', // madda
	'أ': 'ا', // hamza above
	'إ': 'ا', // hamza below
	'ٱ': 'ا', // wasla
}

// diacritics: short vowels (fatha, damma, kasra, tanwin variants, sukun)
// and the shadda gemination mark.
var diacritics = map[rune]bool{
	'ً': true, 'ٌ': true, 'ٍ': true,
	'َ': true, 'ُ': true, 'ِ': true,
	'ّ': true, 'ْ': true, 'ٓ': true,
	'ٔ': true, 'ٕ': true, 'ٖ': true,
	'ٰ': true,
}

// persianLetters supplements the core normalization steps with
// Persian-character folding. It runs strictly after the mandatory
// steps and is independently idempotent.
var persianLetters = map[rune]rune{
	'ک': 'ك', // Persian kaf -> Arabic kaf
	'ی': 'ي', // Persian yeh -> Arabic yaa
	'گ': 'گ', // gaf has no Arabic equivalent, left as-is
}

// Normalize canonicalizes Arabic text: it unifies Alef/Yaa/Taa-marbuta
// variants, strips diacritics and elongation, collapses whitespace and
// folds Persian letters. Empty input returns empty output. Normalize is
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))

	prevSpace := false
	for _, r := range text {
		switch {
		case r == tatweel:
			// step 5: strip elongation.
			continue
		case diacritics[r]:
			// step 4: strip diacritics.
			continue
		case alefVariants[r] != 0:
			// step 1: unify Alef variants.
			r = alefVariants[r]
		case r == alefMaksura:
			// step 2: unify terminal Yaa variants.
			r = yaa
		case r == taaMarbuta:
			// step 3: unify Taa-marbuta to Haa.
			r = haa
		}

		if folded, ok := persianLetters[r]; ok {
			r = folded
		}

		if isSpace(r) {
			if prevSpace {
				continue
			}
			prevSpace = true
			b.WriteRune(' ')
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}

	return strings.TrimSpace(reduceElongation(b.String()))
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', ' ':
		return true
	}
	return false
}

// reduceElongation collapses runs of 3+ identical letters down to two
// occurrences, a colloquial-text cleanup (e.g. "جميييل" ->
// "جمييل"). Whitespace is exempt.
func reduceElongation(s string) string {
	runes := []rune(s)
	if len(runes) < 3 {
		return s
	}
	out := make([]rune, 0, len(runes))
	run := 0
	var last rune
	for _, r := range runes {
		if r == last {
			run++
		} else {
			run = 1
			last = r
		}
		if run <= 2 || isSpace(r) {
			out = append(out, r)
		}
	}
	return string(out)
}
