// Package langdetect classifies a short text sample's dominant script, for
// the `utils.detect_language` operation. Grounded on golang.org/x/text's
// unicode range tables (the teacher's go.mod carries golang.org/x/text as
// an indirect dependency; this is its first direct consumer in this
// module).
package langdetect

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// Language is a coarse script/language classification.
type Language string

const (
	LangZH      Language = "zh"
	LangJA      Language = "ja"
	LangKO      Language = "ko"
	LangEN      Language = "en"
	LangUnknown Language = "unknown"
)

var kana = rangetable.Merge(unicode.Hiragana, unicode.Katakana)

// simplifiedChars and traditionalChars pair up a small set of
// high-frequency Han characters that differ between the two scripts,
// enough to call Simplified-vs-Traditional on typical text without a full
// dictionary.
const (
	simplifiedChars = "国学东广万会这来对没说时过还现实经见长关开门汉语书写电车军义"
	traditionalChars = "國學東廣萬會這來對沒說時過還現實經見長關開門漢語書寫電車軍義"
)

// Result is the outcome of Detect: a script classification, a confidence
// in [0, 1], and (for Chinese text) a Simplified-vs-Traditional guess.
type Result struct {
	Language     Language
	Confidence   float64
	IsSimplified bool
}

// Detect classifies text's dominant script, preferring CJK
// disambiguation (kana implies Japanese even in mixed Han/kana text; pure
// Hangul implies Korean; pure Han implies Chinese) before falling back to
// a Latin-letter check for English. Confidence is the dominant script's
// share of classified (non-space/punct/number) runes.
func Detect(text string) Result {
	var han, hangul, latin, kanaCount, runeCount int
	var simplifiedHits, traditionalHits int

	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsNumber(r) {
			continue
		}
		runeCount++
		switch {
		case unicode.Is(kana, r):
			kanaCount++
		case unicode.Is(unicode.Han, r):
			han++
		case unicode.Is(unicode.Hangul, r):
			hangul++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
		if strings.ContainsRune(simplifiedChars, r) {
			simplifiedHits++
		}
		if strings.ContainsRune(traditionalChars, r) {
			traditionalHits++
		}
	}

	if runeCount == 0 {
		return Result{Language: LangUnknown}
	}

	switch {
	case kanaCount > 0:
		return Result{Language: LangJA, Confidence: float64(kanaCount+han) / float64(runeCount)}
	case han > 0:
		return Result{
			Language:     LangZH,
			Confidence:   float64(han) / float64(runeCount),
			IsSimplified: traditionalHits <= simplifiedHits,
		}
	case hangul > 0:
		return Result{Language: LangKO, Confidence: float64(hangul) / float64(runeCount)}
	case latin > 0:
		return Result{Language: LangEN, Confidence: float64(latin) / float64(runeCount)}
	default:
		return Result{Language: LangUnknown}
	}
}
