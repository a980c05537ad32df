package texttransform

import "strings"

// Hiragana occupies U+3041-U+3096; the corresponding katakana block starts
// at U+30A1, a fixed offset of 0x60 runes higher. No ecosystem library in
// the retrieval pack performs this conversion, so it is a hand-rolled rune
// shift, the same style normalize.go uses for its leet-speak fold.
const hiraganaToKatakanaOffset = 0x60

// ToKatakana converts hiragana runes in s to katakana. Runes outside the
// hiragana block pass through unchanged.
func ToKatakana(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x3041 && r <= 0x3096 {
			b.WriteRune(r + hiraganaToKatakanaOffset)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToHiragana converts katakana runes in s to hiragana. Runes outside the
// katakana block pass through unchanged. This is the inverse of
// [ToKatakana].
func ToHiragana(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x30A1 && r <= 0x30F6 {
			b.WriteRune(r - hiraganaToKatakanaOffset)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// halfKatakana maps full-width katakana to their JIS X 0201 half-width
// forms. Not every full-width katakana has a half-width counterpart (e.g.
// no small "va" series); unmapped runes pass through unchanged.
var halfKatakana = map[rune]string{
	'ア': "ｱ", 'イ': "ｲ", 'ウ': "ｳ", 'エ': "ｴ", 'オ': "ｵ",
	'カ': "ｶ", 'キ': "ｷ", 'ク': "ｸ", 'ケ': "ｹ", 'コ': "ｺ",
	'サ': "ｻ", 'シ': "ｼ", 'ス': "ｽ", 'セ': "ｾ", 'ソ': "ｿ",
	'タ': "ﾀ", 'チ': "ﾁ", 'ツ': "ﾂ", 'テ': "ﾃ", 'ト': "ﾄ",
	'ナ': "ﾅ", 'ニ': "ﾆ", 'ヌ': "ﾇ", 'ネ': "ﾈ", 'ノ': "ﾉ",
	'ハ': "ﾊ", 'ヒ': "ﾋ", 'フ': "ﾌ", 'ヘ': "ﾍ", 'ホ': "ﾎ",
	'マ': "ﾏ", 'ミ': "ﾐ", 'ム': "ﾑ", 'メ': "ﾒ", 'モ': "ﾓ",
	'ヤ': "ﾔ", 'ユ': "ﾕ", 'ヨ': "ﾖ",
	'ラ': "ﾗ", 'リ': "ﾘ", 'ル': "ﾙ", 'レ': "ﾚ", 'ロ': "ﾛ",
	'ワ': "ﾜ", 'ヲ': "ｦ", 'ン': "ﾝ",
	'ガ': "ｶﾞ", 'ギ': "ｷﾞ", 'グ': "ｸﾞ", 'ゲ': "ｹﾞ", 'ゴ': "ｺﾞ",
	'ザ': "ｻﾞ", 'ジ': "ｼﾞ", 'ズ': "ｽﾞ", 'ゼ': "ｾﾞ", 'ゾ': "ｿﾞ",
	'ダ': "ﾀﾞ", 'ヂ': "ﾁﾞ", 'ヅ': "ﾂﾞ", 'デ': "ﾃﾞ", 'ド': "ﾄﾞ",
	'バ': "ﾊﾞ", 'ビ': "ﾋﾞ", 'ブ': "ﾌﾞ", 'ベ': "ﾍﾞ", 'ボ': "ﾎﾞ",
	'パ': "ﾊﾟ", 'ピ': "ﾋﾟ", 'プ': "ﾌﾟ", 'ペ': "ﾍﾟ", 'ポ': "ﾎﾟ",
	'ァ': "ｧ", 'ィ': "ｨ", 'ゥ': "ｩ", 'ェ': "ｪ", 'ォ': "ｫ",
	'ッ': "ｯ", 'ャ': "ｬ", 'ュ': "ｭ", 'ョ': "ｮ",
	'ー': "ｰ", '、': "､", '。': "｡", '「': "｢", '」': "｣", '・': "･",
}

// ToHalfKatakana converts s to katakana and then to half-width (JIS X 0201)
// forms, converting hiragana input first via [ToKatakana].
func ToHalfKatakana(s string) string {
	kata := ToKatakana(s)
	var b strings.Builder
	b.Grow(len(kata))
	for _, r := range kata {
		if half, ok := halfKatakana[r]; ok {
			b.WriteString(half)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
