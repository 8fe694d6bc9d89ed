package utils

import (
	"strings"
	"unicode"
)

var cyrillicToLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
	'е': "e", 'ё': "yo", 'ж': "zh", 'з': "z", 'и': "i",
	'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t",
	'у': "u", 'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch",
	'ш': "sh", 'щ': "sch", 'ъ': "", 'ы': "y", 'ь': "",
	'э': "e", 'ю': "yu", 'я': "ya",
	'ғ': "gh", 'ӣ': "i", 'қ': "q", 'ӯ': "u", 'ҳ': "h", 'ҷ': "j",
}

// Transliterate переводит кириллицу в латиницу с сохранением регистра первой буквы.
// Нужна там, где шрифт не умеет кириллицу (pdf без подключённого TTF).
func Transliterate(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		lower := unicode.ToLower(r)
		repl, ok := cyrillicToLatin[lower]
		if !ok {
			sb.WriteRune(r)
			continue
		}
		if r != lower && repl != "" {
			repl = strings.ToUpper(repl[:1]) + repl[1:]
		}
		sb.WriteString(repl)
	}
	return sb.String()
}
