package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type entry struct {
	code2 string   // ISO 639-1 (2-letter)
	alt3  string   // ISO 639-2/B code x/text does not resolve (e.g. "fre")
	words []string // English and native names ASR vendors report
}

// Vendors report languages as ISO codes, BCP 47 tags, or plain names.
// Codes and tags go through x/text; this table covers the rest.
var languages = []entry{
	{"en", "", []string{"english"}},
	{"es", "", []string{"spanish", "español"}},
	{"fr", "fre", []string{"french", "français"}},
	{"de", "ger", []string{"german", "deutsch"}},
	{"it", "", []string{"italian"}},
	{"pt", "", []string{"portuguese"}},
	{"ja", "", []string{"japanese", "日本語"}},
	{"ko", "", []string{"korean", "한국어"}},
	{"zh", "chi", []string{"chinese", "mandarin", "中文"}},
	{"yue", "", []string{"cantonese"}},
	{"ru", "", []string{"russian"}},
	{"nl", "dut", []string{"dutch"}},
}

var byName map[string]string

func init() {
	byName = make(map[string]string, len(languages)*3)
	for _, e := range languages {
		if e.alt3 != "" {
			byName[e.alt3] = e.code2
		}
		for _, w := range e.words {
			byName[w] = e.code2
		}
	}
}

// Normalize maps a vendor language value to its base language subtag,
// ISO 639-1 where one exists: "jpn" and "ja-JP" become "ja", "zh-Hans-CN"
// becomes "zh", "Japanese" becomes "ja". Empty, "auto" and unparseable
// input return "".
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	switch code {
	case "", "auto", "und", "unknown":
		return ""
	}
	if mapped, ok := byName[code]; ok {
		return mapped
	}
	tag, err := xlanguage.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == xlanguage.No || base.String() == "und" {
		return ""
	}
	return base.String()
}

// DisplayName returns the English name of a language value, "Unknown" for
// empty input, or the uppercased input when it cannot be resolved.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	normalized := Normalize(code)
	if normalized == "" {
		return strings.ToUpper(strings.TrimSpace(code))
	}
	if name := display.English.Languages().Name(xlanguage.Make(normalized)); name != "" {
		return name
	}
	return strings.ToUpper(normalized)
}
