package utils

import (
	"github.com/abadojack/whatlanggo"
)

var whatLangOpts = whatlanggo.Options{
	Whitelist: map[whatlanggo.Lang]bool{
		whatlanggo.Eng: true,
		whatlanggo.Hin: true,
		whatlanggo.Ben: true,
		whatlanggo.Tam: true,
		whatlanggo.Tel: true,
		whatlanggo.Mar: true,
		whatlanggo.Guj: true,
		whatlanggo.Urd: true,
	},
}

// WhatLang returns the ISO 639-1 code of the detected language, or "" when
// the text is too short or ambiguous to tell.
func WhatLang(text string) string {
	if len([]rune(text)) < 3 {
		return ""
	}
	info := whatlanggo.DetectWithOptions(text, whatLangOpts)
	if !info.IsReliable() && info.Confidence < 0.5 {
		return ""
	}
	return info.Lang.Iso6391()
}
