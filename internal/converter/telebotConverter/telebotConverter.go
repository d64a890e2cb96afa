package telebotConverter

import (
	"strings"
	"unicode/utf8"
)

const MaxMessageLen = 4096

// ChatReply splits a reply into Telegram sized messages, preferring to cut at line breaks.
func ChatReply(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}
	}

	res := make([]string, 0, 1)
	for utf8.RuneCountInString(text) > MaxMessageLen {
		runes := []rune(text)
		cut := MaxMessageLen

		if idx := strings.LastIndex(string(runes[:MaxMessageLen]), "\n"); idx > 0 {
			cut = utf8.RuneCountInString(string(runes[:MaxMessageLen])[:idx])
		}

		res = append(res, strings.TrimSpace(string(runes[:cut])))
		text = strings.TrimSpace(string(runes[cut:]))
	}

	if text != "" {
		res = append(res, text)
	}
	return res
}
