// Package prompt builds the instructions and bounded context sent to
// generation models.
package prompt

import (
	"strings"
	"unicode/utf8"
)

const (
	SystemInstruction = "Ты ассистент ИТМО. Отвечай строго по учебным программам AI и AI Product. " +
		"Используй переданный контекст. Если нужной информации нет в контексте — скажи, что в материалах программ этого нет. " +
		"Отвечай кратко и по-русски; при необходимости перечисляй пункты. Не выдумывай факты."

	ContextSeparator = "\n\n---\n\n"

	DefaultHostedContextChars = 8000
	DefaultLocalContextChars  = 3000
)

// FormatContext joins trimmed, non-empty chunks in order. Chunks are taken
// greedily and the last one is cut so the result, separators included, never
// exceeds maxChars runes.
func FormatContext(chunks []string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	sepLen := utf8.RuneCountInString(ContextSeparator)

	var b strings.Builder
	total := 0
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		cost := 0
		if total > 0 {
			cost = sepLen
		}
		budget := maxChars - total - cost
		if budget <= 0 {
			break
		}
		part := chunk
		if n := utf8.RuneCountInString(part); n > budget {
			part = cutRunes(part, budget)
		}
		if total > 0 {
			b.WriteString(ContextSeparator)
		}
		b.WriteString(part)
		total += cost + utf8.RuneCountInString(part)
	}
	return b.String()
}

// UserMessage wraps the question and its context for chat-style models.
func UserMessage(question, context string) string {
	return "Контекст (фрагменты с учебных страниц):\n" + context +
		"\n\nВопрос: " + question +
		"\n\nОтветь по контексту. Если ответа в контексте нет — так и скажи."
}

// Completion is the single-string prompt for completion-style models.
func Completion(question, context string) string {
	return SystemInstruction + "\n\n" + UserMessage(question, context)
}

func cutRunes(s string, n int) string {
	i := 0
	for idx := range s {
		if i == n {
			return s[:idx]
		}
		i++
	}
	return s
}
