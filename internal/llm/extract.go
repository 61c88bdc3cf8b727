package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	objectSpan  = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON разбирает JSON-объект из ответа модели в dst. Пробует по очереди:
// весь текст, первый блок ```json ... ```, участок от первой '{' до последней '}'.
func ExtractJSON(text string, dst any) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrUnparseable
	}

	candidates := []string{text}
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if m := objectSpan.FindString(text); m != "" {
		candidates = append(candidates, m)
	}

	for _, candidate := range candidates {
		if !json.Valid([]byte(candidate)) {
			continue
		}
		if err := json.Unmarshal([]byte(candidate), dst); err != nil {
			return fmt.Errorf("%w: %v", ErrUnparseable, err)
		}
		return nil
	}
	return ErrUnparseable
}
