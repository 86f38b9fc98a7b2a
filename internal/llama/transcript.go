// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llama

import "strings"

// transcript is the chat history of one session, rendered back into the
// prompt on every turn so the model sees earlier exchanges.
type transcript struct {
	template string
	text     strings.Builder
}

func newTranscript(template string) *transcript {
	return &transcript{template: template}
}

// render returns the full model input for the next prompt.
func (t *transcript) render(prompt string) string {
	return t.text.String() + t.wrap(prompt)
}

// record appends a finished exchange.
func (t *transcript) record(prompt, answer string) {
	t.text.WriteString(t.wrap(prompt))
	t.text.WriteString(strings.TrimSpace(answer))
	t.text.WriteString("\n\n")
}

func (t *transcript) reset() {
	t.text.Reset()
}

func (t *transcript) wrap(prompt string) string {
	if !strings.Contains(t.template, "{prompt}") {
		return t.template + prompt
	}
	return strings.ReplaceAll(t.template, "{prompt}", prompt)
}

// stopWord is the template text before the prompt, so the model stops
// rather than writing the next user turn itself.
func stopWord(template string) string {
	head, _, ok := strings.Cut(template, "{prompt}")
	if !ok {
		return ""
	}
	return strings.TrimSpace(head)
}
