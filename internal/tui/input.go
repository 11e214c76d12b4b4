package tui

import (
	"strings"

	"github.com/verte-zerg/mathdrill/internal/session"
)

// answerBuffer is the numeric entry line of the question screen. It always
// holds a displayable value and starts at "0".
type answerBuffer struct {
	text string
}

func newAnswerBuffer() answerBuffer {
	return answerBuffer{text: "0"}
}

func (b *answerBuffer) appendDigit(d rune) {
	if d < '0' || d > '9' {
		return
	}
	if b.text == "0" {
		b.text = string(d)
		return
	}
	if len(b.text) >= session.MaxAnswerLen {
		return
	}
	b.text += string(d)
}

func (b *answerBuffer) backspace() {
	if len(b.text) <= 1 {
		b.text = "0"
		return
	}
	b.text = b.text[:len(b.text)-1]
	if b.text == "-" {
		b.text = "0"
	}
}

func (b *answerBuffer) clear() {
	b.text = "0"
}

func (b *answerBuffer) toggleSign() {
	if b.text == "0" {
		return
	}
	if strings.HasPrefix(b.text, "-") {
		b.text = b.text[1:]
		return
	}
	if len(b.text) >= session.MaxAnswerLen {
		return
	}
	b.text = "-" + b.text
}

func (b answerBuffer) String() string {
	return b.text
}
