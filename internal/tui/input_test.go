package tui

import "testing"

func TestAnswerBufferDigits(t *testing.T) {
	b := newAnswerBuffer()
	if b.String() != "0" {
		t.Fatalf("expected initial 0, got %q", b.String())
	}
	for _, r := range "01234567" {
		b.appendDigit(r)
	}
	if b.String() != "123456" {
		t.Fatalf("expected leading zero replaced and six digit cap, got %q", b.String())
	}
	b.appendDigit('x')
	if b.String() != "123456" {
		t.Fatalf("non-digit should be ignored, got %q", b.String())
	}
}

func TestAnswerBufferBackspaceAndClear(t *testing.T) {
	b := newAnswerBuffer()
	b.appendDigit('4')
	b.appendDigit('2')
	b.backspace()
	if b.String() != "4" {
		t.Fatalf("expected 4, got %q", b.String())
	}
	b.backspace()
	if b.String() != "0" {
		t.Fatalf("expected 0 after deleting last digit, got %q", b.String())
	}
	b.appendDigit('9')
	b.clear()
	if b.String() != "0" {
		t.Fatalf("expected 0 after clear, got %q", b.String())
	}
}

func TestAnswerBufferToggleSign(t *testing.T) {
	b := newAnswerBuffer()
	b.toggleSign()
	if b.String() != "0" {
		t.Fatalf("zero has no sign, got %q", b.String())
	}
	b.appendDigit('7')
	b.toggleSign()
	if b.String() != "-7" {
		t.Fatalf("expected -7, got %q", b.String())
	}
	b.backspace()
	if b.String() != "0" {
		t.Fatalf("a lone minus should collapse to 0, got %q", b.String())
	}
	b.appendDigit('7')
	b.toggleSign()
	b.toggleSign()
	if b.String() != "7" {
		t.Fatalf("expected 7 after double toggle, got %q", b.String())
	}
}
