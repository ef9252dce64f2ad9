package normalize

import "testing"

func TestIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"مرحباً بكم في المدرسة",
		"القاهرة   هي عاصمة مصر.",
		"إسلام أحمد آمن بالإصلاح",
		"مكتبة  ",
		"جميييل جداً",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestEmptyInput(t *testing.T) {
	if got := Normalize(""); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestUnifiesAlefVariants(t *testing.T) {
	got := Normalize("آمن أحمد إبراهيم ٱلرحمن")
	for _, r := range got {
		if r == 'آ' || r == 'أ' || r == 'إ' || r == 'ٱ' {
			t.Fatalf("alef variant leaked through: %q", got)
		}
	}
}

func TestUnifiesTaaMarbuta(t *testing.T) {
	got := Normalize("مدرسة")
	for _, r := range got {
		if r == 'ة' {
			t.Fatalf("taa-marbuta leaked through: %q", got)
		}
	}
}

func TestStripsTatweelAndDiacritics(t *testing.T) {
	got := Normalize("جـــميل مُشَكَّل")
	if got != Normalize(got) {
		t.Fatalf("not stable after normalization")
	}
	for _, r := range got {
		if r == 'ـ' {
			t.Fatalf("tatweel leaked through: %q", got)
		}
	}
}

func TestCollapsesWhitespace(t *testing.T) {
	got := Normalize("مرحبا    بك   جدا")
	want := "مرحبا بك جدا"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
