package i18n

import "testing"

func TestT_SubstitutesPlaceholders(t *testing.T) {
	got := T("en-US", KeyThanksPatientDetails, map[string]string{"name": "Asha"})
	want := "Thank you, Asha. Please describe your symptoms now."
	if got != want {
		t.Fatalf("T() = %q, want %q", got, want)
	}
}

func TestT_FallsBackToDefaultLanguage(t *testing.T) {
	// Bengali has no disclaimer entry.
	got := T("bn-IN", KeyDisclaimer, nil)
	if got != T(Default, KeyDisclaimer, nil) {
		t.Fatalf("expected English fallback, got %q", got)
	}

	got = T("xx-XX", KeyAskName, nil)
	if got != "What is your name?" {
		t.Fatalf("unknown language fallback = %q", got)
	}
}

func TestT_UnknownKeyReturnsKey(t *testing.T) {
	if got := T("hi-IN", Key("nope"), nil); got != "nope" {
		t.Fatalf("T() = %q, want key", got)
	}
}

func TestEveryLanguageHasIntakePrompts(t *testing.T) {
	keys := []Key{KeyWelcomeMessage, KeyAskName, KeyAskAge, KeyAskPhone, KeyAskLocation, KeyThanksPatientDetails}
	for _, lang := range Languages() {
		for _, key := range keys {
			if _, ok := translations[lang.Code][key]; !ok {
				t.Errorf("%s is missing %s", lang.Code, key)
			}
		}
	}
}

func TestLabelAndBase(t *testing.T) {
	if got := Label("mr-IN"); got != "Marathi" {
		t.Fatalf("Label(mr-IN) = %q", got)
	}
	if got := Label("xx"); got != "xx" {
		t.Fatalf("Label(xx) = %q", got)
	}
	if got := Base("bn-IN"); got != "bn" {
		t.Fatalf("Base(bn-IN) = %q", got)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("ta-IN"); got != "ta-IN" {
		t.Fatalf("Normalize(ta-IN) = %q", got)
	}
	if got := Normalize("fr-FR"); got != Default {
		t.Fatalf("Normalize(fr-FR) = %q", got)
	}
}
