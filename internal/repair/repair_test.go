package repair

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseStrictPassThrough(t *testing.T) {
	raw := `{"story":"You wake up.","timePassedMinutes":5}`
	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("strict parse should succeed: %v", err)
	}
	if string(got) != raw {
		t.Fatalf("well-formed JSON must pass through unchanged, got %s", got)
	}
}

func TestParseCodeFencedWithTrailingProse(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"story\": \"A dog barks.\"}\n```\nLet me know if you need anything else!"
	var out struct {
		Story string `json:"story"`
	}
	if err := ParseInto(raw, &out); err != nil {
		t.Fatalf("fenced JSON with prose should parse: %v", err)
	}
	if out.Story != "A dog barks." {
		t.Fatalf("wrong story: %q", out.Story)
	}
}

func TestParseCurlyQuotesAndTrailingComma(t *testing.T) {
	raw := "{\u201cstory\u201d: \u201cQuiet night.\u201d, \"minutes\": 10,}"
	var out map[string]any
	if err := ParseInto(raw, &out); err != nil {
		t.Fatalf("sanitize pass should rescue this: %v", err)
	}
	if out["story"] != "Quiet night." {
		t.Fatalf("story lost in sanitize: %v", out)
	}
}

func TestParseInteriorQuote(t *testing.T) {
	// The quote after Gizmo's " is followed by a letter, so it is content.
	raw := `{"story": "He said "hello" and left.", "ok": true}`
	var out struct {
		Story string `json:"story"`
		OK    bool   `json:"ok"`
	}
	if err := ParseInto(raw, &out); err != nil {
		t.Fatalf("interior quotes should be re-escaped: %v", err)
	}
	if out.Story != `He said "hello" and left.` || !out.OK {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestParseStrayBackslash(t *testing.T) {
	raw := `{"path": "C:\Users\wasteland"}`
	var out map[string]string
	if err := ParseInto(raw, &out); err != nil {
		t.Fatalf("stray backslashes should be escaped: %v", err)
	}
	if out["path"] != `C:\Users\wasteland` {
		t.Fatalf("path mangled: %q", out["path"])
	}
}

func TestParseControlCharacters(t *testing.T) {
	raw := "{\"story\": \"gone\x07wrong\"}"
	var out map[string]string
	if err := ParseInto(raw, &out); err != nil {
		t.Fatalf("control chars should be stripped: %v", err)
	}
	if out["story"] != "gonewrong" {
		t.Fatalf("unexpected story: %q", out["story"])
	}
}

func TestParseExhaustionIsTyped(t *testing.T) {
	_, err := Parse("the model refused to answer in json")
	if !errors.Is(err, ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", err)
	}
	var v struct{}
	if err := ParseInto("total garbage {{{", &v); !errors.Is(err, ErrDataIntegrity) {
		t.Fatalf("ParseInto must surface the same typed error, got %v", err)
	}
}

func TestParseRoundTripEquivalence(t *testing.T) {
	// A wrapped object must decode identically to the bare one.
	bare := `{"a":1,"b":[1,2,3],"c":{"d":"e"}}`
	wrapped := "```json\n" + bare + "\n```\ntrailing commentary"
	var v1, v2 any
	if err := ParseInto(bare, &v1); err != nil {
		t.Fatalf("bare: %v", err)
	}
	if err := ParseInto(wrapped, &v2); err != nil {
		t.Fatalf("wrapped: %v", err)
	}
	b1, _ := json.Marshal(v1)
	b2, _ := json.Marshal(v2)
	if string(b1) != string(b2) {
		t.Fatalf("round-trip mismatch: %s vs %s", b1, b2)
	}
}
