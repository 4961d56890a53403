package ai

import "testing"

func TestExtractJSON(t *testing.T) {
	fenced := "```json\n{\"business_context\": \"x\"}\n```"
	if got := extractJSON(fenced); got != `{"business_context": "x"}` {
		t.Errorf("fenced: got %q", got)
	}

	prose := `Sure! Here is the answer: {"a": 1} Hope that helps.`
	if got := extractJSON(prose); got != `{"a": 1}` {
		t.Errorf("prose: got %q", got)
	}

	bare := `{"a": 1}`
	if got := extractJSON(bare); got != bare {
		t.Errorf("bare: got %q", got)
	}

	// No object at all is returned unchanged and left to the JSON decoder.
	if got := extractJSON("no json here"); got != "no json here" {
		t.Errorf("plain: got %q", got)
	}
}
