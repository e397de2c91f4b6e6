package solver

import (
	"testing"
)

func TestParseVerdict_PlainJSON(t *testing.T) {
	stdout := `Fetching page...
Submission response: {"correct": true, "url": "https://quiz.example.com/q/2", "delay": 2}
done`

	v := ParseVerdict(stdout)
	if v.Correct == nil || !*v.Correct {
		t.Fatal("correct verdict not recovered")
	}
	if v.NextURL != "https://quiz.example.com/q/2" {
		t.Errorf("NextURL = %q", v.NextURL)
	}
	if v.DelaySeconds != 2 {
		t.Errorf("DelaySeconds = %v", v.DelaySeconds)
	}
}

func TestParseVerdict_PythonLiterals(t *testing.T) {
	stdout := `Submission response: {'correct': True, 'url': 'https://x.com/next'}`

	v := ParseVerdict(stdout)
	if v.Correct == nil || !*v.Correct {
		t.Fatal("python-literal dict not recovered")
	}
	if v.NextURL != "https://x.com/next" {
		t.Errorf("NextURL = %q", v.NextURL)
	}
}

func TestParseVerdict_IncorrectWithReason(t *testing.T) {
	stdout := `Submission response: {"correct": false, "reason": "expected 42"}`

	v := ParseVerdict(stdout)
	if v.Correct == nil || *v.Correct {
		t.Fatal("incorrect verdict not recovered")
	}
	if v.Reason != "expected 42" {
		t.Errorf("Reason = %q", v.Reason)
	}
}

func TestParseVerdict_MarkerPriority(t *testing.T) {
	// The decorated marker outranks the plain one even when it appears later.
	stdout := "Response: {\"correct\": false}\n\U0001F4E5 Submission response: {\"correct\": true}"

	v := ParseVerdict(stdout)
	if v.Correct == nil || !*v.Correct {
		t.Error("higher-priority marker should win")
	}
}

func TestParseVerdict_ObjectAfterNoise(t *testing.T) {
	// The first line after the marker is prose, but the segment holds an
	// object further down.
	stdout := `Submission response:
the server said
{"correct": true}`

	v := ParseVerdict(stdout)
	if v.Correct == nil || !*v.Correct {
		t.Error("object in marked segment not recovered")
	}
}

func TestParseVerdict_NoMarkerFallback(t *testing.T) {
	stdout := `debug line
{'correct': False, 'reason': 'try again'}
{'correct': True}`

	v := ParseVerdict(stdout)
	if v.Correct == nil || !*v.Correct {
		t.Error("last correct-object should win when no marker is present")
	}
}

func TestParseVerdict_Unparseable(t *testing.T) {
	v := ParseVerdict("script crashed before printing anything useful")
	if v.Known() {
		t.Errorf("garbage output must yield the zero verdict: %+v", v)
	}
}

func TestParseVerdict_StringCorrect(t *testing.T) {
	stdout := `Submission response: {"correct": "true"}`

	v := ParseVerdict(stdout)
	if v.Correct == nil || !*v.Correct {
		t.Error("string boolean not coerced")
	}
}
