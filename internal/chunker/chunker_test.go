package chunker

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplit_EachWordAlone(t *testing.T) {
	got := Split("alpha beta gamma", 5)
	want := []string{"alpha", "beta", "gamma"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t\n"} {
		got := Split(in, 2000)
		if len(got) != 0 {
			t.Errorf("input %q: expected no chunks, got %v", in, got)
		}
	}
}

func TestSplit_WordsCombineWhenTheyFit(t *testing.T) {
	// "net income" is 10 chars; accounting reserves 4+1 + 6+1 = 12.
	got := Split("net income rose sharply", 12)
	want := []string{"net income", "rose", "sharply"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSplit_OverlongWordKeptWhole(t *testing.T) {
	long := strings.Repeat("x", 50)
	got := Split("a "+long+" b", 10)
	want := []string{"a", long, "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSplit_NonPositiveBoundUsesDefault(t *testing.T) {
	text := strings.Repeat("word ", 1000) // 5000 chars of budget
	got := Split(text, 0)
	want := Split(text, DefaultMaxChars)
	if !reflect.DeepEqual(got, want) {
		t.Error("expected non-positive bound to behave like the default")
	}
	if len(got) != 3 {
		t.Errorf("expected 3 chunks at the default bound, got %d", len(got))
	}
}

func TestSplit_CountsRunesNotBytes(t *testing.T) {
	// Each word is 3 runes but 6 bytes; two words need 8 of budget.
	got := Split("€€€ ¥¥¥", 8)
	if len(got) != 1 {
		t.Errorf("expected one chunk, got %v", got)
	}
}

func TestSplit_Properties(t *testing.T) {
	inputs := []string{
		"The company reported revenue of $4.2B, up 12% year over year.",
		strings.Repeat("EBITDA margin expanded   by 300bps\n\n", 120),
		"single",
		"  leading and trailing  ",
		strings.Repeat("a ", 1500),
		"Liquidity\tand\tcapital\nresources remain adequate " + strings.Repeat("z", 40),
	}
	sizes := []int{1, 5, 17, 64, 2000}

	for _, in := range inputs {
		normalized := strings.Join(strings.Fields(in), " ")
		for _, size := range sizes {
			chunks := Split(in, size)

			if got := strings.Join(chunks, " "); got != normalized {
				t.Errorf("size %d: rejoined text differs from normalized input", size)
			}
			for i, c := range chunks {
				if c == "" {
					t.Errorf("size %d: chunk %d is empty", size, i)
				}
				if utf8.RuneCountInString(c) > size && len(strings.Fields(c)) > 1 {
					t.Errorf("size %d: multi-word chunk %d has %d chars", size, i, utf8.RuneCountInString(c))
				}
			}
			if again := Split(in, size); !reflect.DeepEqual(chunks, again) {
				t.Errorf("size %d: expected identical output on repeat", size)
			}
		}
	}
}

func TestChunks_SequentialIndexing(t *testing.T) {
	chunks := Chunks(strings.Repeat("cash flow ", 300), 100)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, c.Index)
		}
		if c.Text == "" {
			t.Errorf("chunk %d: empty text", i)
		}
	}
}

func TestChunks_Empty(t *testing.T) {
	if got := Chunks("", 2000); len(got) != 0 {
		t.Errorf("expected no chunks, got %d", len(got))
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 1},
		{"one", 1},
		{"one two three", 3},
		{strings.Repeat("w ", 100), 133},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.in); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
