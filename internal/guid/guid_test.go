package guid

import (
	"errors"
	"strings"
	"testing"
)

func TestValid(t *testing.T) {
	cases := []struct {
		token string
		want  bool
	}{
		{"0123456789abcdef0123456789abcdef", true},
		{"zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", true},
		{"0123456789ABCDEF0123456789abcdef", false},
		{"0123456789abcdef0123456789abcde", false},
		{"0123456789abcdef0123456789abcdef0", false},
		{"0123456789abcdef-123456789abcdef", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := Valid(tc.token); got != tc.want {
			t.Fatalf("Valid(%q) = %v, want %v", tc.token, got, tc.want)
		}
	}
}

func TestExtractFindsMarkedTokensInOrder(t *testing.T) {
	text := strings.Join([]string{
		"fileFormatVersion: 2",
		"guid: 0123456789abcdef0123456789abcdef",
		"  m_Shader: {fileID: 46, guid: 0000000000000000f000000000000000, type: 0}",
		"  m_Tex: {fileID: 2800000, guid: 0123456789abcdef0123456789abcdef, type: 3}",
		"",
	}, "\n")

	got := Extract(text)
	want := []ID{
		"0123456789abcdef0123456789abcdef",
		"0000000000000000f000000000000000",
		"0123456789abcdef0123456789abcdef",
	}
	if len(got) != len(want) {
		t.Fatalf("Extract returned %d ids, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("id %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractSkipsMalformedTokens(t *testing.T) {
	text := "guid: 0123456789ABCDEF0123456789abcdef\nguid: short\nguid: abcdefabcdefabcdefabcdefabcdefab\n"
	got := Extract(text)
	if len(got) != 1 || got[0] != "abcdefabcdefabcdefabcdefabcdefab" {
		t.Fatalf("unexpected ids: %v", got)
	}
}

func TestExtractTokenAtEndOfText(t *testing.T) {
	got := Extract("guid: 0123456789abcdef0123456789abcdef")
	if len(got) != 1 {
		t.Fatalf("expected trailing token to be extracted, got %v", got)
	}
	if ids := Extract("guid: 0123456789abcdef"); len(ids) != 0 {
		t.Fatalf("expected truncated token to be ignored, got %v", ids)
	}
}

func TestFirst(t *testing.T) {
	if _, ok := First("no identifiers here"); ok {
		t.Fatal("expected no identifier")
	}
	id, ok := First("a\nguid: 11111111111111111111111111111111\nguid: 22222222222222222222222222222222\n")
	if !ok || id != "11111111111111111111111111111111" {
		t.Fatalf("First = %q, %v", id, ok)
	}
}

func TestReplaceOnlyTouchesMarkedOccurrences(t *testing.T) {
	old := ID("0123456789abcdef0123456789abcdef")
	repl := ID("fedcba9876543210fedcba9876543210")
	content := "guid: " + string(old) + "\nname: " + string(old) + "\n{guid: " + string(old) + ", type: 2}\n"

	got := Replace(content, old, repl)
	want := "guid: " + string(repl) + "\nname: " + string(old) + "\n{guid: " + string(repl) + ", type: 2}\n"
	if got != want {
		t.Fatalf("Replace mismatch:\n got %q\nwant %q", got, want)
	}
	if n := Occurrences(content, old); n != 2 {
		t.Fatalf("Occurrences = %d, want 2", n)
	}
}

func TestMinterProducesDistinctValidTokens(t *testing.T) {
	m := NewMinter(nil)
	seen := make(map[ID]struct{})
	for i := 0; i < 500; i++ {
		id, err := m.Mint()
		if err != nil {
			t.Fatalf("Mint: %v", err)
		}
		if !Valid(string(id)) {
			t.Fatalf("minted malformed token %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("minted duplicate %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestMinterSkipsReservedTokens(t *testing.T) {
	reserved := "11111111111111111111111111111111"
	fresh := "22222222222222222222222222222222"
	calls := 0
	m := NewMinter(func() (string, error) {
		calls++
		if calls == 1 {
			return reserved, nil
		}
		return fresh, nil
	})
	m.Reserve(ID(reserved))

	id, err := m.Mint()
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if id != ID(fresh) {
		t.Fatalf("Mint = %q, want %q", id, fresh)
	}
	if calls != 2 {
		t.Fatalf("expected reserved token to be re-rolled, calls=%d", calls)
	}
}

func TestMinterGivesUpOnExhaustedSource(t *testing.T) {
	m := NewMinter(func() (string, error) { return "33333333333333333333333333333333", nil })
	if _, err := m.Mint(); err != nil {
		t.Fatalf("first Mint: %v", err)
	}
	if _, err := m.Mint(); err == nil {
		t.Fatal("expected error when source keeps colliding")
	}
}

func TestMinterPropagatesSourceErrors(t *testing.T) {
	boom := errors.New("entropy unavailable")
	m := NewMinter(func() (string, error) { return "", boom })
	if _, err := m.Mint(); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}
