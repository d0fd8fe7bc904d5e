package gazetteer

import (
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Kampong Cham", "kampong-cham"},
		{"  Kampong   Cham ", "kampong-cham"},
		{"KAMPONG\tCHAM", "kampong-cham"},
		{"kampong-cham", "kampong-cham"},
		{"Đà Nẵng", "đà-nẵng"},
		{"\u0110a\u0300 Na\u0306\u0303ng", "đà-nẵng"}, // decomposed input
		{"Cambodge", "cambodge"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeKey(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := NormalizeKey(got); again != got {
				t.Errorf("NormalizeKey is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeKeyEqualTermsResolveAlike(t *testing.T) {
	idx := NewNameIndex()
	idx.Add("Kampong Cham", "KH-3")

	for _, term := range []string{"kampong cham", "KAMPONG CHAM", " Kampong  Cham", "kampong-cham"} {
		got := idx.Lookup(term)
		if len(got) != 1 || got[0] != "KH-3" {
			t.Errorf("Lookup(%q) = %v, want [KH-3]", term, got)
		}
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Kampong  Cham ", "Kampong Cham"},
		{"\tPhum\nThmei", "Phum Thmei"},
		{"Ve\u0301ne", "Véne"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Kampong Siem", "kampong-siem"},
		{"Mỹ Sơn (Quảng Nam)", "mỹ-sơn-quảng-nam"},
		{"Phum 3", "phum-3"},
		{"Wat Phu / Champasak", "wat-phu-champasak"},
		{"???", ""},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOrderedSet(t *testing.T) {
	s := NewOrderedSet("b", "a")
	if !s.Add("c") || s.Add("a") {
		t.Fatal("Add did not report membership correctly")
	}
	if got := s.Values(); len(got) != 3 || got[0] != "b" || got[1] != "a" || got[2] != "c" {
		t.Errorf("Values() = %v, want [b a c]", got)
	}

	added := s.AddAll("c", "d", "d", "e")
	if len(added) != 2 || added[0] != "d" || added[1] != "e" {
		t.Errorf("AddAll returned %v, want [d e]", added)
	}

	other := NewOrderedSet("a", "z")
	if missing := s.Missing(other); len(missing) != 1 || missing[0] != "z" {
		t.Errorf("Missing = %v, want [z]", missing)
	}

	c := s.Clone()
	c.Add("x")
	if s.Contains("x") {
		t.Error("Clone shares storage with the original")
	}

	var nilSet *OrderedSet
	if nilSet.Len() != 0 || nilSet.Contains("a") || nilSet.Values() != nil {
		t.Error("nil set should behave as empty")
	}
}

func TestFoldedSet(t *testing.T) {
	s := NewFoldedSet("Village")
	if s.Add("village") {
		t.Error("folded set accepted a case variant")
	}
	if got := s.Values(); len(got) != 1 || got[0] != "Village" {
		t.Errorf("Values() = %v, want [Village]", got)
	}
}

func TestNameIndex(t *testing.T) {
	idx := NewNameIndex()
	idx.Add("Vientiane", "LA-VI")
	idx.Add("vientiane", "LA-VT")
	idx.Add("Vientiane", "LA-VI")

	if got := idx.Lookup("VIENTIANE"); len(got) != 2 || got[0] != "LA-VI" || got[1] != "LA-VT" {
		t.Errorf("Lookup = %v, want [LA-VI LA-VT]", got)
	}
	if got := idx.LookupReverse("LA-VT"); len(got) != 1 || got[0] != "vientiane" {
		t.Errorf("LookupReverse = %v, want [vientiane]", got)
	}
	if got := idx.Lookup("Luang Prabang"); len(got) != 0 {
		t.Errorf("Lookup on a miss = %v, want empty", got)
	}
	if idx.Len() != 1 {
		t.Errorf("Len() = %d, want 1", idx.Len())
	}

	n := 0
	idx.Keys(func(key string, ids []string) bool {
		n++
		if key != "vientiane" {
			t.Errorf("unexpected key %q", key)
		}
		return true
	})
	if n != 1 {
		t.Errorf("Keys visited %d keys, want 1", n)
	}
}
