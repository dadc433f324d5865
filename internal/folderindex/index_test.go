package folderindex

import "testing"

func TestParseRangeName(t *testing.T) {
	cases := []struct {
		name    string
		wantLo  uint64
		wantHi  uint64
		wantOK  bool
	}{
		{"0-100", 0, 100, true},
		{"100-200", 100, 200, true},
		{"notarange", 0, 0, false},
		{"abc-def", 0, 0, false},
	}
	for _, tc := range cases {
		lo, hi, ok := parseRangeName(tc.name)
		if ok != tc.wantOK {
			t.Fatalf("parseRangeName(%q) ok=%v, want %v", tc.name, ok, tc.wantOK)
		}
		if ok && (lo != tc.wantLo || hi != tc.wantHi) {
			t.Fatalf("parseRangeName(%q)=(%d,%d), want (%d,%d)", tc.name, lo, hi, tc.wantLo, tc.wantHi)
		}
	}
}

func TestMightContainNilFilterIsPermissive(t *testing.T) {
	f := &FolderIndex{Lo: 0, Hi: 100}
	if !f.MightContain([]byte{0x01, 0x02}) {
		t.Fatalf("nil filter should be permissive (might contain everything)")
	}
}

func TestPruneAddressesNilFilterKeepsAll(t *testing.T) {
	f := &FolderIndex{Lo: 0, Hi: 100}
	in := [][]byte{{0x01}, {0x02}}
	out := f.PruneAddresses(in)
	if len(out) != len(in) {
		t.Fatalf("PruneAddresses with nil filter dropped entries: got %d, want %d", len(out), len(in))
	}
}
