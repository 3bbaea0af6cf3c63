package common

import "testing"

func TestIsAddress(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"0x09e8798DAb58C211183c42325Ad7CCd935C11f7D", true},
		{"0x09e8798dab58c211183c42325ad7ccd935c11f7d", true},
		{"0x09E8798DAB58C211183C42325AD7CCD935C11F7D", true},
		{"0x09e8798DAb58C211183c42325Ad7CCd935C11f7d", false}, // bad checksum
		{"09e8798dab58c211183c42325ad7ccd935c11f7d", false},
		{"0x1234", false},
		{"", false},
		{"0xzz e8798dab58c211183c42325ad7ccd935c11f7", false},
	}
	for _, c := range cases {
		if got := IsAddress(c.in); got != c.want {
			t.Errorf("IsAddress(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNormalizeAddress(t *testing.T) {
	got := NormalizeAddress(" 0x09e8798dab58c211183c42325ad7ccd935c11f7d ")
	if got != "0x09e8798DAb58C211183c42325Ad7CCd935C11f7D" {
		t.Errorf("unexpected checksum form %s", got)
	}
	if NormalizeAddress("nope") != "" {
		t.Error("expected empty string for invalid input")
	}
}

func TestMinterRole(t *testing.T) {
	want := "0x9f2df0fed2c77648de5860a4cc508cd0818c85b8b8a1ab4ceeef8d981c8956a6"
	if MinterRole.Hex() != want {
		t.Errorf("MinterRole = %s, want %s", MinterRole.Hex(), want)
	}
	r, err := ParseRole("MINTER_ROLE")
	if err != nil || r != MinterRole {
		t.Errorf("ParseRole(MINTER_ROLE) = %s, %v", r.Hex(), err)
	}
	r, err = ParseRole(want)
	if err != nil || RoleName(r) != "MINTER_ROLE" {
		t.Errorf("ParseRole(hex) = %s, %v", r.Hex(), err)
	}
	if _, err := ParseRole("0x1234"); err == nil {
		t.Error("expected error for short role id")
	}
	if RoleName(DefaultAdminRole) != "DEFAULT_ADMIN_ROLE" {
		t.Error("admin role name mismatch")
	}
}
