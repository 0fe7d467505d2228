package domain

import "testing"

func TestResolverType_IsValid(t *testing.T) {
	cases := []struct {
		typ  ResolverType
		want bool
	}{
		{ResolverCoreDNS, true},
		{ResolverUnbound, true},
		{"bind", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := tc.typ.IsValid(); got != tc.want {
			t.Errorf("IsValid(%q) = %v, want %v", tc.typ, got, tc.want)
		}
	}
}

func TestParseResolverType(t *testing.T) {
	cases := []struct {
		input   string
		want    ResolverType
		wantErr bool
	}{
		{"coredns", ResolverCoreDNS, false},
		{"unbound", ResolverUnbound, false},
		{"CoreDNS", "", true},
		{"", "", true},
		{"dnsmasq", "", true},
	}
	for _, tc := range cases {
		got, err := ParseResolverType(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseResolverType(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseResolverType(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
