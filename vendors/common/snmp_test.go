package common

import (
	"bytes"
	"testing"
)

func TestNormalizeOID(t *testing.T) {
	tests := []struct {
		name string
		oid  string
		want string
	}{
		{name: "plain", oid: "1.3.6.1", want: "1.3.6.1"},
		{name: "leading dot", oid: ".1.3.6.1", want: "1.3.6.1"},
		{name: "trailing dot", oid: "1.3.6.1.2.1.2.2.1.2.", want: "1.3.6.1.2.1.2.2.1.2"},
		{name: "double dot", oid: "1.3.6.1.4.1.3320.101.11.1.1.11..12.0", want: "1.3.6.1.4.1.3320.101.11.1.1.11.12.0"},
		{name: "iso root", oid: "iso.3.6.1.4.1.3320.101.11.1.1.11.", want: "1.3.6.1.4.1.3320.101.11.1.1.11"},
		{name: "spaces", oid: " 1.3.6 ", want: "1.3.6"},
		{name: "empty", oid: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeOID(tt.oid); got != tt.want {
				t.Errorf("NormalizeOID(%q) = %q, want %q", tt.oid, got, tt.want)
			}
		})
	}
}

func TestJoinOID(t *testing.T) {
	got := JoinOID("1.3.6.1.4.1.3320.101.11.1.1.10.", "12", "0.26.11.187.204.221")
	want := "1.3.6.1.4.1.3320.101.11.1.1.10.12.0.26.11.187.204.221"
	if got != want {
		t.Errorf("JoinOID() = %q, want %q", got, want)
	}
}

func TestOIDIndex(t *testing.T) {
	tests := []struct {
		name string
		base string
		oid  string
		want string
	}{
		{name: "direct child", base: "1.3.6.1.2.1.2.2.1.2", oid: ".1.3.6.1.2.1.2.2.1.2.12", want: "12"},
		{name: "deep child", base: "1.3.6.1.4.1.3320.101.9.1.1.1", oid: "1.3.6.1.4.1.3320.101.9.1.1.1.12.3", want: "12.3"},
		{name: "not under base", base: "1.3.6.1.2.1.2.2.1.2", oid: "1.3.6.1.2.1.2.2.1.3.12", want: ""},
		{name: "prefix but not component", base: "1.3.6.1.2.1.2.2.1.2", oid: "1.3.6.1.2.1.2.2.1.22", want: ""},
		{name: "base itself", base: "1.3.6.1", oid: "1.3.6.1", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OIDIndex(tt.base, tt.oid); got != tt.want {
				t.Errorf("OIDIndex(%q, %q) = %q, want %q", tt.base, tt.oid, got, tt.want)
			}
		})
	}
}

func TestLastOIDComponent(t *testing.T) {
	if got := LastOIDComponent(".1.3.6.1.2.1.2.2.1.2.42"); got != "42" {
		t.Errorf("LastOIDComponent() = %q, want 42", got)
	}
	if got := LastOIDComponent("7"); got != "7" {
		t.Errorf("LastOIDComponent() = %q, want 7", got)
	}
}

func TestGetSNMPResult(t *testing.T) {
	tests := []struct {
		name      string
		results   map[string]interface{}
		oid       string
		wantValue interface{}
		wantFound bool
	}{
		{
			name:      "nil results",
			results:   nil,
			oid:       "1.3.6.1",
			wantValue: nil,
			wantFound: false,
		},
		{
			name:      "exact match without dot",
			results:   map[string]interface{}{"1.3.6.1": "value"},
			oid:       "1.3.6.1",
			wantValue: "value",
			wantFound: true,
		},
		{
			name:      "result has dot, oid without",
			results:   map[string]interface{}{".1.3.6.1": "value"},
			oid:       "1.3.6.1",
			wantValue: "value",
			wantFound: true,
		},
		{
			name:      "result without dot, oid has dot",
			results:   map[string]interface{}{"1.3.6.1": "value"},
			oid:       ".1.3.6.1",
			wantValue: "value",
			wantFound: true,
		},
		{
			name:      "not found",
			results:   map[string]interface{}{"1.3.6.1": "value"},
			oid:       "1.3.6.2",
			wantValue: nil,
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotValue, gotFound := GetSNMPResult(tt.results, tt.oid)
			if gotValue != tt.wantValue {
				t.Errorf("GetSNMPResult() value = %v, want %v", gotValue, tt.wantValue)
			}
			if gotFound != tt.wantFound {
				t.Errorf("GetSNMPResult() found = %v, want %v", gotFound, tt.wantFound)
			}
		})
	}
}

func TestParseIntSNMPValue(t *testing.T) {
	tests := []struct {
		name      string
		value     interface{}
		wantValue int64
		wantOK    bool
	}{
		{name: "nil", value: nil, wantValue: 0, wantOK: false},
		{name: "int", value: int(2), wantValue: 2, wantOK: true},
		{name: "int64", value: int64(8), wantValue: 8, wantOK: true},
		{name: "uint32", value: uint32(100), wantValue: 100, wantOK: true},
		{name: "decimal string", value: "9", wantValue: 9, wantOK: true},
		{name: "decimal bytes", value: []byte(" 5 "), wantValue: 5, wantOK: true},
		{name: "non numeric string", value: "invalid", wantValue: 0, wantOK: false},
		{name: "float", value: 1.5, wantValue: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotValue, gotOK := ParseIntSNMPValue(tt.value)
			if gotOK != tt.wantOK {
				t.Errorf("ParseIntSNMPValue() ok = %v, want %v", gotOK, tt.wantOK)
			}
			if gotOK && gotValue != tt.wantValue {
				t.Errorf("ParseIntSNMPValue() value = %v, want %v", gotValue, tt.wantValue)
			}
		})
	}
}

func TestParseStringSNMPValue(t *testing.T) {
	tests := []struct {
		name      string
		value     interface{}
		wantValue string
		wantOK    bool
	}{
		{name: "nil", value: nil, wantValue: "", wantOK: false},
		{name: "string", value: "EPON0/1:3", wantValue: "EPON0/1:3", wantOK: true},
		{name: "empty string", value: "", wantValue: "", wantOK: true},
		{name: "byte slice", value: []byte("EPON0/2:1"), wantValue: "EPON0/2:1", wantOK: true},
		{name: "int", value: int(123), wantValue: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotValue, gotOK := ParseStringSNMPValue(tt.value)
			if gotOK != tt.wantOK {
				t.Errorf("ParseStringSNMPValue() ok = %v, want %v", gotOK, tt.wantOK)
			}
			if gotValue != tt.wantValue {
				t.Errorf("ParseStringSNMPValue() value = %v, want %v", gotValue, tt.wantValue)
			}
		})
	}
}

func TestParseBytesSNMPValue(t *testing.T) {
	tests := []struct {
		name      string
		value     interface{}
		wantValue []byte
		wantOK    bool
	}{
		{name: "nil", value: nil, wantOK: false},
		{name: "bytes", value: []byte{0x00, 0x1a, 0xff}, wantValue: []byte{0x00, 0x1a, 0xff}, wantOK: true},
		{name: "binary string", value: "\x07\xe8\x03", wantValue: []byte{0x07, 0xe8, 0x03}, wantOK: true},
		{name: "int", value: int64(1), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotValue, gotOK := ParseBytesSNMPValue(tt.value)
			if gotOK != tt.wantOK {
				t.Errorf("ParseBytesSNMPValue() ok = %v, want %v", gotOK, tt.wantOK)
			}
			if !bytes.Equal(gotValue, tt.wantValue) {
				t.Errorf("ParseBytesSNMPValue() value = %v, want %v", gotValue, tt.wantValue)
			}
		})
	}
}
