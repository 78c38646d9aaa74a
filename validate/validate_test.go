package validate

import "testing"

func TestSystemID(t *testing.T) {
	tt := []struct {
		desc string
		in   string
		err  bool
	}{
		{"valid", "client01", false},
		{"empty", "", true},
		{"too long", "123456789012345678", true},
		{"bad charset", "client!", true},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			err := SystemID(tc.in)
			if (err != nil) != tc.err {
				t.Errorf("SystemID(%q) error = %v, want err=%v", tc.in, err, tc.err)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	tt := []struct {
		desc string
		in   string
		err  bool
	}{
		{"empty ok", "", false},
		{"valid", "secret12", false},
		{"too long", "123456789", true},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			err := Password(tc.in)
			if (err != nil) != tc.err {
				t.Errorf("Password(%q) error = %v, want err=%v", tc.in, err, tc.err)
			}
		})
	}
}

func TestAddress(t *testing.T) {
	tt := []struct {
		desc string
		addr string
		ton  int
		npi  int
		err  bool
	}{
		{"international digits", "14155551234", TonInternational, 1, false},
		{"international non-digit", "14155X51234", TonInternational, 1, true},
		{"alphanumeric ok", "MyBrand 1", TonAlphanumeric, 0, false},
		{"alphanumeric bad char", "MyBrand!", TonAlphanumeric, 0, true},
		{"bad ton", "123", 9, 1, true},
		{"bad npi", "123", TonUnknown, 99, true},
		{"too long", "123456789012345678901", TonUnknown, 0, true},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			err := Address(tc.addr, tc.ton, tc.npi, "source")
			if (err != nil) != tc.err {
				t.Errorf("Address(%q) error = %v, want err=%v", tc.addr, err, tc.err)
			}
		})
	}
}

func TestMessageLength(t *testing.T) {
	tt := []struct {
		desc       string
		n          int
		dataCoding int
		err        bool
	}{
		{"short gsm7", 100, 0, false},
		{"long gsm7 over 140", 150, 0, true},
		{"long latin1 under 255", 200, 3, false},
		{"too long overall", 256, 3, true},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			body := make([]byte, tc.n)
			err := MessageLength(body, tc.dataCoding)
			if (err != nil) != tc.err {
				t.Errorf("MessageLength(%d, %d) error = %v, want err=%v", tc.n, tc.dataCoding, err, tc.err)
			}
		})
	}
}

func TestSequenceNumber(t *testing.T) {
	if err := SequenceNumber(0); err == nil {
		t.Error("expected error for sequence 0")
	}
	if err := SequenceNumber(0x7FFFFFFF); err != nil {
		t.Errorf("unexpected error for max sequence: %v", err)
	}
	if err := SequenceNumber(0x80000000); err == nil {
		t.Error("expected error for sequence above 0x7FFFFFFF")
	}
}

func TestPDUStructure(t *testing.T) {
	if err := PDUStructure(15); err == nil {
		t.Error("expected error for length below minimum")
	}
	if err := PDUStructure(16); err != nil {
		t.Errorf("unexpected error at minimum boundary: %v", err)
	}
	if err := PDUStructure(65537); err == nil {
		t.Error("expected error for length above maximum")
	}
}

func TestTLV(t *testing.T) {
	if err := TLV(0x001E, []byte("abc123")); err != nil {
		t.Errorf("unexpected error for valid receipted_message_id: %v", err)
	}
	if err := TLV(0x0424, make([]byte, 2000)); err == nil {
		t.Error("expected error for oversized message_payload")
	}
}
