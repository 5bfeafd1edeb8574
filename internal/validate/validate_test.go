package validate

import "testing"

func TestPhoneNumber(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"9876543210", true},
		{"987654321", false},
		{"98765432101", false},
		{"98765abcde", false},
		{"+919876543210", false},
		{"", false},
	}
	for _, c := range cases {
		if err := PhoneNumber(c.in); (err == nil) != c.ok {
			t.Errorf("PhoneNumber(%q) = %v, want ok=%v", c.in, err, c.ok)
		}
	}
}

func TestOTP(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"123456", true},
		{"12345", false},
		{"1234567", false},
		{"12345a", false},
	}
	for _, c := range cases {
		if err := OTP(c.in); (err == nil) != c.ok {
			t.Errorf("OTP(%q) = %v, want ok=%v", c.in, err, c.ok)
		}
	}
}

func TestAadhaar(t *testing.T) {
	if err := Aadhaar("123412341234"); err != nil {
		t.Errorf("valid aadhaar rejected: %v", err)
	}
	for _, in := range []string{"12341234123", "1234123412345", "12341234123a", ""} {
		if err := Aadhaar(in); err == nil {
			t.Errorf("Aadhaar(%q) accepted", in)
		}
	}
}

func TestPersonName(t *testing.T) {
	if err := PersonName("Asha Patel"); err != nil {
		t.Errorf("valid name rejected: %v", err)
	}
	for _, in := range []string{"", "   ", "R2D2", "a-b"} {
		if err := PersonName(in); err == nil {
			t.Errorf("PersonName(%q) accepted", in)
		}
	}
}

func TestPlate(t *testing.T) {
	valid := []string{"KA 01AB1234", "DL-1C1234", "MH 129876"}
	for _, in := range valid {
		if err := Plate(in); err != nil {
			t.Errorf("Plate(%q) rejected: %v", in, err)
		}
	}
	invalid := []string{"KA01AB1234", "K 01AB1234", "KA 01AB123", "ka 01ab1234"}
	for _, in := range invalid {
		if err := Plate(in); err == nil {
			t.Errorf("Plate(%q) accepted", in)
		}
	}
}

func TestEmail(t *testing.T) {
	if err := Email("asha@example.com"); err != nil {
		t.Errorf("valid email rejected: %v", err)
	}
	for _, in := range []string{"", "asha", "asha@", "@example.com", "a b@example.com"} {
		if err := Email(in); err == nil {
			t.Errorf("Email(%q) accepted", in)
		}
	}
	if err := OptionalEmail(""); err != nil {
		t.Errorf("OptionalEmail(\"\") rejected: %v", err)
	}
	if err := OptionalEmail("nope"); err == nil {
		t.Error("OptionalEmail(\"nope\") accepted")
	}
}
