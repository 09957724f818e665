package validate

import "testing"

func TestEmail(t *testing.T) {
	cases := []struct {
		email string
		ok    bool
		code  Code
	}{
		{"", false, CodeRequired},
		{"not-an-email", false, CodeInvalidFormat},
		{"a b@eastdelta.edu.bd", false, CodeInvalidFormat},
		{"a@b.edu.bd", false, CodeDomainNotAllowed},
		{"x@gmail.com", false, CodeDomainNotAllowed},
		{"x@eastdelta.edu.bd", true, CodeOK},
		{"X@EASTDELTA.EDU.BD", true, CodeOK},
	}
	for _, tc := range cases {
		res := Email(tc.email)
		if res.OK != tc.ok {
			t.Fatalf("Email(%q) ok=%v, want %v (%s)", tc.email, res.OK, tc.ok, res.Message)
		}
		if res.Code != tc.code {
			t.Fatalf("Email(%q) code=%q, want %q", tc.email, res.Code, tc.code)
		}
		if !res.OK && res.Message == "" {
			t.Fatalf("Email(%q) failed without a message", tc.email)
		}
	}
}

func TestPassword(t *testing.T) {
	if res := Password(""); res.OK || res.Code != CodeRequired {
		t.Fatalf("empty password: %+v", res)
	}
	if res := Password("12345"); res.OK || res.Code != CodeTooShort {
		t.Fatalf("short password: %+v", res)
	}
	if res := Password("123456"); !res.OK {
		t.Fatalf("six chars should pass: %+v", res)
	}
}

func TestPasswordConfirmation(t *testing.T) {
	if res := PasswordConfirmation("secret", ""); res.OK || res.Code != CodeRequired {
		t.Fatalf("empty confirm: %+v", res)
	}
	if res := PasswordConfirmation("secret", "secres"); res.OK || res.Code != CodeMismatch {
		t.Fatalf("mismatch: %+v", res)
	}
	if res := PasswordConfirmation("secret", "secret"); !res.OK {
		t.Fatalf("match should pass: %+v", res)
	}
}

func TestStudentID(t *testing.T) {
	cases := []struct {
		id string
		ok bool
	}{
		{"", false},
		{"E1", false},
		{"TOOLONGPREFIX1234", false},
		{"EDU123", false},
		{"edu123456", true},
		{" edu 123456 ", true},
		{"AB1234", true},
		{"ABCD12345678", true},
	}
	for _, tc := range cases {
		if res := StudentID(tc.id); res.OK != tc.ok {
			t.Fatalf("StudentID(%q) ok=%v, want %v", tc.id, res.OK, tc.ok)
		}
	}
}

func TestNormalizeStudentID(t *testing.T) {
	if got := NormalizeStudentID(" edu 123 456 "); got != "EDU123456" {
		t.Fatalf("normalize: got %q", got)
	}
}

func TestSemester(t *testing.T) {
	for _, bad := range []string{"", "0", "13", "abc", "-1"} {
		if res := Semester(bad); res.OK {
			t.Fatalf("Semester(%q) should fail", bad)
		}
	}
	for _, good := range []string{"1", "7", "12"} {
		if res := Semester(good); !res.OK {
			t.Fatalf("Semester(%q) should pass: %+v", good, res)
		}
	}
}
