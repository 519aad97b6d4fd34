package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	p, err := Load("testdata/profile.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info := p.PersonalInformation
	if info.FirstName != "Alex" || info.LastName != "Doe" || info.City != "Berlin" {
		t.Fatalf("unexpected personal information: %+v", info)
	}
	if info.Phone != "1701234567" {
		t.Fatalf("expected numeric phone decoded as string, got %q", info.Phone)
	}
	if info.PhonePrefix != "+49" {
		t.Fatalf("unexpected phone prefix: %q", info.PhonePrefix)
	}
	if !filepath.IsAbs(p.ResumePath) {
		t.Fatalf("expected absolute resume path, got %q", p.ResumePath)
	}
	if !strings.Contains(p.Text, "7 years of Go") {
		t.Fatalf("expected profile text to be kept")
	}
	if p.Availability["notice_period"] != "4 weeks" {
		t.Fatalf("unexpected availability: %v", p.Availability)
	}
	if len(p.Experience) != 1 {
		t.Fatalf("expected 1 experience entry, got %d", len(p.Experience))
	}
}

func TestLoadRejectsInvalidProfile(t *testing.T) {
	path := writeProfile(t, `
resume_path: testdata/resume.pdf
personal_information:
  firstname: Alex
  city: Berlin
  phone_prefix: "+49"
  phone: "1701234567"
  email: not-an-email
`)

	_, err := Load(path)
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "lastname") {
		t.Fatalf("expected missing lastname to be reported, got %v", err)
	}
}

func TestLoadRequiresResumeFile(t *testing.T) {
	path := writeProfile(t, `
resume_path: testdata/missing.pdf
personal_information:
  firstname: Alex
  lastname: Doe
  city: Berlin
  phone_prefix: "+49"
  phone: "1701234567"
  email: alex@example.com
`)

	_, err := Load(path)
	if err == nil || IsValidationError(err) {
		t.Fatalf("expected missing resume error, got %v", err)
	}
}

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}
