package track

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "notes.pdf", "notes.pdf"},
		{"spaces", "lecture 3 slides.pdf", "lecture_3_slides.pdf"},
		{"parens", "syllabus (final).docx", "syllabus__final_.docx"},
		{"unicode", "résumé.pdf", "r_sum_.pdf"},
		{"kept punctuation", "a-b_c.d", "a-b_c.d"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFileName(tt.in)
			if got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestJobRoot(t *testing.T) {
	tests := []struct {
		name string
		job  Job
		want bool
	}{
		{"crawl root", Job{Key: "https://x.com", Kind: KindWebsite, BaseURL: "https://x.com"}, true},
		{"crawl child", Job{Key: "https://x.com/a", Kind: KindWebsite, BaseURL: "https://x.com"}, false},
		{"document", Job{Key: "a.pdf", Kind: KindDocument}, false},
		{"lms root", Job{Key: "canvas://courses/1", Kind: KindLMSImport, BaseURL: "canvas://courses/1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.job.Root(); got != tt.want {
				t.Errorf("Root() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusUploading.Terminal() || StatusIngesting.Terminal() {
		t.Error("active statuses must not be terminal")
	}
	if !StatusComplete.Terminal() || !StatusError.Terminal() {
		t.Error("complete and error must be terminal")
	}
}
