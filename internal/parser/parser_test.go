package parser

import (
	"strings"
	"testing"
)

func TestTextParser_Paragraphs(t *testing.T) {
	input := "First paragraph line one.\nLine two.\n\nSecond paragraph.\n\n\nThird paragraph."
	d, err := (&TextParser{}).Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Title != "notes" {
		t.Errorf("Title = %q, want %q", d.Title, "notes")
	}
	want := "First paragraph line one.\nLine two.\n\nSecond paragraph.\n\nThird paragraph."
	if d.Text != want {
		t.Errorf("Text = %q, want %q", d.Text, want)
	}
}

func TestTextParser_Empty(t *testing.T) {
	d, err := (&TextParser{}).Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Text != "" {
		t.Errorf("Text = %q, want empty", d.Text)
	}
}

func TestMarkdownParser(t *testing.T) {
	input := `# Agreement

This contract is between the parties.

## Term

The term is 12 months.

- renews automatically
- thirty day notice
`
	d, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "contract.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for _, want := range []string{"Agreement", "This contract is between the parties.", "Term", "The term is 12 months.", "renews automatically"} {
		if !strings.Contains(d.Text, want) {
			t.Errorf("Text missing %q:\n%s", want, d.Text)
		}
	}
	// Paragraph text should appear exactly once, not duplicated by the
	// block/inline walk.
	if n := strings.Count(d.Text, "The term is 12 months."); n != 1 {
		t.Errorf("paragraph appears %d times, want 1", n)
	}
}

func TestMarkdownParser_HeadingsAsLines(t *testing.T) {
	d, err := (&MarkdownParser{}).Parse(strings.NewReader("## Liability\n\nCapped at fees paid."), "x.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.HasPrefix(d.Text, "Liability") {
		t.Errorf("heading not first block: %q", d.Text)
	}
}

func TestCSVParser(t *testing.T) {
	input := "name,role\nAlice,counsel\nBob,vendor"
	d, err := (&CSVParser{}).Parse(strings.NewReader(input), "parties.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.Contains(d.Text, "Headers: name, role") {
		t.Errorf("missing header line: %q", d.Text)
	}
	if !strings.Contains(d.Text, "name: Alice, role: counsel") {
		t.Errorf("missing labeled row: %q", d.Text)
	}
}

func TestCSVParser_Empty(t *testing.T) {
	d, err := (&CSVParser{}).Parse(strings.NewReader(""), "empty.csv")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Text != "" {
		t.Errorf("Text = %q, want empty", d.Text)
	}
}

func TestHTMLParser(t *testing.T) {
	input := `<html><head><title>Master Services Agreement</title>
<script>ignore();</script></head>
<body>
<nav>Home | About</nav>
<h1>MSA</h1>
<p>This agreement governs the services.</p>
<ul><li>item one</li><li>item two</li></ul>
<footer>Copyright</footer>
</body></html>`
	d, err := (&HTMLParser{}).Parse(strings.NewReader(input), "msa.html")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Title != "Master Services Agreement" {
		t.Errorf("Title = %q", d.Title)
	}
	for _, want := range []string{"MSA", "This agreement governs the services.", "item one", "item two"} {
		if !strings.Contains(d.Text, want) {
			t.Errorf("Text missing %q:\n%s", want, d.Text)
		}
	}
	for _, skip := range []string{"ignore", "Home | About", "Copyright"} {
		if strings.Contains(d.Text, skip) {
			t.Errorf("Text should not contain %q:\n%s", skip, d.Text)
		}
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"doc.txt", false},
		{"doc.md", false},
		{"doc.csv", false},
		{"doc.html", false},
		{"doc.pdf", false},
		{"doc.docx", false},
		{"DOC.TXT", false},
		{"doc.exe", true},
		{"doc", true},
	}
	for _, tc := range tests {
		_, err := ForFile(tc.filename)
		if (err != nil) != tc.wantErr {
			t.Errorf("ForFile(%q) err = %v, wantErr %v", tc.filename, err, tc.wantErr)
		}
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("a.pdf") {
		t.Error("pdf should be supported")
	}
	if IsSupportedExtension("a.zip") {
		t.Error("zip should not be supported")
	}
}
