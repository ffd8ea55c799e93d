// Package preview renders CVs and the CV collection as boxed plain text.
package preview

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/cv-editor/internal/autosave"
	"github.com/jonathan/cv-editor/internal/editor"
	"github.com/jonathan/cv-editor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// contentWidth is the usable width inside a box
	contentWidth = boxWidth - 4

	// UntitledCV is shown for documents without a file name.
	UntitledCV = "Untitled CV"
	noName     = "No name"
	noEmail    = "No email"
	empty      = "-"
)

var sectionTitles = map[editor.Section]string{
	editor.SectionBasic:          "Basic Information",
	editor.SectionEducation:      "Education",
	editor.SectionExperience:     "Work Experience",
	editor.SectionCertifications: "Certifications",
	editor.SectionAwards:         "Awards",
	editor.SectionSkills:         "Skills",
}

// Printer handles formatted output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(title, contentWidth), contentWidth))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, contentWidth), contentWidth))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCV outputs a document. Only expanded sections are rendered in full; a nil
// sections map expands everything.
func (p *Printer) PrintCV(doc types.CV, sections editor.Sections) {
	title := orDefault(doc.FileName, UntitledCV)
	if doc.ID != "" {
		title = fmt.Sprintf("%s (%s)", title, doc.ID)
	}

	var sb strings.Builder
	for i, sec := range editor.AllSections {
		if i > 0 {
			sb.WriteString("\n")
		}
		if sections != nil && !sections.Expanded(sec) {
			sb.WriteString(fmt.Sprintf("[+] %s%s\n", sectionTitles[sec], countSuffix(doc, sec)))
			continue
		}
		sb.WriteString(fmt.Sprintf("[-] %s\n", sectionTitles[sec]))
		writeSection(&sb, doc, sec)
	}

	p.printBox(strings.ToUpper(title), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCollection outputs one card per summary.
func (p *Printer) PrintCollection(items []types.Summary) {
	var sb strings.Builder
	if len(items) == 0 {
		sb.WriteString("No CVs yet. Create one with `cvctl create <title>`.")
	}
	for i, it := range items {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%s\n", orDefault(it.FileName, UntitledCV)))
		sb.WriteString(fmt.Sprintf("  id:       %s\n", it.ID))
		sb.WriteString(fmt.Sprintf("  name:     %s\n", orDefault(it.Name, noName)))
		sb.WriteString(fmt.Sprintf("  email:    %s\n", orDefault(it.Email, noEmail)))
		modified := empty
		if !it.LastModified.IsZero() {
			modified = it.LastModified.Local().Format("2006-01-02 15:04")
		}
		sb.WriteString(fmt.Sprintf("  modified: %s\n", modified))
	}

	p.printBox(fmt.Sprintf("MY CVS (%d)", len(items)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPhrases outputs the phrases of role, marking the selected ones.
func (p *Printer) PrintPhrases(role string, phrases []string, selected func(string) bool) {
	var sb strings.Builder
	if len(phrases) == 0 {
		sb.WriteString("No phrases for this role.")
	}
	for i, phrase := range phrases {
		mark := " "
		if selected != nil && selected(phrase) {
			mark = "x"
		}
		for j, line := range wrap(phrase, contentWidth-8) {
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%2d. [%s] %s\n", i+1, mark, line))
			} else {
				sb.WriteString(fmt.Sprintf("        %s\n", line))
			}
		}
	}
	p.printBox("PHRASES: "+strings.ToUpper(orDefault(role, empty)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStatus outputs the autosave state of a document.
func (p *Printer) PrintStatus(id string, st autosave.Status) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Document:   %s\n", id))
	state := "saved"
	switch {
	case st.InFlight:
		state = "saving..."
	case st.Pending:
		state = "unsaved changes"
	case st.LastError != nil:
		state = "last save failed"
	}
	sb.WriteString(fmt.Sprintf("State:      %s\n", state))
	last := "never"
	if !st.LastSavedAt.IsZero() {
		last = st.LastSavedAt.Local().Format("15:04:05")
	}
	sb.WriteString(fmt.Sprintf("Last saved: %s", last))
	if st.LastError != nil {
		sb.WriteString("\n")
		for _, line := range wrap("Error: "+st.LastError.Error(), contentWidth) {
			sb.WriteString(line + "\n")
		}
	}
	p.printBox("AUTOSAVE", strings.TrimSuffix(sb.String(), "\n"))
}

func writeSection(sb *strings.Builder, doc types.CV, sec editor.Section) {
	switch sec {
	case editor.SectionBasic:
		pi := doc.PersonalInfo
		writeField(sb, "Full name", pi.NamaLengkap)
		writeField(sb, "Email", pi.Email)
		writeField(sb, "Phone", pi.NomorHp)
		writeField(sb, "LinkedIn", pi.LinkedinURL)
		writeField(sb, "Portfolio", pi.PortofolioURL)
		writeField(sb, "Address", pi.Alamat)
		writeText(sb, "Objective", doc.Objective)
	case editor.SectionEducation:
		writeEmptyList(sb, len(doc.EducationHistory))
		for i, e := range doc.EducationHistory {
			sb.WriteString(fmt.Sprintf("  #%d %s\n", i, orDefault(e.Institution, empty)))
			writeField(sb, "Level", e.EducationLevel)
			writeField(sb, "Program", e.Program)
			writeField(sb, "Location", e.Location)
			writeField(sb, "Period", period(e.StartYear, e.EffectiveEndYear(), e.CurrentlyStudying))
			if e.GPA != "" || e.MaxGPA != "" {
				writeField(sb, "GPA", fmt.Sprintf("%s / %s", orDefault(e.GPA, empty), orDefault(e.MaxGPA, empty)))
			}
			writeText(sb, "Description", e.Description)
		}
	case editor.SectionExperience:
		writeEmptyList(sb, len(doc.WorkExperience))
		for i, w := range doc.WorkExperience {
			sb.WriteString(fmt.Sprintf("  #%d %s\n", i, orDefault(w.Position, empty)))
			writeField(sb, "Company", w.Institution)
			writeField(sb, "Status", w.EmployeeStatus)
			writeField(sb, "Location", w.Location)
			writeField(sb, "Period", period(w.StartDate, w.EffectiveEndDate(), w.CurrentlyWorking))
			writeText(sb, "Description", w.Description)
		}
	case editor.SectionCertifications:
		writeEmptyList(sb, len(doc.Certifications))
		for i, c := range doc.Certifications {
			sb.WriteString(fmt.Sprintf("  #%d %s\n", i, orDefault(c.Name, empty)))
			writeField(sb, "Issuer", c.Issuer)
			writeField(sb, "Number", c.Number)
			writeField(sb, "Year", c.Year)
		}
	case editor.SectionAwards:
		writeEmptyList(sb, len(doc.Awards))
		for i, a := range doc.Awards {
			sb.WriteString(fmt.Sprintf("  #%d %s\n", i, orDefault(a.Name, empty)))
			writeField(sb, "Issuer", a.Issuer)
			writeField(sb, "Year", a.Year)
		}
	case editor.SectionSkills:
		writeField(sb, "Hard", doc.Skills.HardSkills)
		writeField(sb, "Soft", doc.Skills.SoftSkills)
		writeField(sb, "Software", doc.Skills.SoftwareSkills)
	}
}

func countSuffix(doc types.CV, sec editor.Section) string {
	n := -1
	switch sec {
	case editor.SectionEducation:
		n = len(doc.EducationHistory)
	case editor.SectionExperience:
		n = len(doc.WorkExperience)
	case editor.SectionCertifications:
		n = len(doc.Certifications)
	case editor.SectionAwards:
		n = len(doc.Awards)
	}
	if n < 0 {
		return ""
	}
	return fmt.Sprintf(" (%d)", n)
}

func writeEmptyList(sb *strings.Builder, n int) {
	if n == 0 {
		sb.WriteString("  (none)\n")
	}
}

func writeField(sb *strings.Builder, label, value string) {
	sb.WriteString(fmt.Sprintf("    %-10s %s\n", label+":", orDefault(strings.TrimSpace(value), empty)))
}

func writeText(sb *strings.Builder, label, html string) {
	text := PlainText(html)
	if text == "" {
		writeField(sb, label, "")
		return
	}
	sb.WriteString(fmt.Sprintf("    %s:\n", label))
	for _, para := range strings.Split(text, "\n") {
		for _, line := range wrap(para, contentWidth-6) {
			sb.WriteString("      " + line + "\n")
		}
	}
}

func period(start, end string, ongoing bool) string {
	if start == "" && end == "" && !ongoing {
		return ""
	}
	if ongoing {
		end = "present"
	}
	return fmt.Sprintf("%s - %s", orDefault(start, "?"), orDefault(end, "?"))
}

// PlainText converts a rich-text fragment to plain text, one line per block.
// Markup is never interpreted beyond extracting text.
func PlainText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}

	var lines []string
	blocks := doc.Find("p, li, h1, h2, h3, h4, h5, h6, blockquote")
	if blocks.Length() == 0 {
		return collapse(doc.Text())
	}
	blocks.Each(func(_ int, s *goquery.Selection) {
		if s.Find("p, li, h1, h2, h3, h4, h5, h6, blockquote").Length() > 0 {
			return
		}
		text := collapse(s.Text())
		if text == "" {
			return
		}
		if goquery.NodeName(s) == "li" {
			text = "• " + text
		}
		lines = append(lines, text)
	})
	return strings.Join(lines, "\n")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if utf8.RuneCountInString(line)+1+utf8.RuneCountInString(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-3]) + "..."
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
