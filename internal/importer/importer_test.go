package importer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/decisionlog/internal/apperr"
	"github.com/starford/decisionlog/internal/models"
	"github.com/starford/decisionlog/internal/storage"
)

// writeDir writes files into a fresh temp directory and returns its path.
func writeDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func mustAdrTools(t *testing.T, opts ...Option) *Importer {
	t.Helper()
	imp, err := NewAdrTools(opts...)
	if err != nil {
		t.Fatal(err)
	}
	return imp
}

func mustMadr(t *testing.T, opts ...Option) *Importer {
	t.Helper()
	imp, err := NewMadr(opts...)
	if err != nil {
		t.Fatal(err)
	}
	return imp
}

func mustDecision(t *testing.T, doc *models.Documentation, id string) *models.Decision {
	t.Helper()
	d, ok := doc.Decision(id)
	if !ok {
		t.Fatalf("decision %q not imported", id)
	}
	return d
}

var legacyLog = map[string]string{
	"0001-record-architecture-decisions.md": "# 1. Record architecture decisions\n\n" +
		"Date: 2016-02-12\n\n## Status\n\nAccepted\n\n## Context\n\nWe need to record decisions.\n",
	"0004-markdown-format.md": "# 4. Markdown format\n\nDate: 2016-02-12\n\n## Status\n\nSuperceded\n\n" +
		"Superceded by [10. AsciiDoc format](0010-asciidoc-format.md)\n",
	"0005-help-scripts.md": "# 5. Help scripts\r\n\r\nDate: 2016-02-16\r\n\r\n## Status\r\n\r\nAccepted\r\n\r\n" +
		"Amended by [9. Help scripts](0009-help-scripts.md)\r\n\r\n" +
		"See [9. Help scripts](0009-help-scripts.md) and [1. Record](0001-record-architecture-decisions.md).\r\n",
	"0009-help-scripts.md": "# 9. Help scripts\n\nDate: 2016-02-16\n\n## Status\n\nAccepted\n\n" +
		"Amends [5. Help scripts](0005-help-scripts.md)\n",
	"0010-asciidoc-format.md": "# 10. AsciiDoc format\n\nDate: 2016-03-01\n\n## Status\n\nAccepted\n\n" +
		"Supersedes [4. Markdown format](0004-markdown-format.md)\n",
	"README.txt": "not a decision",
}

func TestAdrTools_ImportFields(t *testing.T) {
	dir := writeDir(t, legacyLog)
	doc := models.NewDocumentation()
	if err := mustAdrTools(t).Import(doc, dir); err != nil {
		t.Fatalf("import: %v", err)
	}

	if got := len(doc.Decisions()); got != 5 {
		t.Fatalf("decisions = %d, want 5", got)
	}

	d := mustDecision(t, doc, "4")
	if d.Title != "Markdown format" {
		t.Errorf("title = %q", d.Title)
	}
	if d.Status != models.StatusSuperseded {
		t.Errorf("status = %q, want Superseded", d.Status)
	}
	if want := time.Date(2016, 2, 12, 0, 0, 0, 0, time.UTC); !d.Date.Equal(want) {
		t.Errorf("date = %v, want %v", d.Date, want)
	}
	if d.Format != models.FormatMarkdown {
		t.Errorf("format = %q", d.Format)
	}
	if d.Filename != "0004-markdown-format.md" {
		t.Errorf("filename = %q", d.Filename)
	}

	if strings.Contains(mustDecision(t, doc, "5").Content, "\r") {
		t.Error("carriage returns should be stripped")
	}
}

func TestAdrTools_ImportOrderFollowsListing(t *testing.T) {
	dir := writeDir(t, legacyLog)
	doc := models.NewDocumentation()
	if err := mustAdrTools(t).Import(doc, dir); err != nil {
		t.Fatalf("import: %v", err)
	}
	var ids []string
	for _, d := range doc.Decisions() {
		ids = append(ids, d.ID)
	}
	if got, want := strings.Join(ids, ","), "1,4,5,9,10"; got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
}

func TestAdrTools_AmendedByLinkAndRewrite(t *testing.T) {
	dir := writeDir(t, legacyLog)
	doc := models.NewDocumentation()
	if err := mustAdrTools(t).Import(doc, dir); err != nil {
		t.Fatalf("import: %v", err)
	}

	d := mustDecision(t, doc, "5")
	amended := 0
	for _, l := range d.Links {
		if l.Type == models.LinkAmendedBy && l.Target == "9" {
			amended++
		}
	}
	if amended != 1 {
		t.Errorf("AmendedBy edges to 9 = %d, want 1 (links %+v)", amended, d.Links)
	}
	if !strings.Contains(d.Content, "Amended by [9. Help scripts](#9)") {
		t.Errorf("content not rewritten:\n%s", d.Content)
	}
	if strings.Contains(d.Content, "0009-help-scripts.md") {
		t.Errorf("filename still present:\n%s", d.Content)
	}
}

func TestAdrTools_ReferencesSuppressedForLinkedTarget(t *testing.T) {
	dir := writeDir(t, legacyLog)
	doc := models.NewDocumentation()
	if err := mustAdrTools(t).Import(doc, dir); err != nil {
		t.Fatalf("import: %v", err)
	}

	want := []models.Link{
		{Source: "5", Target: "9", Type: models.LinkAmendedBy},
		{Source: "5", Target: "1", Type: models.LinkReferences},
	}
	got := mustDecision(t, doc, "5").Links
	if len(got) != len(want) {
		t.Fatalf("links = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("links[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAdrTools_SupersedeLinksBothSpellings(t *testing.T) {
	dir := writeDir(t, legacyLog)
	doc := models.NewDocumentation()
	if err := mustAdrTools(t).Import(doc, dir); err != nil {
		t.Fatalf("import: %v", err)
	}

	four := mustDecision(t, doc, "4").Links
	if len(four) != 1 || four[0].Type != models.LinkSupersededBy || four[0].Target != "10" {
		t.Errorf("links of 4 = %+v", four)
	}
	ten := mustDecision(t, doc, "10").Links
	if len(ten) != 1 || ten[0].Type != models.LinkSupersedes || ten[0].Target != "4" {
		t.Errorf("links of 10 = %+v", ten)
	}
}

func TestAdrTools_ForwardReferenceResolves(t *testing.T) {
	// 0001 links to 0002, which is listed after it.
	dir := writeDir(t, map[string]string{
		"0001-first.md":  "# 1. First\n\nrequires [2. Second](0002-second.md)\n",
		"0002-second.md": "# 2. Second\n",
	})
	doc := models.NewDocumentation()
	if err := mustAdrTools(t).Import(doc, dir); err != nil {
		t.Fatalf("import: %v", err)
	}
	links := mustDecision(t, doc, "1").Links
	if len(links) != 1 || links[0] != (models.Link{Source: "1", Target: "2", Type: models.LinkRequires}) {
		t.Errorf("links = %+v", links)
	}
}

func TestAdrTools_UnresolvedLinksIgnored(t *testing.T) {
	dir := writeDir(t, map[string]string{
		"0001-first.md": "# 1. First\n\nSupersedes [0. Gone](0000-gone.md)\n\nSee [web](https://example.com)\n",
	})
	doc := models.NewDocumentation()
	if err := mustAdrTools(t).Import(doc, dir); err != nil {
		t.Fatalf("import: %v", err)
	}
	d := mustDecision(t, doc, "1")
	if len(d.Links) != 0 {
		t.Errorf("links = %+v, want none", d.Links)
	}
	if !strings.Contains(d.Content, "(0000-gone.md)") {
		t.Errorf("unresolved filename should stay as written:\n%s", d.Content)
	}
}

func TestAdrTools_DefaultsWhenFieldsMissing(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 30, 0, 0, time.UTC)
	dir := writeDir(t, map[string]string{"0003-bare.md": "just some text\n"})
	doc := models.NewDocumentation()
	imp := mustAdrTools(t, WithClock(func() time.Time { return now }))
	if err := imp.Import(doc, dir); err != nil {
		t.Fatalf("import: %v", err)
	}
	d := mustDecision(t, doc, "3")
	if d.Title != "Untitled" {
		t.Errorf("title = %q", d.Title)
	}
	if d.Status != models.StatusProposed {
		t.Errorf("status = %q", d.Status)
	}
	if !d.Date.Equal(now) {
		t.Errorf("date = %v, want %v", d.Date, now)
	}
}

func TestAdrTools_MissingDateUsesCurrentTime(t *testing.T) {
	dir := writeDir(t, map[string]string{"0003-bare.md": "# 3. Bare\n"})
	doc := models.NewDocumentation()
	before := time.Now()
	if err := mustAdrTools(t).Import(doc, dir); err != nil {
		t.Fatalf("import: %v", err)
	}
	after := time.Now()
	d := mustDecision(t, doc, "3")
	if d.Date.Before(before) || d.Date.After(after) {
		t.Errorf("date = %v, want between %v and %v", d.Date, before, after)
	}
}

func TestAdrTools_DateFormatAndTimeZone(t *testing.T) {
	dir := writeDir(t, map[string]string{"0001-x.md": "# 1. X\n\nDate: 2020-01-31\n"})
	doc := models.NewDocumentation()
	imp := mustAdrTools(t, WithDateFormat("2006-01-02"), WithTimeZone("Europe/Berlin"))
	if err := imp.Import(doc, dir); err != nil {
		t.Fatalf("import: %v", err)
	}
	d := mustDecision(t, doc, "1")
	if got := d.Date.UTC(); !got.Equal(time.Date(2020, 1, 30, 23, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", got)
	}
}

func TestNew_UnknownTimeZone(t *testing.T) {
	if _, err := NewAdrTools(WithTimeZone("Mars/Olympus")); err == nil {
		t.Error("expected error for unknown time zone")
	}
}

func TestMadr_MalformedDateAbortsBatch(t *testing.T) {
	dir := writeDir(t, map[string]string{
		"20200101-ok.md":  "# Ok\n\n- Date: 2020-01-01\n",
		"20200102-bad.md": "# Bad\n\n- Date: second of January\n",
		"20200103-ok.md":  "# Ok\n",
	})
	doc := models.NewDocumentation()
	err := mustMadr(t).Import(doc, dir)
	if !errors.Is(err, apperr.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
	var ie *ImportError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %T, want *ImportError", err)
	}
	// Decisions added before the failure stay in the collection.
	ds := doc.Decisions()
	if len(ds) != 1 || ds[0].ID != "20200101-ok.md" {
		t.Errorf("decisions after failure = %+v", ds)
	}
}

func TestMadr_DateWithTrailingSpace(t *testing.T) {
	dir := writeDir(t, map[string]string{
		"20230530-a.md": "# A\n\n- Status: accepted\n- Date: 2023-05-30 \n",
	})
	doc := models.NewDocumentation()
	if err := mustMadr(t).Import(doc, dir); err != nil {
		t.Fatalf("import: %v", err)
	}
	d := mustDecision(t, doc, "20230530-a.md")
	if !d.Date.Equal(time.Date(2023, 5, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", d.Date)
	}
}

func TestAdrTools_OutOfRangeDateRollsOver(t *testing.T) {
	dir := writeDir(t, map[string]string{"0001-x.md": "# 1. X\n\nDate: 2016-02-30\n"})
	doc := models.NewDocumentation()
	if err := mustAdrTools(t).Import(doc, dir); err != nil {
		t.Fatalf("import: %v", err)
	}
	if d := mustDecision(t, doc, "1"); !d.Date.Equal(time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v, want 2016-03-01", d.Date)
	}
}

func TestAdrTools_NonNumericFilenameMalformed(t *testing.T) {
	dir := writeDir(t, map[string]string{"README.md": "# Decisions\n"})
	err := mustAdrTools(t).Import(models.NewDocumentation(), dir)
	if !errors.Is(err, apperr.ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

func TestAdrTools_SubdirectoriesSkipped(t *testing.T) {
	dir := writeDir(t, map[string]string{
		"0001-x.md":            "# 1. X\n",
		"archive.md/0002-y.md": "# 2. Y\n",
	})
	doc := models.NewDocumentation()
	if err := mustAdrTools(t).Import(doc, dir); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := len(doc.Decisions()); got != 1 {
		t.Errorf("decisions = %d, want 1", got)
	}
}

func TestImport_Idempotent(t *testing.T) {
	dir := writeDir(t, legacyLog)
	imp := mustAdrTools(t)

	first := models.NewDocumentation()
	second := models.NewDocumentation()
	if err := imp.Import(first, dir); err != nil {
		t.Fatal(err)
	}
	if err := imp.Import(second, dir); err != nil {
		t.Fatal(err)
	}

	a, b := first.Decisions(), second.Decisions()
	if len(a) != len(b) {
		t.Fatalf("len = %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Status != b[i].Status || a[i].Content != b[i].Content ||
			!a[i].Date.Equal(b[i].Date) {
			t.Errorf("decision %d differs: %+v vs %+v", i, a[i], b[i])
		}
		if len(a[i].Links) != len(b[i].Links) {
			t.Errorf("decision %s links differ: %+v vs %+v", a[i].ID, a[i].Links, b[i].Links)
			continue
		}
		for j := range a[i].Links {
			if a[i].Links[j] != b[i].Links[j] {
				t.Errorf("decision %s link %d: %+v vs %+v", a[i].ID, j, a[i].Links[j], b[i].Links[j])
			}
		}
	}
}

func TestImport_ArgumentErrors(t *testing.T) {
	dir := writeDir(t, map[string]string{"0001-x.md": "# 1. X\n"})
	missing := filepath.Join(dir, "nope")
	file := filepath.Join(dir, "0001-x.md")

	cases := []struct {
		name   string
		imp    *Importer
		coll   Collection
		path   string
		suffix string
	}{
		{"nil collection", mustAdrTools(t), nil, dir, "a decision collection must be specified"},
		{"empty path", mustAdrTools(t), models.NewDocumentation(), "", "a path must be specified"},
		{"missing dir", mustAdrTools(t), models.NewDocumentation(), missing, missing + " does not exist"},
		{"missing dir madr", mustMadr(t), models.NewDocumentation(), missing, missing + " does not exist"},
		{"file path", mustAdrTools(t), models.NewDocumentation(), file, file + " is not a directory"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.imp.Import(tc.coll, tc.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, apperr.ErrInvalidArgument) {
				t.Errorf("err = %v, want ErrInvalidArgument", err)
			}
			if !strings.HasSuffix(err.Error(), tc.suffix) {
				t.Errorf("message %q does not end with %q", err.Error(), tc.suffix)
			}
		})
	}
}

func TestImport_ArgumentErrorsBeforeFileAccess(t *testing.T) {
	// The collection is checked before the path is looked at.
	err := mustAdrTools(t).Import(nil, filepath.Join(t.TempDir(), "missing"))
	if err == nil || !strings.HasSuffix(err.Error(), "a decision collection must be specified") {
		t.Errorf("err = %v", err)
	}
}

func TestMadr_FilePathImportsNothing(t *testing.T) {
	dir := writeDir(t, map[string]string{"20230530-x.md": "# X\n"})
	doc := models.NewDocumentation()
	if err := mustMadr(t).Import(doc, filepath.Join(dir, "20230530-x.md")); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := len(doc.Decisions()); got != 0 {
		t.Errorf("decisions = %d, want 0", got)
	}
}

var madrLog = map[string]string{
	"20230530-use-madr.md": "# Use MADR\n\n- Status: accepted\n- Date: 2023-05-30\n\n" +
		"## Context\n\nSee 20230601-use-madr-3.md for the follow-up.\n\n## Links\n\n" +
		"- Refined by [Use MADR 3](20230601-use-madr-3.md)\n" +
		"- Refined by [Use MADR 3](20230601-use-madr-3.md)\n" +
		"- Relates to [Unknown](20990101-missing.md)\n",
	"20230601-use-madr-3.md": "# Use MADR 3\n\n- Status: proposed\n- Date: 2023-06-01\n\n## Links\n\n" +
		"- Refines [Use MADR](20230530-use-madr.md)\n",
	"template.md": "# Template\n",
}

func TestMadr_Import(t *testing.T) {
	dir := writeDir(t, madrLog)
	doc := models.NewDocumentation()
	if err := mustMadr(t).Import(doc, dir); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := len(doc.Decisions()); got != 2 {
		t.Fatalf("decisions = %d, want 2", got)
	}

	d := mustDecision(t, doc, "20230530-use-madr.md")
	if d.Title != "Use MADR" || d.Status != "Accepted" {
		t.Errorf("decision = %+v", d)
	}
	if want := time.Date(2023, 5, 30, 0, 0, 0, 0, time.UTC); !d.Date.Equal(want) {
		t.Errorf("date = %v", d.Date)
	}

	// Every Links line adds an edge; duplicates are kept.
	want := models.Link{Source: "20230530-use-madr.md", Target: "20230601-use-madr-3.md", Type: "- Refined by"}
	if len(d.Links) != 2 || d.Links[0] != want || d.Links[1] != want {
		t.Errorf("links = %+v", d.Links)
	}

	if !strings.Contains(d.Content, "See #20230601-use-madr-3.md for the follow-up.") {
		t.Errorf("content not rewritten:\n%s", d.Content)
	}

	back := mustDecision(t, doc, "20230601-use-madr-3.md")
	if len(back.Links) != 1 || back.Links[0].Type != "- Refines" {
		t.Errorf("links = %+v", back.Links)
	}
	if back.Status != "Proposed" {
		t.Errorf("status = %q", back.Status)
	}
}

func TestRewrite_OverlappingFilenamesFollowListingOrder(t *testing.T) {
	// "0001-a.md" is a substring of "0010001-a.md" and is listed first,
	// so it is replaced first.
	dir := writeDir(t, map[string]string{
		"0001-a.md":    "# 1. A\n\nsee 0010001-a.md\n",
		"0010001-a.md": "# 10. B\n\nsee 0001-a.md\n",
	})
	doc := models.NewDocumentation()
	if err := mustAdrTools(t).Import(doc, dir); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := mustDecision(t, doc, "1").Content; !strings.Contains(got, "see 001#1\n") {
		t.Errorf("content = %q", got)
	}
	if got := mustDecision(t, doc, "10").Content; !strings.Contains(got, "see #1\n") {
		t.Errorf("content = %q", got)
	}
}

func TestRewrite_SubstringFilenameReplacedFirst(t *testing.T) {
	one := &models.Decision{ID: "1", Content: "a.md and b-a.md"}
	two := &models.Decision{ID: "2"}
	c := newCorpus()
	c.add("a.md", one)
	c.add("b-a.md", two)
	rewrite(c)
	// "a.md" is replaced first, so "b-a.md" no longer appears literally.
	if one.Content != "#1 and b-#1" {
		t.Errorf("content = %q", one.Content)
	}
}

func TestAnchor_FormEncoding(t *testing.T) {
	cases := map[string]string{
		"8":                    "#8",
		"20230530-use madr.md": "#20230530-use%20madr.md",
		"a+b&c":                "#a%2Bb%26c",
		"a~b*c":                "#a%7Eb*c",
		"x.y-z_w":              "#x.y-z_w",
		"é":                    "#%C3%A9",
	}
	for id, want := range cases {
		if got := Anchor(&models.Decision{ID: id}); got != want {
			t.Errorf("Anchor(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestImport_DuplicateIDKeepsFirstPosition(t *testing.T) {
	c := newCorpus()
	first := &models.Decision{ID: "1"}
	other := &models.Decision{ID: "2"}
	dup := &models.Decision{ID: "1"}
	c.add("0001-a.md", first)
	c.add("0002-b.md", other)
	c.add("01-c.md", dup)

	got := c.decisions()
	if len(got) != 2 || got[0] != dup || got[1] != other {
		t.Errorf("decisions = %+v", got)
	}
	if c.byFilename["0001-a.md"] != first || c.byFilename["01-c.md"] != dup {
		t.Error("filename index should keep every file")
	}
}

func TestImport_WithRootedDir(t *testing.T) {
	root := writeDir(t, map[string]string{"adr/0001-x.md": "# 1. X\n"})
	fsys, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	doc := models.NewDocumentation()
	if err := mustAdrTools(t, WithDir(fsys)).Import(doc, "adr"); err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, ok := doc.Decision("1"); !ok {
		t.Error("decision 1 missing")
	}

	err = mustAdrTools(t, WithDir(fsys)).Import(doc, "missing")
	want := filepath.Join(fsys.Root(), "missing") + " does not exist"
	if err == nil || !strings.HasSuffix(err.Error(), want) {
		t.Errorf("err = %v, want suffix %q", err, want)
	}
}
