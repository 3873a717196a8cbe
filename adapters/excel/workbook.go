package excel

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"calcdash/internal/errors"
)

const (
	workbookPart      = "xl/workbook.xml"
	workbookRelsPart  = "xl/_rels/workbook.xml.rels"
	sharedStringsPart = "xl/sharedStrings.xml"
)

var worksheetPartRe = regexp.MustCompile(`^xl/worksheets/sheet(\d+)\.xml$`)

type xlsxWorkbook struct {
	Sheets []xlsxSheet `xml:"sheets>sheet"`
}

type xlsxSheet struct {
	Name  string     `xml:"name,attr"`
	Attrs []xml.Attr `xml:",any,attr"`
}

// relID returns the r:id attribute regardless of which relationships
// namespace (transitional or strict) the file declares.
func (s xlsxSheet) relID() string {
	for _, a := range s.Attrs {
		if a.Name.Local == "id" && a.Name.Space != "" {
			return a.Value
		}
	}
	return ""
}

type xlsxRelationships struct {
	Relationships []xlsxRelationship `xml:"Relationship"`
}

type xlsxRelationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// sheetRef is one worksheet declared in workbook.xml
type sheetRef struct {
	Name string
	Part string // "" when neither the rels table nor the positional name resolves
}

// sheetCandidate is a worksheet part to try, in priority order
type sheetCandidate struct {
	Name   string
	Part   string
	Reason string
}

// workbook is an opened XLSX archive
type workbook struct {
	files         map[string]*zip.File
	sheets        []sheetRef
	rels          map[string]xlsxRelationship
	sharedStrings []string
}

func openWorkbook(data []byte) (*workbook, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.UnreadableInput("file is not a readable XLSX archive", err)
	}

	wb := &workbook{files: make(map[string]*zip.File, len(zr.File)), rels: map[string]xlsxRelationship{}}
	for _, f := range zr.File {
		wb.files[strings.TrimPrefix(f.Name, "/")] = f
	}

	if err := wb.readRelationships(); err != nil {
		return nil, err
	}
	if err := wb.readSheetList(); err != nil {
		return nil, err
	}
	if err := wb.readSharedStrings(); err != nil {
		return nil, err
	}
	return wb, nil
}

func (wb *workbook) readPart(name string) ([]byte, bool, error) {
	f, ok := wb.files[name]
	if !ok {
		return nil, false, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, true, errors.UnreadableInput("failed to open "+name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, true, errors.UnreadableInput("failed to read "+name, err)
	}
	return b, true, nil
}

func (wb *workbook) readRelationships() error {
	b, ok, err := wb.readPart(workbookRelsPart)
	if err != nil || !ok {
		return err
	}
	var rels xlsxRelationships
	if err := xml.Unmarshal(b, &rels); err != nil {
		// A broken rels table only disables name resolution.
		return nil
	}
	for _, r := range rels.Relationships {
		wb.rels[r.ID] = r
	}
	return nil
}

func (wb *workbook) readSheetList() error {
	b, ok, err := wb.readPart(workbookPart)
	if err != nil || !ok {
		return err
	}
	var doc xlsxWorkbook
	if err := xml.Unmarshal(b, &doc); err != nil {
		return errors.UnreadableInput("workbook.xml is malformed", err)
	}
	for i, s := range doc.Sheets {
		wb.sheets = append(wb.sheets, sheetRef{Name: s.Name, Part: wb.resolveSheetPart(s.relID(), i)})
	}
	return nil
}

// resolveSheetPart maps a relationship id to its worksheet part, falling back
// to the positional xl/worksheets/sheet{n}.xml name.
func (wb *workbook) resolveSheetPart(rid string, index int) string {
	if rel, ok := wb.rels[rid]; ok && rel.Target != "" {
		target := resolveTarget(rel.Target)
		if _, exists := wb.files[target]; exists {
			return target
		}
	}
	positional := fmt.Sprintf("xl/worksheets/sheet%d.xml", index+1)
	if _, exists := wb.files[positional]; exists {
		return positional
	}
	return ""
}

// resolveTarget turns a workbook relationship target into an archive path.
func resolveTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}
	return path.Clean(path.Join("xl", target))
}

func (wb *workbook) readSharedStrings() error {
	name := sharedStringsPart
	for _, rel := range wb.rels {
		if strings.HasSuffix(rel.Type, "/sharedStrings") {
			name = resolveTarget(rel.Target)
			break
		}
	}
	b, ok, err := wb.readPart(name)
	if err != nil || !ok {
		// Numeric-only workbooks carry no shared string table.
		return err
	}
	var sst xlsxSST
	if err := xml.Unmarshal(b, &sst); err != nil {
		return errors.UnreadableInput("sharedStrings.xml is malformed", err)
	}
	wb.sharedStrings = make([]string, len(sst.Items))
	for i, si := range sst.Items {
		wb.sharedStrings[i] = si.text()
	}
	return nil
}

// worksheetParts lists every xl/worksheets/sheetN.xml in the archive,
// ordered by N.
func (wb *workbook) worksheetParts() []string {
	type numbered struct {
		name string
		n    int
	}
	var parts []numbered
	for name := range wb.files {
		m := worksheetPartRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		parts = append(parts, numbered{name: name, n: n})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].n < parts[j].n })

	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = p.name
	}
	return out
}

// candidates returns the worksheet parts to try: the preferred sheet, then
// generically named sheets, then the remaining workbook sheets, then any
// worksheet part the workbook does not list.
func (wb *workbook) candidates(preferred string, genericPrefixes []string) []sheetCandidate {
	var out []sheetCandidate
	seen := map[string]bool{}
	add := func(name, part, reason string) {
		if part == "" || seen[part] {
			return
		}
		seen[part] = true
		out = append(out, sheetCandidate{Name: name, Part: part, Reason: reason})
	}

	if preferred = strings.TrimSpace(preferred); preferred != "" {
		for _, s := range wb.sheets {
			if strings.EqualFold(strings.TrimSpace(s.Name), preferred) {
				add(s.Name, s.Part, "preferred")
			}
		}
	}

	for _, s := range wb.sheets {
		lower := strings.ToLower(s.Name)
		for _, prefix := range genericPrefixes {
			if strings.HasPrefix(lower, strings.ToLower(prefix)) {
				add(s.Name, s.Part, "generic")
				break
			}
		}
	}

	for _, s := range wb.sheets {
		add(s.Name, s.Part, "workbook order")
	}

	for _, part := range wb.worksheetParts() {
		add(path.Base(part), part, "archive scan")
	}
	return out
}
