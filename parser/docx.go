package parser

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// WordExtractor reads DOCX packages: paragraphs in document order with their
// verbatim style names, tables as padded 2D grids, core properties, and
// best-effort image/OLE counts from the relationship index.
type WordExtractor struct{}

func (e *WordExtractor) Extensions() []string { return []string{"docx"} }

func (e *WordExtractor) Parse(ctx context.Context, path string, opts Options) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening DOCX: %w", err)
	}
	defer r.Close()

	fileIndex := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileIndex[f.Name] = f
	}

	docFile := fileIndex["word/document.xml"]
	if docFile == nil {
		return nil, fmt.Errorf("word/document.xml not found in DOCX")
	}

	data, err := readZipFile(docFile)
	if err != nil {
		return nil, fmt.Errorf("reading document.xml: %w", err)
	}

	var wordDoc docxDocument
	if err := xml.Unmarshal(data, &wordDoc); err != nil {
		return nil, fmt.Errorf("parsing DOCX XML: %w", err)
	}

	doc := newDocument(path, FileTypeWord)
	body := &WordBody{
		Metadata:   readCoreProperties(fileIndex),
		Paragraphs: make([]Paragraph, 0, len(wordDoc.Body.Paras)),
		Tables:     make([]Table, 0, len(wordDoc.Body.Tables)),
	}

	// Empty and whitespace-only paragraphs are dropped; exact paragraph
	// indices do not round-trip.
	for _, para := range wordDoc.Body.Paras {
		text := strings.TrimSpace(extractParaText(para))
		if text == "" {
			continue
		}
		style := "Normal"
		if para.PPr != nil && para.PPr.PStyle != nil && para.PPr.PStyle.Val != "" {
			style = para.PPr.PStyle.Val
		}
		body.Paragraphs = append(body.Paragraphs, Paragraph{Text: text, Style: style})
	}

	for i, tbl := range wordDoc.Body.Tables {
		body.Tables = append(body.Tables, extractDocxTable(tbl, i+1))
	}

	body.TotalParagraphs = len(body.Paragraphs)
	body.TotalTables = len(body.Tables)
	body.ImageCount, body.EmbeddedObjectCount = countDocxRelationships(fileIndex)

	doc.Word = body
	return doc, nil
}

// extractDocxTable flattens one w:tbl into a padded grid. Horizontal spans
// (gridSpan) and vertical merges (vMerge continuation cells) duplicate the
// originating cell's text into every spanned position.
func extractDocxTable(tbl docxTable, number int) Table {
	var grid [][]string
	for rowIdx, row := range tbl.Rows {
		var cells []string
		for _, cell := range row.Cells {
			text := cellText(cell)
			span := 1
			if cell.TcPr != nil && cell.TcPr.GridSpan != nil && cell.TcPr.GridSpan.Val > 1 {
				span = cell.TcPr.GridSpan.Val
			}
			if cell.TcPr != nil && cell.TcPr.VMerge != nil && cell.TcPr.VMerge.Val != "restart" {
				// Continuation of a vertical merge: inherit from the row above.
				col := len(cells)
				if rowIdx > 0 && col < len(grid[rowIdx-1]) {
					text = grid[rowIdx-1][col]
				}
			}
			for s := 0; s < span; s++ {
				cells = append(cells, text)
			}
		}
		grid = append(grid, cells)
	}

	columns := 0
	for _, row := range grid {
		if len(row) > columns {
			columns = len(row)
		}
	}
	for i, row := range grid {
		for len(row) < columns {
			row = append(row, "")
		}
		grid[i] = row
	}

	return Table{
		TableNumber: number,
		Rows:        len(grid),
		Columns:     columns,
		Data:        grid,
	}
}

func cellText(cell docxCell) string {
	var b strings.Builder
	for _, p := range cell.Paras {
		t := strings.TrimSpace(extractParaText(p))
		if t == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(t)
	}
	return b.String()
}

// readCoreProperties parses docProps/core.xml. Any failure yields empty
// metadata, never an error.
func readCoreProperties(fileIndex map[string]*zip.File) WordMetadata {
	var meta WordMetadata
	propsFile := fileIndex["docProps/core.xml"]
	if propsFile == nil {
		return meta
	}
	data, err := readZipFile(propsFile)
	if err != nil {
		return meta
	}
	var props docxCoreProperties
	if err := xml.Unmarshal(data, &props); err != nil {
		return meta
	}
	meta.Title = props.Title
	meta.Author = props.Creator
	meta.Subject = props.Subject
	meta.Created = props.Created
	meta.Modified = props.Modified
	return meta
}

// countDocxRelationships tallies image and OLE object relationships in
// word/_rels/document.xml.rels. Absence of the rels part yields zeros.
func countDocxRelationships(fileIndex map[string]*zip.File) (images, embedded int) {
	rels := parseRelationships(fileIndex, "word/_rels/document.xml.rels")
	for _, rel := range rels {
		switch {
		case strings.HasSuffix(rel.Type, "/image"):
			images++
		case strings.HasSuffix(rel.Type, "/oleObject"):
			embedded++
		}
	}
	return images, embedded
}

// parseRelationships reads an OPC .rels part into its relationship list.
// Returns nil on any failure; relationship data is always best-effort.
func parseRelationships(fileIndex map[string]*zip.File, relsPath string) []ooxmlRelationship {
	relsFile := fileIndex[relsPath]
	if relsFile == nil {
		return nil
	}
	data, err := readZipFile(relsFile)
	if err != nil {
		return nil
	}
	var rels ooxmlRelationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil
	}
	return rels.Rels
}

// relationshipMap converts a .rels part into an rId -> target lookup.
func relationshipMap(fileIndex map[string]*zip.File, relsPath string) map[string]ooxmlRelationship {
	rels := parseRelationships(fileIndex, relsPath)
	if rels == nil {
		return nil
	}
	m := make(map[string]ooxmlRelationship, len(rels))
	for _, rel := range rels {
		m[rel.ID] = rel
	}
	return m
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// ooxmlRelationships is the OPC .rels XML structure, shared by DOCX and
// PPTX packages.
type ooxmlRelationships struct {
	XMLName xml.Name            `xml:"Relationships"`
	Rels    []ooxmlRelationship `xml:"Relationship"`
}

type ooxmlRelationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// DOCX XML structures (simplified).
type docxDocument struct {
	XMLName xml.Name `xml:"document"`
	Body    docxBody `xml:"body"`
}

type docxBody struct {
	Paras  []docxPara  `xml:"p"`
	Tables []docxTable `xml:"tbl"`
}

type docxPara struct {
	PPr  *docxParaPr `xml:"pPr"`
	Runs []docxRun   `xml:"r"`
}

type docxParaPr struct {
	PStyle *docxPStyle `xml:"pStyle"`
}

type docxPStyle struct {
	Val string `xml:"val,attr"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

type docxTable struct {
	Rows []docxRow `xml:"tr"`
}

type docxRow struct {
	Cells []docxCell `xml:"tc"`
}

type docxCell struct {
	TcPr  *docxCellPr `xml:"tcPr"`
	Paras []docxPara  `xml:"p"`
}

type docxCellPr struct {
	GridSpan *docxGridSpan `xml:"gridSpan"`
	VMerge   *docxVMerge   `xml:"vMerge"`
}

type docxGridSpan struct {
	Val int `xml:"val,attr"`
}

type docxVMerge struct {
	Val string `xml:"val,attr"`
}

type docxCoreProperties struct {
	XMLName  xml.Name `xml:"coreProperties"`
	Title    string   `xml:"title"`
	Creator  string   `xml:"creator"`
	Subject  string   `xml:"subject"`
	Created  string   `xml:"created"`
	Modified string   `xml:"modified"`
}

func extractParaText(para docxPara) string {
	var b strings.Builder
	for _, run := range para.Runs {
		for _, t := range run.Text {
			b.WriteString(t.Content)
		}
	}
	return b.String()
}
