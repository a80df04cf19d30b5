package parser

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"path"
	"strings"
)

// shapeKind is the closed set of slide shape kinds recognized by the
// classifier. Every spTree child resolves to exactly one kind.
type shapeKind int

const (
	kindPicture shapeKind = iota
	kindChart
	kindTable
	kindGroup
	kindEmbeddedObject
	kindLinkedObject
	kindTextShape
	kindUnknownShape
)

// classifyEnv carries the per-slide context the classifier needs to
// resolve relationships and invoke enrichment.
type classifyEnv struct {
	fileIndex map[string]*zip.File
	rels      map[string]ooxmlRelationship
	slideDir  string
	slideNum  int
	vision    ImageDescriber
	summary   *AIAnalysisSummary
}

// classifyShape assigns a content type to one spTree child and fills in the
// kind-specific fields. The kind takes priority over the presence of text;
// text and content type are independent facets, so a chart with a caption
// still reports HasText.
func classifyShape(ctx context.Context, child spTreeChild, env classifyEnv) Shape {
	shape := Shape{Type: child.Label}

	text := child.text()
	if text != "" {
		shape.HasText = true
		shape.Text = text
	}

	kind := child.kind()
	switch kind {
	case kindPicture:
		shape.ContentType = ContentImage
		describeImage(ctx, &shape, child.Pic, env)
	case kindChart:
		shape.ContentType = ContentChart
		describeChart(&shape, child.Frame, env)
	case kindTable:
		shape.ContentType = ContentTable
		describeTable(&shape, child.Frame.Graphic.GraphicData.Tbl)
	case kindGroup:
		shape.ContentType = ContentGroup
		shape.Description = fmt.Sprintf("Group of %d shapes", child.Group.childCount())
	case kindEmbeddedObject:
		shape.ContentType = ContentEmbeddedObject
		shape.Description = "Embedded object"
	case kindLinkedObject:
		shape.ContentType = ContentLinkedObject
		shape.Description = "Linked object"
	case kindTextShape:
		shape.ContentType = ContentText
	case kindUnknownShape:
		shape.ContentType = ContentUnknown
	}
	return shape
}

// describeImage resolves the picture's media part and optionally enriches
// it. Enrichment failures are recorded in AIAnalysis, never raised.
func describeImage(ctx context.Context, shape *Shape, pic *pptxPic, env classifyEnv) {
	data, format, err := resolveImage(pic, env)
	if err != nil {
		shape.Description = "Image (media not resolved)"
		return
	}

	shape.ImageFormat = format
	shape.ImageSizeBytes = len(data)
	shape.Description = fmt.Sprintf("Image (%s, %d bytes)", format, len(data))

	if env.summary != nil {
		env.summary.ImagesTotal++
	}
	if env.vision == nil {
		return
	}

	analysis := env.vision.DescribeImage(ctx, data, format,
		fmt.Sprintf("Slide %d of presentation", env.slideNum))
	shape.AIAnalysis = analysis

	enabled, _ := analysis["enabled"].(bool)
	errMsg, _ := analysis["error"].(string)
	if enabled && errMsg == "" {
		if desc, ok := analysis["description"].(string); ok && desc != "" {
			shape.Description = desc
		}
		if env.summary != nil {
			env.summary.ImagesAnalyzed++
		}
	}
}

func resolveImage(pic *pptxPic, env classifyEnv) ([]byte, string, error) {
	embedID := pic.BlipFill.Blip.Embed
	if embedID == "" {
		return nil, "", fmt.Errorf("picture has no blip embed")
	}
	rel, ok := env.rels[embedID]
	if !ok {
		return nil, "", fmt.Errorf("no relationship for %s", embedID)
	}
	mediaPath := resolvePartPath(env.slideDir, rel.Target)
	data, err := readZipFileByName(env.fileIndex, mediaPath)
	if err != nil {
		return nil, "", err
	}
	format := strings.ToLower(strings.TrimPrefix(path.Ext(mediaPath), "."))
	return data, format, nil
}

// describeChart follows the chart relationship and reads the plot area's
// chart kind. Failure degrades to a generic description.
func describeChart(shape *Shape, frame *pptxGraphicFrame, env classifyEnv) {
	shape.Description = "Chart detected"

	chartRef := frame.Graphic.GraphicData.Chart
	if chartRef == nil || chartRef.RID == "" {
		return
	}
	rel, ok := env.rels[chartRef.RID]
	if !ok {
		return
	}
	data, err := readZipFileByName(env.fileIndex, resolvePartPath(env.slideDir, rel.Target))
	if err != nil {
		return
	}
	if kind := chartKind(data); kind != "" {
		shape.ChartType = kind
		shape.Description = fmt.Sprintf("Chart (%s)", kind)
	}
}

// chartKind scans a chart part for the plot area's chart-type element
// (barChart, lineChart, pieChart, ...).
func chartKind(data []byte) string {
	decoder := xml.NewDecoder(strings.NewReader(string(data)))
	inPlotArea := false
	for {
		tok, err := decoder.Token()
		if err != nil {
			return ""
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "plotArea" {
				inPlotArea = true
				continue
			}
			if inPlotArea && strings.HasSuffix(t.Name.Local, "Chart") {
				return t.Name.Local
			}
		case xml.EndElement:
			if t.Name.Local == "plotArea" {
				return ""
			}
		}
	}
}

// describeTable extracts the full cell-text grid from a:tbl. A missing or
// empty table degrades to dimensions-only info.
func describeTable(shape *Shape, tbl *pptxTable) {
	if tbl == nil {
		shape.Description = "Table detected"
		return
	}

	var grid [][]string
	columns := 0
	for _, row := range tbl.Rows {
		var cells []string
		for _, cell := range row.Cells {
			cells = append(cells, strings.TrimSpace(cell.text()))
		}
		if len(cells) > columns {
			columns = len(cells)
		}
		grid = append(grid, cells)
	}
	for i, row := range grid {
		for len(row) < columns {
			row = append(row, "")
		}
		grid[i] = row
	}

	shape.TableRows = len(grid)
	shape.TableColumns = columns
	shape.TableData = grid
	shape.Description = fmt.Sprintf("Table with %d rows and %d columns", len(grid), columns)
}

// ---------------------------------------------------------------------------
// spTree decoding
// ---------------------------------------------------------------------------

// pptxSpTree preserves z-order across heterogeneous shape elements, which
// struct-tag decoding alone cannot do.
type pptxSpTree struct {
	Children []spTreeChild
}

// spTreeChild is one top-level shape element. Label is the raw element
// name from the container ("sp", "pic", "graphicFrame", "grpSp", "cxnSp").
type spTreeChild struct {
	Label string
	Sp    *pptxSp
	Pic   *pptxPic
	Frame *pptxGraphicFrame
	Group *pptxGroup
}

func (t *pptxSpTree) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			child := spTreeChild{Label: el.Name.Local}
			switch el.Name.Local {
			case "sp", "cxnSp":
				var sp pptxSp
				if err := d.DecodeElement(&sp, &el); err != nil {
					return err
				}
				child.Sp = &sp
			case "pic":
				var pic pptxPic
				if err := d.DecodeElement(&pic, &el); err != nil {
					return err
				}
				child.Pic = &pic
			case "graphicFrame":
				var frame pptxGraphicFrame
				if err := d.DecodeElement(&frame, &el); err != nil {
					return err
				}
				child.Frame = &frame
			case "grpSp":
				var grp pptxGroup
				if err := d.DecodeElement(&grp, &el); err != nil {
					return err
				}
				child.Group = &grp
			default:
				// Non-shape bookkeeping elements (nvGrpSpPr, grpSpPr, ...).
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			}
			t.Children = append(t.Children, child)
		case xml.EndElement:
			if el.Name == start.Name {
				return nil
			}
		}
	}
}

// kind resolves the child to its shape kind, in the classification
// priority order: picture, chart, table, group, OLE objects, text, unknown.
func (c spTreeChild) kind() shapeKind {
	switch {
	case c.Pic != nil:
		return kindPicture
	case c.Frame != nil:
		gd := c.Frame.Graphic.GraphicData
		switch {
		case gd.Chart != nil:
			return kindChart
		case gd.Tbl != nil:
			return kindTable
		case gd.OleObj != nil:
			if gd.OleObj.Link != nil {
				return kindLinkedObject
			}
			return kindEmbeddedObject
		case strings.HasSuffix(gd.URI, "/ole"):
			return kindEmbeddedObject
		}
		return kindUnknownShape
	case c.Group != nil:
		return kindGroup
	case c.Sp != nil:
		if c.text() != "" {
			return kindTextShape
		}
		return kindUnknownShape
	}
	return kindUnknownShape
}

// text returns the shape's own text content, empty for shapes without a
// text body.
func (c spTreeChild) text() string {
	if c.Sp == nil || c.Sp.TxBody == nil {
		return ""
	}
	var lines []string
	for _, para := range c.Sp.TxBody.Paras {
		var line strings.Builder
		for _, run := range para.Runs {
			line.WriteString(run.Text)
		}
		if t := strings.TrimSpace(line.String()); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}

// isTitlePlaceholder reports whether the shape is the slide's title
// placeholder (ph type "title" or "ctrTitle").
func isTitlePlaceholder(c spTreeChild) bool {
	if c.Sp == nil || c.Sp.NvSpPr.NvPr.Ph == nil {
		return false
	}
	t := c.Sp.NvSpPr.NvPr.Ph.Type
	return t == "title" || t == "ctrTitle"
}

// Shape-level XML structures (simplified).
type pptxSp struct {
	NvSpPr struct {
		NvPr struct {
			Ph *struct {
				Type string `xml:"type,attr"`
			} `xml:"ph"`
		} `xml:"nvPr"`
	} `xml:"nvSpPr"`
	TxBody *pptxTxBody `xml:"txBody"`
}

type pptxTxBody struct {
	Paras []pptxPara `xml:"p"`
}

type pptxPara struct {
	Runs []pptxRun `xml:"r"`
}

type pptxRun struct {
	Text string `xml:"t"`
}

type pptxPic struct {
	BlipFill struct {
		Blip struct {
			Embed string `xml:"embed,attr"`
		} `xml:"blip"`
	} `xml:"blipFill"`
}

type pptxGraphicFrame struct {
	Graphic struct {
		GraphicData struct {
			URI    string      `xml:"uri,attr"`
			Chart  *pptxRef    `xml:"chart"`
			Tbl    *pptxTable  `xml:"tbl"`
			OleObj *pptxOleObj `xml:"oleObj"`
		} `xml:"graphicData"`
	} `xml:"graphic"`
}

type pptxRef struct {
	RID string `xml:"id,attr"`
}

type pptxOleObj struct {
	ProgID string    `xml:"progId,attr"`
	Embed  *struct{} `xml:"embed"`
	Link   *struct{} `xml:"link"`
}

type pptxTable struct {
	Rows []pptxTableRow `xml:"tr"`
}

type pptxTableRow struct {
	Cells []pptxTableCell `xml:"tc"`
}

type pptxTableCell struct {
	TxBody *pptxTxBody `xml:"txBody"`
}

func (c pptxTableCell) text() string {
	if c.TxBody == nil {
		return ""
	}
	var parts []string
	for _, para := range c.TxBody.Paras {
		var line strings.Builder
		for _, run := range para.Runs {
			line.WriteString(run.Text)
		}
		if t := strings.TrimSpace(line.String()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

type pptxGroup struct {
	Sps    []struct{} `xml:"sp"`
	Pics   []struct{} `xml:"pic"`
	Frames []struct{} `xml:"graphicFrame"`
	Groups []struct{} `xml:"grpSp"`
}

func (g pptxGroup) childCount() int {
	return len(g.Sps) + len(g.Pics) + len(g.Frames) + len(g.Groups)
}
