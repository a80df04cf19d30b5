package parser

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"path"
	"sort"
	"strings"
)

// PowerPointExtractor reads PPTX packages: slide text, titles, speaker
// notes, and a full classification of every shape in z-order. AI image
// enrichment is applied per image shape when requested and available.
type PowerPointExtractor struct{}

func (e *PowerPointExtractor) Extensions() []string { return []string{"pptx"} }

func (e *PowerPointExtractor) Parse(ctx context.Context, filePath string, opts Options) (*Document, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening PPTX: %w", err)
	}
	defer r.Close()

	fileIndex := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileIndex[f.Name] = f
	}

	width, height, slidePaths := readPresentation(fileIndex)
	if len(slidePaths) == 0 {
		slidePaths = slidePathsByName(fileIndex)
	}
	if len(slidePaths) == 0 {
		return nil, fmt.Errorf("no slides found in PPTX")
	}

	// The requested flag and actual availability are reported separately so
	// callers can tell "didn't ask" from "asked but unavailable".
	available := opts.EnableAIVision && opts.Vision != nil && opts.Vision.Available()

	doc := newDocument(filePath, FileTypePowerPoint)
	body := &PowerPointBody{
		AIVisionEnabled:   opts.EnableAIVision,
		AIVisionAvailable: available,
		Metadata: PowerPointMetadata{
			TotalSlides: len(slidePaths),
			SlideWidth:  width,
			SlideHeight: height,
		},
		Slides: make([]Slide, 0, len(slidePaths)),
	}

	var summary *AIAnalysisSummary
	if opts.EnableAIVision {
		summary = &AIAnalysisSummary{}
	}

	enricher := opts.Vision
	if !available {
		enricher = nil
	}

	for i, slidePath := range slidePaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slide := extractSlide(ctx, fileIndex, slidePath, i+1, enricher, summary)
		body.Slides = append(body.Slides, slide)
	}

	body.AIAnalysisSummary = summary
	doc.PowerPoint = body
	return doc, nil
}

// readPresentation reads slide dimensions and the declared slide order from
// ppt/presentation.xml, resolving slide IDs through the presentation rels.
func readPresentation(fileIndex map[string]*zip.File) (width, height int64, slidePaths []string) {
	presFile := fileIndex["ppt/presentation.xml"]
	if presFile == nil {
		return 0, 0, nil
	}
	data, err := readZipFile(presFile)
	if err != nil {
		return 0, 0, nil
	}

	var pres pptxPresentation
	if err := xml.Unmarshal(data, &pres); err != nil {
		return 0, 0, nil
	}
	width, height = pres.SldSz.CX, pres.SldSz.CY

	rels := relationshipMap(fileIndex, "ppt/_rels/presentation.xml.rels")
	if rels == nil {
		return width, height, nil
	}
	for _, id := range pres.SldIDLst.IDs {
		rel, ok := rels[id.RID]
		if !ok {
			continue
		}
		target := resolvePartPath("ppt", rel.Target)
		if fileIndex[target] != nil {
			slidePaths = append(slidePaths, target)
		}
	}
	return width, height, slidePaths
}

// slidePathsByName is the fallback ordering: slideN.xml sorted by N.
func slidePathsByName(fileIndex map[string]*zip.File) []string {
	numbered := make(map[int]string)
	var nums []int
	for name := range fileIndex {
		if !strings.HasPrefix(name, "ppt/slides/slide") || !strings.HasSuffix(name, ".xml") {
			continue
		}
		var num int
		fmt.Sscanf(strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml"), "%d", &num)
		if num > 0 {
			numbered[num] = name
			nums = append(nums, num)
		}
	}
	sort.Ints(nums)
	paths := make([]string, 0, len(nums))
	for _, n := range nums {
		paths = append(paths, numbered[n])
	}
	return paths
}

// extractSlide builds one Slide record: title, joined text, notes, and the
// classified shape list with counts tallied during the same traversal.
func extractSlide(ctx context.Context, fileIndex map[string]*zip.File, slidePath string, slideNum int, vision ImageDescriber, summary *AIAnalysisSummary) Slide {
	slide := Slide{SlideNumber: slideNum}

	data, err := readZipFileByName(fileIndex, slidePath)
	if err != nil {
		return slide
	}

	var parsed pptxSlideXML
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return slide
	}

	relsPath := path.Dir(slidePath) + "/_rels/" + path.Base(slidePath) + ".rels"
	rels := relationshipMap(fileIndex, relsPath)

	slide.Notes = extractNotes(fileIndex, rels)

	var textParts []string
	for _, child := range parsed.CSld.SpTree.Children {
		shape := classifyShape(ctx, child, classifyEnv{
			fileIndex: fileIndex,
			rels:      rels,
			slideDir:  path.Dir(slidePath),
			slideNum:  slideNum,
			vision:    vision,
			summary:   summary,
		})

		if shape.HasText {
			textParts = append(textParts, shape.Text)
		}
		if shape.ContentType == ContentText && isTitlePlaceholder(child) && slide.Title == "" {
			slide.Title = shape.Text
		}

		switch shape.ContentType {
		case ContentImage:
			slide.ImageCount++
		case ContentChart:
			slide.ChartCount++
		case ContentTable:
			slide.TableCount++
		}
		slide.Shapes = append(slide.Shapes, shape)
	}

	slide.Text = strings.Join(textParts, "\n")
	return slide
}

// extractNotes resolves the slide's notesSlide relationship and pulls all
// text runs from it. Any failure yields an empty string; notes extraction
// is never fatal.
func extractNotes(fileIndex map[string]*zip.File, rels map[string]ooxmlRelationship) string {
	for _, rel := range rels {
		if !strings.HasSuffix(rel.Type, "/notesSlide") {
			continue
		}
		target := resolvePartPath("ppt/slides", rel.Target)
		data, err := readZipFileByName(fileIndex, target)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(collectTextRuns(data))
	}
	return ""
}

// collectTextRuns concatenates every a:t element in a part, one line per
// paragraph.
func collectTextRuns(data []byte) string {
	decoder := xml.NewDecoder(strings.NewReader(string(data)))
	var lines []string
	var line strings.Builder
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				var content string
				if err := decoder.DecodeElement(&content, &t); err == nil {
					line.WriteString(content)
				}
			}
		case xml.EndElement:
			if t.Name.Local == "p" && line.Len() > 0 {
				lines = append(lines, line.String())
				line.Reset()
			}
		}
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// resolvePartPath resolves a relationship target relative to baseDir,
// handling "../" segments ("../media/image1.png" from ppt/slides).
func resolvePartPath(baseDir, target string) string {
	target = strings.ReplaceAll(target, "\\", "/")
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(baseDir, target))
}

func readZipFileByName(fileIndex map[string]*zip.File, name string) ([]byte, error) {
	f := fileIndex[name]
	if f == nil {
		return nil, fmt.Errorf("part %s not found", name)
	}
	return readZipFile(f)
}

// Presentation-level XML structures.
type pptxPresentation struct {
	XMLName  xml.Name `xml:"presentation"`
	SldIDLst struct {
		// sldId carries two id attributes: the plain slide id and the
		// relationship id. Only the namespaced r:id resolves to a part.
		IDs []struct {
			RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sldId"`
	} `xml:"sldIdLst"`
	SldSz struct {
		CX int64 `xml:"cx,attr"`
		CY int64 `xml:"cy,attr"`
	} `xml:"sldSz"`
}

type pptxSlideXML struct {
	XMLName xml.Name `xml:"sld"`
	CSld    struct {
		SpTree pptxSpTree `xml:"spTree"`
	} `xml:"cSld"`
}
