package parser

import "context"

// FileType identifies which body of a Document is populated.
type FileType string

const (
	FileTypePDF        FileType = "pdf"
	FileTypeWord       FileType = "word"
	FileTypeExcel      FileType = "excel"
	FileTypePowerPoint FileType = "powerpoint"
)

// Document is the normalized output of a parse call. Exactly one body is
// populated on success; Error alone means total failure, Error alongside a
// body means degraded success (some units carry inline annotations).
// A Document is never mutated after it is returned and holds no open handles.
type Document struct {
	Filename string   `json:"filename"`
	FileType FileType `json:"file_type,omitempty"`
	ParsedAt string   `json:"parsed_at,omitempty"`
	Error    string   `json:"error,omitempty"`

	PDF        *PDFBody        `json:"pdf,omitempty"`
	Word       *WordBody       `json:"word,omitempty"`
	Excel      *ExcelBody      `json:"excel,omitempty"`
	PowerPoint *PowerPointBody `json:"powerpoint,omitempty"`
}

// PDFBody holds page-level text extracted from a PDF container.
type PDFBody struct {
	TotalPages int         `json:"total_pages"`
	Metadata   PDFMetadata `json:"metadata"`
	Pages      []Page      `json:"pages"`
}

type PDFMetadata struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Subject string `json:"subject"`
	Creator string `json:"creator"`
}

// Page is one page of a PDF. Text is the best-effort transcription; pages
// that fail to extract carry the sentinel text and are never dropped.
type Page struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
	CharCount  int    `json:"char_count"`
}

// WordBody holds paragraphs and tables from a Word document.
type WordBody struct {
	TotalParagraphs     int          `json:"total_paragraphs"`
	TotalTables         int          `json:"total_tables"`
	ImageCount          int          `json:"image_count"`
	EmbeddedObjectCount int          `json:"embedded_object_count"`
	Metadata            WordMetadata `json:"metadata"`
	Paragraphs          []Paragraph  `json:"paragraphs"`
	Tables              []Table      `json:"tables"`
}

type WordMetadata struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Subject  string `json:"subject"`
	Created  string `json:"created"`
	Modified string `json:"modified"`
}

// Paragraph is one non-empty paragraph with its verbatim style name.
// Heading styles are interpreted by the rendering layer, not here.
type Paragraph struct {
	Text  string `json:"text"`
	Style string `json:"style"`
}

// Table is a 2D grid of cell text. Data always has Columns entries per row;
// short rows are padded with empty strings.
type Table struct {
	TableNumber int        `json:"table_number"`
	Rows        int        `json:"rows"`
	Columns     int        `json:"columns"`
	Data        [][]string `json:"data"`
}

// ExcelBody holds per-sheet cell grids with computed (not formula) values.
type ExcelBody struct {
	Metadata ExcelMetadata `json:"metadata"`
	Sheets   []Sheet       `json:"sheets"`
}

type ExcelMetadata struct {
	TotalSheets int      `json:"total_sheets"`
	SheetNames  []string `json:"sheet_names"`
}

// Sheet is one worksheet. Rows is the row count of Data after trailing
// all-empty rows are trimmed; Columns is the declared column count from the
// sheet's dimension reference. Cell values are float64, bool, an RFC 3339
// date string, or a plain string; empty cells are "".
type Sheet struct {
	Name    string  `json:"name"`
	Rows    int     `json:"rows"`
	Columns int     `json:"columns"`
	Data    [][]any `json:"data"`
}

// PowerPointBody holds per-slide content plus shape classification results.
type PowerPointBody struct {
	AIVisionEnabled   bool               `json:"ai_vision_enabled"`
	AIVisionAvailable bool               `json:"ai_vision_available"`
	Metadata          PowerPointMetadata `json:"metadata"`
	AIAnalysisSummary *AIAnalysisSummary `json:"ai_analysis_summary,omitempty"`
	Slides            []Slide            `json:"slides"`
}

// PowerPointMetadata carries slide dimensions in EMU, the container's
// native length unit.
type PowerPointMetadata struct {
	TotalSlides int   `json:"total_slides"`
	SlideWidth  int64 `json:"slide_width"`
	SlideHeight int64 `json:"slide_height"`
}

// AIAnalysisSummary is present only when AI vision was requested.
type AIAnalysisSummary struct {
	ImagesTotal    int `json:"images_total"`
	ImagesAnalyzed int `json:"images_analyzed"`
}

// Slide is one presentation slide. Text joins all text-bearing shapes in
// traversal order; counts are tallied during the same traversal that builds
// Shapes, so they are always consistent with it.
type Slide struct {
	SlideNumber int     `json:"slide_number"`
	Title       string  `json:"title"`
	Text        string  `json:"text"`
	Notes       string  `json:"notes"`
	ImageCount  int     `json:"image_count"`
	ChartCount  int     `json:"chart_count"`
	TableCount  int     `json:"table_count"`
	Shapes      []Shape `json:"shapes"`
}

// ContentType is the closed set of shape classifications.
type ContentType string

const (
	ContentImage          ContentType = "image"
	ContentChart          ContentType = "chart"
	ContentTable          ContentType = "table"
	ContentGroup          ContentType = "group"
	ContentEmbeddedObject ContentType = "embedded_object"
	ContentLinkedObject   ContentType = "linked_object"
	ContentText           ContentType = "text"
	ContentUnknown        ContentType = "unknown"
)

// Shape is one visual element on a slide. ContentType and text are
// independent facets: a chart with a caption keeps ContentType "chart" and
// still populates Text/HasText.
type Shape struct {
	Type        string      `json:"type"`
	ContentType ContentType `json:"content_type"`
	HasText     bool        `json:"has_text"`
	Text        string      `json:"text,omitempty"`
	Description string      `json:"description,omitempty"`

	// Image shapes
	ImageFormat    string         `json:"image_format,omitempty"`
	ImageSizeBytes int            `json:"image_size_bytes,omitempty"`
	AIAnalysis     map[string]any `json:"ai_analysis,omitempty"`

	// Chart shapes
	ChartType string `json:"chart_type,omitempty"`

	// Table shapes
	TableRows    int        `json:"table_rows,omitempty"`
	TableColumns int        `json:"table_columns,omitempty"`
	TableData    [][]string `json:"table_data,omitempty"`
}

// Options control extractor behavior for a single parse call.
type Options struct {
	// EnableAIVision requests AI image descriptions (PowerPoint only).
	// Whether the capability is actually usable is reported separately as
	// ai_vision_available on the result.
	EnableAIVision bool

	// Vision is the image enrichment capability. May be nil, in which case
	// enrichment is unavailable regardless of EnableAIVision.
	Vision ImageDescriber
}

// ImageDescriber is the enrichment capability contract: given image bytes,
// a format extension and a context string, produce a description result.
// Implementations never fail hard; every outcome carries at least "enabled"
// and a non-empty "description".
type ImageDescriber interface {
	Available() bool
	DescribeImage(ctx context.Context, data []byte, format, context string) map[string]any
}

// Extractor parses one family of container formats into a Document.
type Extractor interface {
	// Extensions returns the extensions this extractor owns, without dots,
	// lower-case.
	Extensions() []string

	// Parse opens the container at path and produces a Document. A returned
	// error means whole-document failure; unit-level failures are recorded
	// inside the Document instead.
	Parse(ctx context.Context, path string, opts Options) (*Document, error)
}
