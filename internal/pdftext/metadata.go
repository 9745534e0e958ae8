package pdftext

import (
	"regexp"
	"strings"
)

// Metadata is what the first page of a construction document usually gives
// away about itself. Fields are empty when nothing matched.
type Metadata struct {
	DocumentType   string `json:"document_type"`
	DocumentDate   string `json:"document_date"`
	ProjectNumber  string `json:"project_number"`
	RevisionNumber string `json:"revision_number"`
	PageCount      int    `json:"page_count"`
}

// Keyed by document type; the first type with any keyword present wins.
var documentTypeKeywords = []struct {
	docType  string
	keywords []string
}{
	{"contract", []string{"agreement", "contract", "general conditions"}},
	{"specifications", []string{"technical specifications", "specifications", "spec"}},
	{"drawing", []string{"drawing", "plan", "detail"}},
	{"permit", []string{"permit", "certification", "approval"}},
	{"submittal", []string{"submittal", "shop drawing", "material data"}},
	{"estimate", []string{"estimate", "budget", "cost analysis"}},
	{"schedule", []string{"schedule", "timeline", "project timeline"}},
	{"inspection", []string{"inspection report", "site inspection", "field report"}},
	{"change_order", []string{"change order", "work change directive", "modification"}},
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`Date:\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
	regexp.MustCompile(`Issued:\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
	regexp.MustCompile(`Rev\s*Date:\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
	regexp.MustCompile(`(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})\s*(?:Rev|Issue|Date)`),
	regexp.MustCompile(`Effective\s*Date:\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
}

var projectNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Project\s*(?:No|Number|#)[:.]?\s*([A-Za-z0-9-]+)`),
	regexp.MustCompile(`Project\s*ID[:.]?\s*([A-Za-z0-9-]+)`),
	regexp.MustCompile(`Contract\s*(?:No|Number|#)[:.]?\s*([A-Za-z0-9-]+)`),
	regexp.MustCompile(`Job\s*(?:No|Number|#)[:.]?\s*([A-Za-z0-9-]+)`),
}

var revisionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Rev(?:ision)?\s*(?:No|Number|#)?[:.]?\s*([A-Za-z0-9-]+)`),
	regexp.MustCompile(`Version\s*[:.]?\s*([A-Za-z0-9-]+)`),
	regexp.MustCompile(`Update\s*[:.]?\s*([A-Za-z0-9-]+)`),
	regexp.MustCompile(`(?:Rev|Revision)\s*([A-Za-z0-9-]+)`),
}

// ExtractMetadata classifies the document from its first page text.
func ExtractMetadata(src Source) (Metadata, error) {
	firstPage, err := src.PageText(1)
	if err != nil {
		return Metadata{}, err
	}
	meta := MetadataFromText(firstPage)
	meta.PageCount = src.NumPages()
	return meta, nil
}

// MetadataFromText runs the classification heuristics over raw text.
func MetadataFromText(text string) Metadata {
	return Metadata{
		DocumentType:   identifyDocumentType(text),
		DocumentDate:   firstMatch(datePatterns, text),
		ProjectNumber:  firstMatch(projectNumberPatterns, text),
		RevisionNumber: firstMatch(revisionPatterns, text),
	}
}

func identifyDocumentType(text string) string {
	lower := strings.ToLower(text)
	for _, entry := range documentTypeKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.docType
			}
		}
	}
	return "unspecified"
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, pattern := range patterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}
