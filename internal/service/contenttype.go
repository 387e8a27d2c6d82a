package service

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var contentTypes = map[string]string{
	"PDF":  "application/pdf",
	"CSV":  "text/csv",
	"TXT":  "text/plain",
	"DOC":  "application/msword",
	"DOCX": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"XLS":  "application/vnd.ms-excel",
	"XLSX": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"PPT":  "application/vnd.ms-powerpoint",
	"PPTX": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"PNG":  "image/png",
	"JPG":  "image/jpeg",
	"JPEG": "image/jpeg",
	"GIF":  "image/gif",
	"JSON": "application/json",
	"XML":  "application/xml",
	"ZIP":  "application/zip",
	"HTML": "text/html",
	"MD":   "text/markdown",
	"RTF":  "application/rtf",
	"ODT":  "application/vnd.oasis.opendocument.text",
}

// ContentTypeFor maps a file type tag such as "PDF" or ".docx" to a MIME type.
// Unknown tags fall back to sniffing data.
func ContentTypeFor(fileType string, data []byte) string {
	if ct, ok := contentTypes[NormalizeFileType(fileType)]; ok {
		return ct
	}
	return mimetype.Detect(data).String()
}

// NormalizeFileType trims a tag and upper-cases it without its leading dot.
func NormalizeFileType(fileType string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(fileType), "."))
}
