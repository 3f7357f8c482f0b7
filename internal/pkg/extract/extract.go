// Package extract pulls plain text out of the supported document
// formats: .txt, .pdf and .docx.
package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Supported reports whether the file extension is an ingestible format.
// The extension check is case-insensitive and accepts a leading dot.
func Supported(ext string) bool {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "txt", "pdf", "docx":
		return true
	}
	return false
}

// Text extracts the plain text content of the file at path, dispatching
// on its extension.
func Text(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return textFromPlain(path)
	case ".pdf":
		return textFromPDF(path)
	case ".docx":
		return textFromDocx(path)
	default:
		return "", fmt.Errorf("extract: unsupported file type %q", filepath.Ext(path))
	}
}

func textFromPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("extract: read %s: %w", path, err)
	}
	return string(data), nil
}

func textFromPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("extract: open pdf %s: %w", path, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract: read pdf %s: %w", path, err)
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, reader); err != nil {
		return "", fmt.Errorf("extract: read pdf %s: %w", path, err)
	}
	return sb.String(), nil
}

// textFromDocx reads word/document.xml from the docx archive and
// collects the character data of w:t runs, inserting a newline at each
// paragraph boundary.
func textFromDocx(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("extract: open docx %s: %w", path, err)
	}
	defer zr.Close()

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("extract: %s has no word/document.xml", path)
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("extract: read docx %s: %w", path, err)
	}
	defer rc.Close()

	var (
		sb      strings.Builder
		inText  bool
		decoder = xml.NewDecoder(rc)
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("extract: parse docx %s: %w", path, err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(el)
			}
		}
	}
	return sb.String(), nil
}
