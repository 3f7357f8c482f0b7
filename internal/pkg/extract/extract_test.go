package extract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupported(t *testing.T) {
	assert.True(t, Supported(".txt"))
	assert.True(t, Supported("pdf"))
	assert.True(t, Supported(".DOCX"))
	assert.False(t, Supported(".md"))
	assert.False(t, Supported(".doc"))
	assert.False(t, Supported(""))
}

func TestTextPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("bonjour le monde"), 0o644))

	got, err := Text(path)
	require.NoError(t, err)
	assert.Equal(t, "bonjour le monde", got)
}

func TestTextUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b"), 0o644))

	_, err := Text(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func writeDocx(t *testing.T, path, documentXML string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

func TestTextDocx(t *testing.T) {
	const doc = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>premier paragraphe</w:t></w:r></w:p>
    <w:p><w:r><w:t>deuxieme</w:t></w:r><w:r><w:t> paragraphe</w:t></w:r></w:p>
  </w:body>
</w:document>`

	path := filepath.Join(t.TempDir(), "doc.docx")
	writeDocx(t, path, doc)

	got, err := Text(path)
	require.NoError(t, err)
	assert.Contains(t, got, "premier paragraphe")
	assert.Contains(t, got, "deuxieme paragraphe")
}

func TestTextDocxMissingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/other.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = Text(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word/document.xml")
}
