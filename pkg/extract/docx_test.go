package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	ct, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`))
	require.NoError(t, err)

	if documentXML != "" {
		doc, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDocxExtractor(t *testing.T) {
	docXML := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Attention Is All</w:t></w:r><w:r><w:t> You Need</w:t></w:r></w:p>
<w:p><w:r><w:t>Abstract</w:t></w:r></w:p>
</w:body>
</w:document>`

	text, err := NewDocxExtractor().Extract(context.Background(), createTestDOCX(t, docXML))
	require.NoError(t, err)
	assert.Equal(t, "Attention Is All You Need\nAbstract", text)
}

func TestDocxExtractor_Invalid(t *testing.T) {
	ctx := context.Background()

	_, err := NewDocxExtractor().Extract(ctx, []byte("not a zip"))
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = NewDocxExtractor().Extract(ctx, createTestDOCX(t, ""))
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = NewDocxExtractor().Extract(ctx, createTestDOCX(t, "<w:document"))
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestDocxExtractor_TabsAndBreaks(t *testing.T) {
	docXML := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Name</w:t><w:tab/><w:t>Score</w:t><w:br/><w:t>attention</w:t></w:r></w:p>
<w:p><w:r><w:t>line one</w:t><w:cr/><w:t>line two</w:t></w:r></w:p>
</w:body>
</w:document>`

	text, err := NewDocxExtractor().Extract(context.Background(), createTestDOCX(t, docXML))
	require.NoError(t, err)
	assert.Equal(t, "Name\tScore\nattention\nline one\nline two", text)
}
