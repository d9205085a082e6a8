package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
)

func TestPrettyPrint(t *testing.T) {
	in := []byte("<?xml version=\"1.0\"?><root>\n\n<a><b>text</b></a>   <c/></root>")

	got, err := PrettyPrint(in, "UTF-8")
	require.NoError(t, err)

	want := strings.Join([]string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<root>`,
		`  <a>`,
		`    <b>text</b>`,
		`  </a>`,
		`  <c/>`,
		`</root>`,
	}, "\n")
	assert.Equal(t, want, got)
}

func TestPrettyPrint_Encoding(t *testing.T) {
	got, err := PrettyPrint([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><r/>`), "ISO-8859-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, `<?xml version="1.0" encoding="ISO-8859-1"?>`))

	got, err = PrettyPrint([]byte(`<r/>`), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, `<?xml version="1.0" encoding="UTF-8"?>`))
}

func TestPrettyPrint_NoBlankLines(t *testing.T) {
	got, err := PrettyPrint([]byte("<r>\n\n\n<x>1</x>\n\n</r>"), "UTF-8")
	require.NoError(t, err)
	for _, line := range strings.Split(got, "\n") {
		assert.NotEmpty(t, strings.TrimSpace(line))
	}
}

func TestPrettyPrint_Malformed(t *testing.T) {
	for _, in := range []string{"<a><b></a>", "not xml", ""} {
		t.Run(in, func(t *testing.T) {
			_, err := PrettyPrint([]byte(in), "UTF-8")
			var xpe *XMLParseError
			require.True(t, errors.As(err, &xpe))
			assert.True(t, errors.Is(err, oerrors.ErrParse))
		})
	}
}
