package extract

import (
	"io"
	"strings"

	"github.com/beevik/etree"
)

// PrettyPrint re-indents an XML document with two spaces and drops blank
// lines. The XML declaration is rewritten to advertise encoding.
func PrettyPrint(xml []byte, encoding string) (string, error) {
	if encoding == "" {
		encoding = "UTF-8"
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	if err := doc.ReadFromBytes(xml); err != nil {
		return "", &XMLParseError{Cause: err}
	}
	if doc.Root() == nil {
		return "", &XMLParseError{}
	}

	dropDeclaration(doc)
	doc.Indent(2)

	out, err := doc.WriteToString()
	if err != nil {
		return "", err
	}

	lines := strings.Split(out, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	decl := `<?xml version="1.0" encoding="` + encoding + `"?>`
	return decl + "\n" + strings.Join(kept, "\n"), nil
}

func dropDeclaration(doc *etree.Document) {
	for _, tok := range doc.Child {
		if pi, ok := tok.(*etree.ProcInst); ok && pi.Target == "xml" {
			doc.RemoveChild(pi)
			return
		}
	}
}
