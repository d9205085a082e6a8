package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	oerrors "github.com/catalogbridge/ckan2csw/internal/errors"
	"github.com/catalogbridge/ckan2csw/internal/extract"
	"github.com/catalogbridge/ckan2csw/internal/mcf"
)

// importISO extracts the documented field set from an ISO 19139 document.
// With anchors set, gmx:Anchor references are kept as URIs.
func importISO(doc string, anchors bool) (mcf.Model, error) {
	d := etree.NewDocument()
	if err := d.ReadFromString(doc); err != nil {
		return nil, &extract.XMLParseError{Cause: err}
	}
	root := d.Root()
	if root == nil || root.Tag != "MD_Metadata" {
		return nil, &extract.XMLParseError{Cause: fmt.Errorf("no gmd:MD_Metadata root element")}
	}

	m := mcf.Model{
		"mcf":            map[string]any{"version": "1.0"},
		"metadata":       map[string]any{},
		"identification": map[string]any{},
		"contact":        map[string]any{},
		"distribution":   map[string]any{},
	}
	md := m.Section("metadata")
	ident := m.Section("identification")

	setIf(md, "identifier", charString(root, "gmd:fileIdentifier"))
	setIf(md, "language", code(root, "gmd:language"))
	setIf(md, "charset", code(root, "gmd:characterSet"))
	setIf(md, "hierarchylevel", code(root, "gmd:hierarchyLevel"))
	setIf(md, "datestamp", dateValue(root.FindElement("gmd:dateStamp")))
	setIf(md, "dataseturi", charString(root, "gmd:dataSetURI"))

	di := root.FindElement("gmd:identificationInfo/*")
	if di != nil {
		if err := importIdentification(ident, di, anchors); err != nil {
			return nil, err
		}
	}

	contacts := m.Section("contact")
	for _, rp := range root.FindElements("gmd:contact/gmd:CI_ResponsibleParty") {
		addContact(contacts, rp)
	}
	if di != nil {
		for _, rp := range di.FindElements("gmd:pointOfContact/gmd:CI_ResponsibleParty") {
			addContact(contacts, rp)
		}
	}
	for _, rp := range root.FindElements(".//gmd:distributorContact/gmd:CI_ResponsibleParty") {
		addContact(contacts, rp)
	}

	dist := m.Section("distribution")
	for i, res := range root.FindElements(".//gmd:transferOptions//gmd:onLine/gmd:CI_OnlineResource") {
		dist[fmt.Sprintf("link-%d", i)] = link(res)
	}

	return m, nil
}

func importIdentification(ident map[string]any, di *etree.Element, anchors bool) error {
	setIf(ident, "title", charString(di, "gmd:citation/gmd:CI_Citation/gmd:title"))
	setIf(ident, "abstract", charString(di, "gmd:abstract"))
	setIf(ident, "status", code(di, "gmd:status"))
	setIf(ident, "language", code(di, "gmd:language"))

	dates := map[string]any{}
	for _, ci := range di.FindElements("gmd:citation/gmd:CI_Citation/gmd:date/gmd:CI_Date") {
		typ := code(ci, "gmd:dateType")
		val := dateValue(ci.FindElement("gmd:date"))
		if typ != "" && val != "" {
			dates[typ] = val
		}
	}
	if len(dates) > 0 {
		ident["dates"] = dates
	}

	keywords := map[string]any{}
	for _, kw := range di.FindElements("gmd:descriptiveKeywords/gmd:MD_Keywords") {
		var words []any
		for _, k := range kw.FindElements("gmd:keyword") {
			if v := textOrAnchor(k, anchors); v != "" {
				words = append(words, v)
			}
		}
		if len(words) == 0 {
			continue
		}
		group := map[string]any{"keywords": words}
		setIf(group, "keywords_type", code(kw, "gmd:type"))
		if name := charString(kw, "gmd:thesaurusName/gmd:CI_Citation/gmd:title"); name != "" {
			vocab := map[string]any{"name": name}
			if anchors {
				setIf(vocab, "url", anchorHref(kw.FindElement("gmd:thesaurusName/gmd:CI_Citation/gmd:title")))
			}
			group["vocabulary"] = vocab
		}
		keywords[fmt.Sprintf("keywords-%d", len(keywords))] = group
	}
	if len(keywords) > 0 {
		ident["keywords"] = keywords
	}

	var topics []any
	for _, tc := range di.FindElements("gmd:topicCategory/gmd:MD_TopicCategoryCode") {
		if v := strings.TrimSpace(tc.Text()); v != "" {
			topics = append(topics, v)
		}
	}
	if len(topics) > 0 {
		ident["topiccategory"] = topics
	}

	extents, err := importExtents(di)
	if err != nil {
		return err
	}
	if extents != nil {
		ident["extents"] = extents
	}

	for _, lc := range di.FindElements("gmd:resourceConstraints/gmd:MD_LegalConstraints") {
		if ac := code(lc, "gmd:accessConstraints"); ac != "" {
			ident["accessconstraints"] = ac
			if oc := lc.FindElement("gmd:otherConstraints"); oc != nil {
				if anchors {
					setIf(ident, "accessconstraints_uri", anchorHref(oc))
				}
				setIf(ident, "rights", textOrAnchor(oc, false))
			}
			break
		}
	}
	return nil
}

func importExtents(di *etree.Element) (map[string]any, error) {
	var spatial []any
	for _, bb := range di.FindElements(".//gmd:EX_Extent/gmd:geographicElement/gmd:EX_GeographicBoundingBox") {
		bbox := make([]any, 0, 4)
		for _, name := range []string{"westBoundLongitude", "southBoundLatitude", "eastBoundLongitude", "northBoundLatitude"} {
			raw := strings.TrimSpace(text(bb, "gmd:"+name+"/gco:Decimal"))
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bounding box %s %q: %v", oerrors.ErrParse, name, raw, err)
			}
			bbox = append(bbox, f)
		}
		spatial = append(spatial, map[string]any{"bbox": bbox, "crs": 4326})
	}

	var temporal []any
	for _, tp := range di.FindElements(".//gmd:EX_Extent/gmd:temporalElement//gml:TimePeriod") {
		t := map[string]any{}
		setIf(t, "begin", text(tp, "gml:beginPosition"))
		setIf(t, "end", text(tp, "gml:endPosition"))
		if len(t) > 0 {
			temporal = append(temporal, t)
		}
	}

	if spatial == nil && temporal == nil {
		return nil, nil
	}
	out := map[string]any{}
	if spatial != nil {
		out["spatial"] = spatial
	}
	if temporal != nil {
		out["temporal"] = temporal
	}
	return out, nil
}

func addContact(contacts map[string]any, rp *etree.Element) {
	role := code(rp, "gmd:role")
	if role == "" {
		return
	}
	c := map[string]any{}
	setIf(c, "organization", charString(rp, "gmd:organisationName"))
	setIf(c, "individualname", charString(rp, "gmd:individualName"))
	setIf(c, "positionname", charString(rp, "gmd:positionName"))
	ci := rp.FindElement("gmd:contactInfo/gmd:CI_Contact")
	if ci != nil {
		setIf(c, "phone", charString(ci, "gmd:phone/gmd:CI_Telephone/gmd:voice"))
		setIf(c, "fax", charString(ci, "gmd:phone/gmd:CI_Telephone/gmd:facsimile"))
		addr := ci.FindElement("gmd:address/gmd:CI_Address")
		if addr != nil {
			setIf(c, "address", charString(addr, "gmd:deliveryPoint"))
			setIf(c, "city", charString(addr, "gmd:city"))
			setIf(c, "administrativearea", charString(addr, "gmd:administrativeArea"))
			setIf(c, "postalcode", charString(addr, "gmd:postalCode"))
			setIf(c, "country", charString(addr, "gmd:country"))
			setIf(c, "email", charString(addr, "gmd:electronicMailAddress"))
		}
		setIf(c, "url", text(ci, "gmd:onlineResource/gmd:CI_OnlineResource/gmd:linkage/gmd:URL"))
	}
	contacts[role] = c
}

func link(res *etree.Element) map[string]any {
	l := map[string]any{}
	setIf(l, "url", text(res, "gmd:linkage/gmd:URL"))
	setIf(l, "type", charString(res, "gmd:protocol"))
	setIf(l, "name", charString(res, "gmd:name"))
	setIf(l, "description", charString(res, "gmd:description"))
	setIf(l, "function", code(res, "gmd:function"))
	return l
}

func setIf(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func text(e *etree.Element, path string) string {
	if e == nil {
		return ""
	}
	el := e.FindElement(path)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

// charString reads a gco:CharacterString or gmx:Anchor child of path.
func charString(e *etree.Element, path string) string {
	if e == nil {
		return ""
	}
	el := e.FindElement(path)
	if el == nil {
		return ""
	}
	return textOrAnchor(el, false)
}

// textOrAnchor returns the wrapped string of a property element. With
// preferHref set, an anchor yields its xlink:href.
func textOrAnchor(el *etree.Element, preferHref bool) string {
	if a := el.FindElement("gmx:Anchor"); a != nil {
		if href := a.SelectAttrValue("xlink:href", ""); preferHref && href != "" {
			return href
		}
		return strings.TrimSpace(a.Text())
	}
	if cs := el.FindElement("gco:CharacterString"); cs != nil {
		return strings.TrimSpace(cs.Text())
	}
	return strings.TrimSpace(el.Text())
}

func anchorHref(el *etree.Element) string {
	if el == nil {
		return ""
	}
	if a := el.FindElement("gmx:Anchor"); a != nil {
		return a.SelectAttrValue("xlink:href", "")
	}
	return ""
}

// code reads the codeListValue of the single code element under path,
// falling back to its text.
func code(e *etree.Element, path string) string {
	el := e.FindElement(path + "/*")
	if el == nil {
		return ""
	}
	if v := el.SelectAttrValue("codeListValue", ""); v != "" {
		return v
	}
	return strings.TrimSpace(el.Text())
}

func dateValue(e *etree.Element) string {
	if e == nil {
		return ""
	}
	for _, tag := range []string{"gco:DateTime", "gco:Date"} {
		if v := text(e, tag); v != "" {
			return v
		}
	}
	return ""
}
