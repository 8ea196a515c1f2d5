package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// CitationKind names a citation variant.
type CitationKind string

const (
	CitationDocument CitationKind = "document"
	CitationInternet CitationKind = "internet"
	CitationUnknown  CitationKind = "unknown"
)

// Citation is a source reference attached to a bot answer. It is one of
// DocumentCitation, InternetCitation or UnknownCitation; the variant is fixed
// when the wire object is decoded.
type Citation interface {
	Kind() CitationKind
	// Label is the text shown to the user.
	Label() string
	wire() any
}

// DocumentCitation points at a page of an uploaded document.
type DocumentCitation struct {
	DocID        string
	DocumentName string
	Page         *int
	BlobPath     string
}

func (DocumentCitation) Kind() CitationKind { return CitationDocument }

func (c DocumentCitation) Label() string {
	if c.Page != nil && *c.Page != 0 {
		return fmt.Sprintf("%s (Page %d)", c.DocumentName, *c.Page)
	}
	return c.DocumentName
}

// InternetCitation points at a web page found by web search.
type InternetCitation struct {
	URL   string
	Title string
}

func (InternetCitation) Kind() CitationKind { return CitationInternet }

func (c InternetCitation) Label() string {
	if c.Title != "" {
		return c.Title
	}
	return c.URL
}

// UnknownCitation keeps an unrecognised object verbatim for diagnostics.
type UnknownCitation struct {
	Raw json.RawMessage
}

func (UnknownCitation) Kind() CitationKind { return CitationUnknown }

func (c UnknownCitation) Label() string { return "unknown source" }

type citationWire struct {
	DocID         json.RawMessage `json:"doc_id,omitempty"`
	DocumentName  string          `json:"document_name,omitempty"`
	Page          json.RawMessage `json:"page,omitempty"`
	BlobPath      string          `json:"blob_path,omitempty"`
	InternetURL   string          `json:"internet_url,omitempty"`
	InternetTitle string          `json:"internet_title,omitempty"`
}

func (c DocumentCitation) wire() any {
	w := citationWire{
		DocID:        json.RawMessage(strconv.Quote(c.DocID)),
		DocumentName: c.DocumentName,
		BlobPath:     c.BlobPath,
	}
	if c.Page != nil {
		w.Page = json.RawMessage(strconv.Itoa(*c.Page))
	}
	return w
}

func (c InternetCitation) wire() any {
	return citationWire{InternetURL: c.URL, InternetTitle: c.Title}
}

func (c UnknownCitation) wire() any {
	if len(c.Raw) == 0 {
		return json.RawMessage("null")
	}
	return c.Raw
}

// scalarString turns a JSON string or number into its string form. null,
// "" and anything else report false.
func scalarString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// zeroNumber reports whether raw is the JSON number 0. A numeric doc_id of 0
// counts as absent; the string "0" does not.
func zeroNumber(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' {
		return false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return false
	}
	f, err := n.Float64()
	return err == nil && f == 0
}

// ParseCitation classifies one wire object: doc_id first, then internet_url,
// otherwise unknown. Input that is not an object is also unknown.
func ParseCitation(raw json.RawMessage) Citation {
	var w citationWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return UnknownCitation{Raw: append(json.RawMessage(nil), raw...)}
	}

	if id, ok := scalarString(w.DocID); ok && !zeroNumber(w.DocID) {
		c := DocumentCitation{DocID: id, DocumentName: w.DocumentName, BlobPath: w.BlobPath}
		if p, ok := scalarString(w.Page); ok {
			if n, err := strconv.Atoi(p); err == nil {
				c.Page = &n
			}
		}
		return c
	}

	if w.InternetURL != "" {
		return InternetCitation{URL: w.InternetURL, Title: w.InternetTitle}
	}

	return UnknownCitation{Raw: append(json.RawMessage(nil), raw...)}
}

// CitationList decodes a JSON array of wire citations into classified
// variants and encodes them back to the same wire shape.
type CitationList []Citation

func (l CitationList) MarshalJSON() ([]byte, error) {
	out := make([]any, len(l))
	for i, c := range l {
		out[i] = c.wire()
	}
	return json.Marshal(out)
}

func (l *CitationList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = nil
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	list := make(CitationList, len(raws))
	for i, r := range raws {
		list[i] = ParseCitation(r)
	}
	*l = list
	return nil
}
