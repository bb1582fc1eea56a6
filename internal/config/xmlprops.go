// internal/config/xmlprops.go
//
// koanf parser for Java-style XML property files.
//
// Context
// -------
// Existing deployments ship configuration in the XML properties layout:
//
//	<?xml version='1.0' encoding='UTF-8'?>
//	<!DOCTYPE properties SYSTEM 'http://java.sun.com/dtd/properties.dtd'>
//	<properties>
//	    <entry key='web.port'>8082</entry>
//	</properties>
//
// The parser returns a flat map whose keys keep their dots, so koanf's
// flattening leaves them untouched.
//
// Notes
// -----
//   - <comment> is accepted and ignored.
//   - An <entry> without a key attribute is a parse error.
//   - Duplicate keys: last one wins.
//   - Non-UTF-8 documents (e.g. encoding="ISO-8859-1") are transcoded
//     through x/net/html/charset.

package config

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/net/html/charset"
)

type xmlEntry struct {
	Key   *string `xml:"key,attr"`
	Value string  `xml:",chardata"`
}

type xmlDocument struct {
	XMLName xml.Name   `xml:"properties"`
	Comment string     `xml:"comment,omitempty"`
	Entries []xmlEntry `xml:"entry"`
}

// XMLProperties implements koanf.Parser.
type XMLProperties struct{}

// XMLParser returns the XML properties parser.
func XMLParser() *XMLProperties { return &XMLProperties{} }

// Unmarshal decodes an XML properties document into a flat map.
func (p *XMLProperties) Unmarshal(b []byte) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, errors.New("xml properties: empty document")
	}

	var doc xmlDocument
	dec := xml.NewDecoder(bytes.NewReader(b))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("xml properties: %w", err)
	}

	out := make(map[string]interface{}, len(doc.Entries))
	for i, e := range doc.Entries {
		if e.Key == nil {
			return nil, fmt.Errorf("xml properties: entry %d has no key attribute", i)
		}
		out[*e.Key] = e.Value
	}
	return out, nil
}

// Marshal encodes a flat map as an XML properties document with keys in
// lexical order.
func (p *XMLProperties) Marshal(m map[string]interface{}) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := xmlDocument{Entries: make([]xmlEntry, 0, len(keys))}
	for _, k := range keys {
		k := k
		doc.Entries = append(doc.Entries, xmlEntry{Key: &k, Value: text(m[k])})
	}

	body, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("xml properties: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<!DOCTYPE properties SYSTEM 'http://java.sun.com/dtd/properties.dtd'>\n")
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
