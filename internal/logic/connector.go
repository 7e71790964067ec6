package logic

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ConnectorID identifies one output connector.
//
// IDs are compared byte-wise, so they are NFC-normalised on construction:
// two spellings of the same element name must map to the same key.
type ConnectorID string

// NewConnectorID builds a normalised ID from a raw name.
func NewConnectorID(name string) ConnectorID {
	return ConnectorID(norm.NFC.String(strings.TrimSpace(name)))
}

// PortID builds the ID of a port owned by an element, "<element>.<port>".
func PortID(element, port string) ConnectorID {
	return NewConnectorID(element + "." + port)
}

// Split returns the element and port parts of a "<element>.<port>" ID.
// ok is false when the ID has no port separator.
func (id ConnectorID) Split() (element, port string, ok bool) {
	s := string(id)
	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}

// String implements fmt.Stringer.
func (id ConnectorID) String() string {
	return string(id)
}
