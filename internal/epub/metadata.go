package epub

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Metadata is the subset of the OPF package document rubybook reports.
type Metadata struct {
	Title    string
	Language string
}

// ReadMetadata extracts dc:title and dc:language from an OPF document.
// Missing elements leave the field empty.
func ReadMetadata(opf []byte) (Metadata, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(opf))
	if err != nil {
		return Metadata{}, fmt.Errorf("parse package document: %w", err)
	}

	var md Metadata
	md.Title, err = metadataText(doc, "title")
	if err != nil {
		return Metadata{}, err
	}
	md.Language, err = metadataText(doc, "language")
	if err != nil {
		return Metadata{}, err
	}
	return md, nil
}

func metadataText(doc *xmlquery.Node, name string) (string, error) {
	expr := fmt.Sprintf("//*[local-name()='metadata']/*[local-name()='%s']", name)
	n, err := xmlquery.Query(doc, expr)
	if err != nil {
		return "", fmt.Errorf("query %s: %w", name, err)
	}
	if n == nil {
		return "", nil
	}
	return strings.TrimSpace(n.InnerText()), nil
}
