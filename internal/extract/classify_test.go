package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"invoice2csv/constants"
)

// stubPages is a canned pdftext.Source keyed by path.
type stubPages struct {
	texts map[string][]string
	err   error
}

func (s stubPages) PageTexts(path string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.texts[path], nil
}

func TestClassifyImageAlwaysScanned(t *testing.T) {
	c := NewClassifier(stubPages{}, nil)
	got := c.Classify(Document{Path: "scan.png", Format: constants.IMAGE})
	assert.Equal(t, Scanned, got)
}

func TestClassifyDigitalNeedsOnePageOverThreshold(t *testing.T) {
	long := strings.Repeat("invoice text ", 10)
	c := NewClassifier(stubPages{texts: map[string][]string{
		"doc.pdf": {"", "short", long},
	}}, nil)
	got := c.Classify(Document{Path: "doc.pdf", Format: constants.PDF})
	assert.Equal(t, Digital, got)
}

func TestClassifyAllPagesBelowThresholdIsScanned(t *testing.T) {
	// 50 trimmed chars exactly does not qualify; the text must exceed it
	exactly50 := strings.Repeat("x", 50)
	c := NewClassifier(stubPages{texts: map[string][]string{
		"doc.pdf": {"   ", exactly50, "tiny"},
	}}, nil)
	got := c.Classify(Document{Path: "doc.pdf", Format: constants.PDF})
	assert.Equal(t, Scanned, got)
}

func TestClassifyThresholdCountsCharactersNotBytes(t *testing.T) {
	// 30 two-byte characters: 60 bytes but only 30 characters, below threshold
	c := NewClassifier(stubPages{texts: map[string][]string{
		"doc.pdf": {strings.Repeat("ü", 30)},
	}}, nil)
	got := c.Classify(Document{Path: "doc.pdf", Format: constants.PDF})
	assert.Equal(t, Scanned, got)

	// 51 two-byte characters does exceed the threshold
	c = NewClassifier(stubPages{texts: map[string][]string{
		"doc.pdf": {strings.Repeat("é", 51)},
	}}, nil)
	got = c.Classify(Document{Path: "doc.pdf", Format: constants.PDF})
	assert.Equal(t, Digital, got)
}

func TestClassifyUnreadablePDFIsScanned(t *testing.T) {
	c := NewClassifier(stubPages{err: errors.New("corrupt xref")}, nil)
	got := c.Classify(Document{Path: "broken.pdf", Format: constants.PDF})
	assert.Equal(t, Scanned, got)
}
