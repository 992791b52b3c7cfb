package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"codello.dev/der"
	"codello.dev/der/tlv"
	"codello.dev/der/universal"
)

// maxSummary limits the number of bytes printed for binary values.
const maxSummary = 32

// encMode encodes output trees with Core Deterministic Encoding (RFC 8949
// section 4.2), so the same input always produces identical bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("derwalk: CBOR encoder initialization failed: " + err.Error())
	}
}

// node is a single TLV in the output tree.
type node struct {
	Offset      int     `yaml:"offset" cbor:"offset"`
	Tag         string  `yaml:"tag" cbor:"tag"`
	Header      int     `yaml:"header" cbor:"header"`
	Length      int     `yaml:"length" cbor:"length"`
	Value       string  `yaml:"value,omitempty" cbor:"value,omitempty"`
	Fingerprint string  `yaml:"blake3,omitempty" cbor:"blake3,omitempty"`
	Children    []*node `yaml:"children,omitempty" cbor:"children,omitempty"`
}

// walker builds the output trees for a stream of concatenated DER values.
type walker struct {
	logger      *slog.Logger
	maxDepth    int
	index       bool
	fingerprint bool
}

// frame is an open container on the walk stack.
type frame struct {
	end  int
	node *node // nil if the container is beyond maxDepth
}

// walk returns the trees of all values in r.
func (w *walker) walk(r io.Reader) ([]*node, error) {
	var roots []*node
	d := tlv.NewDecoder(r)
	for {
		base := d.InputOffset()
		raw, err := d.Next()
		if err == io.EOF {
			return roots, nil
		} else if err != nil {
			return roots, err
		}
		c, err := tlv.NewCursorShared(raw)
		if err != nil {
			return roots, withBase(err, base)
		}
		root, err := w.walkValue(c, base)
		if err != nil {
			return roots, withBase(err, base)
		}
		if w.fingerprint {
			sum := blake3.Sum256(raw)
			root.Fingerprint = hex.EncodeToString(sum[:])
		}
		roots = append(roots, root)
	}
}

// walkValue visits every TLV reachable from the root of c in document order.
func (w *walker) walkValue(c *tlv.Cursor, base int) (*node, error) {
	if w.index {
		n, err := c.BuildOffsetMap()
		if err != nil {
			return nil, err
		}
		w.logger.Debug("built offset index", "offset", base, "entries", n)
	}

	var root *node
	var stack []frame
	for {
		for len(stack) > 0 && c.Offset() >= stack[len(stack)-1].end {
			stack = stack[:len(stack)-1]
		}
		depth := len(stack)

		var n *node
		if w.maxDepth == 0 || depth <= w.maxDepth {
			n = w.newNode(c, base)
		}
		switch {
		case depth == 0:
			root = n
		case stack[depth-1].node != nil && n != nil:
			parent := stack[depth-1].node
			parent.Children = append(parent.Children, n)
		}
		if c.IsContainer() && c.Children() > 0 {
			stack = append(stack, frame{end: c.Offset() + c.TotalLength(), node: n})
		}

		ok, err := c.MoveNext()
		if err != nil {
			return root, err
		}
		if !ok {
			return root, nil
		}
	}
}

// newNode creates the output node for the current value of c.
func (w *walker) newNode(c *tlv.Cursor, base int) *node {
	n := &node{
		Offset: base + c.Offset(),
		Tag:    c.Tag().String(),
		Header: c.HeaderLength(),
		Length: c.PayloadLength(),
	}
	if c.IsContainer() {
		w.logger.Debug("nested value", "offset", n.Offset, "tag", n.Tag, "children", c.Children())
		return n
	}
	v, err := universal.Decode(c)
	if err != nil {
		w.logger.Warn("invalid value", "offset", n.Offset, "tag", n.Tag, "error", err)
		n.Value = summarizeBytes(c.Payload())
		return n
	}
	n.Value = summarize(v)
	return n
}

// summarize returns a short textual representation of v.
func summarize(v universal.Value) string {
	switch v := v.(type) {
	case *universal.Boolean:
		return fmt.Sprint(v.Value)
	case *universal.Null:
		return ""
	case *universal.OctetString:
		return summarizeBytes(v.Value())
	case *universal.BitString:
		return fmt.Sprintf("%d bits %s", v.BitLength, summarizeBytes(v.Bits))
	case *universal.String:
		return fmt.Sprintf("%q", v.Value)
	case *universal.Any:
		return summarizeBytes(v.Payload())
	case fmt.Stringer:
		return v.String()
	}
	return ""
}

// summarizeBytes returns the hex encoding of b, truncated to maxSummary bytes.
func summarizeBytes(b []byte) string {
	if len(b) <= maxSummary {
		return hex.EncodeToString(b)
	}
	return hex.EncodeToString(b[:maxSummary]) + "..."
}

// withBase shifts the offset in err by base.
func withBase(err error, base int) error {
	if base == 0 {
		return err
	}
	var se *der.StructuralError
	if errors.As(err, &se) {
		se.Offset += base
	}
	var be *der.BoundsError
	if errors.As(err, &be) {
		be.Offset += base
	}
	var te *der.TagMismatchError
	if errors.As(err, &te) {
		te.Offset += base
	}
	return err
}

// writeText prints the trees as an indented listing.
func writeText(w io.Writer, roots []*node) error {
	var b strings.Builder
	var printNode func(n *node, depth int)
	printNode = func(n *node, depth int) {
		fmt.Fprintf(&b, "%6d %s%s (%d+%d)", n.Offset, strings.Repeat("  ", depth), n.Tag, n.Header, n.Length)
		if n.Value != "" {
			b.WriteString(": ")
			b.WriteString(n.Value)
		}
		if n.Fingerprint != "" {
			b.WriteString(" blake3:")
			b.WriteString(n.Fingerprint)
		}
		b.WriteByte('\n')
		for _, child := range n.Children {
			printNode(child, depth+1)
		}
	}
	for _, root := range roots {
		printNode(root, 0)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// writeYAML encodes the trees as a YAML sequence.
func writeYAML(w io.Writer, roots []*node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(roots); err != nil {
		return err
	}
	return enc.Close()
}

// writeCBOR encodes the trees as a CBOR array.
func writeCBOR(w io.Writer, roots []*node) error {
	return encMode.NewEncoder(w).Encode(roots)
}
