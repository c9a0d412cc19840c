package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/GTDGit/ultra_import/internal/models"
	"github.com/GTDGit/ultra_import/internal/utils"
)

// ParseError is returned when a payload is not a well-formed XML document.
type ParseError struct {
	Dataset models.DatasetKind
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s payload: %v", e.Dataset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match utils.ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == utils.ErrParse
}

// isEmpty reports whether the payload carries no document at all.
func isEmpty(payload string) bool {
	return strings.TrimSpace(payload) == ""
}

// newDecoder builds a strict decoder. Payloads that arrive as valid UTF-8 are
// read as-is whatever their declaration says (the SOAP layer already decoded
// them); raw byte payloads are converted from the declared charset.
func newDecoder(payload string) *xml.Decoder {
	d := xml.NewDecoder(strings.NewReader(payload))
	validUTF8 := utf8.ValidString(payload)
	d.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		if validUTF8 {
			return input, nil
		}
		enc, err := htmlindex.Get(label)
		if err != nil {
			return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
		}
		return enc.NewDecoder().Reader(input), nil
	}
	return d
}

// eachElement walks the whole document and calls fn for every element with
// the given local name, at any depth. The matched element is consumed by fn.
func eachElement(kind models.DatasetKind, payload, name string, fn func(d *xml.Decoder, start *xml.StartElement) error) error {
	d := newDecoder(payload)
	sawRoot := false
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return &ParseError{Dataset: kind, Err: err}
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if start.Name.Local != name {
			continue
		}
		if err := fn(d, &start); err != nil {
			return &ParseError{Dataset: kind, Err: err}
		}
	}
	if !sawRoot {
		return &ParseError{Dataset: kind, Err: errors.New("document has no root element")}
	}
	return nil
}

// text resolves an optional leaf to its trimmed value, or "" when absent.
func text(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

// coalesce returns the first present leaf, even if it is empty.
func coalesce(values ...*string) string {
	for _, v := range values {
		if v != nil {
			return text(v)
		}
	}
	return ""
}

// firstNonEmpty returns the first leaf with a non-empty value.
func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if s := text(v); s != "" {
			return s
		}
	}
	return ""
}

// number parses a non-negative decimal, accepting a comma separator and
// grouping spaces. Missing, unparsable or negative values are 0.
func number(v *string) decimal.Decimal {
	raw := text(v)
	if raw == "" {
		return decimal.Zero
	}
	raw = strings.NewReplacer(",", ".", " ", "", "\u00a0", "").Replace(raw)
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

var maxInt64 = decimal.NewFromInt(math.MaxInt64)

// integer parses a non-negative integer, truncating fractional input.
// Values beyond int64 saturate at math.MaxInt64.
func integer(v *string) int64 {
	raw := text(v)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	switch {
	case err == nil:
		return max(n, 0)
	case errors.Is(err, strconv.ErrRange):
		if strings.HasPrefix(raw, "-") {
			return 0
		}
		return math.MaxInt64
	}
	d := number(v).Truncate(0)
	if d.GreaterThan(maxInt64) {
		return math.MaxInt64
	}
	return d.IntPart()
}

// variantKey maps an optional characteristic reference to a variant key;
// an absent or empty reference is the default variant.
func variantKey(v *string) models.VariantKey {
	id := text(v)
	if id == "" {
		return models.DefaultVariant
	}
	return models.CharacteristicVariant(id)
}
