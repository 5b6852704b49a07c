package coord

import (
	"fmt"
	"math"
)

// maxDigits is the number of significant digits accumulated into an
// ordinate. Further digits still take part in hashing but not in the value.
const maxDigits = 19

// text is the input accepted by the scanner. Both forms are scanned in place,
// so neither is ever converted into the other.
type text interface {
	~[]byte | ~string
}

// Parser scans whitespace separated ordinate sequences (the content of a GML
// posList or pos element) and feeds the resulting coordinates to a Handler.
//
// Numbers are accumulated digit by digit and scaled with a power-of-ten
// table; no intermediate strings or numeric objects are created. The content
// hash is updated as digits are consumed and reset after each coordinate.
//
// A Parser is not safe for concurrent use.
type Parser struct {
	handler  Handler
	geomType GeometryType
	threeD   bool

	last    Coordinate // last coordinate delivered, for duplicate suppression
	hasLast bool

	arc     [3]Coordinate // arc control points awaiting release
	arcN    int
	arcOpen bool // first arc of the current sequence has been released

	count int
}

// NewParser creates a parser delivering coordinates to h.
func NewParser(h Handler) *Parser {
	return &Parser{handler: h}
}

// SetGeometryType selects how subsequent coordinates are delivered.
func (p *Parser) SetGeometryType(t GeometryType) {
	p.geomType = t
	p.arcN = 0
	p.arcOpen = false
}

// GeometryType returns the current delivery mode.
func (p *Parser) GeometryType() GeometryType { return p.geomType }

// SetDimension toggles between 2D pairs and 3D triples. Only the first two
// ordinates of a triple take part in hashing and in the emitted coordinate.
func (p *Parser) SetDimension(threeD bool) { p.threeD = threeD }

// Dimension returns the number of ordinates consumed per coordinate.
func (p *Parser) Dimension() int {
	if p.threeD {
		return 3
	}
	return 2
}

// Count returns the number of coordinates delivered so far.
func (p *Parser) Count() int { return p.count }

// NextGeometricObject resets per-feature state and notifies the handler.
func (p *Parser) NextGeometricObject() {
	p.reset()
	p.handler.NextGeometricObject()
}

// NextInterior resets per-ring state and notifies the handler.
func (p *Parser) NextInterior() {
	p.reset()
	p.handler.NextInterior()
}

func (p *Parser) reset() {
	p.hasLast = false
	p.arcN = 0
	p.arcOpen = false
}

// Parse scans one ordinate sequence, tagging every coordinate with loc.
func (p *Parser) Parse(data []byte, loc Location) error {
	return parse(p, data, loc)
}

// ParseString is Parse for character data.
func (p *Parser) ParseString(s string, loc Location) error {
	return parse(p, s, loc)
}

func parse[T text](p *Parser, data T, loc Location) error {
	p.arcN = 0
	p.arcOpen = false

	dim := p.Dimension()
	var x, y float64
	k := 0
	h := hashOffset

	i, n := 0, len(data)
	for {
		for i < n && isSpace(data[i]) {
			i++
		}
		if i >= n {
			break
		}

		v, hv, next, err := ordinate(data, i, h)
		if err != nil {
			return err
		}
		if next < n && !isSpace(data[next]) {
			end := next
			for end < n && !isSpace(data[end]) {
				end++
			}
			return &MalformedOrdinateError{
				Offset: i,
				Token:  string(data[i:end]),
				Reason: fmt.Sprintf("unexpected character %q", data[next]),
			}
		}

		switch k {
		case 0:
			x = v
			h = hashByte(hv, ordinateSeparator)
		case 1:
			y = v
			h = hv
		}
		k++
		i = next

		if k == dim {
			c := Coordinate{X: x, Y: y, Hash: h, Location: loc, Type: p.geomType}
			if err := p.emit(c); err != nil {
				return err
			}
			k = 0
			h = hashOffset
		}
	}

	if k != 0 {
		return &IncompleteCoordinateError{Ordinates: k, Dimension: dim}
	}
	if p.geomType == TypeArc && p.arcN != 0 {
		left := p.arcN
		p.arcN = 0
		return &IncompleteCoordinateError{Ordinates: left, Dimension: dim, Arc: true}
	}
	return nil
}

// ordinate scans one signed decimal starting at i. It returns the value, the
// hash updated with the normalized digits, and the offset after the token.
//
// Leading integer zeros and trailing fraction zeros are not hashed, and the
// minus sign is only hashed once a non-zero digit is seen, so -0.0 and 0
// hash the same.
func ordinate[T text](data T, i int, h uint64) (float64, uint64, int, error) {
	start := i
	n := len(data)

	neg := false
	if c := data[i]; c == '+' || c == '-' {
		neg = c == '-'
		i++
	}

	var d float64
	digits, frac, pendingZeros := 0, 0, 0
	kept, dropped := 0, 0 // significant digits in d, integer digits beyond maxDigits
	significant, dot := false, false

	for ; i < n; i++ {
		c := data[i]
		if c < '0' || c > '9' {
			break
		}
		digits++
		if kept < maxDigits {
			d = d*10 + float64(c-'0')
			if c != '0' || significant {
				kept++
			}
		} else {
			dropped++
		}
		if c == '0' && !significant {
			continue
		}
		if !significant {
			significant = true
			if neg {
				h = hashByte(h, '-')
			}
		}
		h = hashByte(h, c)
	}

	if i < n && data[i] == '.' {
		i++
		for ; i < n; i++ {
			c := data[i]
			if c < '0' || c > '9' {
				break
			}
			digits++
			if kept < maxDigits {
				d = d*10 + float64(c-'0')
				frac++
				if c != '0' || significant {
					kept++
				}
			}
			if c == '0' {
				pendingZeros++
				continue
			}
			if !significant {
				significant = true
				if neg {
					h = hashByte(h, '-')
				}
			}
			if !dot {
				h = hashByte(h, '.')
				dot = true
			}
			for ; pendingZeros > 0; pendingZeros-- {
				h = hashByte(h, '0')
			}
			h = hashByte(h, c)
		}
	}

	if digits == 0 {
		end := i
		for end < n && !isSpace(data[end]) {
			end++
		}
		return 0, h, i, &MalformedOrdinateError{
			Offset: start,
			Token:  string(data[start:end]),
			Reason: "no digits",
		}
	}

	if dropped > 0 {
		d *= scale(dropped)
	}
	if frac > 0 {
		d /= scale(frac)
	}
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return 0, h, i, &MalformedOrdinateError{
			Offset: start,
			Token:  string(data[start:i]),
			Reason: "out of range",
		}
	}
	if neg {
		d = -d
	}
	return d, h, i, nil
}

func (p *Parser) emit(c Coordinate) error {
	switch p.geomType {
	case TypeUnique:
		if p.hasLast && p.last.Hash == c.Hash && p.last.SamePosition(c) {
			return nil
		}
	case TypeArc:
		p.arc[p.arcN] = c
		p.arcN++
		need := 2
		if !p.arcOpen {
			need = 3
		}
		if p.arcN < need {
			return nil
		}
		p.arcOpen = true
		n := p.arcN
		p.arcN = 0
		for _, a := range p.arc[:n] {
			if err := p.deliver(a); err != nil {
				return err
			}
		}
		return nil
	}
	return p.deliver(c)
}

func (p *Parser) deliver(c Coordinate) error {
	p.last = c
	p.hasLast = true
	p.count++
	if err := p.handler.Coordinate(c); err != nil {
		return fmt.Errorf("coordinate handler: %w", err)
	}
	return nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
