package page

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines the physical units a page size can be expressed in and
// the conversions between them.

// Unit is the unit a page's stored size is expressed in.
type Unit int

const (
	Pixels      Unit = iota // device pixels at the page PPI
	Inches                  // 1 in = ppi px
	Centimeters             // 1 cm = ppi/2.54 px
)

// Conversion constants.
const (
	CmPerInch = 2.54
	MmPerInch = 25.4
	PtPerInch = 72.0
	PtToMm    = MmPerInch / PtPerInch
	MmToPt    = 1.0 / PtToMm
)

// String returns the display name for a Unit value.
func (u Unit) String() string {
	switch u {
	case Pixels:
		return "Pixels"
	case Inches:
		return "Inches"
	case Centimeters:
		return "Centimeters"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// Suffix returns the short suffix used in length literals.
func (u Unit) Suffix() string {
	switch u {
	case Inches:
		return "in"
	case Centimeters:
		return "cm"
	default:
		return "px"
	}
}

// ParseUnit accepts display names and short suffixes, case-insensitively.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pixels", "px":
		return Pixels, nil
	case "inches", "in":
		return Inches, nil
	case "centimeters", "cm":
		return Centimeters, nil
	}
	return Pixels, fmt.Errorf("未知的单位 %q", s)
}

// MarshalText encodes the unit by its display name.
func (u Unit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

// UnmarshalText decodes a unit written by MarshalText.
func (u *Unit) UnmarshalText(b []byte) error {
	parsed, err := ParseUnit(string(b))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// pixelsPerUnit returns how many pixels one unit spans at the given ppi.
func (u Unit) pixelsPerUnit(ppi int) float64 {
	switch u {
	case Inches:
		return float64(ppi)
	case Centimeters:
		return float64(ppi) / CmPerInch
	default:
		return 1
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Pixels converts l to pixels at ppi.
func (l Length) Pixels(ppi int) float64 { return l.Value * l.Unit.pixelsPerUnit(ppi) }

// MM converts l to millimeters; pixel lengths need the ppi to resolve.
func (l Length) MM(ppi int) float64 { return PixelsToMM(l.Pixels(ppi), ppi) }

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.Suffix()
}

// PixelsToMM converts a pixel distance at ppi to millimeters.
func PixelsToMM(px float64, ppi int) float64 {
	if ppi <= 0 {
		return 0
	}
	return px / float64(ppi) * MmPerInch
}

// ParseLength parses a literal such as "8.27in", "21cm" or "2400px".
// A bare number is read as pixels.
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	unit := Pixels
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", Pixels}, {"in", Inches}, {"cm", Centimeters}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q: %w", value, err)
	}
	return Length{Value: f, Unit: unit}, nil
}
