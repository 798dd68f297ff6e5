package fonts

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
)

// Style 是内置字体的字重/斜体组合。
type Style int

const (
	Regular Style = iota
	Bold
	Italic
	BoldItalic
	Medium
)

// Default is the family used when a text layer names an unknown family.
const Default = "Go"

type key struct {
	family string
	style  Style
}

var builtin = map[key][]byte{
	{"go", Regular}:           goregular.TTF,
	{"go", Bold}:              gobold.TTF,
	{"go", Italic}:            goitalic.TTF,
	{"go", BoldItalic}:        gobolditalic.TTF,
	{"go", Medium}:            gomedium.TTF,
	{"go mono", Regular}:      gomono.TTF,
	{"go mono", Bold}:         gomonobold.TTF,
	{"go smallcaps", Regular}: gosmallcaps.TTF,
}

// Families returns the names of the built-in families.
func Families() []string {
	return []string{"Go", "Go Mono", "Go Smallcaps"}
}

// Has reports whether family is built in (case-insensitive).
func Has(family string) bool {
	return slices.ContainsFunc(Families(), func(f string) bool { return strings.EqualFold(f, family) })
}

// Load 返回内置字体的 TTF 数据；没有对应字重时退回该字体族的 Regular。
func Load(family string, style Style) ([]byte, error) {
	fam := strings.ToLower(strings.TrimSpace(family))
	if data, ok := builtin[key{fam, style}]; ok {
		return data, nil
	}
	if data, ok := builtin[key{fam, Regular}]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("找不到内置字体 %q", family)
}

// LoadOrDefault is Load with a fallback to the default family.
func LoadOrDefault(family string, style Style) []byte {
	if data, err := Load(family, style); err == nil {
		return data
	}
	data, _ := Load(Default, style)
	return data
}
