package template

import (
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/ByLCY/photobook/dsl"
	"github.com/ByLCY/photobook/geom"
	"github.com/ByLCY/photobook/page"
)

//go:embed builtin.pbt
var builtinSource string

var builtin = sync.OnceValue(func() []Template {
	ts, err := Parse("builtin.pbt", strings.NewReader(builtinSource))
	if err != nil {
		panic(fmt.Sprintf("内置模板无效: %v", err))
	}
	return ts
})

// BuiltIn returns a copy of the built-in catalogue.
func BuiltIn() []Template {
	src := builtin()
	out := make([]Template, len(src))
	for i, t := range src {
		out[i] = t.Clone()
	}
	return out
}

// Lookup finds a built-in template by name.
func Lookup(name string) (Template, error) {
	for _, t := range builtin() {
		if t.Name == name {
			return t.Clone(), nil
		}
	}
	return Template{}, fmt.Errorf("%w: %q", ErrUnknown, name)
}

// Parse reads a template catalogue written in the template DSL.
func Parse(filename string, r io.Reader) ([]Template, error) {
	doc, err := dsl.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("解析模板失败: %w", err)
	}
	return FromDocument(doc)
}

// FromDocument converts a parsed catalogue into templates.
func FromDocument(doc *dsl.Document) ([]Template, error) {
	if doc == nil {
		return nil, nil
	}
	out := make([]Template, 0, len(doc.Templates))
	seen := make(map[string]bool, len(doc.Templates))
	for _, node := range doc.Templates {
		t, err := buildTemplate(node)
		if err != nil {
			return nil, err
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("%s: 模板名重复 %q", node.Pos, t.Name)
		}
		seen[t.Name] = true
		out = append(out, t)
	}
	return out, nil
}

func buildTemplate(node *dsl.Template) (Template, error) {
	t := Template{Name: string(node.Name), Page: page.WithSizeInches(12, 8)}
	if t.Name == "" {
		return Template{}, fmt.Errorf("%s: 模板名不能为空", node.Pos)
	}
	var hasPage bool
	for _, stmt := range node.Block.Statements {
		cmd := stmt.Command
		if cmd == nil {
			return Template{}, fmt.Errorf("%s: 模板 %q 中只允许 page/image/text 语句", node.Pos, t.Name)
		}
		switch cmd.Name {
		case "page":
			if hasPage {
				return Template{}, fmt.Errorf("%s: 模板 %q 重复声明 page", cmd.Pos, t.Name)
			}
			p, err := parsePage(cmd.Args)
			if err != nil {
				return Template{}, fmt.Errorf("%s: %w", cmd.Pos, err)
			}
			t.Page = p
			hasPage = true
		case "image", "text":
			r, err := parseRegion(cmd)
			if err != nil {
				return Template{}, fmt.Errorf("%s: 模板 %q: %w", cmd.Pos, t.Name, err)
			}
			t.Regions = append(t.Regions, r)
		default:
			return Template{}, fmt.Errorf("%s: 未知的语句 %q", cmd.Pos, cmd.Name)
		}
	}
	return t, nil
}

// parsePage reads "W H [ppi N]"; both lengths must use the same unit.
func parsePage(args []*dsl.Lexeme) (page.Page, error) {
	if len(args) != 2 && len(args) != 4 {
		return page.Page{}, fmt.Errorf("page 需要宽、高以及可选的 ppi")
	}
	w, err := page.ParseLength(args[0].Value)
	if err != nil {
		return page.Page{}, err
	}
	h, err := page.ParseLength(args[1].Value)
	if err != nil {
		return page.Page{}, err
	}
	if w.Unit != h.Unit {
		return page.Page{}, fmt.Errorf("页面宽高的单位不一致: %s / %s", w, h)
	}
	ppi := page.DefaultPPI
	if len(args) == 4 {
		if args[2].Value != "ppi" {
			return page.Page{}, fmt.Errorf("未知的页面参数 %q", args[2].Value)
		}
		ppi, err = strconv.Atoi(args[3].Value)
		if err != nil {
			return page.Page{}, fmt.Errorf("无法解析 ppi %q: %w", args[3].Value, err)
		}
	}
	return page.New(w.Value, h.Value, w.Unit, ppi)
}

func parseRegion(cmd *dsl.Command) (Region, error) {
	r := Region{Kind: RegionImage, Size: geom.V(1, 1)}
	if cmd.Name == "text" {
		r.Kind = RegionText
	}

	args := cmd.Args
	for len(args) > 0 {
		key := args[0].Value
		if key != "at" && key != "size" {
			return Region{}, fmt.Errorf("未知的区域参数 %q", key)
		}
		if len(args) < 3 {
			return Region{}, fmt.Errorf("%s 需要两个数值", key)
		}
		x, err := parseRelative(args[1].Value)
		if err != nil {
			return Region{}, err
		}
		y, err := parseRelative(args[2].Value)
		if err != nil {
			return Region{}, err
		}
		if key == "at" {
			r.Position = geom.V(x, y)
		} else {
			r.Size = geom.V(x, y)
		}
		args = args[3:]
	}
	if r.Size.X <= 0 || r.Size.Y <= 0 {
		return Region{}, fmt.Errorf("区域尺寸必须为正数: %v", r.Size)
	}

	if cmd.Block == nil {
		return r, nil
	}
	if r.Kind != RegionText {
		return Region{}, fmt.Errorf("只有 text 区域可以带内容块")
	}
	var sample []string
	for _, stmt := range cmd.Block.Statements {
		switch {
		case stmt.Text != nil:
			sample = append(sample, string(stmt.Text.Value))
		case stmt.Assignment != nil && stmt.Assignment.Key == "font":
			size, err := strconv.ParseFloat(stmt.Assignment.Value.Raw(), 64)
			if err != nil || size <= 0 {
				return Region{}, fmt.Errorf("无效的字号 %q", stmt.Assignment.Value.Raw())
			}
			r.FontSize = size
		default:
			return Region{}, fmt.Errorf("text 区域只支持 font 属性和文本")
		}
	}
	r.SampleText = strings.Join(sample, "\n")
	return r, nil
}

// parseRelative accepts fractions ("0.4") and percentages ("40%").
func parseRelative(v string) (float64, error) {
	scale := 1.0
	if s, ok := strings.CutSuffix(v, "%"); ok {
		v, scale = s, 0.01
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("无法解析相对坐标 %q: %w", v, err)
	}
	return f * scale, nil
}
