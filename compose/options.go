package compose

// BuildOptions 配置导出阶段所需的依赖，例如排版后端。
type BuildOptions struct {
	Typesetter Typesetter
	Project    string // ${project.name} 的取值
	Meta       DocumentMeta
	Debug      DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	IncludeHidden bool // 隐藏图层也输出（调试 JSON 用）
}

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。
// fontSize 与 width 均为毫米。
type Typesetter interface {
	LayoutLines(content string, width float64, font string, fontSize float64) ([]TextLine, error)
}
