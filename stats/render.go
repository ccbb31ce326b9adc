package stats

import (
	"encoding/json"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// StatReportRender 定義輸出行為
type StatReportRender interface {
	Write(w io.Writer, r *StatReport) error
}

// Json渲染
type JsonStatReportRender struct{}

func (*JsonStatReportRender) Write(w io.Writer, r *StatReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// YAML渲染：最內層的一維陣列(例如各 bucket 的命中數)輸出成 [a, b, c]，外層維持展開
type YAMLStatReportRender struct{}

func (*YAMLStatReportRender) Write(w io.Writer, r *StatReport) error {
	var node yaml.Node
	if err := node.Encode(r); err != nil {
		return err
	}
	flowLeafSequences(&node)
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

// RenderFor 依 CLI 的 -o 參數取 render，table 或未知格式回傳 false
func RenderFor(format string) (StatReportRender, bool) {
	switch strings.ToLower(format) {
	case "json":
		return &JsonStatReportRender{}, true
	case "yaml", "yml":
		return &YAMLStatReportRender{}, true
	}
	return nil, false
}

// flowLeafSequences 回傳 n 是否為 sequence，讓上層知道自己是不是最內層
func flowLeafSequences(n *yaml.Node) bool {
	if n == nil {
		return false
	}
	nested := false
	for _, c := range n.Content {
		if flowLeafSequences(c) {
			nested = true
		}
	}
	if n.Kind != yaml.SequenceNode {
		return false
	}
	if !nested {
		n.Style = yaml.FlowStyle
	}
	return true
}
