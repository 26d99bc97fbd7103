package renderer

import "github.com/ByLCY/gridboard/layout"

// Renderer 将看板快照输出为最终文件，例如 PDF 或 SVG。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(snap *layout.Snapshot) ([]byte, error)
}
