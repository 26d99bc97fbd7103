package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将看板快照输出为 JSON，便于调试或可视化。
func WriteDebugJSON(snap *Snapshot, path string) error {
	if snap == nil {
		return nil
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteBoardJSON 输出声明式模型本身，供外部持有者持久化。
func WriteBoardJSON(b *Board, path string) error {
	if b == nil {
		return nil
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
