package configs

import (
	"embed"
)

// FS 內建的遊戲設定，平台啟動時預設載入
//
//go:embed *.yaml
var FS embed.FS
