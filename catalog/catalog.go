package catalog

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/spec"
)

var ErrDupID = errs.NewFatal("duplicate game id")

// Entry 目錄中的一款遊戲與其來源設定檔
type Entry struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Type       spec.GameType `json:"type"`
	ConfigName string        `json:"config"`
}

// Catalog 從一或多個 fs.FS 讀出的遊戲設定目錄。
//
// 建立時就把所有設定檔讀完並檢查：任何一個檔案讀取或解析失敗都會讓 New 失敗，
// 不會出現只讀了一半的目錄。建立後唯讀。
type Catalog struct {
	byID     map[string]Entry
	settings map[string]*spec.GameSetting
	ids      []string // 用來穩定排序
	config   *multiFS
}

func New(cfg ...fs.FS) (*Catalog, error) {
	multFS, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	c := &Catalog{
		byID:     map[string]Entry{},
		settings: map[string]*spec.GameSetting{},
		ids:      make([]string, 0, 16),
		config:   multFS,
	}

	// 依檔名排序處理，錯誤訊息與結果可重現
	names := make([]string, 0, len(multFS.index))
	for name := range multFS.index {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		src, _ := multFS.GetFS(name)
		raw, err := fs.ReadFile(src, name)
		if err != nil {
			return nil, errs.WrapWithExtra(err, "read config failed", name)
		}
		gs, err := parseGameSettingByExt(name, raw)
		if err != nil {
			return nil, errs.WrapWithExtra(err, "parse game setting failed", name)
		}
		if prev, ok := c.byID[gs.ID]; ok {
			return nil, errs.WrapWithExtra(ErrDupID, gs.ID, fmt.Sprintf("%s and %s", prev.ConfigName, name))
		}
		c.byID[gs.ID] = Entry{ID: gs.ID, Name: gs.Name, Type: gs.Type, ConfigName: name}
		c.settings[gs.ID] = gs
		c.ids = append(c.ids, gs.ID)
	}
	sort.Strings(c.ids)
	return c, nil
}

// Load 讀取所有設定並依 id 排序回傳
func Load(cfg ...fs.FS) ([]*spec.GameSetting, error) {
	c, err := New(cfg...)
	if err != nil {
		return nil, err
	}
	out := make([]*spec.GameSetting, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.settings[id].Clone())
	}
	return out, nil
}

func (c *Catalog) GetByID(id string) (Entry, bool) {
	m, ok := c.byID[id]
	return m, ok
}

func (c *Catalog) IDs() []string {
	if len(c.ids) == 0 {
		return nil
	}
	return append([]string(nil), c.ids...)
}

func (c *Catalog) All() []Entry {
	out := make([]Entry, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

// GameSetting 回傳設定副本，不存在時為 NotFound
func (c *Catalog) GameSetting(id string) (*spec.GameSetting, error) {
	gs, ok := c.settings[id]
	if !ok {
		return nil, errs.NotFound("game id does not exist in catalog: " + id)
	}
	return gs.Clone(), nil
}

func (c *Catalog) Len() int {
	return len(c.ids)
}

func parseGameSettingByExt(filename string, raw []byte) (*spec.GameSetting, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return spec.GetGameSettingByYAML(raw)
	case ".json":
		return spec.GetGameSettingByJSON(raw)
	default:
		return nil, errs.NewFatal(fmt.Sprintf("unsupported config format: %q", filename))
	}
}

type multiFS struct {
	src   []fs.FS
	index map[string]int // name -> src index
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	for i, s := range src {
		if s == nil {
			return nil, errs.NewFatal(fmt.Sprintf("fs[%d] is nil", i))
		}
	}

	m := &multiFS{
		src:   src,
		index: make(map[string]int, 64),
	}

	for i := 0; i < len(src); i++ {
		err := fs.WalkDir(src[i], ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// 設定目錄必須是平的，只允許根目錄
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("config FS must be flat (no subdirectories): %q", path))
			}
			if strings.HasPrefix(path, ".") {
				return nil
			}
			lower := strings.ToLower(path)
			if !(strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".json")) {
				return nil
			}
			if prev, ok := m.index[path]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate config %q in fs[%d] and fs[%d]", path, prev, i))
			}
			m.index[path] = i
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *multiFS) GetFS(name string) (fs.FS, bool) {
	if id, ok := m.index[name]; ok {
		return m.src[id], ok
	}
	return nil, false
}
