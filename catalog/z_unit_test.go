package catalog_test

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/casinolab/catalog"
	"github.com/zintix-labs/casinolab/configs"
	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/spec"
)

const tinyYAML = `
id: tiny
type: slots
min_bet: 1
max_bet: 10
is_active: true
slots:
  reels: 3
  rows: 1
  symbols:
    - {id: "A", name: Ace, value: 1}
  paylines:
    - {id: 1, name: Only, positions: [[0,0],[1,0],[2,0]]}
`

const tinyJSON = `{"id":"tiny-json","type":"slots","min_bet":1,"max_bet":1,"is_active":true,
"slots":{"reels":1,"rows":1,"symbols":[{"id":"A","name":"Ace","value":1}],"paylines":[]}}`

func TestEmbeddedConfigs(t *testing.T) {
	c, err := catalog.New(configs.FS)
	if err != nil {
		t.Fatalf("embedded configs should load: %v", err)
	}
	ids := c.IDs()
	if len(ids) != 2 || ids[0] != "classic-slots" || ids[1] != "fortune-reels" {
		t.Fatalf("unexpected ids: %v", ids)
	}
	gs, err := c.GameSetting("classic-slots")
	if err != nil {
		t.Fatal(err)
	}
	def := spec.DefaultGameSetting()
	if len(gs.Slots.Paylines) != len(def.Slots.Paylines) || len(gs.Slots.Symbols) != len(def.Slots.Symbols) {
		t.Fatalf("embedded classic config drifted from default setting")
	}
	if gs.Slots.Wild != def.Slots.Wild || gs.Slots.Scatter != def.Slots.Scatter || gs.Slots.Bonus != def.Slots.Bonus {
		t.Fatalf("special symbols differ from default setting")
	}
	e, ok := c.GetByID("fortune-reels")
	if !ok || e.ConfigName != "fortune_reels.yaml" || e.Type != spec.GameSlots {
		t.Fatalf("entry mismatch: %+v", e)
	}
}

func TestMultiFSAndFormats(t *testing.T) {
	a := fstest.MapFS{
		"tiny.yaml":   {Data: []byte(tinyYAML)},
		"notes.txt":   {Data: []byte("ignored")},
		".hidden.yml": {Data: []byte("not: parsed")},
	}
	b := fstest.MapFS{"tiny.json": {Data: []byte(tinyJSON)}}

	gss, err := catalog.Load(a, b)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(gss) != 2 || gss[0].ID != "tiny" || gss[1].ID != "tiny-json" {
		t.Fatalf("unexpected settings: %d", len(gss))
	}
	if gss[0].Name != "tiny" {
		t.Fatalf("name should default to id, got %q", gss[0].Name)
	}
}

func TestCatalogErrors(t *testing.T) {
	good := fstest.MapFS{"tiny.yaml": {Data: []byte(tinyYAML)}}

	cases := map[string][]fstest.MapFS{
		"duplicate file": {good, {"tiny.yaml": {Data: []byte(tinyYAML)}}},
		"duplicate id":   {good, {"copy.yaml": {Data: []byte(tinyYAML)}}},
		"subdirectory":   {{"sub/tiny.yaml": {Data: []byte(tinyYAML)}}},
		"bad yaml":       {{"bad.yaml": {Data: []byte("id: [")}}},
		"invalid game":   {{"bad.json": {Data: []byte(`{"id":"x","type":"slots","min_bet":0,"max_bet":1}`)}}},
	}
	for name, srcs := range cases {
		fsys := make([]fs.FS, len(srcs))
		for i, src := range srcs {
			fsys[i] = src
		}
		if _, err := catalog.New(fsys...); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	if _, err := catalog.New(); err == nil {
		t.Fatalf("no sources should fail")
	}

	c, err := catalog.New(good)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.GameSetting("missing"); !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("missing id should be NotFound, got %v", err)
	}
}
