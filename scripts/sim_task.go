// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"github.com/zintix-labs/casinolab/configs"
)

const smokeRounds = "200000"

// bundledGames 從內建設定檔名推出遊戲清單(檔名底線轉連字號)
func bundledGames() []string {
	files, err := fs.Glob(configs.FS, "*.yaml")
	if err != nil {
		PrintRed(err.Error())
		os.Exit(1)
	}
	games := make([]string, 0, len(files))
	for _, f := range files {
		games = append(games, strings.ReplaceAll(strings.TrimSuffix(f, ".yaml"), "_", "-"))
	}
	return games
}

// runSimSmoke 對每款內建遊戲跑一輪模擬並印出 RTP 報表。
// 帶參數時只跑指定遊戲。
func runSimSmoke(args []string) {
	games := args
	if len(games) == 0 {
		games = bundledGames()
	}
	failed := 0
	for _, g := range games {
		PrintBlue(fmt.Sprintf("== simulate %s (%s rounds)", g, smokeRounds))
		c := exec.Command("go", "run", "./cmd/sim", "-game", g, "-rounds", smokeRounds, "-seed", "1")
		c.Stdout, c.Stderr = os.Stdout, os.Stderr
		if err := c.Run(); err != nil {
			PrintRed(fmt.Sprintf("%s: %v", g, err))
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// runServe 以 dev log 模式啟動本機 server，其餘參數原樣轉給 cmd/svr
func runServe(args []string) {
	PrintGreen("starting casinolab server")
	c := exec.Command("go", append([]string{"run", "./cmd/svr", "-log-mode", "dev"}, args...)...)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		PrintRed(err.Error())
		os.Exit(1)
	}
}
