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
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// cleanCache 清除 test cache，strict 為 true 時失敗即結束
func cleanCache(strict bool) {
	c := exec.Command("go", "clean", "-testcache")
	c.Stdout, c.Stderr = os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		PrintRed(fmt.Sprintf("go clean -testcache failed: %v", err))
		if strict {
			os.Exit(1)
		}
	}
}

// streamGo 執行 go 子指令，stdout/stderr 合併後逐行交給 each
func streamGo(each func(line string), args ...string) error {
	cmd := exec.Command("go", args...)
	pr, pw := io.Pipe()
	cmd.Stdout, cmd.Stderr = pw, pw
	if err := cmd.Start(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		pw.Close()
		done <- err
	}()
	sc := bufio.NewScanner(pr)
	for sc.Scan() {
		each(sc.Text())
	}
	return <-done
}

// runTest 只列出每個套件的 ok / FAIL，編譯錯誤也要看得到
func runTest() {
	PrintGreen("running tests")
	cleanCache(false)
	err := streamGo(func(line string) {
		switch {
		case strings.HasPrefix(line, "ok"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"):
			PrintRed(line)
		case strings.Contains(line, "build failed"), strings.Contains(line, "setup failed"):
			PrintRed(line)
		}
	}, "test", "./...", "-cover", "-count=1")
	if err != nil {
		PrintRed("\nTests Finished with Errors\n")
		os.Exit(1)
	}
}

// runTestAll 全部套件帶 coverage 與 race
func runTestAll() {
	PrintGreen("running tests (all with coverage, race)")
	cleanCache(true)
	c := exec.Command("go", "test", "./...", "-cover", "-race")
	c.Stdout, c.Stderr = os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		PrintRed("\nTests (with coverage) finished with errors\n")
		os.Exit(1)
	}
}

// runTestDetail verbose 輸出，略過 [no test files]
func runTestDetail() {
	PrintGreen("running tests (detail)")
	cleanCache(true)
	err := streamGo(func(line string) {
		switch {
		case strings.Contains(line, "[no test files]"):
		case strings.HasPrefix(line, "ok"), strings.HasPrefix(line, "--- PASS"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"), strings.HasPrefix(line, "--- FAIL"):
			PrintRed(line)
		default:
			fmt.Println(line)
		}
	}, "test", "./...", "-v", "-count=1")
	if err != nil {
		PrintRed("\nTests (detail) finished with errors\n")
		os.Exit(1)
	}
}
