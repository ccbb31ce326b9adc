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

package core

import (
	"encoding/binary"

	"github.com/zintix-labs/casinolab/errs"
)

// Scripted 依序回放固定數列的 PRNG，用於測試指定盤面。
//
// IntN / UintN 回傳 script[i] % n；數列用完後從頭循環。
// 空數列永遠回傳 0。
type Scripted struct {
	script []uint64
	pos    int
}

// NewScripted 建立回放器，values 會被複製
func NewScripted(values ...uint64) *Scripted {
	s := make([]uint64, len(values))
	copy(s, values)
	return &Scripted{script: s}
}

// ScriptedFactory 不論 seed 為何都回放相同數列
type ScriptedFactory struct {
	Values []uint64
}

func (f ScriptedFactory) New(int64) PRNG {
	return NewScripted(f.Values...)
}

func (s *Scripted) next() uint64 {
	if len(s.script) == 0 {
		return 0
	}
	v := s.script[s.pos]
	s.pos = (s.pos + 1) % len(s.script)
	return v
}

func (s *Scripted) Uint64() uint64 {
	return s.next()
}

func (s *Scripted) Float64() float64 {
	return float64(s.next()<<11>>11) / (1 << 53)
}

func (s *Scripted) UintN(max uint) uint {
	if max == 0 {
		return 0
	}
	return uint(s.next() % uint64(max))
}

func (s *Scripted) IntN(max int) int {
	if max <= 0 {
		return -1
	}
	return int(s.next() % uint64(max))
}

// Snapshot 只保存游標位置
func (s *Scripted) Snapshot() ([]byte, error) {
	return binary.BigEndian.AppendUint64(nil, uint64(s.pos)), nil
}

func (s *Scripted) Restore(data []byte) error {
	if len(data) != 8 {
		return errs.NewFatal("scripted snapshot must be 8 bytes")
	}
	pos := binary.BigEndian.Uint64(data)
	if len(s.script) > 0 && pos >= uint64(len(s.script)) {
		return errs.Fatalf("scripted snapshot position %d out of range", pos)
	}
	s.pos = int(pos)
	return nil
}
