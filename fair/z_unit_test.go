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

package fair

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bet struct {
	Lines      int   `json:"lines"`
	BetPerLine int64 `json:"betPerLine"`
}

var (
	ts0     = time.UnixMilli(1_700_000_000_000)
	grid0   = [][]string{{"A", "K", "Q"}, {"A", "K", "Q"}}
	bet0    = bet{Lines: 5, BetPerLine: 2}
	hexExpr = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

func TestHashReproducible(t *testing.T) {
	h := NewHasher("")
	a, err := h.Hash("alice", bet0, grid0, ts0)
	require.NoError(t, err)
	b, err := NewHasher(DefaultServerSeed).Hash("alice", bet0, grid0, ts0)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, HashLen)
	assert.Regexp(t, hexExpr, a)
}

func TestHashChangesWithEveryInput(t *testing.T) {
	h := NewHasher("seed")
	base, err := h.Hash("alice", bet0, grid0, ts0)
	require.NoError(t, err)

	variants := map[string]func() (string, error){
		"user":      func() (string, error) { return h.Hash("bob", bet0, grid0, ts0) },
		"bet":       func() (string, error) { return h.Hash("alice", bet{Lines: 5, BetPerLine: 3}, grid0, ts0) },
		"outcome":   func() (string, error) { return h.Hash("alice", bet0, [][]string{{"K", "K", "Q"}, {"A", "K", "Q"}}, ts0) },
		"timestamp": func() (string, error) { return h.Hash("alice", bet0, grid0, ts0.Add(time.Millisecond)) },
		"seed":      func() (string, error) { return NewHasher("other").Hash("alice", bet0, grid0, ts0) },
	}
	for name, fn := range variants {
		got, err := fn()
		require.NoError(t, err, name)
		assert.NotEqual(t, base, got, "changing %s must change the hash", name)
	}
}

func TestVerify(t *testing.T) {
	h := NewHasher("seed")
	hash, err := h.Hash("alice", bet0, grid0, ts0)
	require.NoError(t, err)

	ok, err := h.Verify(hash, "alice", bet0, grid0, ts0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(hash, "alice", bet0, grid0, ts0.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanonicalCarriesSeed(t *testing.T) {
	b, err := NewHasher("s3cr3t").Canonical("u", map[string]int{"b": 1, "a": 2}, nil, ts0)
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":"u","betData":{"a":2,"b":1},"outcome":null,"timestamp":1700000000000,"serverSeed":"s3cr3t"}`, string(b))
	assert.Contains(t, string(b), `{"a":2,"b":1}`)
}

func TestUnencodableInput(t *testing.T) {
	_, err := NewHasher("").Hash("u", make(chan int), nil, ts0)
	assert.Error(t, err)
}
