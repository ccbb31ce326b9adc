package middleware

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// CompressConfig 壓縮等級；zstd 優先於 gzip
type CompressConfig struct {
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
}

var DefaultCompressConfig = CompressConfig{
	GzipLevel: gzip.DefaultCompression,
	ZstdLevel: zstd.SpeedFastest,
}

// encoder 是 gzip.Writer 與 zstd.Encoder 的共同行為
type encoder interface {
	io.WriteCloser
	Flush() error
}

// codec 一種 Content-Encoding 與它的 writer pool
type codec struct {
	name  string
	pool  sync.Pool
	build func(w io.Writer) encoder
	reset func(e encoder, w io.Writer)
}

func (c *codec) get(w io.Writer) encoder {
	if v := c.pool.Get(); v != nil {
		e := v.(encoder)
		c.reset(e, w)
		return e
	}
	return c.build(w)
}

// put 回收前先 Close 寫出 footer；discard 時 footer 丟進 io.Discard
func (c *codec) put(e encoder, discard bool) {
	if discard {
		c.reset(e, io.Discard)
	}
	_ = e.Close()
	c.pool.Put(e)
}

// 依優先序排列
var codecs = []*codec{
	{
		name: "zstd",
		build: func(w io.Writer) encoder {
			zw, err := zstd.NewWriter(w,
				zstd.WithEncoderLevel(DefaultCompressConfig.ZstdLevel),
				zstd.WithEncoderConcurrency(1),
			)
			if err != nil {
				panic(err)
			}
			return zw
		},
		reset: func(e encoder, w io.Writer) { e.(*zstd.Encoder).Reset(w) },
	},
	{
		name: "gzip",
		build: func(w io.Writer) encoder {
			gw, _ := gzip.NewWriterLevel(w, DefaultCompressConfig.GzipLevel)
			return gw
		},
		reset: func(e encoder, w io.Writer) { e.(*gzip.Writer).Reset(w) },
	},
}

func pickCodec(acceptEncoding string) *codec {
	if acceptEncoding == "" {
		return nil
	}
	for _, c := range codecs {
		if strings.Contains(acceptEncoding, c.name) {
			return c
		}
	}
	return nil
}

// 1xx / 204 / 304 不能帶 body
func isNoBodyStatus(code int) bool {
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade") ||
		r.Header.Get("Upgrade") != ""
}

type compressWriter struct {
	http.ResponseWriter
	enc      encoder
	disabled bool // 已遇到無 body 狀態碼，改為直寫
}

func (cw *compressWriter) WriteHeader(code int) {
	h := cw.Header()
	h.Del("Content-Length")
	if isNoBodyStatus(code) {
		cw.disabled = true
		h.Del("Content-Encoding")
		h.Del("Vary")
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	if cw.disabled {
		return cw.ResponseWriter.Write(b)
	}
	h := cw.Header()
	h.Del("Content-Length")
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", http.DetectContentType(b))
	}
	return cw.enc.Write(b)
}

func (cw *compressWriter) Flush() {
	if !cw.disabled {
		_ = cw.enc.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	return hj.Hijack()
}

func (cw *compressWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

// Compression 壓縮所有回應
func Compression(next http.Handler) http.Handler {
	return CompressionExcept()(next)
}

// CompressionExcept 與 Compression 相同，但跳過指定前綴的路徑。
// /metrics 由 promhttp 自行協商壓縮，掛載時應該排除。
func CompressionExcept(prefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !shouldCompress(w, r, prefixes) {
				next.ServeHTTP(w, r)
				return
			}
			c := pickCodec(r.Header.Get("Accept-Encoding"))
			if c == nil {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Encoding", c.name)
			w.Header().Add("Vary", "Accept-Encoding")

			cw := &compressWriter{ResponseWriter: w, enc: c.get(w)}
			defer func() { c.put(cw.enc, cw.disabled) }()
			next.ServeHTTP(cw, r)
		})
	}
}

func shouldCompress(w http.ResponseWriter, r *http.Request, skip []string) bool {
	if r.Method == http.MethodHead || isWebSocketUpgrade(r) {
		return false
	}
	// 上游已編碼，不二次壓縮
	if w.Header().Get("Content-Encoding") != "" {
		return false
	}
	for _, p := range skip {
		if strings.HasPrefix(r.URL.Path, p) {
			return false
		}
	}
	return true
}
