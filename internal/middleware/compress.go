// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// gzipWriter routes handler output through a gzip stream.
type gzipWriter struct {
	http.ResponseWriter
	gz *gzip.Writer
}

func (w *gzipWriter) Write(b []byte) (int, error) {
	return w.gz.Write(b)
}

// Compress gzip-encodes response bodies at the given level for clients
// that accept it. Upgrade requests pass through untouched so the
// WebSocket handshake keeps a hijackable response writer.
func Compress(level int) func(http.Handler) http.Handler {
	pool := &sync.Pool{
		New: func() any {
			gz, err := gzip.NewWriterLevel(io.Discard, level)
			if err != nil {
				gz = gzip.NewWriter(io.Discard)
			}
			return gz
		},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Upgrade") != "" ||
				!strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			gz := pool.Get().(*gzip.Writer)
			gz.Reset(w)
			defer func() {
				_ = gz.Close()
				pool.Put(gz)
			}()

			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Set("Vary", "Accept-Encoding")
			// Content-Length no longer matches the encoded body
			w.Header().Del("Content-Length")

			next.ServeHTTP(&gzipWriter{ResponseWriter: w, gz: gz}, r)
		})
	}
}
