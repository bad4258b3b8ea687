package middleware

import (
	"compress/gzip"
	"io"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// CompressionConfig holds configuration for response compression
type CompressionConfig struct {
	MinSize          int      // Minimum response size to compress (bytes)
	CompressionLevel int      // Gzip compression level (1-9)
	ContentTypes     []string // Content types to compress
}

// DefaultCompressionConfig returns the default compression configuration
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:          1024,
		CompressionLevel: 6,
		ContentTypes: []string{
			"application/json",
			"text/plain",
			"text/html",
			"text/css",
			"application/javascript",
			"application/xml",
			"text/xml",
		},
	}
}

// CompressionMiddleware provides gzip compression for HTTP responses
type CompressionMiddleware struct {
	config CompressionConfig
	stats  *CompressionStats
	pool   sync.Pool
}

// NewCompressionMiddleware creates a new compression middleware
func NewCompressionMiddleware(config CompressionConfig) *CompressionMiddleware {
	cm := &CompressionMiddleware{
		config: config,
		stats:  NewCompressionStats(),
	}
	cm.pool.New = func() interface{} {
		gz, _ := gzip.NewWriterLevel(io.Discard, config.CompressionLevel)
		return gz
	}
	return cm
}

// Handler returns a Gin middleware function for response compression
func (cm *CompressionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		gzw := &gzipResponseWriter{
			ResponseWriter: c.Writer,
			cm:             cm,
		}
		c.Writer = gzw

		c.Next()

		gzw.finish()
	}
}

// shouldCompress checks if the content type should be compressed
func (cm *CompressionMiddleware) shouldCompress(contentType string) bool {
	for _, ct := range cm.config.ContentTypes {
		if strings.Contains(contentType, ct) {
			return true
		}
	}
	return false
}

// gzipResponseWriter wraps a gin.ResponseWriter and buffers output until it
// can decide whether compression is worthwhile. Small responses and
// non-compressible content types pass through untouched.
type gzipResponseWriter struct {
	gin.ResponseWriter
	cm       *CompressionMiddleware
	buf      []byte
	gz       *gzip.Writer
	decided  bool
	original int64
}

func (gzw *gzipResponseWriter) Write(data []byte) (int, error) {
	gzw.original += int64(len(data))
	if gzw.gz != nil {
		return gzw.gz.Write(data)
	}
	if gzw.decided {
		return gzw.ResponseWriter.Write(data)
	}

	gzw.buf = append(gzw.buf, data...)
	if len(gzw.buf) >= gzw.cm.config.MinSize {
		gzw.decide()
	}
	return len(data), nil
}

// WriteString satisfies gin.ResponseWriter
func (gzw *gzipResponseWriter) WriteString(s string) (int, error) {
	return gzw.Write([]byte(s))
}

// decide starts compression for the buffered output if the content type allows it
func (gzw *gzipResponseWriter) decide() {
	gzw.decided = true

	if !gzw.cm.shouldCompress(gzw.Header().Get("Content-Type")) {
		gzw.flushPlain()
		return
	}

	gzw.Header().Set("Content-Encoding", "gzip")
	gzw.Header().Set("Vary", "Accept-Encoding")
	gzw.Header().Del("Content-Length")

	gz := gzw.cm.pool.Get().(*gzip.Writer)
	gz.Reset(gzw.ResponseWriter)
	gzw.gz = gz

	if len(gzw.buf) > 0 {
		_, _ = gz.Write(gzw.buf)
		gzw.buf = nil
	}
}

// flushPlain writes buffered output without compression
func (gzw *gzipResponseWriter) flushPlain() {
	if len(gzw.buf) > 0 {
		_, _ = gzw.ResponseWriter.Write(gzw.buf)
		gzw.buf = nil
	}
}

// finish closes the gzip stream or flushes the pass-through buffer
func (gzw *gzipResponseWriter) finish() {
	if gzw.gz != nil {
		_ = gzw.gz.Close()
		gzw.cm.pool.Put(gzw.gz)
		gzw.cm.stats.RecordRequest(gzw.original, int64(gzw.ResponseWriter.Size()), true)
		gzw.gz = nil
		return
	}

	gzw.flushPlain()
	gzw.cm.stats.RecordRequest(gzw.original, gzw.original, false)
}

// CompressionStats tracks compression statistics
type CompressionStats struct {
	TotalRequests      int64
	CompressedRequests int64
	TotalBytes         int64
	CompressedBytes    int64
	mutex              sync.RWMutex
}

// NewCompressionStats creates new compression statistics
func NewCompressionStats() *CompressionStats {
	return &CompressionStats{}
}

// RecordRequest records a request's compression stats
func (cs *CompressionStats) RecordRequest(originalSize, compressedSize int64, compressed bool) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.TotalRequests++
	cs.TotalBytes += originalSize

	if compressed {
		cs.CompressedRequests++
		cs.CompressedBytes += compressedSize
	}
}

// GetStats returns current compression statistics
func (cs *CompressionStats) GetStats() map[string]interface{} {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	compressionRatio := float64(0)
	if cs.TotalBytes > 0 {
		compressionRatio = float64(cs.CompressedBytes) / float64(cs.TotalBytes)
	}

	return map[string]interface{}{
		"total_requests":      cs.TotalRequests,
		"compressed_requests": cs.CompressedRequests,
		"total_bytes":         cs.TotalBytes,
		"compressed_bytes":    cs.CompressedBytes,
		"compression_ratio":   compressionRatio,
	}
}

// GetStats returns compression statistics
func (cm *CompressionMiddleware) GetStats() map[string]interface{} {
	return cm.stats.GetStats()
}
