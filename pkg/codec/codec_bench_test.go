//go:build bench
// +build bench

package codec

import (
	"strings"
	"testing"
)

func BenchmarkEmbedText(b *testing.B) {
	benchmarks := []struct {
		name string
		w, h int
		text string
	}{
		{name: "small", w: 64, h: 64, text: "Hello World"},
		{name: "medium", w: 512, h: 512, text: strings.Repeat("m", 1000)},
		{name: "large", w: 2048, h: 2048, text: strings.Repeat("l", 100000)},
	}

	for _, bm := range benchmarks {
		pix := carrier(bm.w, bm.h)
		b.Run(bm.name, func(b *testing.B) {
			b.SetBytes(int64(len(pix)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := EmbedText(pix, bm.text); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkExtract(b *testing.B) {
	for _, size := range []int{64, 512, 2048} {
		pix := carrier(size, size)
		encoded, err := EmbedText(pix, "benchmark payload")
		if err != nil {
			b.Fatal(err)
		}
		b.Run(sizeName(size), func(b *testing.B) {
			b.SetBytes(int64(len(encoded)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = Extract(encoded)
			}
		})
	}
}

func sizeName(n int) string {
	switch {
	case n <= 64:
		return "small"
	case n <= 512:
		return "medium"
	default:
		return "large"
	}
}
