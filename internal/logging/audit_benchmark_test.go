package logging

import (
	"strings"
	"testing"
)

func BenchmarkEscapeString(b *testing.B) {
	// Caption text that needs escaping
	input := "Sunset over \"Lot 12\"\nPhoto: C:\\shots\\a.jpg\tfront"
	input = strings.Repeat(input, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = escapeString(input)
	}
}

func BenchmarkEscapeStringNoEscapes(b *testing.B) {
	input := "Three bedroom house with garden and a view of the hills"
	input = strings.Repeat(input, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = escapeString(input)
	}
}
