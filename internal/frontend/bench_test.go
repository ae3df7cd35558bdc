package frontend

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func BenchmarkParseSource_Shapes(b *testing.B) {
	p := New()
	defer p.Close()
	src := []byte(shapes)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := p.ParseSource(context.Background(), "shapes.h", src)
		if err != nil {
			b.Fatal(err)
		}
		if len(result.Facts) == 0 {
			b.Fatal("no facts")
		}
	}
}

func BenchmarkParseSource_ManyOverloads(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("namespace big {\n")
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&sb, "int f%d(int a);\nint f%d(double a, int b);\n", i%50, i%50)
	}
	sb.WriteString("}\n")
	src := []byte(sb.String())

	p := New()
	defer p.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.ParseSource(context.Background(), "big.h", src); err != nil {
			b.Fatal(err)
		}
	}
}
