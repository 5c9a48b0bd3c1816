package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
)

// ============================================================================
// Conversion Function Benchmarks
// ============================================================================

// BenchmarkParseDecimal benchmarks numeric cell parsing.
// This is a hot path during normalization of the cost column.
func BenchmarkParseDecimal(b *testing.B) {
	testCases := []string{
		"123",
		"-456.78",
		"$1,234.56",
		"(123.45)",      // Accounting negative
		"1,234,567.89",  // Thousands separators
		"  999.99  ",    // Whitespace
		"\u20ac1234.56", // Euro
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ParseDecimal(tc)
		}
	}
}

// BenchmarkParseDecimal_Simple benchmarks the most common case: plain integers.
func BenchmarkParseDecimal_Simple(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ParseDecimal("12345")
	}
}

func BenchmarkFormatDecimal(b *testing.B) {
	for i := 0; i < b.N; i++ {
		FormatDecimal(1234.5)
	}
}

// ============================================================================
// Pipeline Benchmarks
// ============================================================================

// generateCSV builds a provider export with n rows; every tenth row is
// missing its CampaignID.
func generateCSV(n int) string {
	var b strings.Builder
	b.WriteString("Provider Name,CampaignID,Cost Per Ad Click,Redirect Link,Phone Number,Address,Zipcode,Test Column\n")
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("CAMP%d", i)
		if i%10 == 0 {
			id = ""
		}
		fmt.Fprintf(&b, "Provider %d,%s,%d.25,provider%d.com,555%04d,%d Main St,%05d,test\n",
			i, id, i%50, i, i%10000, i, i%100000)
	}
	return b.String()
}

func BenchmarkReadTable(b *testing.B) {
	data := []byte(generateCSV(10000))

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ReadTable("bench.csv", bytes.NewReader(data), 0); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkNormalizeTable(b *testing.B) {
	tbl, err := ReadTable("bench.csv", strings.NewReader(generateCSV(10000)), 0)
	if err != nil {
		b.Fatal(err)
	}
	n := NewNormalizer(adSchema())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := n.NormalizeTable(tbl); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCollectNormalizeAggregate(b *testing.B) {
	schema := adSchema()
	src := mapSource{
		"a.csv": generateCSV(5000),
		"b.csv": generateCSV(5000),
		"c.csv": generateCSV(5000),
	}
	names := []string{"a.csv", "b.csv", "c.csv"}
	ctx := context.Background()

	c := NewCollector(schema, src, 0)
	n := NewNormalizer(schema)
	a := NewAggregator(schema)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		admitted, _ := c.Collect(ctx, names)
		tables, _ := n.Normalize(ctx, admitted)
		combined, err := a.Aggregate(tables)
		if err != nil {
			b.Fatal(err)
		}
		if err := WriteCSV(io.Discard, combined); err != nil {
			b.Fatal(err)
		}
	}
}
