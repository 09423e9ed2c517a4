package langdetect

import "testing"

// BenchmarkForBlock mixes the block shapes inspect sees in a typical README.
func BenchmarkForBlock(b *testing.B) {
	blocks := []struct {
		info string
		body []byte
	}{
		{"bash", []byte("go install ./cmd/mdpatch")},
		{"", []byte("package main\n\nfunc main() {}\n")},
		{"", []byte("operations:\n  - file: README.md\n")},
		{"", []byte("class Greeter\n  def greet(name)\n    puts name\n  end\nend\n")},
	}

	b.ReportAllocs()
	for i := range b.N {
		blk := blocks[i%len(blocks)]
		ForBlock(blk.info, blk.body)
	}
}
