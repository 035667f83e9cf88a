package utils

import "testing"

func TestCompressDecompressJSON(t *testing.T) {
	type payload struct {
		Score    float64  `json:"score"`
		Segments []string `json:"segments"`
	}

	in := payload{Score: 46.15, Segments: []string{"đoạn một", "đoạn hai"}}

	blob, err := CompressJSON(in)
	if err != nil {
		t.Fatalf("CompressJSON: %v", err)
	}
	if len(blob) == 0 {
		t.Fatalf("empty blob")
	}

	var out payload
	if err := DecompressJSON(blob, &out); err != nil {
		t.Fatalf("DecompressJSON: %v", err)
	}
	if out.Score != in.Score || len(out.Segments) != 2 || out.Segments[0] != "đoạn một" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestDecompressJSONEmptyBlobIsNoOp(t *testing.T) {
	var out map[string]any
	if err := DecompressJSON(nil, &out); err != nil {
		t.Fatalf("nil blob: %v", err)
	}
	if out != nil {
		t.Fatalf("target mutated for empty blob")
	}
}
