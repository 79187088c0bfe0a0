package openai

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		name      string
		wantKnown bool
		wantAPI   APIType
		wantDims  int
	}{
		{name: "gpt-4o", wantKnown: true, wantAPI: APITypeResponses},
		{name: "gpt-4o-mini", wantKnown: true, wantAPI: APITypeChatCompletions},
		{name: "gpt-3.5-turbo", wantKnown: true, wantAPI: APITypeChatCompletions},
		{name: "text-embedding-ada-002", wantKnown: true, wantAPI: APITypeEmbeddings, wantDims: 1536},
		{name: "text-embedding-3-large", wantKnown: true, wantAPI: APITypeEmbeddings, wantDims: 3072},
		{name: "some-gateway-model", wantKnown: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, ok := Lookup(tc.name)
			if ok != tc.wantKnown {
				t.Fatalf("known = %v, want %v", ok, tc.wantKnown)
			}
			if !ok {
				return
			}
			if info.Key != tc.name {
				t.Fatalf("key = %q", info.Key)
			}
			if !info.Supports(tc.wantAPI) {
				t.Fatalf("%s should support %s", tc.name, tc.wantAPI)
			}
			if info.EmbeddingDimensions != tc.wantDims {
				t.Fatalf("dimensions = %d, want %d", info.EmbeddingDimensions, tc.wantDims)
			}
		})
	}
}

func TestModelInfoSupports(t *testing.T) {
	info, _ := Lookup("gpt-4")
	if !info.Supports(APITypeChatCompletions) {
		t.Fatal("gpt-4 should support chat completions")
	}
	if info.Supports(APITypeResponses) {
		t.Fatal("gpt-4 should not advertise the responses API")
	}
	if info.Supports(APITypeEmbeddings) {
		t.Fatal("gpt-4 should not advertise embeddings")
	}
}
