package langdetect

import "testing"

func TestDetectChineseSimplified(t *testing.T) {
	got := Detect("你好世界，这是中国")
	if got.Language != LangZH {
		t.Fatalf("got %v, want zh", got.Language)
	}
	if !got.IsSimplified {
		t.Fatalf("expected simplified heuristic to fire on 这/国, got %+v", got)
	}
	if got.Confidence <= 0 {
		t.Fatalf("expected positive confidence, got %+v", got)
	}
}

func TestDetectChineseTraditional(t *testing.T) {
	got := Detect("你好世界，這是中國")
	if got.Language != LangZH {
		t.Fatalf("got %v, want zh", got.Language)
	}
	if got.IsSimplified {
		t.Fatalf("expected traditional heuristic to fire on 這/國, got %+v", got)
	}
}

func TestDetectJapaneseKana(t *testing.T) {
	if got := Detect("こんにちは"); got.Language != LangJA {
		t.Fatalf("got %v, want ja", got.Language)
	}
}

func TestDetectMixedHanKanaIsJapanese(t *testing.T) {
	if got := Detect("漢字とひらがな"); got.Language != LangJA {
		t.Fatalf("got %v, want ja", got.Language)
	}
}

func TestDetectKorean(t *testing.T) {
	if got := Detect("안녕하세요"); got.Language != LangKO {
		t.Fatalf("got %v, want ko", got.Language)
	}
}

func TestDetectEnglish(t *testing.T) {
	got := Detect("hello world")
	if got.Language != LangEN {
		t.Fatalf("got %v, want en", got.Language)
	}
	if got.Confidence != 1 {
		t.Fatalf("expected full confidence for pure Latin text, got %v", got.Confidence)
	}
}

func TestDetectEmptyIsUnknown(t *testing.T) {
	got := Detect("   123")
	if got.Language != LangUnknown {
		t.Fatalf("got %v, want unknown", got.Language)
	}
	if got.Confidence != 0 {
		t.Fatalf("expected zero confidence for unknown, got %v", got.Confidence)
	}
}
