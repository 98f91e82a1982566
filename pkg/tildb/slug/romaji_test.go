package slug

import "testing"

func TestRomanize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"こんにちは", "konnichiha"},
		{"コンニチハ", "konnichiha"},
		{"きょう", "kyou"},
		{"がっこう", "gakkou"},
		{"マッチャ", "matcha"},
		{"コーヒー", "koohii"},
		{"ファイル", "fairu"},
		{"しんぶん", "shinbun"},
		{"ヴァイオリン", "vaiorin"},
		{"ティー", "tii"},
		{"ふじ", "fuji"},
		{"ジュース", "juusu"},
		{"しゃしん", "shashin"},
		{"ウィスキー", "wisukii"},
		{"チェック", "chekku"},
		{"ずっと", "zutto"},
		{"abc", "abc"},
		{"ニホン語", "nihon語"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Romanize(tt.in); got != tt.want {
			t.Errorf("Romanize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRomanizeTrailingSokuon(t *testing.T) {
	if got := Romanize("あっ"); got != "a" {
		t.Errorf("Romanize(あっ) = %q, want a", got)
	}
}
