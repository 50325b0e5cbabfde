package identity

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Lê Văn Tòng", "levantong"},
		{"le van tong", "levantong"},
		{"Nguyễn Thị Hồng", "nguyenthihong"},
		{"Lê Văn Dũng", "levandung"},
		{"Trần Đình Phú", "trandinhphu"},
		{"John Doe", "johndoe"},
		{"  spaced   out  ", "spacedout"},
		{"O'Brien-Smith", "obriensmith"},
		{"Agent 47", "agent47"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := Normalize(tt.input)
			if result != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	pairs := [][2]string{
		{"Lê Văn Tòng", "le van tong"},
		{"Đặng Quốc Việt", "dang quoc viet"},
		{"HOÀNG ANH", "hoang anh"},
	}

	for _, pair := range pairs {
		if Normalize(pair[0]) != Normalize(pair[1]) {
			t.Errorf("Normalize(%q) = %q, Normalize(%q) = %q, want equal",
				pair[0], Normalize(pair[0]), pair[1], Normalize(pair[1]))
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{"identical", "Lê Văn Tòng", "le van tong", 1.0},
		{"substring", "Van Tong", "Le Van Tong", 7.0 / 9.0},
		{"prefix only", "levana", "levanb", 5.0 / 6.0},
		{"disjoint", "abc", "xyz", 0},
		{"empty query", "", "Le Van Tong", 0},
		{"both empty", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if got != tt.expected {
				t.Errorf("Similarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	a, b := "Le Van", "Lê Văn Tòng"
	if Similarity(a, b) != Similarity(b, a) {
		t.Errorf("Similarity is not symmetric for %q / %q", a, b)
	}
}

func TestSimilarityOrdering(t *testing.T) {
	// A closer candidate must strictly outscore a more distant one.
	query := "Le Van Dung"
	near := Similarity(query, "Lê Văn Dũng")
	far := Similarity(query, "Phạm Hữu Nghĩa")
	if near <= far {
		t.Errorf("expected %f > %f", near, far)
	}
}
