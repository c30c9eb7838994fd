package types

import "testing"

func TestLocalImageRefString(t *testing.T) {
	ref := LocalImageRef{Repository: "library/nginx", Tag: "1.21"}
	if ref.String() != "library/nginx:1.21" {
		t.Errorf("String() = %s, want library/nginx:1.21", ref.String())
	}
	if ref.Key() != "library/nginx:1.21" {
		t.Errorf("Key() = %s, want library/nginx:1.21", ref.Key())
	}
}

func TestLocalImageRefIsValid(t *testing.T) {
	tests := []struct {
		name     string
		ref      LocalImageRef
		expected bool
	}{
		{
			name:     "complete reference",
			ref:      LocalImageRef{Repository: "library/nginx", Tag: "1.21"},
			expected: true,
		},
		{
			name:     "missing repository",
			ref:      LocalImageRef{Tag: "1.21"},
			expected: false,
		},
		{
			name:     "missing tag",
			ref:      LocalImageRef{Repository: "library/nginx"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ref.IsValid() != tt.expected {
				t.Errorf("IsValid() = %v, want %v", tt.ref.IsValid(), tt.expected)
			}
		})
	}
}
