package docforge

import (
	"reflect"
	"testing"
)

func TestParseInlineRuns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []inlineRun
	}{
		{
			name:  "plain text single run",
			input: "hello world",
			want:  []inlineRun{{text: "hello world"}},
		},
		{
			name:  "bold span between plain runs",
			input: "a <b>bold</b> b",
			want: []inlineRun{
				{text: "a "},
				{text: "bold", bold: true},
				{text: " b"},
			},
		},
		{
			name:  "mixed styles",
			input: "<i>it</i> and <code>x := 1</code>",
			want: []inlineRun{
				{text: "it", italic: true},
				{text: " and "},
				{text: "x := 1", code: true},
			},
		},
		{
			name:  "strike",
			input: "<strike>gone</strike>",
			want:  []inlineRun{{text: "gone", strike: true}},
		},
		{
			name:  "unbalanced tag kept literal",
			input: "before <b>after",
			want: []inlineRun{
				{text: "before "},
				{text: "<b>after"},
			},
		},
		{
			name:  "empty tagged span dropped",
			input: "x<b></b>y",
			want: []inlineRun{
				{text: "x"},
				{text: "y"},
			},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseInlineRuns(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseInlineRuns(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripInlineTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"<b>bold</b> and <i>italic</i>", "bold and italic"},
		{"no tags", "no tags"},
		{"<code>go test</code>", "go test"},
	}

	for _, tt := range tests {
		tt := tt
		if got := stripInlineTags(tt.input); got != tt.want {
			t.Errorf("stripInlineTags(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestHeaderHasText(t *testing.T) {
	t.Parallel()

	if headerHasText([]string{"", "  "}) {
		t.Error("blank headers reported as text")
	}
	if !headerHasText([]string{"", "Name"}) {
		t.Error("non-blank header not detected")
	}
}
