package inlinemedia

import "testing"

func TestParseISO8601Duration(t *testing.T) {
	testCases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "PT45S", want: 45},
		{in: "PT4M13S", want: 253},
		{in: "PT1H2M3S", want: 3723},
		{in: "P1DT1H", want: 90000},
		{in: "P1W", want: 604800},
		{in: "P1M", want: 2629800},
		{in: "PT1M", want: 60},
		{in: "P1Y", want: 31557600},
		{in: "PT1.5M", want: 90},
		{in: "", wantErr: true},
		{in: "PT", wantErr: true},
		{in: "1H30M", wantErr: true},
		{in: "P1H", wantErr: true},
		{in: "P10S", wantErr: true},
		{in: "PT5X", wantErr: true},
		{in: "PT5", wantErr: true},
	}
	for _, tc := range testCases {
		got, err := parseISO8601Duration(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%q: expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: want %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	testCases := []struct {
		in   int
		want string
	}{
		{0, "0:00"},
		{45, "0:45"},
		{253, "4:13"},
		{605, "10:05"},
		{3600, "1:00:00"},
		{3723, "1:02:03"},
		{-5, "0:00"},
	}
	for _, tc := range testCases {
		if got := formatDuration(tc.in); got != tc.want {
			t.Errorf("%d: want %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestPreviewEmpty(t *testing.T) {
	var nilPreview *Preview
	if !nilPreview.Empty() {
		t.Error("nil preview should be empty")
	}
	if !(&Preview{Kind: KindWebpage, URL: "https://example.com"}).Empty() {
		t.Error("preview without content should be empty")
	}
	if (&Preview{Kind: KindWebpage, Title: "t"}).Empty() {
		t.Error("preview with title should not be empty")
	}
	if (&Preview{Kind: KindFile, FileName: "a.zip"}).Empty() {
		t.Error("file preview with name should not be empty")
	}
}
