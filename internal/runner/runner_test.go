package runner

import (
	"reflect"
	"testing"
)

func TestBriefingSpecs(t *testing.T) {
	tests := []struct {
		times   string
		want    []string
		wantErr bool
	}{
		{times: "15:30", want: []string{"0 30 15 * * *"}},
		{times: "11:25, 15:30", want: []string{"0 25 11 * * *", "0 30 15 * * *"}},
		{times: "9:05", want: []string{"0 5 9 * * *"}},
		{times: "25:00", wantErr: true},
		{times: "15:61", wantErr: true},
		{times: "1530", wantErr: true},
		{times: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := briefingSpecs(tt.times)
		if tt.wantErr {
			if err == nil {
				t.Errorf("briefingSpecs(%q) expected error", tt.times)
			}
			continue
		}
		if err != nil {
			t.Errorf("briefingSpecs(%q): %v", tt.times, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("briefingSpecs(%q) = %v, want %v", tt.times, got, tt.want)
		}
	}
}
