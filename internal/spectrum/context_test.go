package spectrum

import (
	"testing"
)

func TestPackCoversUpperTriangle(t *testing.T) {
	for n := 1; n <= 5; n++ {
		seen := make(map[int]bool)
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				p := Pack(i, j, n)
				if p < 0 || p >= PairSize(n) {
					t.Fatalf("Pack(%d,%d,%d) = %d out of range [0,%d)", i, j, n, p, PairSize(n))
				}
				if seen[p] {
					t.Fatalf("Pack(%d,%d,%d) = %d already used", i, j, n, p)
				}
				seen[p] = true
			}
		}
		if len(seen) != PairSize(n) {
			t.Errorf("n=%d: covered %d of %d pair slots", n, len(seen), PairSize(n))
		}
	}
}

func TestPackSymmetric(t *testing.T) {
	n := 4
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if Pack(i, j, n) != Pack(j, i, n) {
				t.Errorf("Pack(%d,%d) != Pack(%d,%d)", i, j, j, i)
			}
		}
	}
}

func TestICSize(t *testing.T) {
	tests := []struct {
		name string
		ctx  Context
		want int
	}{
		{"adiabatic only", Context{HasScalars: true}, 1},
		{"with cdi", Context{HasScalars: true, HasCdi: true}, 2},
		{"all isocurvature", Context{HasScalars: true, HasBi: true, HasCdi: true, HasNid: true, HasNiv: true}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ctx.ICSize(Scalar); got != tt.want {
				t.Errorf("ICSize(Scalar) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestContextValidate(t *testing.T) {
	tests := []struct {
		name    string
		ctx     Context
		wantErr bool
	}{
		{"valid", Context{KMin: 1e-5, KMax: 10, KPivot: 0.05, HasScalars: true}, false},
		{"reversed range", Context{KMin: 10, KMax: 1e-5, KPivot: 0.05, HasScalars: true}, true},
		{"no pivot", Context{KMin: 1e-5, KMax: 10, HasScalars: true}, true},
		{"no modes", Context{KMin: 1e-5, KMax: 10, KPivot: 0.05}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ctx.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
