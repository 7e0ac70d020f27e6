package picking

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-showcase/internal/engine/model"
)

func box(min, max mgl32.Vec3) model.Bounds {
	return model.Bounds{Min: min, Max: max}
}

func TestIntersectBounds(t *testing.T) {
	unit := box(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})

	tests := []struct {
		name  string
		ray   Ray
		hit   bool
		wantT float32
	}{
		{"straight on", Ray{Origin: mgl32.Vec3{0, 0, 10}, Direction: mgl32.Vec3{0, 0, -1}}, true, 9},
		{"from inside", Ray{Origin: mgl32.Vec3{}, Direction: mgl32.Vec3{1, 0, 0}}, true, 1},
		{"pointing away", Ray{Origin: mgl32.Vec3{0, 0, 10}, Direction: mgl32.Vec3{0, 0, 1}}, false, 0},
		{"parallel outside", Ray{Origin: mgl32.Vec3{5, 0, 10}, Direction: mgl32.Vec3{0, 0, -1}}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectBounds(unit)
			if hit != tt.hit {
				t.Fatalf("expected hit=%v, got %v", tt.hit, hit)
			}
			if hit && got != tt.wantT {
				t.Errorf("expected t=%v, got %v", tt.wantT, got)
			}
		})
	}

	if _, hit := (Ray{Direction: mgl32.Vec3{1, 0, 0}}).IntersectBounds(model.EmptyBounds()); hit {
		t.Error("expected empty bounds never to be hit")
	}
}

func TestScreenToRayCenter(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	inv := proj.Mul4(view).Inv()

	r := ScreenToRay(50, 50, 100, 100, inv)
	if !r.Direction.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-3) {
		t.Errorf("expected ray down -z, got %v", r.Direction)
	}
	if p := r.At(10); p[2] > 0.5 || p[2] < -0.5 {
		t.Errorf("expected ray to pass the origin, got %v", p)
	}
}

func TestPickModel(t *testing.T) {
	mk := func(x float32) *model.Model {
		root := model.NewNode("root")
		root.Mesh = model.NewMesh("m", []model.Vertex{
			{Position: [3]float32{-1, -1, -1}},
			{Position: [3]float32{1, 1, 1}},
		}, nil)
		m := model.New("m", root, nil)
		m.SetPosition(mgl32.Vec3{x, 0, 0})
		return m
	}
	models := []*model.Model{mk(0), mk(5), mk(10)}

	r := Ray{Origin: mgl32.Vec3{5, 0, 10}, Direction: mgl32.Vec3{0, 0, -1}}
	if got := PickModel(r, models); got != 1 {
		t.Errorf("expected model 1, got %d", got)
	}

	along := Ray{Origin: mgl32.Vec3{20, 0, 0}, Direction: mgl32.Vec3{-1, 0, 0}}
	if got := PickModel(along, models); got != 2 {
		t.Errorf("expected nearest model 2, got %d", got)
	}

	miss := Ray{Origin: mgl32.Vec3{5, 50, 10}, Direction: mgl32.Vec3{0, 0, -1}}
	if got := PickModel(miss, models); got != -1 {
		t.Errorf("expected no pick, got %d", got)
	}
}
