package reanim

import "testing"

func intPtr(v int) *int { return &v }

func TestTrack_VisibleFrames(t *testing.T) {
	tests := []struct {
		name     string
		frames   []Frame
		expected int
	}{
		{"empty", nil, 0},
		{"visible by default", []Frame{{}, {}, {}}, 3},
		{"hidden then shown", []Frame{{FrameNum: intPtr(-1)}, {}, {FrameNum: intPtr(0)}, {}}, 2},
		{"shown then hidden", []Frame{{FrameNum: intPtr(0)}, {}, {FrameNum: intPtr(-1)}, {}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track := Track{Name: "anim_test", Frames: tt.frames}
			if got := track.VisibleFrames(); got != tt.expected {
				t.Errorf("Expected %d visible frames, got %d", tt.expected, got)
			}
		})
	}
}

func TestReanimXML_SplitsClipAndPartTracks(t *testing.T) {
	r := &ReanimXML{
		FPS: 12,
		Tracks: []Track{
			{Name: "anim_idle"},
			{Name: "Hips"},
			{Name: ""},
			{Name: "anim_walk"},
			{Name: "Head"},
		},
	}

	clips := r.ClipTracks()
	if len(clips) != 2 || clips[0].Name != "anim_idle" || clips[1].Name != "anim_walk" {
		t.Errorf("Unexpected clip tracks: %+v", clips)
	}

	parts := r.PartTracks()
	if len(parts) != 2 || parts[0].Name != "Hips" || parts[1].Name != "Head" {
		t.Errorf("Unexpected part tracks: %+v", parts)
	}
}
