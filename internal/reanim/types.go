// Package reanim reads Reanim animation files, the frame-track format used for
// the sample models shipped in data/.
//
// A file is a flat list of tracks. Tracks whose name starts with "anim_" are
// clip definition tracks: their frame visibility marks the window of frames
// that belongs to that clip. Every other track is a part (bone) track.
package reanim

import "strings"

// ClipTrackPrefix marks clip definition tracks.
const ClipTrackPrefix = "anim_"

// ReanimXML is the root structure of a Reanim animation file.
type ReanimXML struct {
	// FPS is the frame rate shared by every track.
	FPS int `xml:"fps"`

	Tracks []Track `xml:"track"`
}

// Track is a named sequence of frames.
type Track struct {
	Name   string  `xml:"name"`
	Frames []Frame `xml:"t"`
}

// Frame is a single frame of a track. Nil fields inherit the value of the
// previous frame.
type Frame struct {
	// FrameNum controls visibility: -1 hides the part, 0 or more shows it.
	FrameNum *int `xml:"f,omitempty"`

	X      *float64 `xml:"x,omitempty"`
	Y      *float64 `xml:"y,omitempty"`
	ScaleX *float64 `xml:"sx,omitempty"`
	ScaleY *float64 `xml:"sy,omitempty"`

	// SkewX and SkewY are in degrees.
	SkewX *float64 `xml:"kx,omitempty"`
	SkewY *float64 `xml:"ky,omitempty"`

	ImagePath string `xml:"i,omitempty"`
}

// IsClipTrack reports whether the track defines a clip window.
func (t Track) IsClipTrack() bool {
	return strings.HasPrefix(t.Name, ClipTrackPrefix)
}

// VisibleFrames counts the frames where the track is visible, applying
// FrameNum inheritance. A track starts visible.
func (t Track) VisibleFrames() int {
	visible := 0
	current := 0
	for _, frame := range t.Frames {
		if frame.FrameNum != nil {
			current = *frame.FrameNum
		}
		if current != -1 {
			visible++
		}
	}
	return visible
}

// ClipTracks returns the clip definition tracks in file order.
func (r *ReanimXML) ClipTracks() []Track {
	clips := make([]Track, 0)
	for _, track := range r.Tracks {
		if track.IsClipTrack() {
			clips = append(clips, track)
		}
	}
	return clips
}

// PartTracks returns the part tracks in file order.
func (r *ReanimXML) PartTracks() []Track {
	parts := make([]Track, 0)
	for _, track := range r.Tracks {
		if !track.IsClipTrack() && track.Name != "" {
			parts = append(parts, track)
		}
	}
	return parts
}
