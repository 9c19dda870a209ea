package domain

import "strings"

// PhotoRef is an opaque handle to a photo: a file path, a file:// or http(s)://
// URI, or a data URI. The empty value means the photo is absent.
type PhotoRef string

// IsZero reports whether the reference is absent.
func (r PhotoRef) IsZero() bool {
	return strings.TrimSpace(string(r)) == ""
}

func (r PhotoRef) String() string {
	return string(r)
}

// SessionState carries the user's selections between pipeline stages.
type SessionState struct {
	SelectedHairstyle *Hairstyle `json:"selected_hairstyle"`
	SourcePhoto       PhotoRef   `json:"source_photo,omitempty"`
	ResultPhoto       PhotoRef   `json:"result_photo,omitempty"`
}

// Clone returns a copy that shares no memory with s.
func (s SessionState) Clone() SessionState {
	out := s
	if s.SelectedHairstyle != nil {
		h := *s.SelectedHairstyle
		out.SelectedHairstyle = &h
	}
	return out
}

// IsEmpty reports whether all three fields are absent.
func (s SessionState) IsEmpty() bool {
	return s.SelectedHairstyle == nil && s.SourcePhoto.IsZero() && s.ResultPhoto.IsZero()
}
