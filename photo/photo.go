package photo

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Photo 引用磁盘上的一张照片及其元数据。
type Photo struct {
	Path     string   `json:"path"`
	Metadata Metadata `json:"metadata"`
}

// Open reads the metadata of the photo at path.
func Open(path string) (Photo, error) {
	md, err := ReadMetadata(path)
	if err != nil {
		return Photo{}, err
	}
	return Photo{Path: path, Metadata: md}, nil
}

// FileName returns the base name of the photo file.
func (p Photo) FileName() string {
	if p.Metadata.FileName != "" {
		return p.Metadata.FileName
	}
	if p.Path == "" {
		return "Unknown"
	}
	return filepath.Base(p.Path)
}

// AspectRatio is the displayed aspect ratio.
func (p Photo) AspectRatio() float64 { return p.Metadata.AspectRatio() }

// Rating 是照片的筛选评级。
type Rating int

const (
	Maybe Rating = iota
	Yes
	No
)

func (r Rating) String() string {
	switch r {
	case Yes:
		return "Yes"
	case No:
		return "No"
	default:
		return "Maybe"
	}
}

// ParseRating parses the names written by Rating.String.
func ParseRating(s string) (Rating, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes":
		return Yes, nil
	case "no":
		return No, nil
	case "maybe", "":
		return Maybe, nil
	}
	return Maybe, fmt.Errorf("未知的评级 %q", s)
}

func (r Rating) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Rating) UnmarshalText(b []byte) error {
	v, err := ParseRating(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// IsSupported reports whether the file extension is an image format the decoder set handles.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".tif", ".tiff", ".bmp":
		return true
	}
	return false
}
