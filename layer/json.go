package layer

import (
	"encoding/json"
	"fmt"

	"github.com/ByLCY/photobook/geom"
	"github.com/ByLCY/photobook/transform"
)

// 图层的 JSON 形式：内容以 type 字段区分变体，变换只持久化矩形与旋转角。

type contentJSON struct {
	Type          string         `json:"type"`
	Photo         *Photo         `json:"photo,omitempty"`
	Text          *Text          `json:"text,omitempty"`
	Shape         *Shape         `json:"shape,omitempty"`
	TemplatePhoto *TemplatePhoto `json:"template_photo,omitempty"`
	TemplateText  *TemplateText  `json:"template_text,omitempty"`
}

type layerJSON struct {
	ID       ID          `json:"id"`
	Name     string      `json:"name"`
	Visible  bool        `json:"visible"`
	Locked   bool        `json:"locked"`
	Selected bool        `json:"selected"`
	Rect     geom.Rect   `json:"rect"`
	Rotation float64     `json:"rotation"`
	Content  contentJSON `json:"content"`
}

// MarshalJSON encodes the layer with a tagged content envelope.
func (l Layer) MarshalJSON() ([]byte, error) {
	out := layerJSON{
		ID:       l.ID,
		Name:     l.Name,
		Visible:  l.Visible,
		Locked:   l.Locked,
		Selected: l.Selected,
		Rect:     l.Transform.Rect,
		Rotation: l.Transform.Rotation,
	}
	switch c := l.Content.(type) {
	case *Photo:
		out.Content = contentJSON{Type: KindPhoto.String(), Photo: c}
	case *Text:
		out.Content = contentJSON{Type: KindText.String(), Text: c}
	case *Shape:
		out.Content = contentJSON{Type: KindShape.String(), Shape: c}
	case *TemplatePhoto:
		out.Content = contentJSON{Type: KindTemplatePhoto.String(), TemplatePhoto: c}
	case *TemplateText:
		out.Content = contentJSON{Type: KindTemplateText.String(), TemplateText: c}
	default:
		return nil, fmt.Errorf("图层 %d 的内容类型无法序列化: %T", l.ID, l.Content)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a layer written by MarshalJSON.
func (l *Layer) UnmarshalJSON(b []byte) error {
	var in layerJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	var content Content
	switch in.Content.Type {
	case KindPhoto.String():
		if in.Content.Photo != nil {
			content = in.Content.Photo
		}
	case KindText.String():
		if in.Content.Text != nil {
			content = in.Content.Text
		}
	case KindShape.String():
		if in.Content.Shape != nil {
			if err := in.Content.Shape.Validate(); err != nil {
				return fmt.Errorf("图层 %d: %w", in.ID, err)
			}
			content = in.Content.Shape
		}
	case KindTemplatePhoto.String():
		if in.Content.TemplatePhoto != nil {
			content = in.Content.TemplatePhoto
		}
	case KindTemplateText.String():
		if in.Content.TemplateText != nil {
			content = in.Content.TemplateText
		}
	default:
		return fmt.Errorf("图层 %d 的内容类型未知: %q", in.ID, in.Content.Type)
	}
	if content == nil {
		return fmt.Errorf("图层 %d 缺少 %s 内容", in.ID, in.Content.Type)
	}

	st := transform.New(in.Rect.Normalize(geom.R(0, 0, 100, 100)))
	st = st.WithRotation(in.Rotation)
	*l = Layer{
		ID:        in.ID,
		Name:      in.Name,
		Visible:   in.Visible,
		Locked:    in.Locked,
		Selected:  in.Selected,
		Content:   content,
		Transform: st,
	}
	return nil
}
