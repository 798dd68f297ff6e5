package layer

import (
	"encoding/json"
	"slices"
)

// Stack 按插入顺序保存页面上的图层，顺序即 z 序（后插入的在上层）。
type Stack struct {
	order []ID
	byID  map[ID]*Layer
}

// NewStack builds a stack from layers in order; duplicate ids keep the first.
func NewStack(layers ...*Layer) *Stack {
	s := &Stack{byID: map[ID]*Layer{}}
	for _, l := range layers {
		s.Add(l)
	}
	return s
}

func (s *Stack) init() {
	if s.byID == nil {
		s.byID = map[ID]*Layer{}
	}
}

// Add appends l on top. Adding an id that already exists is a no-op.
func (s *Stack) Add(l *Layer) bool {
	s.init()
	if l == nil {
		return false
	}
	if _, ok := s.byID[l.ID]; ok {
		return false
	}
	s.order = append(s.order, l.ID)
	s.byID[l.ID] = l
	return true
}

// Get looks up a layer.
func (s *Stack) Get(id ID) (*Layer, bool) {
	l, ok := s.byID[id]
	return l, ok
}

// Has reports whether id is present.
func (s *Stack) Has(id ID) bool {
	_, ok := s.byID[id]
	return ok
}

// Remove deletes id and reports whether it existed.
func (s *Stack) Remove(id ID) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(x ID) bool { return x == id })
	return true
}

// Len returns the number of layers.
func (s *Stack) Len() int { return len(s.order) }

// IDs returns the ids bottom to top.
func (s *Stack) IDs() []ID { return slices.Clone(s.order) }

// Layers returns the layers bottom to top.
func (s *Stack) Layers() []*Layer {
	out := make([]*Layer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// TopDown returns the layers top to bottom, the order used for hit testing.
func (s *Stack) TopDown() []*Layer {
	out := s.Layers()
	slices.Reverse(out)
	return out
}

// Selected returns the selected layers bottom to top.
func (s *Stack) Selected() []*Layer {
	var out []*Layer
	for _, id := range s.order {
		if l := s.byID[id]; l.Selected {
			out = append(out, l)
		}
	}
	return out
}

// Index returns the z position of id, or -1.
func (s *Stack) Index(id ID) int { return slices.Index(s.order, id) }

// Move 把图层移动到 z 序中的 index 位置（越界时夹到两端）。
func (s *Stack) Move(id ID, index int) bool {
	from := s.Index(id)
	if from < 0 {
		return false
	}
	index = max(0, min(index, len(s.order)-1))
	s.order = slices.Delete(s.order, from, from+1)
	s.order = slices.Insert(s.order, index, id)
	return true
}

// Clone deep-copies every layer.
func (s *Stack) Clone() *Stack {
	c := &Stack{order: slices.Clone(s.order), byID: make(map[ID]*Layer, len(s.byID))}
	for id, l := range s.byID {
		c.byID[id] = l.Clone()
	}
	return c
}

// Snapshot returns deep copies of the layers as values, bottom to top.
func (s *Stack) Snapshot() []Layer {
	out := make([]Layer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id].Clone())
	}
	return out
}

// Restore replaces the contents with copies of layers.
func (s *Stack) Restore(layers []Layer) {
	s.order = s.order[:0]
	s.byID = make(map[ID]*Layer, len(layers))
	for i := range layers {
		s.Add(layers[i].Clone())
	}
}

// MarshalJSON encodes the stack as an array, bottom to top.
func (s *Stack) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Layers())
}

// UnmarshalJSON decodes an array of layers and reserves their ids.
func (s *Stack) UnmarshalJSON(b []byte) error {
	var layers []*Layer
	if err := json.Unmarshal(b, &layers); err != nil {
		return err
	}
	*s = Stack{byID: map[ID]*Layer{}}
	for _, l := range layers {
		Reserve(l.ID)
		s.Add(l)
	}
	return nil
}
