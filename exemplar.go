package colorseg

import (
	"github.com/pkg/errors"
)

// BackgroundClass is the class index reserved for background.
const BackgroundClass = 0

// Class is one recognizable category, represented by every exemplar taught
// for it. A class matches a query if any one of its exemplars is close.
type Class struct {
	Exemplars []ColorDistribution
}

// Len returns the number of exemplars in the class.
func (c Class) Len() int {
	return len(c.Exemplars)
}

// ClassList is the ordered set of classes used for classification. Index
// 0 is background when background was taught; object classes follow in
// teaching order.
type ClassList []Class

// AddExemplar appends d to class index, creating the class when index is
// one past the last class. Any other index fails with ErrClassIndex. The
// receiver is not modified; the grown list is returned, as with append.
func (l ClassList) AddExemplar(index int, d ColorDistribution) (ClassList, error) {
	switch {
	case index < 0 || index > len(l):
		return l, errors.Wrapf(ErrClassIndex, "index %d with %d classes", index, len(l))
	case index == len(l):
		return append(l, Class{Exemplars: []ColorDistribution{d}}), nil
	}
	out := l.clone()
	out[index].Exemplars = append(out[index].Exemplars, d)
	return out, nil
}

// Validate checks that there is at least one class and that every class
// has at least one exemplar.
func (l ClassList) Validate() error {
	if len(l) == 0 {
		return errors.Wrap(ErrNoExemplars, "no classes")
	}
	for i, c := range l {
		if c.Len() == 0 {
			return errors.Wrapf(ErrNoExemplars, "class %d", i)
		}
	}
	return nil
}

// ExemplarCount returns the total number of exemplars over all classes.
func (l ClassList) ExemplarCount() int {
	n := 0
	for _, c := range l {
		n += c.Len()
	}
	return n
}

// clone copies the list and each class's exemplar slice header so that
// appends on the copy never write into the original's backing arrays.
func (l ClassList) clone() ClassList {
	out := make(ClassList, len(l))
	for i, c := range l {
		out[i] = Class{Exemplars: append([]ColorDistribution(nil), c.Exemplars...)}
	}
	return out
}

// ExemplarStore holds the working collections built while teaching:
// background exemplars, object classes already committed with NextClass,
// and the object class currently being taught. Collections only grow until
// Reset. Freeze turns them into the ClassList used for classification.
type ExemplarStore struct {
	background []ColorDistribution
	objects    []Class
	pending    []ColorDistribution
}

// NewExemplarStore creates an empty store.
func NewExemplarStore() *ExemplarStore {
	return &ExemplarStore{}
}

// AddBackground appends background exemplars and returns the number of
// background exemplars held.
func (s *ExemplarStore) AddBackground(ds ...ColorDistribution) int {
	s.background = append(s.background, ds...)
	return len(s.background)
}

// AddObject appends an exemplar to the object class being taught and
// returns the number of exemplars in that class.
func (s *ExemplarStore) AddObject(d ColorDistribution) int {
	s.pending = append(s.pending, d)
	return len(s.pending)
}

// NextClass commits the object class being taught and starts a new one.
// It returns the number of committed object classes. Committing a class
// with no exemplars fails with ErrNoExemplars.
func (s *ExemplarStore) NextClass() (int, error) {
	if len(s.pending) == 0 {
		return len(s.objects), errors.Wrap(ErrNoExemplars, "current object class")
	}
	s.objects = append(s.objects, Class{Exemplars: s.pending})
	s.pending = nil
	return len(s.objects), nil
}

// BackgroundCount returns the number of background exemplars.
func (s *ExemplarStore) BackgroundCount() int {
	return len(s.background)
}

// PendingCount returns the number of exemplars in the class being taught.
func (s *ExemplarStore) PendingCount() int {
	return len(s.pending)
}

// ClassCount returns the number of object classes, counting the class
// being taught if it has exemplars.
func (s *ExemplarStore) ClassCount() int {
	if len(s.pending) > 0 {
		return len(s.objects) + 1
	}
	return len(s.objects)
}

// Freeze builds the class list: background at index 0, then committed
// object classes in teaching order, then the class being taught if it has
// any exemplars. Background is required. The store keeps its collections;
// the returned list shares no slices with them.
func (s *ExemplarStore) Freeze() (ClassList, error) {
	if len(s.background) == 0 {
		return nil, errors.Wrap(ErrNoExemplars, "background")
	}
	classes := make(ClassList, 0, 1+len(s.objects)+1)
	classes = append(classes, Class{Exemplars: append([]ColorDistribution(nil), s.background...)})
	for _, c := range s.objects {
		classes = append(classes, Class{Exemplars: append([]ColorDistribution(nil), c.Exemplars...)})
	}
	if len(s.pending) > 0 {
		classes = append(classes, Class{Exemplars: append([]ColorDistribution(nil), s.pending...)})
	}
	return classes, classes.Validate()
}

// Reset clears every collection.
func (s *ExemplarStore) Reset() {
	*s = ExemplarStore{}
}
