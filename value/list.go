package value

// SliceList is a growable List backed by a Go slice. It is the stock
// implementation hosts can use when they do not need to expose an existing
// data structure of their own.
type SliceList struct {
	items []Value
}

// NewList creates an empty SliceList.
func NewList(items ...Value) *SliceList {
	return &SliceList{items: items}
}

// Append adds v to the end of the list.
func (l *SliceList) Append(v Value) {
	l.items = append(l.items, v)
}

// Count returns the number of elements.
func (l *SliceList) Count() int {
	return len(l.items)
}

// At returns the element at index i, or the invalid Value when i is out of
// range.
func (l *SliceList) At(i int) Value {
	if i < 0 || i >= len(l.items) {
		return Value{}
	}
	return l.items[i]
}

// Iterator creates a fresh iterator over the list.
func (l *SliceList) Iterator() ListIterator {
	return &sliceIterator{list: l}
}

type sliceIterator struct {
	list *SliceList
	pos  int
}

func (it *sliceIterator) First() {
	it.pos = 0
}

func (it *sliceIterator) Last() {
	it.pos = it.list.Count() - 1
}

func (it *sliceIterator) Next() {
	it.pos++
}

func (it *sliceIterator) Prev() {
	it.pos--
}

func (it *sliceIterator) Current() (Value, bool) {
	if it.pos < 0 || it.pos >= it.list.Count() {
		return Value{}, false
	}
	return it.list.items[it.pos], true
}

// MapStruct is a growable Struct backed by a Go map. Missing fields yield
// the invalid Value.
type MapStruct struct {
	fields map[string]Value
}

// NewStruct creates an empty MapStruct.
func NewStruct() *MapStruct {
	return &MapStruct{fields: make(map[string]Value)}
}

// Set assigns the named field, replacing any previous value.
func (s *MapStruct) Set(name string, v Value) {
	s.fields[name] = v
}

// Get returns the named field, or the invalid Value when absent.
func (s *MapStruct) Get(name string) Value {
	return s.fields[name]
}
