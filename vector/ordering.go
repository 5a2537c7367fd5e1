package vector

import (
	"fmt"

	cm "github.com/gasparian/crypto-recommend-go/common"
)

// Ordering is the fixed coordinate-to-currency mapping shared by all vectors of a run
type Ordering struct {
	names []string
	index map[string]int
}

// NewOrdering creates ordering from the names in their first-seen order;
// duplicates are dropped
func NewOrdering(names []string) (*Ordering, error) {
	o := &Ordering{
		names: make([]string, 0, len(names)),
		index: make(map[string]int, len(names)),
	}
	for _, name := range names {
		if len(name) == 0 {
			return nil, fmt.Errorf("%w: empty currency name", cm.ErrInvalidArgument)
		}
		if _, has := o.index[name]; has {
			continue
		}
		o.index[name] = len(o.names)
		o.names = append(o.names, name)
	}
	return o, nil
}

// Len returns number of coordinates
func (o *Ordering) Len() int {
	return len(o.names)
}

// Name returns currency name of the i-th coordinate
func (o *Ordering) Name(i int) (string, error) {
	if i < 0 || i >= len(o.names) {
		return "", fmt.Errorf("%w: coordinate %d, dimension %d", cm.ErrIndexOutOfRange, i, len(o.names))
	}
	return o.names[i], nil
}

// Index returns coordinate of the currency
func (o *Ordering) Index(name string) (int, bool) {
	i, ok := o.index[name]
	return i, ok
}

// Names returns a copy of all currency names in coordinate order
func (o *Ordering) Names() []string {
	names := make([]string, len(o.names))
	copy(names, o.names)
	return names
}
