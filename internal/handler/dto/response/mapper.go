package response

import (
	"github.com/jinzhu/copier"
)

// copyInto fills dst from a view or result with matching field names.
func copyInto[T any](src any) *T {
	dst := new(T)
	if err := copier.Copy(dst, src); err != nil {
		// Field sets are fixed at compile time; a failure is a programming error.
		panic("response mapping: " + err.Error())
	}
	return dst
}

func copyList[T any, S any](src []S) []*T {
	out := make([]*T, len(src))
	for i, s := range src {
		out[i] = copyInto[T](s)
	}
	return out
}
