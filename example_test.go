package vector_test

import (
	"errors"
	"fmt"

	"github.com/limpo1989/vector"
)

func Example() {
	vec := vector.New[int]()
	defer vec.Release()

	for i := 1; i <= 3; i++ {
		if err := vec.PushBack(i); err != nil {
			panic(err)
		}
		fmt.Println("len:", vec.Len(), "cap:", vec.Cap())
	}

	if _, err := vec.Insert(1, 9); err != nil {
		panic(err)
	}
	fmt.Println(vec.Slice())

	if _, err := vec.Erase(vec.Begin()); err != nil {
		panic(err)
	}
	fmt.Println(vec.Slice())

	// Output:
	// len: 1 cap: 1
	// len: 2 cap: 2
	// len: 3 cap: 4
	// [1 9 2 3]
	// [9 2 3]
}

type buffer struct {
	data []byte
}

func (b *buffer) Init() error {
	b.data = make([]byte, 0, 16)
	return nil
}

func (b *buffer) Clone() (buffer, error) {
	return buffer{data: append([]byte(nil), b.data...)}, nil
}

func (b *buffer) Destroy() {
	b.data = nil
}

func ExampleVector_EmplaceBack() {
	vec := vector.New[buffer]()
	defer vec.Release()

	b, err := vec.EmplaceBack(nil)
	if err != nil {
		panic(err)
	}
	b.data = append(b.data, "hello"...)

	clone, err := vec.Clone()
	if err != nil {
		panic(err)
	}
	defer clone.Release()

	clone.Ref(0).data[0] = 'j'
	fmt.Println(string(vec.Front().data), string(clone.Front().data))

	// Output:
	// hello jello
}

func ExampleNewLimitedMemory() {
	mem := vector.NewLimitedMemory(nil, 48)
	vec := vector.New[int64](vector.WithMemory(mem))
	defer vec.Release()

	var err error
	for i := 0; err == nil; i++ {
		err = vec.PushBack(int64(i))
	}
	fmt.Println(errors.Is(err, vector.ErrOutOfMemory), vec.Len(), mem.InUse())

	// Output:
	// true 4 32
}

func ExampleVector_All() {
	vec, err := vector.NewSized[string](3)
	if err != nil {
		panic(err)
	}
	defer vec.Release()

	for i, s := range []string{"a", "b", "c"} {
		*vec.Ref(i) = s
	}
	for i, s := range vec.All() {
		fmt.Println(i, s)
	}

	// Output:
	// 0 a
	// 1 b
	// 2 c
}
