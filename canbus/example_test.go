package canbus

import (
	"context"
	"fmt"
)

func ExampleLoopbackBus() {
	bus := NewLoopbackBus()
	a := bus.Open()
	b := bus.Open()
	defer a.Close()
	defer b.Close()

	ctx := context.Background()
	go func() { _ = a.Send(ctx, MustFrame(0x123, []byte("hi"))) }()
	f, _ := b.Receive(ctx)
	fmt.Printf("ID=%03X LEN=%d DATA=%x\n", f.ID, f.Len(), f.Payload())
	// Output: ID=123 LEN=2 DATA=6869
}

func ExampleLenToDLC() {
	for _, n := range []int{8, 10, 64} {
		dlc := LenToDLC(n)
		fmt.Printf("%d bytes -> DLC %d (%d bytes)\n", n, dlc, DLCToLen(dlc))
	}
	// Output:
	// 8 bytes -> DLC 8 (8 bytes)
	// 10 bytes -> DLC 9 (12 bytes)
	// 64 bytes -> DLC 15 (64 bytes)
}
