package format_test

import (
	"fmt"

	"github.com/notnil/canfmt/canbus"
	"github.com/notnil/canfmt/format"
)

func ExampleFormatter_Message() {
	f := format.New()
	f.Config().SetCounter(false)
	f.Config().SetFlags(true)

	frame := canbus.MustFrame(0x123, []byte("hi!"))
	fmt.Println(f.Message(&frame, format.RX, 0, 0))
	// Output: 0.0000  123  S----  3  68 69 21                 hi!
}
