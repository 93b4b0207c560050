package binproto_test

import (
	"fmt"

	"github.com/pior/binproto"
	"github.com/pior/binproto/layout"
)

func ExampleText() {
	p, err := binproto.NewText(binproto.TextConfig{
		Encoding: "utf-8",
		Reporter: binproto.ReporterFunc(func(err error) {
			fmt.Println("reported:", err)
		}),
	})
	if err != nil {
		panic(err)
	}

	// 'ß' split between two reads.
	p.ProcessInbound([]byte{0xc3})
	p.ProcessInbound([]byte{0x9f, 'b'})

	// A malformed byte between valid text.
	p.ProcessInbound([]byte("a\xc3b"))

	for {
		values, ok := p.NextDeserialised()
		if !ok {
			break
		}
		fmt.Printf("%q\n", values[0])
	}
	// Output:
	// reported: binproto: invalid utf-8 sequence c3 at offset 4-5
	// "ßb"
	// "a"
	// "b"
}

func ExampleText_replace() {
	p, err := binproto.NewText(binproto.TextConfig{
		Encoding:     "ascii",
		EncodeErrors: binproto.Replace,
	})
	if err != nil {
		panic(err)
	}

	p.ProcessOutbound(binproto.Tuple{"ß"})
	b, _ := p.NextSerialised()
	fmt.Printf("%q\n", b)
	// Output: "?"
}

func ExampleFixed() {
	p, err := binproto.NewFixed(binproto.FixedConfig{
		Fields: []layout.Field{
			{Kind: layout.Uint, Length: 4},
			{Kind: layout.Bool, Length: 1},
		},
	})
	if err != nil {
		panic(err)
	}

	b, _ := p.Pack(binproto.Tuple{300, true})
	fmt.Printf("% x\n", b)

	values, _ := p.Unpack(b)
	fmt.Println(values...)
	// Output:
	// 00 00 01 2c 01
	// 300 true
}
