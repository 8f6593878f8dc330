package sugar_test

import (
	"fmt"

	"github.com/matzehuels/sugarcheck/pkg/sugar"
)

func ExamplePyranoseConformation() {
	fmt.Println(sugar.PyranoseConformation(3.7, 98.4))
	fmt.Println(sugar.PyranoseConformation(90, 0))
	fmt.Println(sugar.PyranoseConformation(50, 359))
	// Output:
	// 4C1
	// 3OB
	// OE
}

func ExampleFuranoseConformation() {
	c := sugar.FuranoseConformation(132.7)
	fmt.Println(c, c.Furanose())
	// Output: 4T3 true
}

func ExampleParseConformation() {
	c, err := sugar.ParseConformation("1C4", 6)
	if err != nil {
		panic(err)
	}
	fmt.Println(c.Code())
	// Output: 2
}
