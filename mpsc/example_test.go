package mpsc_test

import (
	"fmt"

	"github.com/baxromumarov/syncx/mpsc"
)

func ExampleNew() {
	tx, rx := mpsc.New[int](1)

	fmt.Println(tx.TrySend(42)) // fits
	fmt.Println(tx.TrySend(43)) // buffer full

	v, _ := rx.TryRecv()
	fmt.Println(v)

	fmt.Println(tx.TrySend(43)) // room again
	// Output:
	// <nil>
	// mpsc: buffer full
	// 42
	// <nil>
}

func ExampleSender_Clone() {
	tx, rx := mpsc.New[string](8)

	worker := tx.Clone()
	go func() {
		defer worker.Close()
		_ = worker.Send("from clone")
	}()

	_ = tx.Send("from original")
	tx.Close()

	for {
		msg, err := rx.Recv()
		if err != nil {
			return
		}
		_ = msg
	}
}
