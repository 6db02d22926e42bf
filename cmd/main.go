package main

import (
	"fmt"
	"time"

	"github.com/baxromumarov/syncx/mpsc"
	"github.com/baxromumarov/syncx/oneshot"
	"github.com/baxromumarov/syncx/watch"
)

// Smoke demo touching all three channel types.
func main() {
	otx, orx := oneshot.New[int]()
	go func() { _ = otx.SendAsync(1) }()
	v, err := orx.Recv()
	fmt.Println("oneshot:", v, err)

	mtx, mrx := mpsc.New[int](4)
	go func() {
		defer mtx.Close()
		for i := 0; i < 8; i++ {
			_ = mtx.Send(i)
		}
	}()
	for {
		v, err := mrx.Recv()
		if err != nil {
			break
		}
		fmt.Println("mpsc:", v)
	}

	wtx, wrx := watch.New(0)
	go func() {
		for i := 1; i <= 3; i++ {
			_ = wtx.Broadcast(i * 10)
			time.Sleep(10 * time.Millisecond)
		}
		wtx.Close()
	}()
	for {
		v, err := wrx.Recv()
		if err != nil {
			break
		}
		fmt.Println("watch:", v)
	}
	wrx.Close()
}
