package main

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/dlshle/timedcache/cache"
)

type User struct {
	ID   int
	Name string
}

type Product struct {
	ID    int
	Name  string
	Price int
}

// userSource synthesizes a user per fetch; a refetch after expiry hands out a
// different id, which is how the demo shows an entry was refreshed.
func userSource(key string) (User, error) {
	time.Sleep(300 * time.Millisecond) // pretend the backend is slow
	return User{ID: rand.Int(), Name: key}, nil
}

func productSource(key string) (Product, error) {
	time.Sleep(300 * time.Millisecond)
	return Product{ID: rand.Int(), Name: key, Price: 100}, nil
}

func userProductT() {
	c := cache.New(5 * time.Second)
	c.Verbose(true)
	users := cache.NewView[User](c, "user", cache.FetchFunc[User](userSource))
	products := cache.NewView[Product](c, "product", cache.FetchFunc[Product](productSource))

	u1, _ := users.Get("user1")
	fmt.Printf("user1 -> %+v\n", u1)
	fmt.Println("sleeping 6s, past the TTL...")
	time.Sleep(6 * time.Second)
	u2, _ := users.Get("user1")
	fmt.Printf("user1 -> %+v (ids differ: %v)\n", u2, u1.ID != u2.ID)

	p1, _ := products.Get("prod1")
	fmt.Printf("prod1 -> %+v\n", p1)
	fmt.Println("sleeping 2s, within the TTL...")
	time.Sleep(2 * time.Second)
	p2, _ := products.Get("prod1")
	fmt.Printf("prod1 -> %+v (cached: %v)\n", p2, p1 == p2)

	fmt.Printf("stats: %+v\n", c.Stats())
}

func coalescedT() {
	c := cache.New(5*time.Second, cache.WithCoalescedFetch())
	users := cache.NewView[User](c, "user", cache.FetchFunc[User](userSource))

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, _ := users.Get("user1")
			fmt.Printf("caller %d got user id %d\n", i, u.ID)
		}(i)
	}
	wg.Wait()
	fmt.Printf("8 concurrent cold gets shared one fetch, took %v\n", time.Since(start))
}

func main() {
	runWith(true, userProductT)
	runWith(true, coalescedT)
	fmt.Println("Main done")
}

func runWith(run bool, executor func()) {
	fmt.Println("-----------------------------------------")
	if !run {
		return
	}
	executor()
	fmt.Println("-----------------------------------------")
}
