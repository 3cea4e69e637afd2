package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddressLocker_SerializesSameAddress(t *testing.T) {
	locker := NewAddressLocker()

	const workers = 20
	var active, maxActive int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock("0xAbC0000000000000000000000000000000000001")
			defer unlock()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive, "same-address sections must never overlap")
}

func TestAddressLocker_CaseInsensitive(t *testing.T) {
	locker := NewAddressLocker()

	unlock := locker.Lock("0xABCDEF0000000000000000000000000000000001")
	acquired := make(chan struct{})
	go func() {
		u := locker.Lock("0xabcdef0000000000000000000000000000000001")
		u()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first still held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired after release")
	}
}

func TestAddressLocker_DifferentAddressesParallel(t *testing.T) {
	locker := NewAddressLocker()

	unlockA := locker.Lock("0x0000000000000000000000000000000000000001")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := locker.Lock("0x0000000000000000000000000000000000000002")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("different address blocked by unrelated lock")
	}
}
