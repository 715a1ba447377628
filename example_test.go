package kiln_test

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/tmk-au/kiln"
)

func Example() {
	dir, _ := os.MkdirTemp("", "kiln-example")
	defer os.RemoveAll(dir)

	// Open or create a store
	s, err := kiln.Open(dir, kiln.Config{})
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	// Store a value
	s.Set("greeting", "Hello, World!")

	// Retrieve it
	value, _ := s.Get("greeting")
	fmt.Println(value)
	// Output: Hello, World!
}

func ExampleStore_Remove() {
	dir, _ := os.MkdirTemp("", "kiln-example")
	defer os.RemoveAll(dir)

	s, _ := kiln.Open(dir, kiln.Config{})
	defer s.Close()

	s.Set("temp", "temporary data")
	s.Remove("temp")

	_, err := s.Get("temp")
	fmt.Println(errors.Is(err, kiln.ErrKeyNotFound))

	// Removing again fails: the key is already gone.
	err = s.Remove("temp")
	fmt.Println(errors.Is(err, kiln.ErrKeyNotFound))
	// Output: true
	// true
}

func ExampleOpenEngine() {
	dir, _ := os.MkdirTemp("", "kiln-example")
	defer os.RemoveAll(dir)

	// Select a backend once; later opens may omit the kind.
	e, err := kiln.OpenEngine(dir, kiln.EngineKiln, kiln.Config{})
	if err != nil {
		log.Fatal(err)
	}
	defer e.Close()

	e.Set("k", "v")
	value, _ := e.Get("k")
	fmt.Println(value)
	// Output: v
}

func ExampleStore_Backup() {
	dir, _ := os.MkdirTemp("", "kiln-example")
	defer os.RemoveAll(dir)

	s, _ := kiln.Open(dir, kiln.Config{})
	defer s.Close()

	s.Set("a", "1")
	s.Set("b", "2")

	// Stream a consistent snapshot of the live set to a file.
	f, _ := os.CreateTemp("", "kiln-backup")
	defer os.Remove(f.Name())
	if err := s.Backup(f); err != nil {
		log.Fatal(err)
	}
	f.Close()
}

func ExampleConfig() {
	dir, _ := os.MkdirTemp("", "kiln-example")
	defer os.RemoveAll(dir)

	// Custom configuration
	cfg := kiln.Config{
		FileThreshold: 64 * 1024,         // roll log files at 64KB
		SyncWrites:    true,              // fsync after each write
		HashAlgorithm: kiln.AlgBlake2b,   // backup digest algorithm
	}

	s, _ := kiln.Open(dir, cfg)
	defer s.Close()
}
