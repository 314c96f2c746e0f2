package lanegrep_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hupe1980/lanegrep"
)

func writeExample(name, content string) string {
	dir, err := os.MkdirTemp("", "lanegrep-example")
	if err != nil {
		log.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		log.Fatal(err)
	}
	return path
}

// Example demonstrates a case-insensitive search of one file.
func Example() {
	path := writeExample("fruit.txt", "apple\nbanana\nApple Pie\n")
	defer os.RemoveAll(filepath.Dir(path))

	s, err := lanegrep.New("apple", lanegrep.WithCaseInsensitive())
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	matches, err := s.Search(context.Background(), path)
	if err != nil {
		log.Fatal(err)
	}
	if err := lanegrep.WriteMatches(os.Stdout, matches); err != nil {
		log.Fatal(err)
	}
	// Output:
	// apple
	// Apple Pie
}

// Example_invert demonstrates reporting the lines that do not match.
func Example_invert() {
	s, err := lanegrep.New("apple", lanegrep.WithCaseInsensitive(), lanegrep.WithInvert())
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	matches, err := s.SearchReader(context.Background(), "-", strings.NewReader("apple\nbanana\nApple Pie\n"))
	if err != nil {
		log.Fatal(err)
	}
	for _, m := range matches {
		fmt.Println(m)
	}
	// Output: banana
}

// ExampleSearcher_SearchResult demonstrates per-input statistics.
func ExampleSearcher_SearchResult() {
	s, err := lanegrep.New("^Apple", lanegrep.WithBufferCapacity(1))
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	res, err := s.SearchBytes(context.Background(), "fruit", []byte("Apple\nbanana\nApple Pie\n"))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(res.Matches), "match,", res.Dropped, "dropped")
	// Output: 1 match, 1 dropped
}
