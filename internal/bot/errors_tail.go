package bot

import (
	"bufio"
	"os"
)

// TailLastNLines returns at most n trailing lines of path, oldest first.
func TailLastNLines(path string, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// ring buffer; errors.log is truncated on every start
	ring := make([]string, n)
	count := 0
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	for s.Scan() {
		ring[count%n] = s.Text()
		count++
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	if count <= n {
		return ring[:count], nil
	}
	start := count % n
	return append(ring[start:], ring[:start]...), nil
}
